package services

import (
	"errors"
	"sort"
	"strings"

	"airdrop-rewards-system/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferralService struct {
	Ledger
}

func NewReferralService(l Ledger) *ReferralService {
	return &ReferralService{Ledger: l}
}

type ReferralResult struct {
	Bonus      int64 `json:"tokens_earned"`
	NewBalance int64 `json:"total_tokens"`
	ReferrerID string `json:"referrer_telegram_id"`
}

// ApplyReferral links externalID to the owner of code, once, and pays both sides.
// Checks run in order: code resolves, account exists, not yet referred, not self.
func (s *ReferralService) ApplyReferral(externalID, code string) (*ReferralResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var result ReferralResult
	var credits []credit

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var referrerRef, accountRef models.Account
		if err := tx.Select("id").Where("referral_code = ?", code).First(&referrerRef).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidReferralCode
			}
			return err
		}
		if err := tx.Select("id").Where("external_id = ?", externalID).First(&accountRef).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		locked, err := lockByID(tx, referrerRef.ID, accountRef.ID)
		if err != nil {
			return err
		}
		referrer, acct := locked[referrerRef.ID], locked[accountRef.ID]

		if acct.ReferredByID != nil {
			return ErrAlreadyReferred
		}
		if acct.ID == referrer.ID {
			return ErrSelfReferral
		}

		res := tx.Model(&models.Account{}).
			Where("id = ? AND referred_by_id IS NULL", acct.ID).
			Update("referred_by_id", referrer.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReferred
		}
		acct.ReferredByID = &referrer.ID

		now := s.now()
		c1, err := applyCredit(tx, referrer, models.RewardCategoryReferralReward, s.Settings.ReferralReward, acct.ExternalID, now)
		if err != nil {
			return err
		}
		c2, err := applyCredit(tx, acct, models.RewardCategoryReferralBonus, s.Settings.ReferralBonus, referrer.ExternalID, now)
		if err != nil {
			return err
		}
		credits = []credit{c1, c2}

		result = ReferralResult{
			Bonus:      s.Settings.ReferralBonus,
			NewBalance: acct.TotalTokens,
			ReferrerID: referrer.ExternalID,
		}
		return nil
	})
	if err != nil {
		return nil, observe("apply_referral", err)
	}

	reportCredits(credits...)
	log.Info().
		Str("telegram_id", externalID).
		Str("referrer", result.ReferrerID).
		Int64("bonus", result.Bonus).
		Msg("🤝 Referral applied")
	return &result, nil
}

// lockByID row-locks the given accounts in id order so two referrals touching
// the same pair cannot deadlock.
func lockByID(tx *gorm.DB, ids ...string) (map[string]*models.Account, error) {
	uniq := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Strings(uniq)

	out := make(map[string]*models.Account, len(uniq))
	for _, id := range uniq {
		var acct models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		out[id] = &acct
	}
	return out, nil
}
