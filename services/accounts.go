package services

import (
	"errors"
	"fmt"
	"strings"

	"airdrop-rewards-system/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// referral codes carry 48 random bits; storage uniqueness catches the rare clash.
const (
	referralCodeRandomLen = 12
	maxCodeAttempts       = 5
)

type AccountService struct {
	Ledger
}

func NewAccountService(l Ledger) *AccountService {
	return &AccountService{Ledger: l}
}

// AccountProfile is the account plus the counters clients show next to it.
type AccountProfile struct {
	models.Account
	TasksCompleted  int64 `json:"tasks_completed"`
	TotalReferrals  int64 `json:"total_referrals"`
	LeaderboardRank int64 `json:"leaderboard_rank"`
}

// Register returns the account for externalID, creating it with the welcome
// bonus on first sight. An existing account is returned untouched. The id is
// stored verbatim; callers normalize it at the boundary.
func (s *AccountService) Register(externalID string, username *string) (*models.Account, bool, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, false, observe("register", fmt.Errorf("%w: telegram_id is required", ErrInvalidInput))
	}
	username = normalizeName(username)

	if acct, err := s.find(externalID); err == nil {
		return acct, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, observe("register", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		now := s.now()
		acct := models.Account{
			ExternalID:   externalID,
			Username:     username,
			TotalTokens:  s.Settings.WelcomeBonus,
			ReferralCode: s.newReferralCode(),
			JoinedAt:     now,
		}

		err := s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&acct).Error; err != nil {
				return err
			}
			if s.Settings.WelcomeBonus > 0 {
				return recordEvent(tx, &acct, models.RewardCategoryWelcome, s.Settings.WelcomeBonus, "", now)
			}
			return nil
		})
		if err == nil {
			reportCredits(credit{category: models.RewardCategoryWelcome, amount: s.Settings.WelcomeBonus})
			log.Info().
				Str("telegram_id", externalID).
				Str("referral_code", acct.ReferralCode).
				Int64("balance", acct.TotalTokens).
				Msg("🆕 Account registered")
			return &acct, true, nil
		}
		if !isDuplicate(err) {
			return nil, false, observe("register", err)
		}

		// Either a concurrent register for the same id won, or the code clashed.
		if existing, findErr := s.find(externalID); findErr == nil {
			return existing, false, nil
		}
		log.Warn().Str("telegram_id", externalID).Int("attempt", attempt+1).Msg("⚠️  Referral code collision, retrying")
	}

	return nil, false, observe("register", fmt.Errorf("%w: could not allocate a unique referral code", ErrStorageConflict))
}

// Get fails with ErrNotFound for unknown ids.
func (s *AccountService) Get(externalID string) (*models.Account, error) {
	acct, err := s.find(externalID)
	if err != nil {
		return nil, observe("get_account", err)
	}
	return acct, nil
}

// Profile adds completion, referral and rank counters to the account.
func (s *AccountService) Profile(externalID string) (*AccountProfile, error) {
	acct, err := s.find(externalID)
	if err != nil {
		return nil, observe("profile", err)
	}

	p := &AccountProfile{Account: *acct}
	if err := s.DB.Model(&models.CompletedTask{}).
		Where("account_id = ?", acct.ID).
		Count(&p.TasksCompleted).Error; err != nil {
		return nil, observe("profile", err)
	}
	if err := s.DB.Model(&models.Account{}).
		Where("referred_by_id = ?", acct.ID).
		Count(&p.TotalReferrals).Error; err != nil {
		return nil, observe("profile", err)
	}

	// Same ordering as the leaderboard: balance desc, then join time, then id.
	var ahead int64
	if err := s.DB.Model(&models.Account{}).
		Where("(total_tokens > ? OR (total_tokens = ? AND joined_at < ?) OR (total_tokens = ? AND joined_at = ? AND id < ?))",
			acct.TotalTokens,
			acct.TotalTokens, acct.JoinedAt,
			acct.TotalTokens, acct.JoinedAt, acct.ID).
		Count(&ahead).Error; err != nil {
		return nil, observe("profile", err)
	}
	p.LeaderboardRank = ahead + 1
	return p, nil
}

// SetWalletAddress overwrites the payout address. The address is opaque to the ledger.
// A nil tag leaves any stored tag in place.
func (s *AccountService) SetWalletAddress(externalID, address string, tag *string) (*models.Account, error) {
	var acct *models.Account
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if acct, err = lockAccount(tx, externalID); err != nil {
			return err
		}
		updates := map[string]interface{}{"wallet_address": address}
		if tag != nil {
			updates["wallet_tag"] = *tag
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", acct.ID).Updates(updates).Error; err != nil {
			return err
		}
		acct.WalletAddress = &address
		if tag != nil {
			acct.WalletTag = tag
		}
		return nil
	})
	if err != nil {
		return nil, observe("set_wallet_address", err)
	}

	log.Info().Str("telegram_id", externalID).Msg("👛 Wallet connected")
	return acct, nil
}

// Referrals lists the accounts that used externalID's referral code, newest first.
func (s *AccountService) Referrals(externalID string, limit int) ([]models.Account, error) {
	acct, err := s.find(externalID)
	if err != nil {
		return nil, observe("referrals", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.Account
	err = s.DB.Where("referred_by_id = ?", acct.ID).
		Order("joined_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, observe("referrals", err)
}

func (s *AccountService) find(externalID string) (*models.Account, error) {
	var acct models.Account
	err := s.DB.Where("external_id = ?", externalID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *AccountService) newReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s.Settings.ReferralCodePrefix + strings.ToUpper(raw[:referralCodeRandomLen])
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimPrefix(strings.TrimSpace(*name), "@")
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
