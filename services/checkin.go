package services

import (
	"fmt"
	"time"

	"airdrop-rewards-system/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CheckInService struct {
	Ledger
}

func NewCheckInService(l Ledger) *CheckInService {
	return &CheckInService{Ledger: l}
}

type CheckInResult struct {
	Streak     int   `json:"streak"`
	Reward     int64 `json:"tokens_earned"`
	NewBalance int64 `json:"total_tokens"`
}

// CheckIn records today's check-in. Days are calendar dates in the configured
// location, so 23:59 followed by 00:01 counts as two consecutive days.
func (s *CheckInService) CheckIn(externalID string) (*CheckInResult, error) {
	var result CheckInResult
	var credited credit

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		acct, err := lockAccount(tx, externalID)
		if err != nil {
			return err
		}

		now := s.now()
		streak, err := s.nextStreak(acct, now)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Account{}).
			Where("id = ?", acct.ID).
			Updates(map[string]interface{}{
				"check_in_streak": streak,
				"last_check_in":   now,
			}).Error; err != nil {
			return err
		}
		acct.CheckInStreak = streak
		acct.LastCheckIn = &now

		reward := s.Settings.DailyCheckInReward
		if credited, err = applyCredit(tx, acct, models.RewardCategoryCheckIn, reward, fmt.Sprintf("streak:%d", streak), now); err != nil {
			return err
		}
		result = CheckInResult{Streak: streak, Reward: reward, NewBalance: acct.TotalTokens}
		return nil
	})
	if err != nil {
		return nil, observe("check_in", err)
	}

	reportCredits(credited)
	log.Info().
		Str("telegram_id", externalID).
		Int("streak", result.Streak).
		Int64("balance", result.NewBalance).
		Msg("📅 Daily check-in")
	return &result, nil
}

// nextStreak applies the streak policy: same day is rejected, yesterday extends,
// anything else starts over at 1. A last check-in dated after today (clock
// moved backwards) is treated as already checked in.
func (s *CheckInService) nextStreak(acct *models.Account, now time.Time) (int, error) {
	if acct.LastCheckIn == nil {
		return 1, nil
	}
	today := s.dateOf(now)
	last := s.dateOf(*acct.LastCheckIn)

	if !last.Before(today) {
		return 0, ErrAlreadyCheckedIn
	}
	if last.AddDate(0, 0, 1).Equal(today) {
		return acct.CheckInStreak + 1, nil
	}
	return 1, nil
}

// SweepBrokenStreaks zeroes the stored streak of every account whose last
// check-in is older than yesterday. It only affects what clients display:
// CheckIn restarts such streaks at 1 regardless.
func (s *CheckInService) SweepBrokenStreaks() (int64, error) {
	cutoff := s.dateOf(s.now()).AddDate(0, 0, -1).UTC()

	res := s.DB.Model(&models.Account{}).
		Where("check_in_streak > 0 AND last_check_in < ?", cutoff).
		Update("check_in_streak", 0)
	if res.Error != nil {
		return 0, observe("sweep_streaks", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Info().Int64("accounts", res.RowsAffected).Msg("🧹 Broken streaks reset")
	}
	return res.RowsAffected, nil
}

// dateOf truncates t to midnight of its calendar date in the check-in location.
func (s *CheckInService) dateOf(t time.Time) time.Time {
	loc := s.Settings.CheckInLocation
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
