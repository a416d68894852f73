package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardCategory is the business reason behind a balance credit.
type RewardCategory string

const (
	RewardCategoryWelcome        RewardCategory = "welcome"
	RewardCategoryTask           RewardCategory = "task"
	RewardCategoryReferralReward RewardCategory = "referral_reward" // paid to the referrer
	RewardCategoryReferralBonus  RewardCategory = "referral_bonus"  // paid to the referred account
	RewardCategoryCheckIn        RewardCategory = "check_in"
)

// RewardEvent is an append-only audit row, written in the same transaction as the credit.
type RewardEvent struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID    string         `gorm:"type:uuid;not null;index:idx_reward_events_account_created" json:"-"`
	Category     RewardCategory `gorm:"type:varchar(32);not null" json:"category"`
	Amount       int64          `gorm:"not null" json:"amount"`
	Reference    string         `json:"reference,omitempty"` // task title, counterpart account, streak length
	BalanceAfter int64          `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time      `gorm:"not null;index:idx_reward_events_account_created" json:"created_at"`
}

func (e *RewardEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&CompletedTask{},
		&Donation{},
		&RewardEvent{},
	}
}
