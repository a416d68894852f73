package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Account is the single ledger row per end-user.
// ExternalID is whatever stable id the caller hands us (a Telegram user id for the bot).
type Account struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID    string     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username      *string    `json:"username"`
	WalletAddress *string    `gorm:"type:varchar(128)" json:"wallet_address"`
	WalletTag     *string    `gorm:"type:varchar(64)" json:"wallet_tag,omitempty"`
	TotalTokens   int64      `gorm:"not null;default:0;index" json:"total_tokens"`
	CheckInStreak int        `gorm:"not null;default:0" json:"check_in_streak"`
	LastCheckIn   *time.Time `json:"last_check_in,omitempty"`
	ReferralCode  string     `gorm:"uniqueIndex;not null" json:"referral_code"`

	// Set at most once; reverse lookups (referrals received) go through the index.
	ReferredByID *string  `gorm:"type:uuid;index" json:"-"`
	ReferredBy   *Account `gorm:"foreignKey:ReferredByID" json:"-"`

	JoinedAt time.Time `gorm:"not null" json:"join_date"`

	Timestamps
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the username or the leaderboard placeholder.
func (a *Account) DisplayName() string {
	if a.Username == nil || *a.Username == "" {
		return AnonymousName
	}
	return *a.Username
}

const AnonymousName = "Anonymous"
