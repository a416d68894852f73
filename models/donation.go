package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Donation is a claimed transfer to the project wallet. Nothing here is verified on-chain.
type Donation struct {
	ID              string          `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID       string          `gorm:"type:uuid;not null;index" json:"-"`
	Amount          decimal.Decimal `gorm:"type:numeric(36,18);not null" json:"amount_egld"`
	TransactionHash string          `gorm:"type:varchar(128);index" json:"transaction_hash"`
	Message         string          `gorm:"type:text" json:"message"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
