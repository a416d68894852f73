package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompletedTask = account finished one catalog task. At most one row per (account, title).
type CompletedTask struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_account_task" json:"-"`
	TaskTitle   string    `gorm:"not null;uniqueIndex:idx_account_task" json:"task_title"`
	Reward      int64     `gorm:"not null" json:"reward"` // catalog value at completion time
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`

	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
}

func (c *CompletedTask) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
