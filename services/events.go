package services

import (
	"errors"
	"time"

	"airdrop-rewards-system/models"

	"gorm.io/gorm"
)

const maxEventPage = 200

// EventService reads the reward audit trail. It never writes: events are
// appended by the component that credits the balance.
type EventService struct {
	Ledger
}

func NewEventService(l Ledger) *EventService {
	return &EventService{Ledger: l}
}

// Recent returns the newest events of an account, newest first.
func (s *EventService) Recent(externalID string, limit int) ([]models.RewardEvent, error) {
	accountID, err := s.AccountID(externalID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxEventPage {
		limit = 20
	}

	var out []models.RewardEvent
	err = s.DB.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, observe("recent_events", err)
}

// EventCursor is the position of the last event a reader has seen. Events are
// ordered by creation time and then id, so rows sharing a timestamp are never
// skipped at a page boundary.
type EventCursor struct {
	At time.Time
	ID string
}

// CursorAfter returns the cursor positioned on e.
func CursorAfter(e models.RewardEvent) EventCursor {
	return EventCursor{At: e.CreatedAt, ID: e.ID}
}

// Since returns events strictly after the cursor, oldest first.
// It is the polling primitive behind the event stream.
func (s *EventService) Since(accountID string, after EventCursor, limit int) ([]models.RewardEvent, error) {
	if limit <= 0 || limit > maxEventPage {
		limit = maxEventPage
	}
	at := after.At.UTC()
	var out []models.RewardEvent
	err := s.DB.Where("account_id = ?", accountID).
		Where("(created_at > ? OR (created_at = ? AND id > ?))", at, at, after.ID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error
	return out, observe("events_since", err)
}

// Cursor points at the newest event, or is zero when there are none.
func (s *EventService) Cursor(accountID string) (EventCursor, error) {
	var latest models.RewardEvent
	err := s.DB.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Order("id DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EventCursor{}, nil
	}
	if err != nil {
		return EventCursor{}, observe("events_cursor", err)
	}
	return CursorAfter(latest), nil
}

// AccountID resolves an external id to the internal account id.
func (s *EventService) AccountID(externalID string) (string, error) {
	var acct models.Account
	err := s.DB.Select("id").Where("external_id = ?", externalID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", observe("resolve_account", ErrNotFound)
	}
	if err != nil {
		return "", observe("resolve_account", err)
	}
	return acct.ID, nil
}
