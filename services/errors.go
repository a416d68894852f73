package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Failure kinds surfaced to the HTTP layer and the bot. None of them are fatal.
var (
	ErrNotFound            = errors.New("account not found")
	ErrInvalidReferralCode = fmt.Errorf("invalid referral code: %w", ErrNotFound)
	ErrInvalidTask         = errors.New("invalid task")
	ErrAlreadyCompleted    = errors.New("task already completed")
	ErrAlreadyReferred     = errors.New("already used a referral code")
	ErrSelfReferral        = errors.New("cannot use own referral code")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrStorageConflict     = errors.New("storage conflict, retry the request")
	ErrInvalidInput        = errors.New("invalid input")
)

// Kind returns a stable snake_case name for a ledger error, or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidReferralCode):
		return "invalid_referral_code"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTask):
		return "invalid_task"
	case errors.Is(err, ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, ErrAlreadyReferred):
		return "already_referred"
	case errors.Is(err, ErrSelfReferral):
		return "self_referral"
	case errors.Is(err, ErrAlreadyCheckedIn):
		return "already_checked_in"
	case errors.Is(err, ErrStorageConflict):
		return "storage_conflict"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}

// classify maps driver-level transaction races onto ErrStorageConflict and
// leaves ledger errors untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != "internal" {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s", ErrStorageConflict, pgErr.Message)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy") {
		return fmt.Errorf("%w: %v", ErrStorageConflict, err)
	}
	return err
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
