package services

import (
	"errors"
	"time"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/metrics"
	"airdrop-rewards-system/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is the shared state every component works against.
type Ledger struct {
	DB       *gorm.DB
	Settings *config.Settings
	Clock    clockwork.Clock
}

// Services bundles the ledger components for the HTTP layer, the bot and the workers.
type Services struct {
	Accounts    *AccountService
	Tasks       *TaskService
	Referrals   *ReferralService
	CheckIns    *CheckInService
	Donations   *DonationService
	Leaderboard *LeaderboardService
	Events      *EventService
	Snapshots   *SnapshotService
}

func New(db *gorm.DB, settings *config.Settings, clock clockwork.Clock) *Services {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	l := Ledger{DB: db, Settings: settings, Clock: clock}
	return &Services{
		Accounts:    NewAccountService(l),
		Tasks:       NewTaskService(l),
		Referrals:   NewReferralService(l),
		CheckIns:    NewCheckInService(l),
		Donations:   NewDonationService(l),
		Leaderboard: NewLeaderboardService(l),
		Events:      NewEventService(l),
		Snapshots:   NewSnapshotService(l),
	}
}

func (l Ledger) now() time.Time {
	return l.Clock.Now().UTC()
}

// credit is a committed balance change waiting to be reported to metrics.
type credit struct {
	category models.RewardCategory
	amount   int64
}

// applyCredit adds amount to a locked account and appends the matching reward event.
// acct must have been loaded through lockAccount in the same transaction.
func applyCredit(tx *gorm.DB, acct *models.Account, category models.RewardCategory, amount int64, reference string, at time.Time) (credit, error) {
	if amount <= 0 {
		return credit{}, nil
	}
	if err := tx.Model(&models.Account{}).
		Where("id = ?", acct.ID).
		Update("total_tokens", gorm.Expr("total_tokens + ?", amount)).Error; err != nil {
		return credit{}, err
	}
	acct.TotalTokens += amount

	if err := recordEvent(tx, acct, category, amount, reference, at); err != nil {
		return credit{}, err
	}
	return credit{category: category, amount: amount}, nil
}

func recordEvent(tx *gorm.DB, acct *models.Account, category models.RewardCategory, amount int64, reference string, at time.Time) error {
	return tx.Create(&models.RewardEvent{
		AccountID:    acct.ID,
		Category:     category,
		Amount:       amount,
		Reference:    reference,
		BalanceAfter: acct.TotalTokens,
		CreatedAt:    at,
	}).Error
}

func reportCredits(credits ...credit) {
	for _, c := range credits {
		if c.amount > 0 {
			metrics.RecordCredit(string(c.category), c.amount)
		}
	}
}

// lockAccount loads an account by external id and holds its row lock until the
// transaction ends. SQLite ignores the locking clause; its single connection
// already serializes transactions.
func lockAccount(tx *gorm.DB, externalID string) (*models.Account, error) {
	var acct models.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_id = ?", externalID).
		First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// observe classifies err and counts it against the operation.
func observe(operation string, err error) error {
	err = classify(err)
	if err != nil {
		metrics.RecordFailure(operation, Kind(err))
	}
	return err
}
