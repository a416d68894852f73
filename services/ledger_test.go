package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/database"
	"airdrop-rewards-system/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testStart = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	*Services
	DB       *gorm.DB
	Clock    *clockwork.FakeClock
	Settings *config.Settings
}

func testSettings(t *testing.T, dbPath string) *config.Settings {
	t.Helper()
	catalog, err := config.NewTaskCatalog([]config.TaskDefinition{
		{Title: "Join Telegram Group", Reward: 1000},
		{Title: "Follow on Twitter", Reward: 1000},
		{Title: "Retweet Announcement", Reward: 500},
		{Title: "Join Discord", Reward: 1000},
		{Title: "Share a Meme", Reward: 1500},
	})
	require.NoError(t, err)

	return &config.Settings{
		Env:                "test",
		DatabaseURL:        "sqlite:///" + dbPath,
		CampaignName:       "BeniDrop",
		ReferralCodePrefix: "BENI",
		WelcomeBonus:       500,
		DailyCheckInReward: 100,
		ReferralReward:     5000,
		ReferralBonus:      2500,
		Tasks:              catalog,
		CheckInLocation:    time.UTC,
	}
}

func newFixture(t *testing.T, mutate ...func(*config.Settings)) *fixture {
	t.Helper()
	settings := testSettings(t, filepath.Join(t.TempDir(), "ledger.db"))
	for _, m := range mutate {
		m(settings)
	}
	require.NoError(t, settings.Validate())

	db, err := database.Open(settings)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	clock := clockwork.NewFakeClockAt(testStart)
	return &fixture{
		Services: New(db, settings, clock),
		DB:       db,
		Clock:    clock,
		Settings: settings,
	}
}

// register creates an account and fails the test on error.
func (f *fixture) register(t *testing.T, externalID string) *models.Account {
	t.Helper()
	name := "user" + externalID
	acct, _, err := f.Accounts.Register(externalID, &name)
	require.NoError(t, err)
	return acct
}

func (f *fixture) balance(t *testing.T, externalID string) int64 {
	t.Helper()
	acct, err := f.Accounts.Get(externalID)
	require.NoError(t, err)
	return acct.TotalTokens
}

// eventSum is the total of all reward events; it must always equal the account balance.
func (f *fixture) eventSum(t *testing.T, externalID string) int64 {
	t.Helper()
	acct, err := f.Accounts.Get(externalID)
	require.NoError(t, err)
	var sum int64
	require.NoError(t, f.DB.Model(&models.RewardEvent{}).
		Where("account_id = ?", acct.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error)
	return sum
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotFound, "not_found"},
		{ErrInvalidReferralCode, "invalid_referral_code"},
		{fmt.Errorf("wrapped: %w", ErrAlreadyCompleted), "already_completed"},
		{ErrInvalidTask, "invalid_task"},
		{ErrAlreadyReferred, "already_referred"},
		{ErrSelfReferral, "self_referral"},
		{ErrAlreadyCheckedIn, "already_checked_in"},
		{ErrStorageConflict, "storage_conflict"},
		{fmt.Errorf("%w: bad", ErrInvalidInput), "invalid_input"},
		{errors.New("boom"), "internal"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Kind(tc.err), "%v", tc.err)
	}
}

func TestInvalidReferralCodeIsNotFound(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidReferralCode, ErrNotFound)
}

func TestClassify(t *testing.T) {
	t.Run("serialization failure", func(t *testing.T) {
		err := classify(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001", Message: "could not serialize access"}))
		assert.ErrorIs(t, err, ErrStorageConflict)
	})
	t.Run("deadlock", func(t *testing.T) {
		assert.ErrorIs(t, classify(&pgconn.PgError{Code: "40P01"}), ErrStorageConflict)
	})
	t.Run("sqlite busy", func(t *testing.T) {
		assert.ErrorIs(t, classify(errors.New("database is locked (5) (SQLITE_BUSY)")), ErrStorageConflict)
	})
	t.Run("ledger errors pass through", func(t *testing.T) {
		assert.Same(t, ErrAlreadyCheckedIn, classify(ErrAlreadyCheckedIn))
	})
	t.Run("other errors pass through", func(t *testing.T) {
		other := &pgconn.PgError{Code: "23503"}
		assert.Equal(t, error(other), classify(other))
	})
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicate(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isDuplicate(errors.New("UNIQUE constraint failed: accounts.referral_code")))
	assert.False(t, isDuplicate(nil))
	assert.False(t, isDuplicate(errors.New("no such table")))
}
