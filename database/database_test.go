package database

import (
	"path/filepath"
	"testing"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		raw     string
		dialect Dialect
		dsn     string
	}{
		{"postgres://u:p@localhost:5432/airdrop?sslmode=disable", DialectPostgres, "postgres://u:p@localhost:5432/airdrop?sslmode=disable"},
		{"postgresql://localhost/airdrop", DialectPostgres, "postgresql://localhost/airdrop"},
		{"host=localhost user=u dbname=airdrop", DialectPostgres, "host=localhost user=u dbname=airdrop"},
		{"sqlite:///benidrop.db", DialectSQLite, "benidrop.db"},
		{"sqlite:////var/lib/benidrop.db", DialectSQLite, "/var/lib/benidrop.db"},
		{"sqlite://:memory:", DialectSQLite, ":memory:"},
		{"file:ledger.db?cache=shared", DialectSQLite, "file:ledger.db?cache=shared"},
		{"  ledger.db ", DialectSQLite, "ledger.db"},
	}
	for _, tc := range cases {
		got, err := ParseTarget(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.dialect, got.Dialect, tc.raw)
		assert.Equal(t, tc.dsn, got.DSN, tc.raw)
	}

	for _, bad := range []string{"", "mysql://localhost/db", "redis://localhost"} {
		_, err := ParseTarget(bad)
		assert.Error(t, err, bad)
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db?mode=rwc"))
	assert.Equal(t, "a.db?_pragma=journal_mode(WAL)", sqliteDSN("a.db?_pragma=journal_mode(WAL)"))
}

func TestOpenAndMigrate(t *testing.T) {
	settings := &config.Settings{
		Env:         "development",
		DatabaseURL: "sqlite:///" + filepath.Join(t.TempDir(), "ledger.db"),
	}
	db, err := Open(settings)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	require.NoError(t, Migrate(db))
	// Migrating twice is harmless.
	require.NoError(t, Migrate(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.CompletedTask{}, "idx_account_task"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
