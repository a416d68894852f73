// Package database opens the gorm connection for the configured storage target.
package database

import (
	"fmt"
	"strings"
	"time"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Target is a parsed DATABASE_URL.
type Target struct {
	Dialect Dialect
	DSN     string
}

// ParseTarget understands postgres URLs/keyword DSNs and SQLAlchemy-style sqlite URLs:
// sqlite:///relative.db, sqlite:////abs/path.db, sqlite://:memory:.
func ParseTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Target{}, fmt.Errorf("empty DATABASE_URL")
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"), strings.Contains(raw, "host="):
		return Target{Dialect: DialectPostgres, DSN: raw}, nil
	case strings.HasPrefix(raw, "sqlite:///"):
		return Target{Dialect: DialectSQLite, DSN: strings.TrimPrefix(raw, "sqlite:///")}, nil
	case strings.HasPrefix(raw, "sqlite://"):
		return Target{Dialect: DialectSQLite, DSN: strings.TrimPrefix(raw, "sqlite://")}, nil
	case strings.HasPrefix(raw, "file:"), strings.HasSuffix(raw, ".db"):
		return Target{Dialect: DialectSQLite, DSN: raw}, nil
	}
	return Target{}, fmt.Errorf("unsupported DATABASE_URL %q (want postgres:// or sqlite://)", raw)
}

// Open connects, configures the pool and bridges gorm's logger onto zerolog.
func Open(settings *config.Settings) (*gorm.DB, error) {
	target, err := ParseTarget(settings.DatabaseURL)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if settings.IsDevelopment() {
		level = logger.Info
	}
	gormLog := log.With().Str("component", "gorm").Logger()
	cfg := &gorm.Config{
		Logger: logger.New(&gormLog, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
	}

	var db *gorm.DB
	switch target.Dialect {
	case DialectPostgres:
		db, err = gorm.Open(postgres.Open(target.DSN), cfg)
	case DialectSQLite:
		db, err = gorm.Open(sqlite.Open(sqliteDSN(target.DSN)), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target.Dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if target.Dialect == DialectSQLite {
		// One connection serializes every transaction; SQLite has no row locks.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info().Str("dialect", string(target.Dialect)).Msg("✅ Database connected")
	return db, nil
}

// Migrate creates or updates every ledger table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
