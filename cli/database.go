package cli

import (
	"fmt"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/database"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// openDatabase connects and brings the schema up to date.
func openDatabase(settings *config.Settings) (*gorm.DB, error) {
	target, err := database.ParseTarget(settings.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(settings)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		closeDatabase(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info().Str("dialect", string(target.Dialect)).Msg("🗄️  Database ready")
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("⚠️  Closing database failed")
	}
}
