// Package cli holds the cobra commands behind the airdrop binary.
package cli

import (
	"fmt"
	"os"
	"time"

	"airdrop-rewards-system/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Airdrop rewards ledger: HTTP API, Telegram bot and background jobs",
	Long: `Airdrop rewards ledger for a community token campaign.
Accounts earn tokens for registering, completing social tasks, inviting
friends and checking in daily. Run the API with 'serve' and the Telegram
front-end with 'bot'; both share one database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads configuration and configures the global logger from it.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupLogging(settings)
	return settings, nil
}

func setupLogging(settings *config.Settings) {
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if settings.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
