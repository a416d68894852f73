package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"airdrop-rewards-system/bot"
	"airdrop-rewards-system/services"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(botCmd)
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot (long polling)",
	Long: `Run the Telegram bot front-end. It talks to the same database as the
HTTP API, so both can run side by side. Requires BOT_TOKEN.`,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	svc := services.New(db, settings, clockwork.NewRealClock())
	return bot.Run(ctx, svc, settings)
}
