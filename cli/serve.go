package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airdrop-rewards-system/handlers"
	"airdrop-rewards-system/services"
	"airdrop-rewards-system/workers"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-scheduler", false, "Do not run the streak sweeper and snapshot jobs in this process")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	noScheduler, _ := cmd.Flags().GetBool("no-scheduler")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	svc := services.New(db, settings, clockwork.NewRealClock())

	if !noScheduler {
		var sink services.SnapshotSink
		if settings.SnapshotCron != "" {
			if sink, err = workers.OpenSnapshotSink(ctx, settings); err != nil {
				return fmt.Errorf("open snapshot sink: %w", err)
			}
		}
		sched, err := workers.StartScheduler(svc, settings, clockwork.NewRealClock(), sink)
		if err != nil {
			return err
		}
		defer sched.Shutdown()
	}

	app := handlers.NewApp(svc, settings, handlers.Options{Done: ctx.Done()})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + settings.Port)
	}()
	log.Info().Str("port", settings.Port).Str("campaign", settings.CampaignName).Msg("✅ Server running")

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Err(err).Msg("⚠️  Shutdown did not complete cleanly")
	}
	return nil
}
