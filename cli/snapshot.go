package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/services"
	"airdrop-rewards-system/workers"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().String("dir", "", "Write to this directory instead of R2 / SNAPSHOT_DIR")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export the wallet allocation snapshot once",
	Long: `Export every account with a submitted wallet and its token balance as a
JSON document. Uploads to R2 when CLOUDFLARE_ACCOUNT_ID and R2_BUCKET_NAME are set, otherwise writes under
SNAPSHOT_DIR.`,
	RunE: runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		settings.SnapshotDir = dir
		settings.R2 = config.R2{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	sink, err := workers.OpenSnapshotSink(ctx, settings)
	if err != nil {
		return fmt.Errorf("open snapshot sink: %w", err)
	}
	svc := services.New(db, settings, clockwork.NewRealClock())
	location, snap, err := svc.Snapshots.Export(ctx, sink)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d wallets, %d tokens -> %s\n", len(snap.Entries), snap.TotalTokens, location)
	return nil
}
