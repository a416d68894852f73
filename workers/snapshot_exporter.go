package workers

import (
	"context"
	"time"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/services"
	"airdrop-rewards-system/utils"

	"github.com/rs/zerolog/log"
)

const exportTimeout = 2 * time.Minute

// SnapshotExporter uploads the wallet allocation on a schedule.
type SnapshotExporter struct {
	Snapshots *services.SnapshotService
	Sink      services.SnapshotSink
}

func NewSnapshotExporter(snapshots *services.SnapshotService, sink services.SnapshotSink) *SnapshotExporter {
	return &SnapshotExporter{Snapshots: snapshots, Sink: sink}
}

func (w *SnapshotExporter) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	if _, _, err := w.Snapshots.Export(ctx, w.Sink); err != nil {
		log.Error().Err(err).Msg("❌ [SnapshotExporter] export failed")
	}
}

// OpenSnapshotSink prefers R2 and falls back to SNAPSHOT_DIR on local disk.
func OpenSnapshotSink(ctx context.Context, settings *config.Settings) (services.SnapshotSink, error) {
	if settings.R2.Enabled() {
		sink, err := utils.NewR2Sink(ctx, settings.R2)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", settings.R2.Bucket).Msg("🪣 Snapshots go to R2")
		return sink, nil
	}
	sink, err := utils.NewLocalSink(settings.SnapshotDir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", settings.SnapshotDir).Msg("📁 Snapshots go to local disk")
	return sink, nil
}
