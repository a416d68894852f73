package workers

import (
	"airdrop-rewards-system/services"

	"github.com/rs/zerolog/log"
)

// StreakSweeper resets displayed streaks that were broken by a missed day.
type StreakSweeper struct {
	CheckIns *services.CheckInService
}

func NewStreakSweeper(checkIns *services.CheckInService) *StreakSweeper {
	return &StreakSweeper{CheckIns: checkIns}
}

// Run is one sweep. Failures are logged and retried on the next tick.
func (w *StreakSweeper) Run() {
	n, err := w.CheckIns.SweepBrokenStreaks()
	if err != nil {
		log.Error().Err(err).Msg("❌ [StreakSweeper] sweep failed")
		return
	}
	log.Debug().Int64("reset", n).Msg("[StreakSweeper] sweep done")
}
