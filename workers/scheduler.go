package workers

import (
	"fmt"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	StreakSweeperJob    = "streak-sweeper"
	SnapshotExporterJob = "snapshot-exporter"
)

// Scheduler runs the periodic ledger jobs. Cron expressions are evaluated in
// the check-in time zone so "midnight" means the same day boundary as CheckIn.
type Scheduler struct {
	sched gocron.Scheduler
}

// StartScheduler registers the streak sweeper and, when SNAPSHOT_CRON is set,
// the snapshot exporter, then starts the scheduler.
func StartScheduler(svc *services.Services, settings *config.Settings, clock clockwork.Clock, sink services.SnapshotSink) (*Scheduler, error) {
	opts := []gocron.SchedulerOption{
		gocron.WithLocation(settings.CheckInLocation),
		gocron.WithLogger(gocronLogger{}),
	}
	if clock != nil {
		opts = append(opts, gocron.WithClock(clock))
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	if _, err := sched.NewJob(
		gocron.CronJob(settings.StreakSweepCron, false),
		gocron.NewTask(NewStreakSweeper(svc.CheckIns).Run),
		gocron.WithName(StreakSweeperJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		sched.Shutdown()
		return nil, fmt.Errorf("schedule %s (%q): %w", StreakSweeperJob, settings.StreakSweepCron, err)
	}

	if settings.SnapshotCron != "" {
		if sink == nil {
			sched.Shutdown()
			return nil, fmt.Errorf("SNAPSHOT_CRON is set but no snapshot sink is configured")
		}
		if _, err := sched.NewJob(
			gocron.CronJob(settings.SnapshotCron, false),
			gocron.NewTask(NewSnapshotExporter(svc.Snapshots, sink).Run),
			gocron.WithName(SnapshotExporterJob),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			sched.Shutdown()
			return nil, fmt.Errorf("schedule %s (%q): %w", SnapshotExporterJob, settings.SnapshotCron, err)
		}
	}

	sched.Start()
	for _, j := range sched.Jobs() {
		log.Info().Str("job", j.Name()).Msg("⏰ [Scheduler] job registered")
	}
	return &Scheduler{sched: sched}, nil
}

// Jobs lists the registered jobs.
func (s *Scheduler) Jobs() []gocron.Job {
	return s.sched.Jobs()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// gocronLogger routes scheduler diagnostics through zerolog.
type gocronLogger struct{}

func (gocronLogger) Debug(msg string, args ...any) { log.Debug().Fields(args).Msg(msg) }
func (gocronLogger) Info(msg string, args ...any)  { log.Info().Fields(args).Msg(msg) }
func (gocronLogger) Warn(msg string, args ...any)  { log.Warn().Fields(args).Msg(msg) }
func (gocronLogger) Error(msg string, args ...any) { log.Error().Fields(args).Msg(msg) }
