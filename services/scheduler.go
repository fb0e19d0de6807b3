// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"upvote-club/config"

	"github.com/go-co-op/gocron/v2"
)

// StartSweepScheduler registers every sweep as a singleton job: a run that is
// still going when its next tick arrives is rescheduled, never overlapped.
func StartSweepScheduler(ctx context.Context, sweeper *Sweeper, cfg *config.Config) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	jobs := []struct {
		name     string
		interval time.Duration
	}{
		{SweepForcedCompletion, cfg.ForcedCompletionInterval},
		{SweepStale, cfg.StaleSweepInterval},
		{SweepStaleDedicated, cfg.StaleSweepInterval},
		{SweepReports, cfg.ReportSweepInterval},
		{SweepDuplicates, cfg.DuplicateSweepInterval},
		{SweepNotifyBackfill, cfg.NotifyBackfillInterval},
	}

	for _, j := range jobs {
		name := j.name
		_, err := sched.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(func() {
				if _, err := sweeper.Run(ctx, name); err != nil {
					log.Printf("[SCHEDULER] ❌ %s: %v", name, err)
				}
			}),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
		log.Printf("[SCHEDULER] Registered %s every %v", name, j.interval)
	}

	sched.Start()
	return sched, nil
}
