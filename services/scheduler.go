package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartLifecycleScheduler runs AdvanceSchedule every interval until the
// returned scheduler is shut down.
func (s *TournamentService) StartLifecycleScheduler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			started, completed, err := s.AdvanceSchedule(ctx, time.Now())
			if err != nil {
				log.Printf("[SCHEDULER] DB error: %v", err)
				return
			}
			if started > 0 || completed > 0 {
				log.Printf("[SCHEDULER] ✅ %d tournaments started, %d completed", started, completed)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	log.Printf("[SCHEDULER] Tournament lifecycle job every %s", interval)
	return sched, nil
}
