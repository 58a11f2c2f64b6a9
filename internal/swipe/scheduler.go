package swipe

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler runs the daily maintenance jobs for the swipe module. The swipe
// quota itself resets lazily and needs no job; super-like balances are topped
// up here once per UTC day.
type Scheduler struct {
	service Service
	log     logrus.FieldLogger
}

func NewScheduler(service Service, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{service: service, log: log}
}

func (s *Scheduler) Start(ctx context.Context) {
	// Replenish super likes at UTC midnight, matching the quota day boundary.
	go s.runDaily(ctx, 0, 0, s.service.ReplenishSuperLikes)
}

func (s *Scheduler) runDaily(ctx context.Context, hour, minute int, task func(context.Context) error) {
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
		if !now.Before(next) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			if err := task(ctx); err != nil {
				s.log.WithError(err).Error("scheduled task failed")
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
