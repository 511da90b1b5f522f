/*
scheduler.go - Automated negative-income expiry scheduler

PURPOSE:
  Periodically expires carry-forward negative income records whose
  compensation window has passed. A record from origin year N is
  compensable through year N+4; from N+5 on it is dead weight and is
  flipped to expired so it can never be applied again.

DESIGN:
  - robfig/cron drives the schedule (default: daily at 02:00)
  - Each run expires against the current year; the store query is
    idempotent, so overlapping or repeated runs are harmless
  - A manual trigger endpoint exists for backfills (see handlers.go)

CONFIGURATION:
  - Schedule: cron expression (default "0 2 * * *")

USAGE:
  scheduler := NewExpiryScheduler(store, logger)
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ExpireNegativeIncome endpoint (manual trigger)
  - store/sqlite: ExpireNegativeIncome query
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/earnmomey786-cloud/crm210/store/sqlite"
)

// DefaultExpirySchedule runs the expiry pass every night at 02:00.
const DefaultExpirySchedule = "0 2 * * *"

// ExpiryScheduler expires stale negative-income records on a cron schedule.
type ExpiryScheduler struct {
	Store    *sqlite.Store
	Schedule string

	log  *logrus.Logger
	cron *cron.Cron
}

// NewExpiryScheduler creates a scheduler with the default schedule.
func NewExpiryScheduler(store *sqlite.Store, log *logrus.Logger) *ExpiryScheduler {
	return &ExpiryScheduler{
		Store:    store,
		Schedule: DefaultExpirySchedule,
		log:      log,
	}
}

// Start registers the cron job and begins running it. An invalid schedule
// expression fails here, before anything is scheduled.
func (s *ExpiryScheduler) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.Schedule, s.RunNow); err != nil {
		return err
	}
	s.cron = c
	c.Start()

	s.log.WithField("schedule", s.Schedule).Info("negative income expiry scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *ExpiryScheduler) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("negative income expiry scheduler stopped")
}

// RunNow performs one expiry pass against the current year.
func (s *ExpiryScheduler) RunNow() {
	year := time.Now().UTC().Year()

	expired, err := s.Store.ExpireNegativeIncome(context.Background(), year)
	if err != nil {
		s.log.WithError(err).Error("negative income expiry run failed")
		return
	}
	if expired > 0 {
		s.log.WithFields(logrus.Fields{
			"year":    year,
			"expired": expired,
		}).Info("expired negative income records")
	}
}
