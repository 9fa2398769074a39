/*
scheduler.go - Automated maintenance scheduler

PURPOSE:
  Periodically runs the two maintenance passes the engine deliberately
  keeps out of the write path:
  - DetectOverdue: creates overdue reminders for payables/receivables
    whose due date has passed
  - SyncAll: rebuilds the calendar projection from ledger state

DESIGN:
  - cron-driven; schedules are standard 5-field cron expressions
  - Each pass is independent: a failure is logged and the other passes
    still run
  - Both passes are idempotent, so overlapping manual triggers via the
    API are harmless

USAGE:
  scheduler := NewMaintenanceScheduler(handler, logger)
  scheduler.Start("0 6 * * *")
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: DetectOverdue and SyncCalendar endpoints (manual runs)
  - finance/reminder.go: overdue detection pass
  - finance/mirror.go: calendar rebuild
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MaintenanceScheduler runs the overdue and calendar passes on a schedule.
type MaintenanceScheduler struct {
	Handler *Handler
	Log     *logrus.Logger

	cron *cron.Cron
}

// NewMaintenanceScheduler creates a new scheduler.
func NewMaintenanceScheduler(handler *Handler, log *logrus.Logger) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		Handler: handler,
		Log:     log,
		cron:    cron.New(),
	}
}

// Start registers the maintenance job on the given cron schedule and
// begins running it.
func (s *MaintenanceScheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.Log.WithField("schedule", schedule).Info("maintenance scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *MaintenanceScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.Log.Info("maintenance scheduler stopped")
}

func (s *MaintenanceScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, err := s.Handler.Scheduler.DetectOverdue(ctx)
	if err != nil {
		s.Log.WithError(err).Error("overdue detection pass failed")
	} else if created > 0 {
		s.Log.WithField("reminders_created", created).Info("overdue reminders created")
	}

	events, err := s.Handler.Mirror.SyncAll(ctx)
	if err != nil {
		s.Log.WithError(err).Error("calendar sync failed")
		return
	}
	s.Log.WithField("events_created", events).Debug("calendar rebuilt")
}
