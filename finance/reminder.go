package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// REMINDER SCHEDULING - Fixed pre-due-date offsets plus overdue detection
// =============================================================================
// Reminders are derived at document creation: due date minus 45, 30, and
// 15 days, keeping only target dates that aren't already in the past.
// Marking a reminder sent is one-way and records actor + timestamp.
// Overdue reminders are never produced implicitly by document writes;
// DetectOverdue is an explicit pass the orchestrating caller runs.

var reminderOffsets = []struct {
	Kind ReminderKind
	Days int
}{
	{Reminder45Days, 45},
	{Reminder30Days, 30},
	{Reminder15Days, 15},
}

// DeriveReminders computes the reminder rows for a due date, keeping only
// offsets whose target date is on or after asOf. Pure.
func DeriveReminders(kind DocumentKind, parentID string, dueDate, asOf Date) []Reminder {
	var out []Reminder
	for _, off := range reminderOffsets {
		target := dueDate.AddDays(-off.Days)
		if target.Before(asOf) {
			continue
		}
		out = append(out, Reminder{
			ID:         uuid.NewString(),
			ParentKind: kind,
			ParentID:   parentID,
			Kind:       off.Kind,
			TargetDate: target,
		})
	}
	return out
}

// ReminderScheduler persists derived reminders and the sent transition.
type ReminderScheduler struct {
	Store Store
	Clock Clock
}

func NewReminderScheduler(store Store, clock Clock) *ReminderScheduler {
	return &ReminderScheduler{Store: store, Clock: clock}
}

// ScheduleFor derives and persists reminders for a newly created document.
// Re-running for the same parent is safe: the (parent, kind) uniqueness
// constraint swallows duplicates instead of creating second copies.
func (s *ReminderScheduler) ScheduleFor(ctx context.Context, kind DocumentKind, parentID string, dueDate Date) ([]Reminder, error) {
	derived := DeriveReminders(kind, parentID, dueDate, s.Clock.Today())

	var created []Reminder
	for _, r := range derived {
		err := s.Store.InsertReminder(ctx, r)
		if errors.Is(err, ErrDuplicateReminder) {
			continue
		}
		if err != nil {
			return created, err
		}
		created = append(created, r)
	}
	return created, nil
}

// MarkSent records the one-way sent transition with actor and timestamp.
// A second attempt returns ErrReminderAlreadySent.
func (s *ReminderScheduler) MarkSent(ctx context.Context, reminderID, sentBy string) (*Reminder, error) {
	r, err := s.Store.Reminder(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReminderNotFound
	}
	if r.Sent {
		return nil, ErrReminderAlreadySent
	}

	now := time.Now().UTC()
	if err := s.Store.SaveReminderSent(ctx, reminderID, sentBy, now); err != nil {
		return nil, err
	}
	r.Sent = true
	r.SentAt = &now
	r.SentBy = sentBy
	return r, nil
}

// DetectOverdue creates an "overdue" reminder for every open payable and
// receivable whose due date has passed and that doesn't have one yet.
// Idempotent: re-runs create nothing new. Returns how many were created.
func (s *ReminderScheduler) DetectOverdue(ctx context.Context) (int, error) {
	today := s.Clock.Today()
	created := 0

	payables, err := s.Store.Payables(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range payables {
		if p.Status == PayablePaid || !p.DueDate.Before(today) {
			continue
		}
		n, err := s.createOverdue(ctx, DocPayable, p.ID, p.DueDate)
		if err != nil {
			return created, err
		}
		created += n
	}

	receivables, err := s.Store.Receivables(ctx)
	if err != nil {
		return created, err
	}
	for _, r := range receivables {
		if r.Status == ReceivableCompleted || !r.DueDate.Before(today) {
			continue
		}
		n, err := s.createOverdue(ctx, DocReceivable, r.ID, r.DueDate)
		if err != nil {
			return created, err
		}
		created += n
	}

	return created, nil
}

func (s *ReminderScheduler) createOverdue(ctx context.Context, kind DocumentKind, parentID string, dueDate Date) (int, error) {
	err := s.Store.InsertReminder(ctx, Reminder{
		ID:         uuid.NewString(),
		ParentKind: kind,
		ParentID:   parentID,
		Kind:       ReminderOverdue,
		TargetDate: dueDate,
	})
	if errors.Is(err, ErrDuplicateReminder) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}
