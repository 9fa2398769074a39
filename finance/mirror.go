/*
mirror.go - Calendar projection of ledger entities

PURPOSE:
  Maintains a read-mostly calendar view: one event per qualifying
  receivable, payable, obligation, and unsent reminder. Sync is a full
  rebuild (delete every row of the type, re-derive from source rows), so
  it is idempotent and O(n) over qualifying sources. It is an explicit
  operation the orchestrating caller invokes after writes or on a
  schedule - ledger writes never trigger it implicitly.

  Custom events are hand-created rows; sync never touches them.

COST NOTE:
  The delete+recreate rebuild should not run inside the same transaction
  as a high-volume bulk write.
*/
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CalendarMirror regenerates calendar events from ledger state.
type CalendarMirror struct {
	Store Store
}

func NewCalendarMirror(store Store) *CalendarMirror {
	return &CalendarMirror{Store: store}
}

// Sync rebuilds all events of one type and returns how many rows were
// written. Syncing EventCustom is a no-op.
func (m *CalendarMirror) Sync(ctx context.Context, t EventType) (int, error) {
	switch t {
	case EventReceivable:
		return m.syncReceivables(ctx)
	case EventPayable:
		return m.syncPayables(ctx)
	case EventObligation:
		return m.syncObligations(ctx)
	case EventReminder:
		return m.syncReminders(ctx)
	case EventCustom:
		return 0, nil
	default:
		return 0, validationErr("event_type", "unknown event type")
	}
}

// SyncAll rebuilds every synced event type.
func (m *CalendarMirror) SyncAll(ctx context.Context) (int, error) {
	total := 0
	for _, t := range []EventType{EventReceivable, EventPayable, EventObligation, EventReminder} {
		n, err := m.Sync(ctx, t)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *CalendarMirror) syncReceivables(ctx context.Context) (int, error) {
	if err := m.Store.DeleteEventsByType(ctx, EventReceivable); err != nil {
		return 0, err
	}

	receivables, err := m.Store.Receivables(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range receivables {
		if r.Status != ReceivableActive && r.Status != ReceivableOverdue {
			continue
		}
		err := m.Store.InsertEvent(ctx, CalendarEvent{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf("Due: %s - %s", r.Client, r.Amount.StringFixed(2)),
			Description: fmt.Sprintf("Receivable due from %s", r.Client),
			Type:        EventReceivable,
			StartDate:   r.DueDate,
			AllDay:      true,
			SourceID:    r.ID,
			CreatedBy:   r.CreatedBy,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (m *CalendarMirror) syncPayables(ctx context.Context) (int, error) {
	if err := m.Store.DeleteEventsByType(ctx, EventPayable); err != nil {
		return 0, err
	}

	payables, err := m.Store.Payables(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range payables {
		if p.Status != PayableScheduled && p.Status != PayableInProcess {
			continue
		}
		err := m.Store.InsertEvent(ctx, CalendarEvent{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf("Pay: %s - %s", p.Supplier, p.Amount.StringFixed(2)),
			Description: fmt.Sprintf("Payment due to %s", p.Supplier),
			Type:        EventPayable,
			StartDate:   p.DueDate,
			AllDay:      true,
			SourceID:    p.ID,
			CreatedBy:   p.CreatedBy,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (m *CalendarMirror) syncObligations(ctx context.Context) (int, error) {
	if err := m.Store.DeleteEventsByType(ctx, EventObligation); err != nil {
		return 0, err
	}

	obligations, err := m.Store.Obligations(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, ob := range obligations {
		if !ob.Active {
			continue
		}
		err := m.Store.InsertEvent(ctx, CalendarEvent{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf("Obligation: %s - %s", ob.Bank, ob.Principal.StringFixed(2)),
			Description: fmt.Sprintf("Bank obligation with %s", ob.Bank),
			Type:        EventObligation,
			StartDate:   ob.EndDate,
			AllDay:      true,
			SourceID:    ob.ID,
			CreatedBy:   ob.CreatedBy,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (m *CalendarMirror) syncReminders(ctx context.Context) (int, error) {
	if err := m.Store.DeleteEventsByType(ctx, EventReminder); err != nil {
		return 0, err
	}

	reminders, err := m.Store.UnsentReminders(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range reminders {
		err := m.Store.InsertEvent(ctx, CalendarEvent{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf("Reminder: %s %s", r.ParentKind, r.Kind),
			Description: fmt.Sprintf("Payment reminder (%s) for %s %s", r.Kind, r.ParentKind, r.ParentID),
			Type:        EventReminder,
			StartDate:   r.TargetDate,
			AllDay:      true,
			SourceID:    r.ID,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
