/*
store.go - Persistence interfaces for the obligation engine

PURPOSE:
  Defines the boundary between the engine and the database. The engine
  only ever sees these interfaces; SQLite and in-memory implementations
  live in store/sqlite and finance/store.

CONTRACTS:
  - Payments and settlements are append-only: no update, no delete.
  - Insert* calls enforcing a unique document number return
    ErrDuplicateNumber on collision; the ledger's allocation retry
    depends on this.
  - InsertReminder enforces at most one reminder per (parent, kind) and
    returns ErrDuplicateReminder otherwise.
  - LastNumber returns the highest document number issued for a kind in
    a calendar year, or "" when none exists.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production store with real unique indexes
  - finance/store/memory.go: in-memory store for tests and dev
*/
package finance

import (
	"context"
	"time"
)

// NumberIndex resolves the last issued document number per (kind, year).
// This is the read half of sequence allocation; the write half is the
// unique constraint enforced by Insert* calls.
type NumberIndex interface {
	LastNumber(ctx context.Context, kind DocumentKind, year int) (string, error)
}

// ObligationStore persists obligations and their payments.
type ObligationStore interface {
	InsertObligation(ctx context.Context, ob Obligation) error
	Obligation(ctx context.Context, id string) (*Obligation, error)
	Obligations(ctx context.Context) ([]Obligation, error)
	UpdateObligationStatus(ctx context.Context, id string, status ObligationStatus) error
	SetObligationActive(ctx context.Context, id string, active bool) error

	// InsertPayment appends a payment. Payments are immutable.
	InsertPayment(ctx context.Context, p Payment) error
	// Payments returns all payments for an obligation, oldest first.
	Payments(ctx context.Context, obligationID string) ([]Payment, error)
}

// SettlementStore persists payables, receivables, and their settlements.
type SettlementStore interface {
	InsertPayable(ctx context.Context, p Payable) error
	Payable(ctx context.Context, id string) (*Payable, error)
	Payables(ctx context.Context) ([]Payable, error)
	UpdatePayableStatus(ctx context.Context, id string, status PayableStatus) error

	InsertReceivable(ctx context.Context, r Receivable) error
	Receivable(ctx context.Context, id string) (*Receivable, error)
	Receivables(ctx context.Context) ([]Receivable, error)
	UpdateReceivableStatus(ctx context.Context, id string, status ReceivableStatus) error

	// InsertSettlement appends a settlement. Settlements are immutable.
	InsertSettlement(ctx context.Context, s Settlement) error
	Settlements(ctx context.Context, kind DocumentKind, parentID string) ([]Settlement, error)
}

// ReminderStore persists derived reminders.
type ReminderStore interface {
	InsertReminder(ctx context.Context, r Reminder) error
	Reminder(ctx context.Context, id string) (*Reminder, error)
	Reminders(ctx context.Context, kind DocumentKind, parentID string) ([]Reminder, error)
	UnsentReminders(ctx context.Context) ([]Reminder, error)
	// SaveReminderSent records the one-way sent transition.
	SaveReminderSent(ctx context.Context, id, sentBy string, sentAt time.Time) error
}

// EventStore persists the calendar mirror.
type EventStore interface {
	InsertEvent(ctx context.Context, e CalendarEvent) error
	Events(ctx context.Context) ([]CalendarEvent, error)
	// DeleteEventsByType removes every projection row of a synced type.
	// Sync rebuilds are delete-all + recreate, never incremental.
	DeleteEventsByType(ctx context.Context, t EventType) error
}

// Store is the full persistence surface the engine and API wire against.
type Store interface {
	NumberIndex
	ObligationStore
	SettlementStore
	ReminderStore
	EventStore
}
