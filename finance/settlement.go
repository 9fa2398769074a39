/*
settlement.go - Payable/receivable transactions and status decisions

PURPOSE:
  Applies settlement transactions (deposits, partial/full payments,
  returns, adjustments) to payables and receivables. A full payment
  transitions the parent to its terminal status. The transition is an
  explicit, separately testable decision (DecideTransition) that the
  write path applies after the settlement persists - not a side effect
  buried inside the save.

STATE MACHINE:
  payable:    scheduled/in_process --(full_payment)--> paid
  receivable: active/pending       --(full_payment)--> completed
  Partial payments leave status unchanged. Nothing here transitions to
  "overdue"; overdue is detected at report/reminder time, not stored by
  settlement writes.
*/
package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusTransition is the decision a settlement carries for its parent.
type StatusTransition struct {
	ParentKind DocumentKind
	ParentID   string
	// Exactly one of the two is set, matching ParentKind.
	PayableStatus    PayableStatus
	ReceivableStatus ReceivableStatus
}

// DecideTransition returns the parent status transition a settlement of
// this type implies, or nil when the status is unchanged. Pure.
func DecideTransition(kind DocumentKind, parentID string, t SettlementType) *StatusTransition {
	if t != SettlementFullPayment {
		return nil
	}
	switch kind {
	case DocPayable:
		return &StatusTransition{ParentKind: kind, ParentID: parentID, PayableStatus: PayablePaid}
	case DocReceivable:
		return &StatusTransition{ParentKind: kind, ParentID: parentID, ReceivableStatus: ReceivableCompleted}
	default:
		return nil
	}
}

// RecordSettlement validates and appends a settlement, then applies the
// status transition it implies. The applied transition (nil for partial
// payments) is returned alongside the settlement so callers can audit it.
func (l *Ledger) RecordSettlement(ctx context.Context, s Settlement) (*Settlement, *StatusTransition, error) {
	if !s.Amount.IsPositive() {
		return nil, nil, validationErr("amount", "must be greater than zero")
	}

	switch s.ParentKind {
	case DocPayable:
		p, err := l.Store.Payable(ctx, s.ParentID)
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			return nil, nil, ErrPayableNotFound
		}
	case DocReceivable:
		r, err := l.Store.Receivable(ctx, s.ParentID)
		if err != nil {
			return nil, nil, err
		}
		if r == nil {
			return nil, nil, ErrReceivableNotFound
		}
	default:
		return nil, nil, validationErr("parent_kind", "must be payable or receivable")
	}

	if s.Date.IsZero() {
		s.Date = l.Clock.Today()
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()

	if err := l.Store.InsertSettlement(ctx, s); err != nil {
		return nil, nil, err
	}

	transition := DecideTransition(s.ParentKind, s.ParentID, s.Type)
	if transition != nil {
		if err := l.applyTransition(ctx, transition); err != nil {
			return nil, nil, err
		}
	}
	return &s, transition, nil
}

func (l *Ledger) applyTransition(ctx context.Context, t *StatusTransition) error {
	switch t.ParentKind {
	case DocPayable:
		return l.Store.UpdatePayableStatus(ctx, t.ParentID, t.PayableStatus)
	case DocReceivable:
		return l.Store.UpdateReceivableStatus(ctx, t.ParentID, t.ReceivableStatus)
	}
	return nil
}
