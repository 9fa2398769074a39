/*
ledger.go - Obligation ledger: document creation, payment application,
derived aggregates

PURPOSE:
  The Ledger owns obligation, payable, and receivable records. It assigns
  document numbers on creation, validates and appends payments, and
  computes the derived aggregates (remaining balance, progress, next due
  date) by replaying the payment history. There is no stored balance
  column that can drift out of sync.

NUMBER ALLOCATION:
  Creation allocates the next document number from the maximum already
  issued for (kind, year). Two concurrent creations can read the same
  maximum; the store's unique constraint rejects the loser and the
  ledger retries once with a freshly read maximum. A second collision
  surfaces as NumberConflictError - at that point something is
  persistently wrong, not racing.

PAYMENT INVARIANTS:
  - principal_portion + interest_portion == amount, exact decimal
    equality; violations are rejected before any write
  - payments are append-only; corrections go through adjustments on the
    surrounding documents, never edits

DERIVED VALUES:
  - remaining balance = principal - sum(payment amounts); NOT clamped, an
    overpayment surfaces as a negative remainder for reports to flag
  - progress = min(100, paid/principal*100); zero principal yields 0
  - next due date = start date while unpaid, else one interval after the
    last payment, clamped to the end date; nil outside the active window

SEE ALSO:
  - sequence.go:   number formatting and max-scan increment
  - settlement.go: payable/receivable transactions and status decisions
  - schedule.go:   projection invoked via ProjectSchedule
*/
package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger coordinates document creation and payment application.
type Ledger struct {
	Store   Store
	Clock   Clock
	Numbers *SequenceAllocator
}

func NewLedger(store Store, clock Clock) *Ledger {
	return &Ledger{
		Store:   store,
		Clock:   clock,
		Numbers: NewSequenceAllocator(store),
	}
}

// =============================================================================
// DOCUMENT CREATION
// =============================================================================

// CreateObligation validates, numbers, and persists a new obligation.
func (l *Ledger) CreateObligation(ctx context.Context, ob Obligation) (*Obligation, error) {
	if !ob.Principal.IsPositive() {
		return nil, validationErr("principal_amount", "must be greater than zero")
	}
	if ob.AnnualRate.IsNegative() || ob.AnnualRate.GreaterThan(hundred) {
		return nil, validationErr("interest_rate", "must be between 0 and 100")
	}
	if !ob.Frequency.Valid() {
		return nil, validationErr("payment_frequency", "unknown frequency")
	}
	if !ob.PaymentAmount.IsPositive() {
		return nil, validationErr("payment_amount", "must be greater than zero")
	}
	if ob.StartDate.IsZero() || ob.EndDate.IsZero() {
		return nil, validationErr("start_date", "start and end dates are required")
	}
	if !ob.EndDate.After(ob.StartDate) {
		return nil, validationErr("end_date", "must be after start date")
	}

	if ob.ID == "" {
		ob.ID = uuid.NewString()
	}
	if ob.Status == "" {
		ob.Status = ObligationCreated
	}
	if ob.TotalPayments <= 0 {
		ob.TotalPayments = 1
	}
	ob.Active = true
	ob.CreatedAt = time.Now().UTC()

	number, err := l.insertNumbered(ctx, DocObligation, func(number string) error {
		ob.Number = number
		return l.Store.InsertObligation(ctx, ob)
	})
	if err != nil {
		return nil, err
	}
	ob.Number = number
	return &ob, nil
}

// CreatePayable validates, numbers, and persists a new payable.
func (l *Ledger) CreatePayable(ctx context.Context, p Payable) (*Payable, error) {
	if !p.Amount.IsPositive() {
		return nil, validationErr("amount", "must be greater than zero")
	}
	if p.TransactionDate.IsZero() {
		p.TransactionDate = l.Clock.Today()
	}
	if p.DueDate.IsZero() || !p.DueDate.After(p.TransactionDate) {
		return nil, validationErr("due_date", "must be after transaction date")
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PayableScheduled
	}
	p.CreatedAt = time.Now().UTC()

	number, err := l.insertNumbered(ctx, DocPayable, func(number string) error {
		p.Number = number
		return l.Store.InsertPayable(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	p.Number = number
	return &p, nil
}

// CreateReceivable validates, numbers, and persists a new receivable.
func (l *Ledger) CreateReceivable(ctx context.Context, r Receivable) (*Receivable, error) {
	if !r.Amount.IsPositive() {
		return nil, validationErr("amount", "must be greater than zero")
	}
	if r.TransactionDate.IsZero() {
		r.TransactionDate = l.Clock.Today()
	}
	if r.DueDate.IsZero() || !r.DueDate.After(r.TransactionDate) {
		return nil, validationErr("due_date", "must be after transaction date")
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ReceivableActive
	}
	r.CreatedAt = time.Now().UTC()

	number, err := l.insertNumbered(ctx, DocReceivable, func(number string) error {
		r.Number = number
		return l.Store.InsertReceivable(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	r.Number = number
	return &r, nil
}

// insertNumbered allocates a document number and runs the insert,
// retrying exactly once on a number collision. The fresh read on retry
// picks up whatever the concurrent writer persisted.
func (l *Ledger) insertNumbered(ctx context.Context, kind DocumentKind, insert func(number string) error) (string, error) {
	year := l.Clock.Today().Year()

	var number string
	for attempt := 0; attempt < 2; attempt++ {
		n, err := l.Numbers.Next(ctx, kind, year)
		if err != nil {
			return "", err
		}
		number = n

		err = insert(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return "", err
		}
	}
	return "", &NumberConflictError{Kind: kind, Number: number}
}

// =============================================================================
// PAYMENT APPLICATION
// =============================================================================

// RecordPayment validates and appends a payment to an obligation.
// Nothing is written when validation fails.
func (l *Ledger) RecordPayment(ctx context.Context, p Payment) (*Payment, error) {
	if p.ObligationID == "" {
		return nil, validationErr("obligation_id", "is required")
	}
	ob, err := l.Store.Obligation(ctx, p.ObligationID)
	if err != nil {
		return nil, err
	}
	if ob == nil {
		return nil, ErrObligationNotFound
	}

	if !p.Amount.IsPositive() {
		return nil, validationErr("amount", "must be greater than zero")
	}
	if p.PrincipalPortion.IsNegative() || p.InterestPortion.IsNegative() {
		return nil, validationErr("principal_portion", "portions must not be negative")
	}
	if !p.PrincipalPortion.Add(p.InterestPortion).Equal(p.Amount) {
		return nil, validationErr("amount", "principal portion plus interest portion must equal the total amount")
	}
	if p.Date.IsZero() {
		p.Date = l.Clock.Today()
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	if err := l.Store.InsertPayment(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// =============================================================================
// DERIVED AGGREGATES - Pure functions over a loaded obligation + payments
// =============================================================================

// RemainingBalance is principal minus the sum of all payment amounts.
// Not clamped: a payment total exceeding the principal yields a negative
// remainder so report consumers can flag the overpayment.
func RemainingBalance(ob Obligation, payments []Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return ob.Principal.Sub(paid)
}

// ProgressPercentage is paid/principal*100 clamped to [0, 100].
// A zero principal yields 0 rather than dividing by zero.
func ProgressPercentage(ob Obligation, payments []Payment) decimal.Decimal {
	if ob.Principal.IsZero() {
		return decimal.Zero
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	pct := paid.Div(ob.Principal).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// NextPaymentDate returns the next scheduled payment date, or nil when
// the obligation is inactive, hasn't started, or has ended. While unpaid
// the next date is the start date; afterwards it is one interval past
// the most recent payment, clamped to the end date.
func NextPaymentDate(ob Obligation, payments []Payment, today Date) *Date {
	if !ob.Active || today.Before(ob.StartDate) || today.After(ob.EndDate) {
		return nil
	}

	last := lastPaymentDate(payments)
	if last == nil {
		d := ob.StartDate
		return &d
	}

	next := AddInterval(*last, ob.Frequency, ob.EndDate)
	if next.After(ob.EndDate) {
		next = ob.EndDate
	}
	return &next
}

func lastPaymentDate(payments []Payment) *Date {
	var last *Date
	for i := range payments {
		d := payments[i].Date
		if last == nil || d.After(*last) {
			last = &d
		}
	}
	return last
}

// =============================================================================
// LOADED VIEWS
// =============================================================================

// ObligationSummary bundles the derived aggregates for one obligation.
type ObligationSummary struct {
	Obligation       Obligation
	Payments         []Payment
	RemainingBalance decimal.Decimal
	Progress         decimal.Decimal
	NextPaymentDate  *Date
}

// Summary loads an obligation with its payments and computes the
// derived aggregates in one pass.
func (l *Ledger) Summary(ctx context.Context, obligationID string) (*ObligationSummary, error) {
	ob, err := l.Store.Obligation(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	if ob == nil {
		return nil, ErrObligationNotFound
	}
	payments, err := l.Store.Payments(ctx, obligationID)
	if err != nil {
		return nil, err
	}

	return &ObligationSummary{
		Obligation:       *ob,
		Payments:         payments,
		RemainingBalance: RemainingBalance(*ob, payments),
		Progress:         ProgressPercentage(*ob, payments),
		NextPaymentDate:  NextPaymentDate(*ob, payments, l.Clock.Today()),
	}, nil
}

// ScheduleProjection is an on-demand amortization forecast.
type ScheduleProjection struct {
	Obligation       Obligation
	RemainingBalance decimal.Decimal
	Schedule         []Installment
}

// ProjectSchedule forecasts up to horizon future installments from the
// obligation's current remaining balance. The first projected date is
// the next due date; when the obligation is outside its active window
// the projection starts from today.
func (l *Ledger) ProjectSchedule(ctx context.Context, obligationID string, horizon int) (*ScheduleProjection, error) {
	if horizon <= 0 {
		horizon = 12
	}

	summary, err := l.Summary(ctx, obligationID)
	if err != nil {
		return nil, err
	}

	firstDue := l.Clock.Today()
	if summary.NextPaymentDate != nil {
		firstDue = *summary.NextPaymentDate
	}

	schedule := ProjectSchedule(ScheduleRequest{
		Balance:       summary.RemainingBalance,
		AnnualRate:    summary.Obligation.AnnualRate,
		Frequency:     summary.Obligation.Frequency,
		PaymentAmount: summary.Obligation.PaymentAmount,
		FirstDue:      firstDue,
		EndDate:       summary.Obligation.EndDate,
		Horizon:       horizon,
	})

	return &ScheduleProjection{
		Obligation:       summary.Obligation,
		RemainingBalance: summary.RemainingBalance,
		Schedule:         schedule,
	}, nil
}
