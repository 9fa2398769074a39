/*
Package finance provides the financial obligation lifecycle engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking
  financial obligations (loans, credit lines, letters of credit), their
  payments, and the payables/receivables that surround them. It owns
  document numbering, calendar-correct schedule stepping, amortization
  projection, and the derived aggregates (remaining balance, progress,
  next due date) computed from the payment history.

KEY CONCEPTS IN THIS FILE (types.go):
  - Obligation: A bank-held liability repaid over time
  - Payment: An immutable principal/interest split applied to an obligation
  - Payable/Receivable: Dated amounts owed to suppliers / due from clients
  - Settlement: A transaction applied to a payable or receivable
  - Reminder: A derived pre-due-date notification row
  - CalendarEvent: A regenerable projection of the above for display

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money; no floats in the engine
  2. Immutability: Payments and settlements are append-only
  3. Derivation: Balances and due dates are computed from history, never
     stored alongside it
  4. Injectable time: All "today" reads go through Clock

SEE ALSO:
  - calendar.go: Date stepping with end-of-month clamping
  - sequence.go: Year-scoped document number allocation
  - schedule.go: Amortization projection
  - ledger.go:   Obligation balance/progress/next-due and payment writes
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DOCUMENT KINDS - Year-scoped numbering families
// =============================================================================

type DocumentKind string

const (
	DocObligation DocumentKind = "obligation"
	DocPayable    DocumentKind = "payable"
	DocReceivable DocumentKind = "receivable"
)

// Prefix returns the document number prefix, e.g. "AP" in "AP-2025-00007".
func (k DocumentKind) Prefix() string {
	switch k {
	case DocObligation:
		return "BO"
	case DocPayable:
		return "AP"
	case DocReceivable:
		return "AR"
	default:
		return "DOC"
	}
}

// =============================================================================
// OBLIGATIONS
// =============================================================================

type ObligationKind string

const (
	KindLoan           ObligationKind = "loan"
	KindCreditLine     ObligationKind = "credit_line"
	KindLetterOfCredit ObligationKind = "letter_of_credit"
)

type Frequency string

const (
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiAnnually Frequency = "semi_annually"
	FrequencyAnnually     Frequency = "annually"
	FrequencyLumpSum      Frequency = "lump_sum"
)

// StepMonths returns how many months one schedule step spans.
// Zero for lump_sum, which jumps straight to the obligation end date.
func (f Frequency) StepMonths() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencySemiAnnually:
		return 6
	case FrequencyAnnually:
		return 12
	default:
		return 0
	}
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnually,
		FrequencyAnnually, FrequencyLumpSum:
		return true
	}
	return false
}

type ObligationStatus string

const (
	ObligationCreated           ObligationStatus = "created"
	ObligationCoveredWithPapers ObligationStatus = "covered_with_papers"
	ObligationCoveredWithCash   ObligationStatus = "covered_with_cash"
	ObligationPaid              ObligationStatus = "paid"
)

// Obligation is a bank-held financial liability. Owned by the Ledger;
// mutated only through payment application and status/active toggles.
type Obligation struct {
	ID            string
	Number        string // "BO-<year>-<5-digit seq>", unique
	Kind          ObligationKind
	Bank          string
	Branch        string
	AccountNumber string

	Principal     decimal.Decimal
	AnnualRate    decimal.Decimal // percent, 0-100
	Frequency     Frequency
	PaymentAmount decimal.Decimal
	TotalPayments int
	StartDate     Date
	EndDate       Date

	Status     ObligationStatus
	Purpose    string
	Collateral string
	Notes      string
	Active     bool

	CreatedBy string
	CreatedAt time.Time
}

// Payment is one recorded installment against an obligation.
// Invariant: PrincipalPortion + InterestPortion == Amount, exactly.
// Created once, immutable thereafter.
type Payment struct {
	ID               string
	ObligationID     string
	Date             Date
	Amount           decimal.Decimal
	PrincipalPortion decimal.Decimal
	InterestPortion  decimal.Decimal
	Reference        string
	Notes            string
	CreatedBy        string
	CreatedAt        time.Time
}

// Installment is one projected payment in an amortization schedule.
// Projections are never persisted.
type Installment struct {
	Index          int
	Date           Date
	Amount         decimal.Decimal
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	RemainingAfter decimal.Decimal
}

// =============================================================================
// PAYABLES / RECEIVABLES
// =============================================================================

type PayableStatus string

const (
	PayableScheduled PayableStatus = "scheduled"
	PayableInProcess PayableStatus = "in_process"
	PayablePaid      PayableStatus = "paid"
	PayableRejected  PayableStatus = "rejected"
	PayableReturned  PayableStatus = "returned"
)

type ReceivableStatus string

const (
	ReceivableActive    ReceivableStatus = "active"
	ReceivablePending   ReceivableStatus = "pending"
	ReceivableOverdue   ReceivableStatus = "overdue"
	ReceivableCompleted ReceivableStatus = "completed"
)

// Payable is an amount owed to a supplier with a due date.
type Payable struct {
	ID              string
	Number          string // "AP-<year>-<seq>", unique
	Supplier        string
	Bank            string
	TransactionDate Date
	DueDate         Date // must be after TransactionDate
	Amount          decimal.Decimal
	CheckNumber     string
	InvoiceNumber   string
	Status          PayableStatus
	Notes           string
	CreatedBy       string
	CreatedAt       time.Time
}

// Receivable is an amount due from a client with a due date.
type Receivable struct {
	ID              string
	Number          string // "AR-<year>-<seq>", unique
	Client          string
	Bank            string
	TransactionDate Date
	DueDate         Date
	Amount          decimal.Decimal
	CheckNumber     string
	Status          ReceivableStatus
	Notes           string
	CreatedBy       string
	CreatedAt       time.Time
}

type SettlementType string

const (
	SettlementDeposit        SettlementType = "deposit"
	SettlementPartialPayment SettlementType = "partial_payment"
	SettlementFullPayment    SettlementType = "full_payment"
	SettlementReturn         SettlementType = "return"
	SettlementAdjustment     SettlementType = "adjustment"
)

// Settlement is a transaction applied to a payable or receivable.
// Append-only. A full_payment settlement carries a status transition for
// its parent; the transition is decided explicitly (see settlement.go),
// not buried in the write.
type Settlement struct {
	ID         string
	ParentKind DocumentKind // DocPayable or DocReceivable
	ParentID   string
	Type       SettlementType
	Amount     decimal.Decimal
	Date       Date
	Reference  string
	Notes      string
	CreatedBy  string
	CreatedAt  time.Time
}

// =============================================================================
// REMINDERS
// =============================================================================

type ReminderKind string

const (
	Reminder45Days ReminderKind = "45_days"
	Reminder30Days ReminderKind = "30_days"
	Reminder15Days ReminderKind = "15_days"
	ReminderOverdue ReminderKind = "overdue"
)

// Reminder is a derived notification row. At most one per (parent, kind).
// Mutated once, when marked sent.
type Reminder struct {
	ID         string
	ParentKind DocumentKind
	ParentID   string
	Kind       ReminderKind
	TargetDate Date
	Sent       bool
	SentAt     *time.Time
	SentBy     string
	Notes      string
}

// =============================================================================
// CALENDAR EVENTS
// =============================================================================

type EventType string

const (
	EventReceivable EventType = "receivable"
	EventPayable    EventType = "payable"
	EventObligation EventType = "obligation"
	EventReminder   EventType = "reminder"
	EventCustom     EventType = "custom"
)

var eventColors = map[EventType]string{
	EventReceivable: "#4CAF50",
	EventPayable:    "#F44336",
	EventObligation: "#2196F3",
	EventReminder:   "#FF9800",
	EventCustom:     "#9C27B0",
}

// Color returns the display color for this event type.
func (t EventType) Color() string {
	if c, ok := eventColors[t]; ok {
		return c
	}
	return eventColors[EventCustom]
}

// CalendarEvent is a denormalized projection of ledger entities for display.
// Synced types are fully regenerable; custom events are hand-created and
// never touched by sync.
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Type        EventType
	StartDate   Date
	EndDate     *Date
	AllDay      bool
	SourceID    string // id of the source entity for synced types
	CreatedBy   string
	CreatedAt   time.Time
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// MustDecimal parses a decimal literal, returning zero on failure.
// Intended for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var hundred = decimal.NewFromInt(100)
