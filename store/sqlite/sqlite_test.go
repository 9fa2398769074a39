package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/obligation-engine/finance"
	"github.com/warp/obligation-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedObligation(id, number string) finance.Obligation {
	return finance.Obligation{
		ID:            id,
		Number:        number,
		Kind:          finance.KindLoan,
		Bank:          "First National",
		Branch:        "Main St",
		Principal:     finance.MustDecimal("12000"),
		AnnualRate:    finance.MustDecimal("6"),
		Frequency:     finance.FrequencyMonthly,
		PaymentAmount: finance.MustDecimal("1050"),
		TotalPayments: 12,
		StartDate:     finance.NewDate(2025, time.January, 31),
		EndDate:       finance.NewDate(2026, time.January, 31),
		Status:        finance.ObligationCreated,
		Active:        true,
		CreatedBy:     "tester",
		CreatedAt:     time.Now().UTC(),
	}
}

func storedPayable(id, number string) finance.Payable {
	return finance.Payable{
		ID:              id,
		Number:          number,
		Supplier:        "Acme Supplies",
		TransactionDate: finance.NewDate(2025, time.June, 1),
		DueDate:         finance.NewDate(2025, time.August, 1),
		Amount:          finance.MustDecimal("2500"),
		Status:          finance.PayableScheduled,
		CreatedAt:       time.Now().UTC(),
	}
}

func storedReceivable(id, number string) finance.Receivable {
	return finance.Receivable{
		ID:              id,
		Number:          number,
		Client:          "Globex",
		TransactionDate: finance.NewDate(2025, time.June, 1),
		DueDate:         finance.NewDate(2025, time.August, 1),
		Amount:          finance.MustDecimal("4000"),
		Status:          finance.ReceivableActive,
		CreatedAt:       time.Now().UTC(),
	}
}

// =============================================================================
// OBLIGATION ROUNDTRIP TESTS
// =============================================================================

func TestObligation_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := storedObligation("ob1", "BO-2025-00001")
	require.NoError(t, store.InsertObligation(ctx, in))

	out, err := store.Obligation(ctx, "ob1")
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, in.Number, out.Number)
	assert.Equal(t, in.Bank, out.Bank)
	assert.Equal(t, in.Branch, out.Branch)
	assert.True(t, in.Principal.Equal(out.Principal))
	assert.True(t, in.PaymentAmount.Equal(out.PaymentAmount))
	assert.Equal(t, in.Frequency, out.Frequency)
	assert.Equal(t, in.StartDate, out.StartDate)
	assert.Equal(t, in.EndDate, out.EndDate)
	assert.True(t, out.Active)
}

func TestObligation_MissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	out, err := store.Obligation(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestObligation_DuplicateNumberRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertObligation(ctx, storedObligation("ob1", "BO-2025-00001")))

	err := store.InsertObligation(ctx, storedObligation("ob2", "BO-2025-00001"))
	assert.ErrorIs(t, err, finance.ErrDuplicateNumber)
}

func TestObligation_StatusAndActiveUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertObligation(ctx, storedObligation("ob1", "BO-2025-00001")))

	require.NoError(t, store.UpdateObligationStatus(ctx, "ob1", finance.ObligationPaid))
	require.NoError(t, store.SetObligationActive(ctx, "ob1", false))

	out, err := store.Obligation(ctx, "ob1")
	require.NoError(t, err)
	assert.Equal(t, finance.ObligationPaid, out.Status)
	assert.False(t, out.Active)

	assert.ErrorIs(t, store.UpdateObligationStatus(ctx, "missing", finance.ObligationPaid),
		finance.ErrObligationNotFound)
}

// =============================================================================
// NUMBER INDEX TESTS
// =============================================================================

func TestLastNumber_PerKindAndYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertObligation(ctx, storedObligation("ob1", "BO-2025-00001")))
	require.NoError(t, store.InsertObligation(ctx, storedObligation("ob2", "BO-2025-00007")))
	require.NoError(t, store.InsertObligation(ctx, storedObligation("ob3", "BO-2024-00099")))
	require.NoError(t, store.InsertPayable(ctx, storedPayable("p1", "AP-2025-00003")))

	last, err := store.LastNumber(ctx, finance.DocObligation, 2025)
	require.NoError(t, err)
	assert.Equal(t, "BO-2025-00007", last)

	last, err = store.LastNumber(ctx, finance.DocObligation, 2024)
	require.NoError(t, err)
	assert.Equal(t, "BO-2024-00099", last)

	last, err = store.LastNumber(ctx, finance.DocPayable, 2025)
	require.NoError(t, err)
	assert.Equal(t, "AP-2025-00003", last)

	// Nothing issued for receivables yet.
	last, err = store.LastNumber(ctx, finance.DocReceivable, 2025)
	require.NoError(t, err)
	assert.Equal(t, "", last)
}

// =============================================================================
// PAYMENT TESTS
// =============================================================================

func TestPayments_OrderedByDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertObligation(ctx, storedObligation("ob1", "BO-2025-00001")))

	// Inserted out of order.
	dates := []finance.Date{
		finance.NewDate(2025, time.March, 28),
		finance.NewDate(2025, time.January, 31),
		finance.NewDate(2025, time.February, 28),
	}
	for i, d := range dates {
		require.NoError(t, store.InsertPayment(ctx, finance.Payment{
			ID:               string(rune('a' + i)),
			ObligationID:     "ob1",
			Date:             d,
			Amount:           finance.MustDecimal("1050"),
			PrincipalPortion: finance.MustDecimal("990"),
			InterestPortion:  finance.MustDecimal("60"),
			CreatedAt:        time.Now().UTC(),
		}))
	}

	payments, err := store.Payments(ctx, "ob1")
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, finance.NewDate(2025, time.January, 31), payments[0].Date)
	assert.Equal(t, finance.NewDate(2025, time.February, 28), payments[1].Date)
	assert.Equal(t, finance.NewDate(2025, time.March, 28), payments[2].Date)
	assert.True(t, payments[0].Amount.Equal(finance.MustDecimal("1050")))
}

// =============================================================================
// PAYABLE / RECEIVABLE / SETTLEMENT TESTS
// =============================================================================

func TestPayable_RoundtripAndStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertPayable(ctx, storedPayable("p1", "AP-2025-00001")))

	out, err := store.Payable(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "Acme Supplies", out.Supplier)
	assert.True(t, out.Amount.Equal(finance.MustDecimal("2500")))

	require.NoError(t, store.UpdatePayableStatus(ctx, "p1", finance.PayablePaid))
	out, err = store.Payable(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, finance.PayablePaid, out.Status)
}

func TestReceivable_DuplicateNumberRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertReceivable(ctx, storedReceivable("r1", "AR-2025-00001")))
	err := store.InsertReceivable(ctx, storedReceivable("r2", "AR-2025-00001"))
	assert.ErrorIs(t, err, finance.ErrDuplicateNumber)
}

func TestSettlements_ScopedToParent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertPayable(ctx, storedPayable("p1", "AP-2025-00001")))
	require.NoError(t, store.InsertReceivable(ctx, storedReceivable("r1", "AR-2025-00001")))

	require.NoError(t, store.InsertSettlement(ctx, finance.Settlement{
		ID:         "s1",
		ParentKind: finance.DocPayable,
		ParentID:   "p1",
		Type:       finance.SettlementPartialPayment,
		Amount:     finance.MustDecimal("1000"),
		Date:       finance.NewDate(2025, time.June, 20),
		CreatedAt:  time.Now().UTC(),
	}))
	require.NoError(t, store.InsertSettlement(ctx, finance.Settlement{
		ID:         "s2",
		ParentKind: finance.DocReceivable,
		ParentID:   "r1",
		Type:       finance.SettlementDeposit,
		Amount:     finance.MustDecimal("500"),
		Date:       finance.NewDate(2025, time.June, 21),
		CreatedAt:  time.Now().UTC(),
	}))

	settlements, err := store.Settlements(ctx, finance.DocPayable, "p1")
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, "s1", settlements[0].ID)
	assert.True(t, settlements[0].Amount.Equal(finance.MustDecimal("1000")))
}

// =============================================================================
// REMINDER TESTS
// =============================================================================

func TestReminder_UniquePerParentAndKind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := finance.Reminder{
		ID:         "rem1",
		ParentKind: finance.DocPayable,
		ParentID:   "p1",
		Kind:       finance.Reminder30Days,
		TargetDate: finance.NewDate(2025, time.July, 2),
	}
	require.NoError(t, store.InsertReminder(ctx, r))

	dup := r
	dup.ID = "rem2"
	assert.ErrorIs(t, store.InsertReminder(ctx, dup), finance.ErrDuplicateReminder)

	// A different kind for the same parent is allowed.
	other := r
	other.ID = "rem3"
	other.Kind = finance.Reminder15Days
	assert.NoError(t, store.InsertReminder(ctx, other))
}

func TestReminder_SentTransitionPersists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertReminder(ctx, finance.Reminder{
		ID:         "rem1",
		ParentKind: finance.DocReceivable,
		ParentID:   "r1",
		Kind:       finance.Reminder45Days,
		TargetDate: finance.NewDate(2025, time.June, 17),
	}))

	sentAt := time.Date(2025, time.June, 17, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.SaveReminderSent(ctx, "rem1", "ops@example.com", sentAt))

	out, err := store.Reminder(ctx, "rem1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, out.Sent)
	assert.Equal(t, "ops@example.com", out.SentBy)
	require.NotNil(t, out.SentAt)
	assert.True(t, out.SentAt.Equal(sentAt))

	unsent, err := store.UnsentReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsent)

	assert.ErrorIs(t, store.SaveReminderSent(ctx, "missing", "x", sentAt),
		finance.ErrReminderNotFound)
}

// =============================================================================
// CALENDAR EVENT TESTS
// =============================================================================

func TestEvents_DeleteByTypeLeavesOthers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	end := finance.NewDate(2025, time.July, 2)
	require.NoError(t, store.InsertEvent(ctx, finance.CalendarEvent{
		ID:        "e1",
		Title:     "Pay: Acme Supplies - 2500.00",
		Type:      finance.EventPayable,
		StartDate: finance.NewDate(2025, time.July, 1),
		EndDate:   &end,
		AllDay:    true,
		SourceID:  "p1",
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.InsertEvent(ctx, finance.CalendarEvent{
		ID:        "e2",
		Title:     "Board meeting",
		Type:      finance.EventCustom,
		StartDate: finance.NewDate(2025, time.July, 3),
		AllDay:    true,
		CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, store.DeleteEventsByType(ctx, finance.EventPayable))

	events, err := store.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e2", events[0].ID)
	assert.Nil(t, events[0].EndDate)
}
