package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/obligation-engine/finance"
)

// =============================================================================
// CALENDAR SYNC TESTS
// =============================================================================

func TestSync_Receivables_OnlyOpenStatuses(t *testing.T) {
	ledger, st := newTestLedger(t)
	mirror := finance.NewCalendarMirror(st)
	ctx := context.Background()

	open, err := ledger.CreateReceivable(ctx, testReceivable("Open Client"))
	require.NoError(t, err)

	completed, err := ledger.CreateReceivable(ctx, testReceivable("Done Client"))
	require.NoError(t, err)
	require.NoError(t, st.UpdateReceivableStatus(ctx, completed.ID, finance.ReceivableCompleted))

	count, err := mirror.Sync(ctx, finance.EventReceivable)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	events, err := st.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, finance.EventReceivable, events[0].Type)
	assert.Equal(t, open.ID, events[0].SourceID)
	assert.Equal(t, open.DueDate, events[0].StartDate)
	assert.Contains(t, events[0].Title, "Open Client")
}

func TestSync_Idempotent_DeleteAllThenRecreate(t *testing.T) {
	ledger, st := newTestLedger(t)
	mirror := finance.NewCalendarMirror(st)
	ctx := context.Background()

	_, err := ledger.CreatePayable(ctx, testPayable("Acme Supplies"))
	require.NoError(t, err)
	_, err = ledger.CreatePayable(ctx, testPayable("Initech"))
	require.NoError(t, err)

	// GIVEN: Sync already ran
	// WHEN: Running it again with unchanged sources
	// THEN: Same row count, no accumulation
	for i := 0; i < 3; i++ {
		count, err := mirror.Sync(ctx, finance.EventPayable)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	}

	events, err := st.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestSync_Obligations_ActiveOnly_AtEndDate(t *testing.T) {
	ledger, st := newTestLedger(t)
	mirror := finance.NewCalendarMirror(st)
	ctx := context.Background()

	ob := mustCreateObligation(t, ledger, testObligation())

	inactive := mustCreateObligation(t, ledger, testObligation())
	require.NoError(t, st.SetObligationActive(ctx, inactive.ID, false))

	count, err := mirror.Sync(ctx, finance.EventObligation)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	events, err := st.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ob.ID, events[0].SourceID)
	assert.Equal(t, ob.EndDate, events[0].StartDate)
}

func TestSync_Reminders_UnsentOnly(t *testing.T) {
	scheduler, ledger, st := newTestScheduler(t)
	mirror := finance.NewCalendarMirror(st)
	ctx := context.Background()

	p, err := ledger.CreatePayable(ctx, testPayable("Acme Supplies"))
	require.NoError(t, err)
	created, err := scheduler.ScheduleFor(ctx, finance.DocPayable, p.ID, p.DueDate)
	require.NoError(t, err)
	require.Len(t, created, 3)

	_, err = scheduler.MarkSent(ctx, created[0].ID, "ops@example.com")
	require.NoError(t, err)

	count, err := mirror.Sync(ctx, finance.EventReminder)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSync_CustomEventsNeverTouched(t *testing.T) {
	ledger, st := newTestLedger(t)
	mirror := finance.NewCalendarMirror(st)
	ctx := context.Background()

	require.NoError(t, st.InsertEvent(ctx, finance.CalendarEvent{
		ID:        "custom-1",
		Title:     "Board meeting",
		Type:      finance.EventCustom,
		StartDate: finance.NewDate(2025, time.July, 1),
		AllDay:    true,
	}))

	_, err := ledger.CreatePayable(ctx, testPayable("Acme Supplies"))
	require.NoError(t, err)

	// Syncing custom is a no-op; a full rebuild leaves the row alone.
	count, err := mirror.Sync(ctx, finance.EventCustom)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = mirror.SyncAll(ctx)
	require.NoError(t, err)

	events, err := st.Events(ctx)
	require.NoError(t, err)
	found := false
	for _, e := range events {
		if e.ID == "custom-1" {
			found = true
		}
	}
	assert.True(t, found, "custom event must survive a full sync")
}

func TestSync_UnknownType(t *testing.T) {
	_, st := newTestLedger(t)
	mirror := finance.NewCalendarMirror(st)

	_, err := mirror.Sync(context.Background(), finance.EventType("moon_phase"))
	assert.True(t, finance.IsClientError(err))
}

func TestEventTypeColors(t *testing.T) {
	assert.Equal(t, "#4CAF50", finance.EventReceivable.Color())
	assert.Equal(t, "#F44336", finance.EventPayable.Color())
	assert.Equal(t, "#2196F3", finance.EventObligation.Color())
	assert.Equal(t, "#FF9800", finance.EventReminder.Color())
	assert.Equal(t, "#9C27B0", finance.EventCustom.Color())
	// Unknown types fall back to the custom color.
	assert.Equal(t, "#9C27B0", finance.EventType("other").Color())
}
