/*
handlers_test.go - HTTP tests for the API surface

Tests run against the in-memory store with a fixed clock so document
numbers and reminder targets are deterministic.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/obligation-engine/finance"
	"github.com/warp/obligation-engine/finance/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testToday = finance.NewDate(2025, time.June, 15)

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	handler := NewHandler(store.NewMemory(), finance.FixedClock{On: testToday})
	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, handler
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func obligationRequest() CreateObligationRequest {
	return CreateObligationRequest{
		Kind:          "loan",
		Bank:          "First National",
		Principal:     "12000",
		AnnualRate:    "6",
		Frequency:     "monthly",
		PaymentAmount: "1050",
		TotalPayments: 12,
		StartDate:     "2025-01-31",
		EndDate:       "2026-01-31",
		CreatedBy:     "tester",
	}
}

func createObligation(t *testing.T, srv *httptest.Server) ObligationDTO {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/obligations", obligationRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[ObligationDTO](t, resp)
}

// =============================================================================
// OBLIGATION ENDPOINT TESTS
// =============================================================================

func TestCreateObligation_ReturnsNumberedDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	ob := createObligation(t, srv)

	assert.Equal(t, "BO-2025-00001", ob.Number)
	assert.Equal(t, "created", ob.Status)
	assert.True(t, ob.Active)
	assert.Equal(t, "12000.00", ob.Principal)
}

func TestCreateObligation_ValidationMapsTo400(t *testing.T) {
	srv, _ := newTestServer(t)

	req := obligationRequest()
	req.Principal = "0"
	resp := postJSON(t, srv.URL+"/api/obligations", req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateObligation_BadDateMapsTo400(t *testing.T) {
	srv, _ := newTestServer(t)

	req := obligationRequest()
	req.StartDate = "31/01/2025"
	resp := postJSON(t, srv.URL+"/api/obligations", req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetObligation_NotFoundMapsTo404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/obligations/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestObligationSummary_AfterPayment(t *testing.T) {
	srv, _ := newTestServer(t)
	ob := createObligation(t, srv)

	resp := postJSON(t, srv.URL+"/api/obligations/"+ob.ID+"/payments", RecordPaymentRequest{
		Date:             "2025-02-28",
		Amount:           "1050",
		PrincipalPortion: "990",
		InterestPortion:  "60",
		CreatedBy:        "tester",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	getResp, err := http.Get(srv.URL + "/api/obligations/" + ob.ID + "/summary")
	require.NoError(t, err)
	summary := decodeBody[ObligationSummaryDTO](t, getResp)

	assert.Equal(t, "10950.00", summary.RemainingBalance)
	assert.Equal(t, "8.75", summary.Progress)
	require.NotNil(t, summary.NextPaymentDate)
	assert.Equal(t, "2025-03-28", *summary.NextPaymentDate)
	assert.Len(t, summary.Payments, 1)
}

func TestRecordPayment_MismatchedSplitMapsTo400(t *testing.T) {
	srv, _ := newTestServer(t)
	ob := createObligation(t, srv)

	resp := postJSON(t, srv.URL+"/api/obligations/"+ob.ID+"/payments", RecordPaymentRequest{
		Amount:           "1050",
		PrincipalPortion: "989",
		InterestPortion:  "60",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSchedule_ProjectsInstallments(t *testing.T) {
	srv, _ := newTestServer(t)
	ob := createObligation(t, srv)

	resp, err := http.Get(srv.URL + "/api/obligations/" + ob.ID + "/schedule?horizon=2")
	require.NoError(t, err)
	projection := decodeBody[ScheduleProjectionDTO](t, resp)

	assert.Equal(t, ob.Number, projection.Number)
	assert.Equal(t, "12000.00", projection.RemainingBalance)
	require.Len(t, projection.Schedule, 2)
	assert.Equal(t, "60.00", projection.Schedule[0].Interest)
	assert.Equal(t, "990.00", projection.Schedule[0].Principal)
	assert.Equal(t, "11010.00", projection.Schedule[0].RemainingAfter)
}

// =============================================================================
// PAYABLE / SETTLEMENT ENDPOINT TESTS
// =============================================================================

func TestCreatePayable_SchedulesReminders(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/payables", CreatePayableRequest{
		Supplier:  "Acme Supplies",
		DueDate:   "2025-08-15",
		Amount:    "2500",
		CreatedBy: "tester",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payable := decodeBody[PayableDTO](t, resp)
	assert.Equal(t, "AP-2025-00001", payable.Number)
	assert.Equal(t, 61, payable.DaysUntilDue)

	// Due in 61 days: all three offsets are still ahead.
	listResp, err := http.Get(srv.URL + "/api/reminders")
	require.NoError(t, err)
	reminders := decodeBody[[]ReminderDTO](t, listResp)
	assert.Len(t, reminders, 3)
}

func TestSettlePayable_FullPaymentReportsTransition(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/payables", CreatePayableRequest{
		Supplier: "Acme Supplies",
		DueDate:  "2025-08-15",
		Amount:   "2500",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payable := decodeBody[PayableDTO](t, resp)

	settleResp := postJSON(t, srv.URL+"/api/payables/"+payable.ID+"/settlements", RecordSettlementRequest{
		Type:   "full_payment",
		Amount: "2500",
	})
	require.Equal(t, http.StatusCreated, settleResp.StatusCode)
	settlement := decodeBody[SettlementDTO](t, settleResp)
	assert.Equal(t, "paid", settlement.NewStatus)

	getResp, err := http.Get(srv.URL + "/api/payables/" + payable.ID)
	require.NoError(t, err)
	reloaded := decodeBody[PayableDTO](t, getResp)
	assert.Equal(t, "paid", reloaded.Status)
}

func TestSettleReceivable_PartialKeepsStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/receivables", CreateReceivableRequest{
		Client:  "Globex",
		DueDate: "2025-08-15",
		Amount:  "4000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	receivable := decodeBody[ReceivableDTO](t, resp)

	settleResp := postJSON(t, srv.URL+"/api/receivables/"+receivable.ID+"/settlements", RecordSettlementRequest{
		Type:   "partial_payment",
		Amount: "1000",
	})
	require.Equal(t, http.StatusCreated, settleResp.StatusCode)
	settlement := decodeBody[SettlementDTO](t, settleResp)
	assert.Empty(t, settlement.NewStatus)

	getResp, err := http.Get(srv.URL + "/api/receivables/" + receivable.ID)
	require.NoError(t, err)
	reloaded := decodeBody[ReceivableDTO](t, getResp)
	assert.Equal(t, "active", reloaded.Status)
}

// =============================================================================
// REMINDER ENDPOINT TESTS
// =============================================================================

func TestMarkReminderSent_SecondAttemptMapsTo409(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/payables", CreatePayableRequest{
		Supplier: "Acme Supplies",
		DueDate:  "2025-08-15",
		Amount:   "2500",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/reminders")
	require.NoError(t, err)
	reminders := decodeBody[[]ReminderDTO](t, listResp)
	require.NotEmpty(t, reminders)

	url := srv.URL + "/api/reminders/" + reminders[0].ID + "/sent"

	sentResp := postJSON(t, url, MarkSentRequest{SentBy: "ops@example.com"})
	require.Equal(t, http.StatusOK, sentResp.StatusCode)
	sent := decodeBody[ReminderDTO](t, sentResp)
	assert.True(t, sent.Sent)
	assert.Equal(t, "ops@example.com", sent.SentBy)

	again := postJSON(t, url, MarkSentRequest{SentBy: "ops@example.com"})
	defer again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestDetectOverdue_Endpoint(t *testing.T) {
	srv, handler := newTestServer(t)

	// Seed an already overdue payable straight into the store.
	require.NoError(t, handler.Store.InsertPayable(context.Background(), finance.Payable{
		ID:        "pay-late",
		Number:    "AP-2025-00099",
		Supplier:  "Late Supplier",
		DueDate:   testToday.AddDays(-10),
		Amount:    finance.MustDecimal("900"),
		Status:    finance.PayableScheduled,
		CreatedAt: time.Now().UTC(),
	}))

	resp := postJSON(t, srv.URL+"/api/reminders/detect-overdue", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decodeBody[OverdueResultDTO](t, resp)
	assert.Equal(t, 1, result.RemindersCreated)
}

// =============================================================================
// CALENDAR ENDPOINT TESTS
// =============================================================================

func TestSyncCalendar_RebuildsEvents(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/payables", CreatePayableRequest{
		Supplier: "Acme Supplies",
		DueDate:  "2025-08-15",
		Amount:   "2500",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	syncResp := postJSON(t, srv.URL+"/api/calendar/sync", SyncRequest{EventType: "payable"})
	require.Equal(t, http.StatusOK, syncResp.StatusCode)
	result := decodeBody[SyncResultDTO](t, syncResp)
	assert.Equal(t, 1, result.EventsCreated)

	eventsResp, err := http.Get(srv.URL + "/api/calendar/events")
	require.NoError(t, err)
	events := decodeBody[[]EventDTO](t, eventsResp)
	require.Len(t, events, 1)
	assert.Equal(t, "payable", events[0].Type)
	assert.Equal(t, "#F44336", events[0].Color)
	assert.Equal(t, "2025-08-15", events[0].StartDate)
	assert.Contains(t, events[0].Title, "Acme Supplies")
}

func TestSyncCalendar_EmptyBodyRebuildsAll(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/calendar/sync", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
