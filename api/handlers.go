/*
handlers.go - HTTP API handlers for the obligation engine

PURPOSE:
  Exposes the obligation lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Obligations:
    GET    /api/obligations                  List all obligations
    POST   /api/obligations                  Create obligation
    GET    /api/obligations/{id}             Get obligation details
    GET    /api/obligations/{id}/summary     Balance, progress, next due date
    GET    /api/obligations/{id}/payments    Payment history
    POST   /api/obligations/{id}/payments    Record a payment
    GET    /api/obligations/{id}/schedule    Amortization projection

  Payables / Receivables:
    GET    /api/payables                     List payables
    POST   /api/payables                     Create payable
    GET    /api/payables/{id}                Get payable
    GET    /api/payables/{id}/settlements    Settlement history
    POST   /api/payables/{id}/settlements    Apply a settlement
    (mirrored routes under /api/receivables)

  Reminders:
    GET    /api/reminders                    List unsent reminders
    POST   /api/reminders/{id}/sent          Mark reminder sent
    POST   /api/reminders/detect-overdue     Run the overdue pass

  Calendar:
    GET    /api/calendar/events              List all events
    POST   /api/calendar/sync                Rebuild synced event types

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Entity not found
  - 409: Conflict (duplicate number, reminder already sent)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/obligation-engine/finance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     finance.Store
	Clock     finance.Clock
	Ledger    *finance.Ledger
	Scheduler *finance.ReminderScheduler
	Mirror    *finance.CalendarMirror
}

// NewHandler creates a new handler wired against the given store.
func NewHandler(store finance.Store, clock finance.Clock) *Handler {
	return &Handler{
		Store:     store,
		Clock:     clock,
		Ledger:    finance.NewLedger(store, clock),
		Scheduler: finance.NewReminderScheduler(store, clock),
		Mirror:    finance.NewCalendarMirror(store),
	}
}

// =============================================================================
// OBLIGATION HANDLERS
// =============================================================================

// ListObligations returns all obligations.
func (h *Handler) ListObligations(w http.ResponseWriter, r *http.Request) {
	obligations, err := h.Store.Obligations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list obligations", err)
		return
	}

	dtos := make([]ObligationDTO, len(obligations))
	for i, ob := range obligations {
		dtos[i] = toObligationDTO(ob)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetObligation returns a single obligation.
func (h *Handler) GetObligation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ob, err := h.Store.Obligation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get obligation", err)
		return
	}
	if ob == nil {
		writeError(w, http.StatusNotFound, "Obligation not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toObligationDTO(*ob))
}

// CreateObligation creates a new obligation and schedules its reminders.
func (h *Handler) CreateObligation(w http.ResponseWriter, r *http.Request) {
	var req CreateObligationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid principal_amount", err)
		return
	}
	rate, err := decimal.NewFromString(req.AnnualRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid interest_rate", err)
		return
	}
	payment, err := decimal.NewFromString(req.PaymentAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment_amount", err)
		return
	}
	startDate, err := finance.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	endDate, err := finance.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	ob, err := h.Ledger.CreateObligation(r.Context(), finance.Obligation{
		Kind:          finance.ObligationKind(req.Kind),
		Bank:          req.Bank,
		Branch:        req.Branch,
		AccountNumber: req.AccountNumber,
		Principal:     principal,
		AnnualRate:    rate,
		Frequency:     finance.Frequency(req.Frequency),
		PaymentAmount: payment,
		TotalPayments: req.TotalPayments,
		StartDate:     startDate,
		EndDate:       endDate,
		Purpose:       req.Purpose,
		Collateral:    req.Collateral,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		writeDomainError(w, "Failed to create obligation", err)
		return
	}

	if _, err := h.Scheduler.ScheduleFor(r.Context(), finance.DocObligation, ob.ID, ob.EndDate); err != nil {
		writeError(w, http.StatusInternalServerError, "Obligation created but reminder scheduling failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toObligationDTO(*ob))
}

// GetObligationSummary returns the derived aggregates for an obligation.
func (h *Handler) GetObligationSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.Ledger.Summary(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to compute summary", err)
		return
	}

	dto := ObligationSummaryDTO{
		Obligation:       toObligationDTO(summary.Obligation),
		Payments:         toPaymentDTOs(summary.Payments),
		RemainingBalance: summary.RemainingBalance.StringFixed(2),
		Progress:         summary.Progress.StringFixed(2),
	}
	if summary.NextPaymentDate != nil {
		v := summary.NextPaymentDate.String()
		dto.NextPaymentDate = &v
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListPayments returns the payment history for an obligation.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payments, err := h.Store.Payments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

// RecordPayment records a payment against an obligation.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	principal, err := decimal.NewFromString(req.PrincipalPortion)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid principal_portion", err)
		return
	}
	interest, err := decimal.NewFromString(req.InterestPortion)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid interest_portion", err)
		return
	}

	payment := finance.Payment{
		ObligationID:     id,
		Amount:           amount,
		PrincipalPortion: principal,
		InterestPortion:  interest,
		Reference:        req.Reference,
		Notes:            req.Notes,
		CreatedBy:        req.CreatedBy,
	}
	if req.Date != "" {
		date, err := finance.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment_date format (use YYYY-MM-DD)", err)
			return
		}
		payment.Date = date
	}

	saved, err := h.Ledger.RecordPayment(r.Context(), payment)
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(*saved))
}

// GetSchedule returns the amortization projection for an obligation.
// Query param "horizon" caps the number of projected installments.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	horizon := 0
	if v := r.URL.Query().Get("horizon"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid horizon", err)
			return
		}
		horizon = n
	}

	projection, err := h.Ledger.ProjectSchedule(r.Context(), id, horizon)
	if err != nil {
		writeDomainError(w, "Failed to project schedule", err)
		return
	}

	installments := make([]InstallmentDTO, len(projection.Schedule))
	for i, inst := range projection.Schedule {
		installments[i] = InstallmentDTO{
			Index:          inst.Index,
			Date:           inst.Date.String(),
			Amount:         inst.Amount.StringFixed(2),
			Principal:      inst.Principal.StringFixed(2),
			Interest:       inst.Interest.StringFixed(2),
			RemainingAfter: inst.RemainingAfter.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, ScheduleProjectionDTO{
		ObligationID:     projection.Obligation.ID,
		Number:           projection.Obligation.Number,
		RemainingBalance: projection.RemainingBalance.StringFixed(2),
		Schedule:         installments,
	})
}

// =============================================================================
// PAYABLE HANDLERS
// =============================================================================

// ListPayables returns all payables.
func (h *Handler) ListPayables(w http.ResponseWriter, r *http.Request) {
	payables, err := h.Store.Payables(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payables", err)
		return
	}

	dtos := make([]PayableDTO, len(payables))
	for i, p := range payables {
		dtos[i] = toPayableDTO(p, h.Clock.Today())
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayable returns a single payable.
func (h *Handler) GetPayable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.Store.Payable(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payable", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Payable not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPayableDTO(*p, h.Clock.Today()))
}

// CreatePayable creates a new payable and schedules its reminders.
func (h *Handler) CreatePayable(w http.ResponseWriter, r *http.Request) {
	var req CreatePayableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	dueDate, err := finance.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
		return
	}

	payable := finance.Payable{
		Supplier:      req.Supplier,
		Bank:          req.Bank,
		DueDate:       dueDate,
		Amount:        amount,
		CheckNumber:   req.CheckNumber,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	}
	if req.TransactionDate != "" {
		txDate, err := finance.ParseDate(req.TransactionDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transaction_date format (use YYYY-MM-DD)", err)
			return
		}
		payable.TransactionDate = txDate
	}

	saved, err := h.Ledger.CreatePayable(r.Context(), payable)
	if err != nil {
		writeDomainError(w, "Failed to create payable", err)
		return
	}

	if _, err := h.Scheduler.ScheduleFor(r.Context(), finance.DocPayable, saved.ID, saved.DueDate); err != nil {
		writeError(w, http.StatusInternalServerError, "Payable created but reminder scheduling failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPayableDTO(*saved, h.Clock.Today()))
}

// =============================================================================
// RECEIVABLE HANDLERS
// =============================================================================

// ListReceivables returns all receivables.
func (h *Handler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	receivables, err := h.Store.Receivables(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list receivables", err)
		return
	}

	dtos := make([]ReceivableDTO, len(receivables))
	for i, rec := range receivables {
		dtos[i] = toReceivableDTO(rec, h.Clock.Today())
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetReceivable returns a single receivable.
func (h *Handler) GetReceivable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.Receivable(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get receivable", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Receivable not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toReceivableDTO(*rec, h.Clock.Today()))
}

// CreateReceivable creates a new receivable and schedules its reminders.
func (h *Handler) CreateReceivable(w http.ResponseWriter, r *http.Request) {
	var req CreateReceivableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	dueDate, err := finance.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
		return
	}

	receivable := finance.Receivable{
		Client:      req.Client,
		Bank:        req.Bank,
		DueDate:     dueDate,
		Amount:      amount,
		CheckNumber: req.CheckNumber,
		Notes:       req.Notes,
		CreatedBy:   req.CreatedBy,
	}
	if req.TransactionDate != "" {
		txDate, err := finance.ParseDate(req.TransactionDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transaction_date format (use YYYY-MM-DD)", err)
			return
		}
		receivable.TransactionDate = txDate
	}

	saved, err := h.Ledger.CreateReceivable(r.Context(), receivable)
	if err != nil {
		writeDomainError(w, "Failed to create receivable", err)
		return
	}

	if _, err := h.Scheduler.ScheduleFor(r.Context(), finance.DocReceivable, saved.ID, saved.DueDate); err != nil {
		writeError(w, http.StatusInternalServerError, "Receivable created but reminder scheduling failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReceivableDTO(*saved, h.Clock.Today()))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// ListPayableSettlements returns settlement history for a payable.
func (h *Handler) ListPayableSettlements(w http.ResponseWriter, r *http.Request) {
	h.listSettlements(w, r, finance.DocPayable)
}

// ListReceivableSettlements returns settlement history for a receivable.
func (h *Handler) ListReceivableSettlements(w http.ResponseWriter, r *http.Request) {
	h.listSettlements(w, r, finance.DocReceivable)
}

func (h *Handler) listSettlements(w http.ResponseWriter, r *http.Request, kind finance.DocumentKind) {
	id := chi.URLParam(r, "id")

	settlements, err := h.Store.Settlements(r.Context(), kind, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settlements", err)
		return
	}

	dtos := make([]SettlementDTO, len(settlements))
	for i, s := range settlements {
		dtos[i] = toSettlementDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SettlePayable applies a settlement to a payable.
func (h *Handler) SettlePayable(w http.ResponseWriter, r *http.Request) {
	h.recordSettlement(w, r, finance.DocPayable)
}

// SettleReceivable applies a settlement to a receivable.
func (h *Handler) SettleReceivable(w http.ResponseWriter, r *http.Request) {
	h.recordSettlement(w, r, finance.DocReceivable)
}

func (h *Handler) recordSettlement(w http.ResponseWriter, r *http.Request, kind finance.DocumentKind) {
	id := chi.URLParam(r, "id")

	var req RecordSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	settlement := finance.Settlement{
		ParentKind: kind,
		ParentID:   id,
		Type:       finance.SettlementType(req.Type),
		Amount:     amount,
		Reference:  req.Reference,
		Notes:      req.Notes,
		CreatedBy:  req.CreatedBy,
	}
	if req.Date != "" {
		date, err := finance.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid settlement_date format (use YYYY-MM-DD)", err)
			return
		}
		settlement.Date = date
	}

	saved, transition, err := h.Ledger.RecordSettlement(r.Context(), settlement)
	if err != nil {
		writeDomainError(w, "Failed to record settlement", err)
		return
	}

	dto := toSettlementDTO(*saved)
	if transition != nil {
		if kind == finance.DocPayable {
			dto.NewStatus = string(transition.PayableStatus)
		} else {
			dto.NewStatus = string(transition.ReceivableStatus)
		}
	}
	writeJSON(w, http.StatusCreated, dto)
}

// =============================================================================
// REMINDER HANDLERS
// =============================================================================

// ListUnsentReminders returns all reminders not yet sent.
func (h *Handler) ListUnsentReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.Store.UnsentReminders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reminders", err)
		return
	}

	dtos := make([]ReminderDTO, len(reminders))
	for i, rem := range reminders {
		dtos[i] = toReminderDTO(rem)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MarkReminderSent records the one-way sent transition.
func (h *Handler) MarkReminderSent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req MarkSentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SentBy == "" {
		writeError(w, http.StatusBadRequest, "sent_by is required", nil)
		return
	}

	rem, err := h.Scheduler.MarkSent(r.Context(), id, req.SentBy)
	if err != nil {
		writeDomainError(w, "Failed to mark reminder sent", err)
		return
	}
	writeJSON(w, http.StatusOK, toReminderDTO(*rem))
}

// DetectOverdue runs the overdue detection pass.
func (h *Handler) DetectOverdue(w http.ResponseWriter, r *http.Request) {
	created, err := h.Scheduler.DetectOverdue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Overdue detection failed", err)
		return
	}
	writeJSON(w, http.StatusOK, OverdueResultDTO{RemindersCreated: created})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListEvents returns all calendar events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.Events(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SyncCalendar rebuilds calendar events. With an empty event_type every
// synced type is rebuilt.
func (h *Handler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	var (
		count int
		err   error
	)
	if req.EventType == "" {
		count, err = h.Mirror.SyncAll(r.Context())
	} else {
		count, err = h.Mirror.Sync(r.Context(), finance.EventType(req.EventType))
	}
	if err != nil {
		writeDomainError(w, "Calendar sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResultDTO{EventsCreated: count})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case finance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case finance.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case finance.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
