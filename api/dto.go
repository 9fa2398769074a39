/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  Amounts cross the wire as strings ("12000.00") so clients never see
  float rounding. Parsing happens in the handlers.

SEE ALSO:
  - handlers.go: Uses these types
  - finance/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/warp/obligation-engine/finance"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ObligationDTO represents an obligation in API responses.
type ObligationDTO struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Kind          string `json:"kind"`
	Bank          string `json:"bank"`
	Branch        string `json:"branch,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	Principal     string `json:"principal_amount"`
	AnnualRate    string `json:"interest_rate"`
	Frequency     string `json:"payment_frequency"`
	PaymentAmount string `json:"payment_amount"`
	TotalPayments int    `json:"total_payments"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Status        string `json:"status"`
	Purpose       string `json:"purpose,omitempty"`
	Collateral    string `json:"collateral,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// CreateObligationRequest is the request to create an obligation.
type CreateObligationRequest struct {
	Kind          string `json:"kind"`
	Bank          string `json:"bank"`
	Branch        string `json:"branch"`
	AccountNumber string `json:"account_number"`
	Principal     string `json:"principal_amount"`
	AnnualRate    string `json:"interest_rate"`
	Frequency     string `json:"payment_frequency"`
	PaymentAmount string `json:"payment_amount"`
	TotalPayments int    `json:"total_payments"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Purpose       string `json:"purpose"`
	Collateral    string `json:"collateral"`
	Notes         string `json:"notes"`
	CreatedBy     string `json:"created_by"`
}

// ObligationSummaryDTO bundles an obligation with its derived aggregates.
type ObligationSummaryDTO struct {
	Obligation       ObligationDTO `json:"obligation"`
	Payments         []PaymentDTO  `json:"payments"`
	RemainingBalance string        `json:"remaining_balance"`
	Progress         string        `json:"progress_percentage"`
	NextPaymentDate  *string       `json:"next_payment_date,omitempty"`
}

// PaymentDTO represents a recorded payment.
type PaymentDTO struct {
	ID               string `json:"id"`
	ObligationID     string `json:"obligation_id"`
	Date             string `json:"payment_date"`
	Amount           string `json:"amount"`
	PrincipalPortion string `json:"principal_portion"`
	InterestPortion  string `json:"interest_portion"`
	Reference        string `json:"reference,omitempty"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// RecordPaymentRequest is the request to record a payment.
type RecordPaymentRequest struct {
	Date             string `json:"payment_date"`
	Amount           string `json:"amount"`
	PrincipalPortion string `json:"principal_portion"`
	InterestPortion  string `json:"interest_portion"`
	Reference        string `json:"reference"`
	Notes            string `json:"notes"`
	CreatedBy        string `json:"created_by"`
}

// InstallmentDTO represents one projected schedule row.
type InstallmentDTO struct {
	Index          int    `json:"payment_number"`
	Date           string `json:"date"`
	Amount         string `json:"amount"`
	Principal      string `json:"principal"`
	Interest       string `json:"interest"`
	RemainingAfter string `json:"remaining_balance"`
}

// ScheduleProjectionDTO is the response for a schedule forecast.
type ScheduleProjectionDTO struct {
	ObligationID     string           `json:"obligation_id"`
	Number           string           `json:"number"`
	RemainingBalance string           `json:"remaining_balance"`
	Schedule         []InstallmentDTO `json:"schedule"`
}

// PayableDTO represents a payable in API responses.
type PayableDTO struct {
	ID              string `json:"id"`
	Number          string `json:"number"`
	Supplier        string `json:"supplier"`
	Bank            string `json:"bank,omitempty"`
	TransactionDate string `json:"transaction_date"`
	DueDate         string `json:"due_date"`
	Amount          string `json:"amount"`
	CheckNumber     string `json:"check_number,omitempty"`
	InvoiceNumber   string `json:"invoice_number,omitempty"`
	Status          string `json:"status"`
	DaysUntilDue    int    `json:"days_until_due"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// CreatePayableRequest is the request to create a payable.
type CreatePayableRequest struct {
	Supplier        string `json:"supplier"`
	Bank            string `json:"bank"`
	TransactionDate string `json:"transaction_date"`
	DueDate         string `json:"due_date"`
	Amount          string `json:"amount"`
	CheckNumber     string `json:"check_number"`
	InvoiceNumber   string `json:"invoice_number"`
	Notes           string `json:"notes"`
	CreatedBy       string `json:"created_by"`
}

// ReceivableDTO represents a receivable in API responses.
type ReceivableDTO struct {
	ID              string `json:"id"`
	Number          string `json:"number"`
	Client          string `json:"client"`
	Bank            string `json:"bank,omitempty"`
	TransactionDate string `json:"transaction_date"`
	DueDate         string `json:"due_date"`
	Amount          string `json:"amount"`
	CheckNumber     string `json:"check_number,omitempty"`
	Status          string `json:"status"`
	DaysUntilDue    int    `json:"days_until_due"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// CreateReceivableRequest is the request to create a receivable.
type CreateReceivableRequest struct {
	Client          string `json:"client"`
	Bank            string `json:"bank"`
	TransactionDate string `json:"transaction_date"`
	DueDate         string `json:"due_date"`
	Amount          string `json:"amount"`
	CheckNumber     string `json:"check_number"`
	Notes           string `json:"notes"`
	CreatedBy       string `json:"created_by"`
}

// SettlementDTO represents a settlement transaction.
type SettlementDTO struct {
	ID         string `json:"id"`
	ParentKind string `json:"parent_kind"`
	ParentID   string `json:"parent_id"`
	Type       string `json:"settlement_type"`
	Amount     string `json:"amount"`
	Date       string `json:"settlement_date"`
	Reference  string `json:"reference,omitempty"`
	Notes      string `json:"notes,omitempty"`
	NewStatus  string `json:"new_status,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// RecordSettlementRequest is the request to apply a settlement.
type RecordSettlementRequest struct {
	Type      string `json:"settlement_type"`
	Amount    string `json:"amount"`
	Date      string `json:"settlement_date"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
	CreatedBy string `json:"created_by"`
}

// ReminderDTO represents a payment reminder.
type ReminderDTO struct {
	ID         string  `json:"id"`
	ParentKind string  `json:"parent_kind"`
	ParentID   string  `json:"parent_id"`
	Kind       string  `json:"reminder_type"`
	TargetDate string  `json:"target_date"`
	Sent       bool    `json:"sent"`
	SentAt     *string `json:"sent_at,omitempty"`
	SentBy     string  `json:"sent_by,omitempty"`
}

// MarkSentRequest is the request to mark a reminder as sent.
type MarkSentRequest struct {
	SentBy string `json:"sent_by"`
}

// EventDTO represents a calendar event.
type EventDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Type        string  `json:"event_type"`
	Color       string  `json:"color"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	AllDay      bool    `json:"all_day"`
	SourceID    string  `json:"source_id,omitempty"`
}

// SyncRequest is the request to rebuild calendar events.
type SyncRequest struct {
	EventType string `json:"event_type"` // empty rebuilds all synced types
}

// SyncResultDTO reports how many events a sync wrote.
type SyncResultDTO struct {
	EventsCreated int `json:"events_created"`
}

// OverdueResultDTO reports how many overdue reminders a pass created.
type OverdueResultDTO struct {
	RemindersCreated int `json:"reminders_created"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toObligationDTO(ob finance.Obligation) ObligationDTO {
	return ObligationDTO{
		ID:            ob.ID,
		Number:        ob.Number,
		Kind:          string(ob.Kind),
		Bank:          ob.Bank,
		Branch:        ob.Branch,
		AccountNumber: ob.AccountNumber,
		Principal:     ob.Principal.StringFixed(2),
		AnnualRate:    ob.AnnualRate.String(),
		Frequency:     string(ob.Frequency),
		PaymentAmount: ob.PaymentAmount.StringFixed(2),
		TotalPayments: ob.TotalPayments,
		StartDate:     ob.StartDate.String(),
		EndDate:       ob.EndDate.String(),
		Status:        string(ob.Status),
		Purpose:       ob.Purpose,
		Collateral:    ob.Collateral,
		Notes:         ob.Notes,
		Active:        ob.Active,
		CreatedAt:     ob.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentDTO(p finance.Payment) PaymentDTO {
	return PaymentDTO{
		ID:               p.ID,
		ObligationID:     p.ObligationID,
		Date:             p.Date.String(),
		Amount:           p.Amount.StringFixed(2),
		PrincipalPortion: p.PrincipalPortion.StringFixed(2),
		InterestPortion:  p.InterestPortion.StringFixed(2),
		Reference:        p.Reference,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentDTOs(payments []finance.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos
}

func toPayableDTO(p finance.Payable, today finance.Date) PayableDTO {
	return PayableDTO{
		ID:              p.ID,
		Number:          p.Number,
		Supplier:        p.Supplier,
		Bank:            p.Bank,
		TransactionDate: p.TransactionDate.String(),
		DueDate:         p.DueDate.String(),
		Amount:          p.Amount.StringFixed(2),
		CheckNumber:     p.CheckNumber,
		InvoiceNumber:   p.InvoiceNumber,
		Status:          string(p.Status),
		DaysUntilDue:    finance.DaysUntil(today, p.DueDate),
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}

func toReceivableDTO(r finance.Receivable, today finance.Date) ReceivableDTO {
	return ReceivableDTO{
		ID:              r.ID,
		Number:          r.Number,
		Client:          r.Client,
		Bank:            r.Bank,
		TransactionDate: r.TransactionDate.String(),
		DueDate:         r.DueDate.String(),
		Amount:          r.Amount.StringFixed(2),
		CheckNumber:     r.CheckNumber,
		Status:          string(r.Status),
		DaysUntilDue:    finance.DaysUntil(today, r.DueDate),
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

func toSettlementDTO(s finance.Settlement) SettlementDTO {
	return SettlementDTO{
		ID:         s.ID,
		ParentKind: string(s.ParentKind),
		ParentID:   s.ParentID,
		Type:       string(s.Type),
		Amount:     s.Amount.StringFixed(2),
		Date:       s.Date.String(),
		Reference:  s.Reference,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}

func toReminderDTO(r finance.Reminder) ReminderDTO {
	dto := ReminderDTO{
		ID:         r.ID,
		ParentKind: string(r.ParentKind),
		ParentID:   r.ParentID,
		Kind:       string(r.Kind),
		TargetDate: r.TargetDate.String(),
		Sent:       r.Sent,
		SentBy:     r.SentBy,
	}
	if r.SentAt != nil {
		v := r.SentAt.Format(time.RFC3339)
		dto.SentAt = &v
	}
	return dto
}

func toEventDTO(e finance.CalendarEvent) EventDTO {
	dto := EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Type:        string(e.Type),
		Color:       e.Type.Color(),
		StartDate:   e.StartDate.String(),
		AllDay:      e.AllDay,
		SourceID:    e.SourceID,
	}
	if e.EndDate != nil {
		v := e.EndDate.String()
		dto.EndDate = &v
	}
	return dto
}
