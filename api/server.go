/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/obligations/*   Obligations, payments, schedule projection
  /api/payables/*      Payables and their settlements
  /api/receivables/*   Receivables and their settlements
  /api/reminders/*     Reminder listing, mark-sent, overdue pass
  /api/calendar/*      Calendar events and sync

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Obligation routes
		r.Route("/obligations", func(r chi.Router) {
			r.Get("/", h.ListObligations)
			r.Post("/", h.CreateObligation)
			r.Get("/{id}", h.GetObligation)
			r.Get("/{id}/summary", h.GetObligationSummary)
			r.Get("/{id}/payments", h.ListPayments)
			r.Post("/{id}/payments", h.RecordPayment)
			r.Get("/{id}/schedule", h.GetSchedule)
		})

		// Payable routes
		r.Route("/payables", func(r chi.Router) {
			r.Get("/", h.ListPayables)
			r.Post("/", h.CreatePayable)
			r.Get("/{id}", h.GetPayable)
			r.Get("/{id}/settlements", h.ListPayableSettlements)
			r.Post("/{id}/settlements", h.SettlePayable)
		})

		// Receivable routes
		r.Route("/receivables", func(r chi.Router) {
			r.Get("/", h.ListReceivables)
			r.Post("/", h.CreateReceivable)
			r.Get("/{id}", h.GetReceivable)
			r.Get("/{id}/settlements", h.ListReceivableSettlements)
			r.Post("/{id}/settlements", h.SettleReceivable)
		})

		// Reminder routes
		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", h.ListUnsentReminders)
			r.Post("/{id}/sent", h.MarkReminderSent)
			r.Post("/detect-overdue", h.DetectOverdue)
		})

		// Calendar routes
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/events", h.ListEvents)
			r.Post("/sync", h.SyncCalendar)
		})
	})

	return r
}
