/*
Package sqlite provides the SQLite-backed implementation of finance.Store.

PURPOSE:
  Persists obligations, payments, payables, receivables, settlements,
  reminders, and calendar events. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  Payment and settlement tables take INSERTs only; there are no UPDATE
  or DELETE statements against them anywhere in this package.

KEY CONSTRAINTS:
  - UNIQUE(number) on each document table backs sequence allocation:
    the read-then-write allocator relies on the constraint rejecting
    the loser of a race, mapped to finance.ErrDuplicateNumber
  - UNIQUE(parent_kind, parent_id, kind) on reminders enforces at most
    one reminder per (parent, kind), mapped to ErrDuplicateReminder

WAL MODE:
  Opened with WAL so readers don't block during writes.

USAGE:
  store, err := sqlite.New("./data/finance.db")
  ledger := finance.NewLedger(store, finance.SystemClock{})

SEE ALSO:
  - finance/store.go: interface contracts
  - finance/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/obligation-engine/finance"
)

// Store implements finance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS obligations (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		bank TEXT NOT NULL,
		branch TEXT,
		account_number TEXT,
		principal TEXT NOT NULL,
		annual_rate TEXT NOT NULL,
		frequency TEXT NOT NULL,
		payment_amount TEXT NOT NULL,
		total_payments INTEGER NOT NULL DEFAULT 1,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		purpose TEXT,
		collateral TEXT,
		notes TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_obligations_number ON obligations(number);

	-- Append-only: no UPDATE/DELETE is ever issued against this table.
	CREATE TABLE IF NOT EXISTS obligation_payments (
		id TEXT PRIMARY KEY,
		obligation_id TEXT NOT NULL REFERENCES obligations(id) ON DELETE CASCADE,
		payment_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		principal_portion TEXT NOT NULL,
		interest_portion TEXT NOT NULL,
		reference TEXT,
		notes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_obligation_date
		ON obligation_payments(obligation_id, payment_date);

	CREATE TABLE IF NOT EXISTS payables (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		supplier TEXT NOT NULL,
		bank TEXT,
		transaction_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		check_number TEXT,
		invoice_number TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payables_status ON payables(status);
	CREATE INDEX IF NOT EXISTS idx_payables_due_date ON payables(due_date);

	CREATE TABLE IF NOT EXISTS receivables (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		client TEXT NOT NULL,
		bank TEXT,
		transaction_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		check_number TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_receivables_status ON receivables(status);
	CREATE INDEX IF NOT EXISTS idx_receivables_due_date ON receivables(due_date);

	-- Append-only settlement log for payables/receivables.
	CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		parent_kind TEXT NOT NULL,
		parent_id TEXT NOT NULL,
		settlement_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		settlement_date TEXT NOT NULL,
		reference TEXT,
		notes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settlements_parent
		ON settlements(parent_kind, parent_id, settlement_date);

	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		parent_kind TEXT NOT NULL,
		parent_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		target_date TEXT NOT NULL,
		sent BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at TEXT,
		sent_by TEXT,
		notes TEXT
	);

	-- At most one reminder per (parent, kind).
	CREATE UNIQUE INDEX IF NOT EXISTS idx_reminders_parent_kind
		ON reminders(parent_kind, parent_id, kind);
	CREATE INDEX IF NOT EXISTS idx_reminders_unsent
		ON reminders(sent, target_date);

	CREATE TABLE IF NOT EXISTS calendar_events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		event_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		all_day BOOLEAN NOT NULL DEFAULT TRUE,
		source_id TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_type ON calendar_events(event_type);
	CREATE INDEX IF NOT EXISTS idx_events_start_date ON calendar_events(start_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// NUMBER INDEX
// =============================================================================

func numberTable(kind finance.DocumentKind) string {
	switch kind {
	case finance.DocObligation:
		return "obligations"
	case finance.DocPayable:
		return "payables"
	default:
		return "receivables"
	}
}

// LastNumber returns the highest number issued for (kind, year), or "".
// Zero-padded sequences make lexicographic order equal numeric order.
func (s *Store) LastNumber(ctx context.Context, kind finance.DocumentKind, year int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(
		"SELECT number FROM %s WHERE number LIKE ? ORDER BY number DESC LIMIT 1",
		numberTable(kind),
	)
	pattern := fmt.Sprintf("%s-%d-%%", kind.Prefix(), year)

	var number string
	err := s.db.QueryRowContext(ctx, query, pattern).Scan(&number)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

// =============================================================================
// OBLIGATIONS
// =============================================================================

func (s *Store) InsertObligation(ctx context.Context, ob finance.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO obligations
		(id, number, kind, bank, branch, account_number, principal, annual_rate,
		 frequency, payment_amount, total_payments, start_date, end_date, status,
		 purpose, collateral, notes, active, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		ob.ID, ob.Number, ob.Kind, ob.Bank, ob.Branch, ob.AccountNumber,
		ob.Principal.String(), ob.AnnualRate.String(), ob.Frequency,
		ob.PaymentAmount.String(), ob.TotalPayments,
		ob.StartDate.String(), ob.EndDate.String(), ob.Status,
		ob.Purpose, ob.Collateral, ob.Notes, ob.Active,
		ob.CreatedBy, ob.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return finance.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to insert obligation: %w", err)
	}
	return nil
}

const obligationColumns = `id, number, kind, bank, branch, account_number, principal,
	annual_rate, frequency, payment_amount, total_payments, start_date, end_date,
	status, purpose, collateral, notes, active, created_by, created_at`

func (s *Store) Obligation(ctx context.Context, id string) (*finance.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+obligationColumns+" FROM obligations WHERE id = ?", id)

	ob, err := scanObligation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ob, nil
}

func (s *Store) Obligations(ctx context.Context) ([]finance.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+obligationColumns+" FROM obligations ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obligations []finance.Obligation
	for rows.Next() {
		ob, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, *ob)
	}
	return obligations, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*finance.Obligation, error) {
	var (
		ob                                        finance.Obligation
		principal, rate, payment                  string
		startDate, endDate, createdAt             string
		branch, account, purpose, collat, notes   sql.NullString
		createdBy                                 sql.NullString
	)

	err := row.Scan(
		&ob.ID, &ob.Number, &ob.Kind, &ob.Bank, &branch, &account,
		&principal, &rate, &ob.Frequency, &payment, &ob.TotalPayments,
		&startDate, &endDate, &ob.Status, &purpose, &collat, &notes,
		&ob.Active, &createdBy, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	ob.Branch = branch.String
	ob.AccountNumber = account.String
	ob.Purpose = purpose.String
	ob.Collateral = collat.String
	ob.Notes = notes.String
	ob.CreatedBy = createdBy.String
	ob.Principal = mustDecimal(principal)
	ob.AnnualRate = mustDecimal(rate)
	ob.PaymentAmount = mustDecimal(payment)
	ob.StartDate = mustDate(startDate)
	ob.EndDate = mustDate(endDate)
	ob.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &ob, nil
}

func (s *Store) UpdateObligationStatus(ctx context.Context, id string, status finance.ObligationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE obligations SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return checkAffected(res, finance.ErrObligationNotFound)
}

func (s *Store) SetObligationActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE obligations SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	return checkAffected(res, finance.ErrObligationNotFound)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) InsertPayment(ctx context.Context, p finance.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO obligation_payments
		(id, obligation_id, payment_date, amount, principal_portion, interest_portion,
		 reference, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.ObligationID, p.Date.String(),
		p.Amount.String(), p.PrincipalPortion.String(), p.InterestPortion.String(),
		p.Reference, p.Notes, p.CreatedBy, p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *Store) Payments(ctx context.Context, obligationID string) ([]finance.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, obligation_id, payment_date, amount, principal_portion,
		       interest_portion, reference, notes, created_by, created_at
		FROM obligation_payments
		WHERE obligation_id = ?
		ORDER BY payment_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, obligationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []finance.Payment
	for rows.Next() {
		var (
			p                          finance.Payment
			date, amount, princ, intr  string
			reference, notes, by       sql.NullString
			createdAt                  string
		)
		if err := rows.Scan(&p.ID, &p.ObligationID, &date, &amount, &princ, &intr,
			&reference, &notes, &by, &createdAt); err != nil {
			return nil, err
		}
		p.Date = mustDate(date)
		p.Amount = mustDecimal(amount)
		p.PrincipalPortion = mustDecimal(princ)
		p.InterestPortion = mustDecimal(intr)
		p.Reference = reference.String
		p.Notes = notes.String
		p.CreatedBy = by.String
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// PAYABLES
// =============================================================================

func (s *Store) InsertPayable(ctx context.Context, p finance.Payable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO payables
		(id, number, supplier, bank, transaction_date, due_date, amount,
		 check_number, invoice_number, status, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Number, p.Supplier, p.Bank,
		p.TransactionDate.String(), p.DueDate.String(), p.Amount.String(),
		p.CheckNumber, p.InvoiceNumber, p.Status, p.Notes,
		p.CreatedBy, p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return finance.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to insert payable: %w", err)
	}
	return nil
}

const payableColumns = `id, number, supplier, bank, transaction_date, due_date,
	amount, check_number, invoice_number, status, notes, created_by, created_at`

func (s *Store) Payable(ctx context.Context, id string) (*finance.Payable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+payableColumns+" FROM payables WHERE id = ?", id)
	p, err := scanPayable(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) Payables(ctx context.Context) ([]finance.Payable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+payableColumns+" FROM payables ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payables []finance.Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, err
		}
		payables = append(payables, *p)
	}
	return payables, rows.Err()
}

func scanPayable(row rowScanner) (*finance.Payable, error) {
	var (
		p                             finance.Payable
		txDate, dueDate, amount       string
		bank, check, invoice, notes   sql.NullString
		createdBy                     sql.NullString
		createdAt                     string
	)

	err := row.Scan(&p.ID, &p.Number, &p.Supplier, &bank, &txDate, &dueDate,
		&amount, &check, &invoice, &p.Status, &notes, &createdBy, &createdAt)
	if err != nil {
		return nil, err
	}

	p.Bank = bank.String
	p.CheckNumber = check.String
	p.InvoiceNumber = invoice.String
	p.Notes = notes.String
	p.CreatedBy = createdBy.String
	p.TransactionDate = mustDate(txDate)
	p.DueDate = mustDate(dueDate)
	p.Amount = mustDecimal(amount)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

func (s *Store) UpdatePayableStatus(ctx context.Context, id string, status finance.PayableStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE payables SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return checkAffected(res, finance.ErrPayableNotFound)
}

// =============================================================================
// RECEIVABLES
// =============================================================================

func (s *Store) InsertReceivable(ctx context.Context, r finance.Receivable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO receivables
		(id, number, client, bank, transaction_date, due_date, amount,
		 check_number, status, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Number, r.Client, r.Bank,
		r.TransactionDate.String(), r.DueDate.String(), r.Amount.String(),
		r.CheckNumber, r.Status, r.Notes,
		r.CreatedBy, r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return finance.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to insert receivable: %w", err)
	}
	return nil
}

const receivableColumns = `id, number, client, bank, transaction_date, due_date,
	amount, check_number, status, notes, created_by, created_at`

func (s *Store) Receivable(ctx context.Context, id string) (*finance.Receivable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+receivableColumns+" FROM receivables WHERE id = ?", id)
	r, err := scanReceivable(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) Receivables(ctx context.Context) ([]finance.Receivable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+receivableColumns+" FROM receivables ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receivables []finance.Receivable
	for rows.Next() {
		r, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		receivables = append(receivables, *r)
	}
	return receivables, rows.Err()
}

func scanReceivable(row rowScanner) (*finance.Receivable, error) {
	var (
		r                       finance.Receivable
		txDate, dueDate, amount string
		bank, check, notes, by  sql.NullString
		createdAt               string
	)

	err := row.Scan(&r.ID, &r.Number, &r.Client, &bank, &txDate, &dueDate,
		&amount, &check, &r.Status, &notes, &by, &createdAt)
	if err != nil {
		return nil, err
	}

	r.Bank = bank.String
	r.CheckNumber = check.String
	r.Notes = notes.String
	r.CreatedBy = by.String
	r.TransactionDate = mustDate(txDate)
	r.DueDate = mustDate(dueDate)
	r.Amount = mustDecimal(amount)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

func (s *Store) UpdateReceivableStatus(ctx context.Context, id string, status finance.ReceivableStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE receivables SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return checkAffected(res, finance.ErrReceivableNotFound)
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

func (s *Store) InsertSettlement(ctx context.Context, st finance.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO settlements
		(id, parent_kind, parent_id, settlement_type, amount, settlement_date,
		 reference, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.ParentKind, st.ParentID, st.Type,
		st.Amount.String(), st.Date.String(),
		st.Reference, st.Notes, st.CreatedBy, st.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

func (s *Store) Settlements(ctx context.Context, kind finance.DocumentKind, parentID string) ([]finance.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, parent_kind, parent_id, settlement_type, amount, settlement_date,
		       reference, notes, created_by, created_at
		FROM settlements
		WHERE parent_kind = ? AND parent_id = ?
		ORDER BY settlement_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, kind, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []finance.Settlement
	for rows.Next() {
		var (
			st                   finance.Settlement
			amount, date         string
			reference, notes, by sql.NullString
			createdAt            string
		)
		if err := rows.Scan(&st.ID, &st.ParentKind, &st.ParentID, &st.Type,
			&amount, &date, &reference, &notes, &by, &createdAt); err != nil {
			return nil, err
		}
		st.Amount = mustDecimal(amount)
		st.Date = mustDate(date)
		st.Reference = reference.String
		st.Notes = notes.String
		st.CreatedBy = by.String
		st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		settlements = append(settlements, st)
	}
	return settlements, rows.Err()
}

// =============================================================================
// REMINDERS
// =============================================================================

func (s *Store) InsertReminder(ctx context.Context, r finance.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO reminders
		(id, parent_kind, parent_id, kind, target_date, sent, sent_at, sent_by, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var sentAt *string
	if r.SentAt != nil {
		v := r.SentAt.Format(time.RFC3339)
		sentAt = &v
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ParentKind, r.ParentID, r.Kind, r.TargetDate.String(),
		r.Sent, sentAt, r.SentBy, r.Notes,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return finance.ErrDuplicateReminder
		}
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

const reminderColumns = `id, parent_kind, parent_id, kind, target_date, sent, sent_at, sent_by, notes`

func (s *Store) Reminder(ctx context.Context, id string) (*finance.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ?", id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) Reminders(ctx context.Context, kind finance.DocumentKind, parentID string) ([]finance.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + reminderColumns + ` FROM reminders
		WHERE parent_kind = ? AND parent_id = ?
		ORDER BY target_date ASC`

	return s.queryReminders(ctx, query, kind, parentID)
}

func (s *Store) UnsentReminders(ctx context.Context) ([]finance.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + reminderColumns + ` FROM reminders
		WHERE sent = FALSE
		ORDER BY target_date ASC`

	return s.queryReminders(ctx, query)
}

func (s *Store) queryReminders(ctx context.Context, query string, args ...any) ([]finance.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []finance.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func scanReminder(row rowScanner) (*finance.Reminder, error) {
	var (
		r              finance.Reminder
		targetDate     string
		sentAt, sentBy sql.NullString
		notes          sql.NullString
	)

	err := row.Scan(&r.ID, &r.ParentKind, &r.ParentID, &r.Kind, &targetDate,
		&r.Sent, &sentAt, &sentBy, &notes)
	if err != nil {
		return nil, err
	}

	r.TargetDate = mustDate(targetDate)
	r.SentBy = sentBy.String
	r.Notes = notes.String
	if sentAt.Valid {
		t, _ := time.Parse(time.RFC3339, sentAt.String)
		r.SentAt = &t
	}
	return &r, nil
}

func (s *Store) SaveReminderSent(ctx context.Context, id, sentBy string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET sent = TRUE, sent_at = ?, sent_by = ? WHERE id = ?",
		sentAt.Format(time.RFC3339), sentBy, id)
	if err != nil {
		return err
	}
	return checkAffected(res, finance.ErrReminderNotFound)
}

// =============================================================================
// CALENDAR EVENTS
// =============================================================================

func (s *Store) InsertEvent(ctx context.Context, e finance.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO calendar_events
		(id, title, description, event_type, start_date, end_date, all_day,
		 source_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var endDate *string
	if e.EndDate != nil {
		v := e.EndDate.String()
		endDate = &v
	}

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Type, e.StartDate.String(), endDate,
		e.AllDay, e.SourceID, e.CreatedBy, e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return nil
}

func (s *Store) Events(ctx context.Context) ([]finance.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, title, description, event_type, start_date, end_date, all_day,
		       source_id, created_by, created_at
		FROM calendar_events
		ORDER BY start_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []finance.CalendarEvent
	for rows.Next() {
		var (
			e                        finance.CalendarEvent
			startDate                string
			endDate, desc, source    sql.NullString
			createdBy                sql.NullString
			createdAt                string
		)
		if err := rows.Scan(&e.ID, &e.Title, &desc, &e.Type, &startDate, &endDate,
			&e.AllDay, &source, &createdBy, &createdAt); err != nil {
			return nil, err
		}
		e.Description = desc.String
		e.SourceID = source.String
		e.CreatedBy = createdBy.String
		e.StartDate = mustDate(startDate)
		if endDate.Valid {
			d := mustDate(endDate.String)
			e.EndDate = &d
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) DeleteEventsByType(ctx context.Context, t finance.EventType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM calendar_events WHERE event_type = ?", t)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func mustDate(s string) finance.Date {
	d, err := finance.ParseDate(s)
	if err != nil {
		return finance.Date{}
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
