// Package store provides an in-memory finance.Store implementation
// (for testing/dev). The production store lives in store/sqlite.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/obligation-engine/finance"
)

// =============================================================================
// MEMORY STORE
// =============================================================================
// Enforces the same uniqueness contracts as the SQLite store: document
// numbers are unique per table, reminders are unique per (parent, kind).

type Memory struct {
	mu sync.RWMutex

	obligations map[string]finance.Obligation
	payments    map[string][]finance.Payment // keyed by obligation id

	payables    map[string]finance.Payable
	receivables map[string]finance.Receivable
	settlements map[settlementKey][]finance.Settlement

	reminders map[string]finance.Reminder
	events    map[string]finance.CalendarEvent

	numbers map[string]bool // issued document numbers, all kinds
}

type settlementKey struct {
	Kind     finance.DocumentKind
	ParentID string
}

func NewMemory() *Memory {
	return &Memory{
		obligations: make(map[string]finance.Obligation),
		payments:    make(map[string][]finance.Payment),
		payables:    make(map[string]finance.Payable),
		receivables: make(map[string]finance.Receivable),
		settlements: make(map[settlementKey][]finance.Settlement),
		reminders:   make(map[string]finance.Reminder),
		events:      make(map[string]finance.CalendarEvent),
		numbers:     make(map[string]bool),
	}
}

func (m *Memory) claimNumber(number string) error {
	if m.numbers[number] {
		return finance.ErrDuplicateNumber
	}
	m.numbers[number] = true
	return nil
}

// =============================================================================
// NUMBER INDEX
// =============================================================================

// LastNumber scans issued numbers for the given kind and year and returns
// the highest by numeric suffix, or "" when none exists. Zero-padding
// makes lexicographic and numeric order agree, matching the SQLite store.
func (m *Memory) LastNumber(_ context.Context, kind finance.DocumentKind, year int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := finance.FormatNumber(kind, year, 0)
	prefix = prefix[:len(prefix)-5] // strip the zero sequence, keep "AP-2025-"

	last := ""
	for n := range m.numbers {
		if len(n) > len(prefix) && n[:len(prefix)] == prefix && n > last {
			last = n
		}
	}
	return last, nil
}

// =============================================================================
// OBLIGATIONS + PAYMENTS
// =============================================================================

func (m *Memory) InsertObligation(_ context.Context, ob finance.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.claimNumber(ob.Number); err != nil {
		return err
	}
	m.obligations[ob.ID] = ob
	return nil
}

func (m *Memory) Obligation(_ context.Context, id string) (*finance.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ob, ok := m.obligations[id]
	if !ok {
		return nil, nil
	}
	return &ob, nil
}

func (m *Memory) Obligations(_ context.Context) ([]finance.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]finance.Obligation, 0, len(m.obligations))
	for _, ob := range m.obligations {
		out = append(out, ob)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Memory) UpdateObligationStatus(_ context.Context, id string, status finance.ObligationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ob, ok := m.obligations[id]
	if !ok {
		return finance.ErrObligationNotFound
	}
	ob.Status = status
	m.obligations[id] = ob
	return nil
}

func (m *Memory) SetObligationActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ob, ok := m.obligations[id]
	if !ok {
		return finance.ErrObligationNotFound
	}
	ob.Active = active
	m.obligations[id] = ob
	return nil
}

func (m *Memory) InsertPayment(_ context.Context, p finance.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := m.payments[p.ObligationID]

	// Keep payments ordered by date; binary search for the insertion point.
	i := sort.Search(len(txs), func(i int) bool {
		return txs[i].Date.After(p.Date)
	})
	txs = append(txs, finance.Payment{})
	copy(txs[i+1:], txs[i:])
	txs[i] = p
	m.payments[p.ObligationID] = txs
	return nil
}

func (m *Memory) Payments(_ context.Context, obligationID string) ([]finance.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]finance.Payment, len(m.payments[obligationID]))
	copy(result, m.payments[obligationID])
	return result, nil
}

// =============================================================================
// PAYABLES + RECEIVABLES + SETTLEMENTS
// =============================================================================

func (m *Memory) InsertPayable(_ context.Context, p finance.Payable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.claimNumber(p.Number); err != nil {
		return err
	}
	m.payables[p.ID] = p
	return nil
}

func (m *Memory) Payable(_ context.Context, id string) (*finance.Payable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payables[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) Payables(_ context.Context) ([]finance.Payable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]finance.Payable, 0, len(m.payables))
	for _, p := range m.payables {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Memory) UpdatePayableStatus(_ context.Context, id string, status finance.PayableStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payables[id]
	if !ok {
		return finance.ErrPayableNotFound
	}
	p.Status = status
	m.payables[id] = p
	return nil
}

func (m *Memory) InsertReceivable(_ context.Context, r finance.Receivable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.claimNumber(r.Number); err != nil {
		return err
	}
	m.receivables[r.ID] = r
	return nil
}

func (m *Memory) Receivable(_ context.Context, id string) (*finance.Receivable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.receivables[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) Receivables(_ context.Context) ([]finance.Receivable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]finance.Receivable, 0, len(m.receivables))
	for _, r := range m.receivables {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Memory) UpdateReceivableStatus(_ context.Context, id string, status finance.ReceivableStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.receivables[id]
	if !ok {
		return finance.ErrReceivableNotFound
	}
	r.Status = status
	m.receivables[id] = r
	return nil
}

func (m *Memory) InsertSettlement(_ context.Context, s finance.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := settlementKey{Kind: s.ParentKind, ParentID: s.ParentID}
	m.settlements[k] = append(m.settlements[k], s)
	return nil
}

func (m *Memory) Settlements(_ context.Context, kind finance.DocumentKind, parentID string) ([]finance.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := settlementKey{Kind: kind, ParentID: parentID}
	result := make([]finance.Settlement, len(m.settlements[k]))
	copy(result, m.settlements[k])
	return result, nil
}

// =============================================================================
// REMINDERS
// =============================================================================

func (m *Memory) InsertReminder(_ context.Context, r finance.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reminders {
		if existing.ParentKind == r.ParentKind && existing.ParentID == r.ParentID && existing.Kind == r.Kind {
			return finance.ErrDuplicateReminder
		}
	}
	m.reminders[r.ID] = r
	return nil
}

func (m *Memory) Reminder(_ context.Context, id string) (*finance.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reminders[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) Reminders(_ context.Context, kind finance.DocumentKind, parentID string) ([]finance.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []finance.Reminder
	for _, r := range m.reminders {
		if r.ParentKind == kind && r.ParentID == parentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetDate.Before(out[j].TargetDate) })
	return out, nil
}

func (m *Memory) UnsentReminders(_ context.Context) ([]finance.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []finance.Reminder
	for _, r := range m.reminders {
		if !r.Sent {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetDate.Before(out[j].TargetDate) })
	return out, nil
}

func (m *Memory) SaveReminderSent(_ context.Context, id, sentBy string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reminders[id]
	if !ok {
		return finance.ErrReminderNotFound
	}
	r.Sent = true
	r.SentAt = &sentAt
	r.SentBy = sentBy
	m.reminders[id] = r
	return nil
}

// =============================================================================
// CALENDAR EVENTS
// =============================================================================

func (m *Memory) InsertEvent(_ context.Context, e finance.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[e.ID] = e
	return nil
}

func (m *Memory) Events(_ context.Context) ([]finance.CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]finance.CalendarEvent, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteEventsByType(_ context.Context, t finance.EventType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.events {
		if e.Type == t {
			delete(m.events, id)
		}
	}
	return nil
}
