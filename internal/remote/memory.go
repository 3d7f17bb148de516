package remote

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend. Change notifications are
// delivered on their own goroutines, as a network backend would.
type MemoryBackend struct {
	mu      sync.Mutex
	tables  map[string][]Record
	subs    map[string]map[int]func(Change)
	nextSub int
	errs    map[string]error
	wg      sync.WaitGroup
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables: make(map[string][]Record),
		subs:   make(map[string]map[int]func(Change)),
		errs:   make(map[string]error),
	}
}

// FailTable makes every operation on table return err until cleared with nil.
func (m *MemoryBackend) FailTable(table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, table)
		return
	}
	m.errs[table] = err
}

// Rows returns a copy of the stored rows without notifications or failures.
func (m *MemoryBackend) Rows(table string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRows(m.tables[table])
}

// Seed stores rows directly, bypassing notifications.
func (m *MemoryBackend) Seed(table string, rows ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], cloneRows(rows)...)
}

// Wait blocks until every notification dispatched so far has run.
func (m *MemoryBackend) Wait() { m.wg.Wait() }

func (m *MemoryBackend) check(table string) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	return m.errs[table]
}

func (m *MemoryBackend) SelectAll(_ context.Context, table string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(table); err != nil {
		return nil, err
	}
	return cloneRows(m.tables[table]), nil
}

func (m *MemoryBackend) Insert(_ context.Context, table string, records ...Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(table); err != nil {
		return err
	}
	m.tables[table] = append(m.tables[table], cloneRows(records)...)
	m.notify(table, "insert")
	return nil
}

func (m *MemoryBackend) Update(_ context.Context, table, id string, patch Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(table); err != nil {
		return err
	}
	for i, row := range m.tables[table] {
		if row.ID() != id {
			continue
		}
		updated := row.Clone()
		for k, v := range patch {
			updated[k] = v
		}
		m.tables[table][i] = updated
		m.notify(table, "update")
	}
	return nil
}

func (m *MemoryBackend) Upsert(_ context.Context, table string, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(table); err != nil {
		return err
	}
	id := record.ID()
	for i, row := range m.tables[table] {
		if row.ID() == id {
			m.tables[table][i] = record.Clone()
			m.notify(table, "update")
			return nil
		}
	}
	m.tables[table] = append(m.tables[table], record.Clone())
	m.notify(table, "insert")
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(table); err != nil {
		return err
	}
	rows := m.tables[table]
	kept := rows[:0:0]
	for _, row := range rows {
		if row.ID() != id {
			kept = append(kept, row)
		}
	}
	if len(kept) != len(rows) {
		m.tables[table] = kept
		m.notify(table, "delete")
	}
	return nil
}

func (m *MemoryBackend) DeleteAll(_ context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(table); err != nil {
		return err
	}
	if len(m.tables[table]) > 0 {
		m.tables[table] = nil
		m.notify(table, "delete")
	}
	return nil
}

func (m *MemoryBackend) Subscribe(_ context.Context, table string, fn func(Change)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := CheckTable(table); err != nil {
		return nil, err
	}
	if m.subs[table] == nil {
		m.subs[table] = make(map[int]func(Change))
	}
	id := m.nextSub
	m.nextSub++
	m.subs[table][id] = fn
	return func() {
		m.mu.Lock()
		delete(m.subs[table], id)
		m.mu.Unlock()
	}, nil
}

// Subscribers reports how many callbacks are registered for table.
func (m *MemoryBackend) Subscribers(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[table])
}

// notify must be called with m.mu held.
func (m *MemoryBackend) notify(table, op string) {
	ch := Change{Table: table, Op: op}
	for _, fn := range m.subs[table] {
		m.wg.Add(1)
		go func(fn func(Change)) {
			defer m.wg.Done()
			fn(ch)
		}(fn)
	}
}

func cloneRows(rows []Record) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
