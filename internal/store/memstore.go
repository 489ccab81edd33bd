package store

import (
	"errors"
	"sync"
)

// MemStore is an in-memory Store for tests and dry runs. Safe for
// concurrent use: batch workers append grades in parallel.
type MemStore struct {
	mu      sync.Mutex
	nextID  int64
	records []*Record
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1}
}

func (m *MemStore) SaveGrade(rec *Record) (int64, error) {
	if rec == nil {
		return 0, errors.New("record is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	cp.ID = m.nextID
	if cp.CreatedAt == "" {
		cp.CreatedAt = nowUTC()
	}
	m.nextID++
	m.records = append(m.records, &cp)
	return cp.ID, nil
}

func (m *MemStore) GetGrade(id int64) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ListGradesByRun(runID string) ([]*Record, error) {
	return m.filter(func(r *Record) bool { return r.RunID == runID }), nil
}

func (m *MemStore) ListGradesByPattern(patternID string) ([]*Record, error) {
	return m.filter(func(r *Record) bool { return r.PatternID == patternID }), nil
}

func (m *MemStore) ListRecent(n int) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*Record
	for i := len(m.records) - 1; i >= 0 && len(list) < n; i-- {
		cp := *m.records[i]
		list = append(list, &cp)
	}
	return list, nil
}

func (m *MemStore) Close() error { return nil }

func (m *MemStore) filter(keep func(*Record) bool) []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*Record
	for _, r := range m.records {
		if keep(r) {
			cp := *r
			list = append(list, &cp)
		}
	}
	return list
}
