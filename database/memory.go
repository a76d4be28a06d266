package database

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps plans for the life of the process. Used when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]PlanRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]PlanRecord)}
}

func (m *MemoryStore) SavePlan(_ context.Context, p *PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := *p
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.PDFData = nil
	m.plans[rec.ID] = rec
	return nil
}

func (m *MemoryStore) GetPlan(_ context.Context, id string) (*PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.PDFData = append([]byte(nil), rec.PDFData...)
	return &rec, nil
}

func (m *MemoryStore) UpdatePlanPDF(_ context.Context, id string, pdfData []byte, travelerName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.plans[id]
	if !ok {
		return ErrNotFound
	}
	rec.PDFData = append([]byte(nil), pdfData...)
	rec.TravelerName = travelerName
	m.plans[id] = rec
	return nil
}

func (m *MemoryStore) ListRecentPlans(_ context.Context, limit int) ([]PlanRecord, error) {
	m.mu.RLock()
	out := make([]PlanRecord, 0, len(m.plans))
	for _, rec := range m.plans {
		rec.PDFData = nil
		out = append(out, rec)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
