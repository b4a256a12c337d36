package store

import (
	"context"
	"sync"
	"time"

	"capela/internal/credential/models"
	"capela/pkg/platform/sentinel"
)

// Memory is an in-memory Store for development and tests. All methods hand
// out deep copies so callers can never mutate stored state through a
// returned snapshot.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*models.CredentialRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*models.CredentialRecord)}
}

func (m *Memory) Create(ctx context.Context, rec *models.CredentialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[rec.ID]; exists {
		return sentinel.ErrConflict
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*models.CredentialRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]*models.CredentialRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.CredentialRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (m *Memory) Update(ctx context.Context, rec *models.CredentialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return sentinel.ErrNotFound
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) AppendTransition(ctx context.Context, id string, target models.ProductionStatus, observation string, now time.Time) (*models.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	previous := rec.ProductionStatus
	if previous == "" {
		previous = models.ProductionRegistered
	}
	rec.ProductionHistory = append(rec.ProductionHistory, models.HistoryEntry{
		Status:         target,
		Observation:    observation,
		Timestamp:      now,
		PreviousStatus: previous,
	})
	rec.ProductionStatus = target
	rec.UpdatedAt = now

	return rec.Clone(), nil
}
