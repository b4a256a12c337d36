// Package store persists events. Events are low-volume operational data, so
// only the in-memory implementation exists; the credential registry is the
// system of record that gets durable storage.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"capela/internal/event/models"
	"capela/pkg/platform/sentinel"
)

// Store is the persistence boundary for events.
type Store interface {
	Create(ctx context.Context, ev *models.Event) error
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, ev *models.Event) error
	Delete(ctx context.Context, id string) error

	// AddParticipant enrolls a record atomically, returning ErrConflict when
	// the record is already enrolled. RemoveParticipant is a no-op for
	// records that are not enrolled.
	AddParticipant(ctx context.Context, eventID, recordID string, now time.Time) (*models.Event, error)
	RemoveParticipant(ctx context.Context, eventID, recordID string, now time.Time) (*models.Event, error)
}

// Memory is a mutex-guarded in-memory Store.
type Memory struct {
	mu     sync.RWMutex
	events map[string]*models.Event
}

func NewMemory() *Memory {
	return &Memory{events: make(map[string]*models.Event)}
}

func (m *Memory) Create(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[ev.ID]; ok {
		return sentinel.ErrConflict
	}
	m.events[ev.ID] = ev.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return ev.Clone(), nil
}

// List returns events newest first, matching the admin listing order.
func (m *Memory) List(_ context.Context) ([]*models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Update(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[ev.ID]; !ok {
		return sentinel.ErrNotFound
	}
	m.events[ev.ID] = ev.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *Memory) AddParticipant(_ context.Context, eventID, recordID string, now time.Time) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if ev.HasParticipant(recordID) {
		return nil, sentinel.ErrConflict
	}
	ev.Participants = append(ev.Participants, recordID)
	ev.UpdatedAt = now
	return ev.Clone(), nil
}

func (m *Memory) RemoveParticipant(_ context.Context, eventID, recordID string, now time.Time) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	kept := ev.Participants[:0]
	for _, p := range ev.Participants {
		if p != recordID {
			kept = append(kept, p)
		}
	}
	ev.Participants = kept
	ev.UpdatedAt = now
	return ev.Clone(), nil
}
