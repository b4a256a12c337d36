// Package service orchestrates event CRUD and participant enrollment.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"capela/internal/event/models"
	"capela/internal/event/store"
	dErrors "capela/pkg/domain-errors"
	"capela/pkg/platform/sentinel"
	"capela/pkg/requestcontext"
)

// Service coordinates event operations against the store.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// New creates an event Service. The store is required; logger may be nil in
// tests.
func New(st store.Store, logger *slog.Logger) (*Service, error) {
	if st == nil {
		return nil, errors.New("event store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}, nil
}

// Create registers a new event with an empty enrollment list.
func (s *Service) Create(ctx context.Context, ev *models.Event) (*models.Event, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	ev = ev.Clone()
	ev.ID = uuid.NewString()
	ev.Participants = []string{}
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if err := s.store.Create(ctx, ev); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "event created",
		"event_id", ev.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return ev, nil
}

// Get returns one event by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	ev, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return ev, nil
}

// List returns all events, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Event, error) {
	evs, err := s.store.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return evs, nil
}

// ListForRecord returns the events a record is enrolled in.
func (s *Service) ListForRecord(ctx context.Context, recordID string) ([]*models.Event, error) {
	evs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	enrolled := evs[:0]
	for _, ev := range evs {
		if ev.HasParticipant(recordID) {
			enrolled = append(enrolled, ev)
		}
	}
	return enrolled, nil
}

// Update overwrites an event's fields, preserving its id, enrollment list
// and creation timestamp.
func (s *Service) Update(ctx context.Context, id string, updated *models.Event) (*models.Event, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ev := updated.Clone()
	ev.ID = existing.ID
	ev.Participants = existing.Participants
	ev.CreatedAt = existing.CreatedAt
	ev.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, ev); err != nil {
		return nil, wrapStoreErr(err)
	}
	return ev, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "event deleted",
		"event_id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Enroll adds a record to the event. Enrolling twice is rejected with a
// conflict instead of silently succeeding, so the caller can tell the user
// they were already enrolled.
func (s *Service) Enroll(ctx context.Context, eventID, recordID string) (*models.Event, error) {
	if recordID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identificador do capelão é obrigatório")
	}
	ev, err := s.store.AddParticipant(ctx, eventID, recordID, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "você já está inscrito neste evento")
		}
		return nil, wrapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "participant enrolled",
		"event_id", eventID,
		"credential_id", recordID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return ev, nil
}

// Unenroll removes a record from the event. Removing a record that is not
// enrolled succeeds quietly.
func (s *Service) Unenroll(ctx context.Context, eventID, recordID string) (*models.Event, error) {
	ev, err := s.store.RemoveParticipant(ctx, eventID, recordID, requestcontext.Now(ctx))
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return ev, nil
}

func wrapStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "evento não encontrado")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "evento em conflito")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "falha no armazenamento de eventos")
	}
}
