// Package service orchestrates the credential lifecycle: registration with
// derived identifiers, renewals, derived validity, the production-status
// workflow and its batch updates.
package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"capela/internal/credential/models"
	"capela/internal/credential/store"
	"capela/internal/platform/metrics"
	"capela/pkg/dates"
	dErrors "capela/pkg/domain-errors"
	"capela/pkg/platform/sentinel"
	"capela/pkg/requestcontext"
)

// Service coordinates credential record operations against the store.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a credential Service. The store is required; logger and
// metrics may be nil in tests.
func New(st store.Store, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if st == nil {
		return nil, errors.New("credential store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger, metrics: m}, nil
}

// Create registers a new chaplain. The identifier is derived from the
// normalized full name and current city; registration and expiration dates
// are set from the request time; the production workflow starts at its
// first state.
func (s *Service) Create(ctx context.Context, rec *models.CredentialRecord) (*models.CredentialRecord, error) {
	now := requestcontext.Now(ctx)

	if err := rec.Validate(now); err != nil {
		return nil, err
	}

	rec = rec.Clone()
	rec.ID = DeriveID(rec.FullName, rec.CurrentCity)
	rec.UserID = requestcontext.UserID(ctx)
	rec.Age = dates.Age(rec.BirthDate, now)
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.RegistrationDate = dates.FromTime(now)
	rec.ExpirationDate = dates.ExpirationDate(rec.RegistrationDate)
	rec.ProductionStatus = models.ProductionRegistered
	rec.ProductionHistory = nil

	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "já existe uma credencial cadastrada para este nome e cidade")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao criar credencial")
	}

	s.metrics.IncrementCredentialsCreated()
	s.logger.InfoContext(ctx, "credential created",
		"credential_id", rec.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return rec, nil
}

// Get returns one record by id.
func (s *Service) Get(ctx context.Context, id string) (*models.CredentialRecord, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id é obrigatório")
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return rec, nil
}

// List returns all records.
func (s *Service) List(ctx context.Context) ([]*models.CredentialRecord, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao listar credenciais")
	}
	return recs, nil
}

// Update overwrites a record's profile fields (last write wins). When
// isRenewal is set, the registration date resets to the request time and
// the expiration date is re-derived from it. Identifier, creation
// timestamp, production status and history are never touched by an update.
func (s *Service) Update(ctx context.Context, id string, updated *models.CredentialRecord, isRenewal bool) (*models.CredentialRecord, error) {
	now := requestcontext.Now(ctx)

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if err := updated.Validate(now); err != nil {
		return nil, err
	}

	rec := updated.Clone()
	rec.ID = existing.ID
	rec.UserID = existing.UserID
	rec.CreatedAt = existing.CreatedAt
	rec.Age = dates.Age(rec.BirthDate, now)
	rec.UpdatedAt = now
	rec.ProductionStatus = existing.ProductionStatus
	rec.ProductionHistory = existing.ProductionHistory

	if isRenewal {
		rec.RegistrationDate = dates.FromTime(now)
		rec.ExpirationDate = dates.ExpirationDate(rec.RegistrationDate)
	} else {
		rec.RegistrationDate = existing.RegistrationDate
		rec.ExpirationDate = existing.ExpirationDate
	}

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, wrapStoreErr(err)
	}
	return rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "credential deleted",
		"credential_id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Validity derives the record's validity classification at the request time.
func (s *Service) Validity(ctx context.Context, id string) (models.ValidityInfo, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return models.ValidityInfo{}, err
	}
	return rec.Validity(requestcontext.Now(ctx)), nil
}

// TransitionStatus applies one production-status transition: the store
// atomically appends the history entry (recording the prior status) and
// sets the new status.
//
// The write path is deliberately permissive about ordering: any of the
// seven states may be targeted in any order, matching how operators correct
// mis-recorded fulfillment steps. CanAdvance remains a query primitive for
// dashboards.
func (s *Service) TransitionStatus(ctx context.Context, id string, target models.ProductionStatus, observation string) (*models.CredentialRecord, error) {
	if !target.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "status de produção desconhecido: %q", target)
	}
	rec, err := s.store.AppendTransition(ctx, id, target, observation, requestcontext.Now(ctx))
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.metrics.IncrementStatusTransition(string(target))
	s.logger.InfoContext(ctx, "production status updated",
		"credential_id", id,
		"status", string(target),
		"request_id", requestcontext.RequestID(ctx),
	)
	return rec, nil
}

// BatchResult aggregates the outcome of a batch transition.
type BatchResult struct {
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`
}

// BatchTransitionStatus applies TransitionStatus to every id concurrently.
// Each transition is independent: failures are counted, never rolled back
// and never abort the rest of the batch.
func (s *Service) BatchTransitionStatus(ctx context.Context, ids []string, target models.ProductionStatus, observation string) (BatchResult, error) {
	if !target.IsValid() {
		return BatchResult{}, dErrors.Newf(dErrors.CodeBadRequest, "status de produção desconhecido: %q", target)
	}
	if len(ids) == 0 {
		return BatchResult{}, dErrors.New(dErrors.CodeBadRequest, "nenhuma credencial selecionada")
	}

	results := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if _, err := s.TransitionStatus(gctx, id, target, observation); err != nil {
				s.logger.WarnContext(ctx, "batch transition item failed",
					"credential_id", id,
					"error", err.Error(),
					"request_id", requestcontext.RequestID(ctx),
				)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	// Item errors are absorbed above; Wait only reports context cancellation.
	if err := g.Wait(); err != nil {
		return BatchResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "falha na atualização em lote")
	}

	var res BatchResult
	for _, ok := range results {
		if ok {
			res.SuccessCount++
		} else {
			res.FailCount++
		}
	}
	return res, nil
}

// Statistics summarizes the whole registry for the admin dashboard. The
// expiring-soon bucket uses the dashboard's 90-day cut, coarser than the
// per-record classifier tiers.
type Statistics struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

// GetStatistics counts records by how close their expiration is at the
// request time.
func (s *Service) GetStatistics(ctx context.Context) (Statistics, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return Statistics{}, err
	}
	now := requestcontext.Now(ctx)

	stats := Statistics{Total: len(recs)}
	for _, rec := range recs {
		days := dates.DaysUntil(rec.ExpirationDate, now)
		switch {
		case days < 0:
			stats.Expired++
		case days <= 90:
			stats.ExpiringSoon++
		default:
			stats.Active++
		}
	}
	return stats, nil
}

func wrapStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "capelão não encontrado")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "registro em conflito")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.New(dErrors.CodeUnavailable, "armazenamento indisponível")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "falha no armazenamento")
	}
}
