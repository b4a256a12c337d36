// Package store persists credential records. Implementations return
// sentinel errors (pkg/platform/sentinel) for infrastructure facts; the
// service layer translates them into domain errors.
package store

import (
	"context"
	"time"

	"capela/internal/credential/models"
)

// Store is the persistence boundary for credential records.
//
// Concurrency contract: AppendTransition is atomic with respect to its own
// record (read-modify-write on that one record). There is no cross-record
// locking; a concurrent Update to the same record follows the store's
// general last-write-wins policy.
type Store interface {
	// Create inserts a new record. Returns sentinel.ErrConflict when the
	// derived id is already taken.
	Create(ctx context.Context, rec *models.CredentialRecord) error

	// Get returns a snapshot of one record, or sentinel.ErrNotFound.
	Get(ctx context.Context, id string) (*models.CredentialRecord, error)

	// List returns snapshots of all records.
	List(ctx context.Context) ([]*models.CredentialRecord, error)

	// Update overwrites a record (last write wins), or sentinel.ErrNotFound.
	Update(ctx context.Context, rec *models.CredentialRecord) error

	// Delete removes a record, or sentinel.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// AppendTransition atomically reads the record's current production
	// status, appends a history entry {target, observation, now, previous}
	// and sets the status to target. Returns the updated record.
	AppendTransition(ctx context.Context, id string, target models.ProductionStatus, observation string, now time.Time) (*models.CredentialRecord, error)
}
