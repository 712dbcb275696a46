// Package repository defines the persistence boundary for job state.
package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
)

// ErrJobStateNotFound is returned by Read when no record exists for a job id.
var ErrJobStateNotFound = errors.New("job state not found")

// JobStateStore is a key-value store of encoded job states keyed by job id.
// Each record is independent; no atomicity across keys is assumed.
// Implementations must be safe for concurrent use.
type JobStateStore interface {
	// Write creates or replaces the record for id.
	Write(ctx context.Context, id model.JobID, data []byte) error
	// Read returns the record for id, or ErrJobStateNotFound.
	Read(ctx context.Context, id model.JobID) ([]byte, error)
	// Delete removes the record for id. Deleting a missing record is not an error.
	Delete(ctx context.Context, id model.JobID) error
	// All lists the ids of every stored record, in no particular order.
	All(ctx context.Context) ([]model.JobID, error)
	// Close releases the store's resources.
	Close() error
}
