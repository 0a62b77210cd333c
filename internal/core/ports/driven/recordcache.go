package driven

import (
	"context"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// RecordCache is the ordered collection of records fetched from the backend.
// It is the single piece of shared mutable state in the library; only the
// sync controller and the delete orchestrator write to it.
type RecordCache interface {
	// Replace swaps the whole cache for records.
	Replace(ctx context.Context, records []domain.Record) error

	// Append adds records to the end of the cache, keeping order.
	Append(ctx context.Context, records []domain.Record) error

	// Remove deletes every record whose ID is in ids.
	// Returns the number of records removed.
	Remove(ctx context.Context, ids []string) (int, error)

	// Snapshot returns a copy of the cache in order.
	Snapshot(ctx context.Context) ([]domain.Record, error)

	// Len returns the number of cached records.
	Len(ctx context.Context) (int, error)
}
