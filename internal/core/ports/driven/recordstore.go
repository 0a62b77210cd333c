package driven

import (
	"context"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// RecordStore persists content records for the local backend.
// Backed by SQLite.
type RecordStore interface {
	// Save stores or updates records. Updated records keep their position.
	Save(ctx context.Context, records []domain.Record) error

	// Query returns one window of records matching q, newest first, along
	// with the number of records matching q regardless of the window.
	Query(ctx context.Context, q domain.RecordQuery) ([]domain.Record, int, error)

	// Delete removes the record with id and content type ct.
	// Returns false if no such record exists.
	Delete(ctx context.Context, id string, ct domain.ContentType) (bool, error)

	// Stats summarises the stored records for the info panel.
	Stats(ctx context.Context) (*domain.BackendInfo, error)
}
