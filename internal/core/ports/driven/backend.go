package driven

import (
	"context"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// ContentBackend is the upstream content service.
// It is treated as a black box that produces flat, paginated records.
type ContentBackend interface {
	// List returns a page of records for the request.
	// A response with Success false is a logical failure, not a transport error.
	List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error)

	// Add submits new records. The confirmation marks the cache dirty.
	Add(ctx context.Context, records []domain.Record) (*domain.MutationResult, error)

	// RemoveDocument removes one document record.
	RemoveDocument(ctx context.Context, id string) (*domain.RemovalResult, error)

	// RemoveImage removes one image record.
	RemoveImage(ctx context.Context, id string) (*domain.RemovalResult, error)

	// Info returns the auxiliary info panel payload.
	Info(ctx context.Context) (*domain.BackendInfo, error)

	// Events returns the push notification channel.
	// The channel is closed when the backend is closed.
	Events() <-chan domain.Event

	// Close releases resources and closes the event channel.
	Close() error
}
