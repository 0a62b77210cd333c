// Package local provides a content backend served from the local SQLite
// record store, so the library works without a remote content service.
package local

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.ContentBackend = (*Backend)(nil)

// eventBuffer is the capacity of the push channel. Events are dropped,
// not blocked on, when nobody drains it.
const eventBuffer = 32

// Backend implements driven.ContentBackend over a driven.RecordStore.
// Every add and delete is echoed on the event channel.
type Backend struct {
	store driven.RecordStore
	now   func() time.Time

	mu     sync.RWMutex
	closed bool
	events chan domain.Event
}

// New creates a local backend. The event channel starts with a connected event.
func New(store driven.RecordStore) *Backend {
	b := &Backend{
		store:  store,
		now:    time.Now,
		events: make(chan domain.Event, eventBuffer),
	}
	b.emit(domain.Event{Type: domain.EventConnected})
	return b
}

// List returns one window of stored records, newest first.
func (b *Backend) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return &domain.ListResponse{
			Success: false,
			Message: fmt.Sprintf("invalid window limit=%d offset=%d", req.Limit, req.Offset),
		}, nil
	}
	if req.DateFilter != "" && !req.DateFilter.IsValid() {
		return &domain.ListResponse{Success: false, Message: fmt.Sprintf("unknown date filter %q", req.DateFilter)}, nil
	}

	records, total, err := b.store.Query(ctx, domain.RecordQuery{
		Since:       req.DateFilter.Since(b.now()),
		ContentType: req.ContentType,
		Limit:       req.Limit,
		Offset:      req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	logger.Debug("local list limit=%d offset=%d -> %d of %d", req.Limit, req.Offset, len(records), total)
	return &domain.ListResponse{
		Success:    true,
		Items:      records,
		Pagination: domain.Pagination{Count: total, Offset: req.Offset},
	}, nil
}

// Add stores records. Records without an ID get a random one, and records
// without a dateAdded are stamped with the current time.
func (b *Backend) Add(ctx context.Context, records []domain.Record) (*domain.MutationResult, error) {
	if len(records) == 0 {
		return &domain.MutationResult{Success: false, Message: "no records to add"}, nil
	}

	now := b.now().UTC()
	prepared := make([]domain.Record, len(records))
	for i := range records {
		r := records[i]
		if !r.ContentType.IsValid() {
			return &domain.MutationResult{
				Success: false,
				Message: fmt.Sprintf("record %d: unsupported content type %q", i, r.ContentType),
			}, nil
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		meta := make(map[string]any, len(r.Metadata)+1)
		maps.Copy(meta, r.Metadata)
		if r.DateAdded().IsZero() {
			meta[domain.MetaDateAdded] = now.Format(time.RFC3339)
		}
		r.Metadata = meta
		prepared[i] = r
	}

	if err := b.store.Save(ctx, prepared); err != nil {
		return nil, fmt.Errorf("add records: %w", err)
	}

	res := &domain.MutationResult{
		Success:   true,
		Message:   fmt.Sprintf("Added %d record(s)", len(prepared)),
		RequestID: uuid.NewString(),
	}
	echo := *res
	b.emit(domain.Event{Type: domain.EventAdded, Mutation: &echo})
	return res, nil
}

// RemoveDocument removes one document record.
func (b *Backend) RemoveDocument(ctx context.Context, id string) (*domain.RemovalResult, error) {
	return b.remove(ctx, id, domain.ContentTypeDocument)
}

// RemoveImage removes one image record.
func (b *Backend) RemoveImage(ctx context.Context, id string) (*domain.RemovalResult, error) {
	return b.remove(ctx, id, domain.ContentTypeImage)
}

func (b *Backend) remove(ctx context.Context, id string, ct domain.ContentType) (*domain.RemovalResult, error) {
	ok, err := b.store.Delete(ctx, id, ct)
	if err != nil {
		return nil, fmt.Errorf("remove %s %s: %w", ct, id, err)
	}
	if !ok {
		return &domain.RemovalResult{
			Status:  domain.RemovalError,
			Message: fmt.Sprintf("%s %s not found", ct, id),
		}, nil
	}
	b.emit(domain.Event{Type: domain.EventDeleted, IDs: []string{id}})
	return &domain.RemovalResult{Status: domain.RemovalSuccess}, nil
}

// Info summarises the stored records.
func (b *Backend) Info(ctx context.Context) (*domain.BackendInfo, error) {
	info, err := b.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}
	return info, nil
}

// Events returns the push notification channel.
func (b *Backend) Events() <-chan domain.Event {
	return b.events
}

// Close closes the event channel. It does not close the record store.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
	return nil
}

func (b *Backend) emit(ev domain.Event) {
	ev.At = b.now()

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ev:
	default:
		logger.Debug("local backend: dropping %s event, channel full", ev.Type)
	}
}
