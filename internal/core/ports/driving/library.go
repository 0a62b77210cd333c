package driving

import (
	"context"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// LibraryService is the surface the UI collaborators call into.
// Every method that fetches applies the fetch/merge rules of the page
// window and sync controller before returning.
type LibraryService interface {
	// GetCurrentPage returns the render-ready page of groups.
	GetCurrentPage(ctx context.Context) (*domain.Page, error)

	// Refresh replaces the record cache with a fresh initial fetch.
	Refresh(ctx context.Context) (*domain.Page, error)

	// LoadMore appends the next batch of records to the cache.
	LoadMore(ctx context.Context) (*domain.Page, error)

	// GoToPage moves to page n, fetching more records when needed.
	GoToPage(ctx context.Context, n int) (*domain.Page, error)

	// SetFilter invalidates the cache, resets to page 1 and refetches.
	SetFilter(ctx context.Context, filter domain.Filter) (*domain.Page, error)

	// Filter returns the active filter.
	Filter() domain.Filter

	// FindGroup returns the group with the given key from the current cache.
	FindGroup(ctx context.Context, key string) (*domain.Group, error)

	// RequestDelete removes every leaf of the group.
	RequestDelete(ctx context.Context, group domain.Group) (domain.DeleteOutcome, error)

	// Add submits records and reloads on confirmation.
	Add(ctx context.Context, records []domain.Record) (*domain.MutationResult, error)

	// ConnectionState returns backend reachability counters.
	ConnectionState() domain.ConnectionState

	// Info returns the auxiliary info payload, or nil if not yet populated.
	Info() *domain.BackendInfo

	// LoadInfo fetches the info payload until it is populated or ctx ends.
	LoadInfo(ctx context.Context) (*domain.BackendInfo, error)
}

// AssistantService answers questions grounded in library content.
type AssistantService interface {
	// Ask answers question using the group's text as context.
	Ask(ctx context.Context, groupKey, question string) (string, error)

	// Summarise condenses the group's text to at most maxChars characters.
	Summarise(ctx context.Context, groupKey string, maxChars int) (string, error)

	// Available reports whether a language model is configured.
	Available() bool
}
