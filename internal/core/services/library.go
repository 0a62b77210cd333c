package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService is the facade the CLI, TUI and MCP adapters call into.
// It owns the current page number and filter; the cache itself is owned by
// the sync controller.
type LibraryService struct {
	backend  driven.ContentBackend
	sync     *SyncController
	deleter  *DeleteOrchestrator
	info     *InfoLoader
	pageSize int
	hardCap  int

	// mu serialises fetches and guards the page state below.
	mu     sync.Mutex
	filter domain.Filter
	page   int
	loaded bool
}

// NewLibraryService creates a library service and registers it as the
// sync controller's reloader. The info loader is optional.
func NewLibraryService(
	backend driven.ContentBackend,
	controller *SyncController,
	deleter *DeleteOrchestrator,
	info *InfoLoader,
	settings domain.LibrarySettings,
) *LibraryService {
	pageSize := settings.PageSize
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	hardCap := settings.ServerHardCap
	if hardCap <= 0 {
		hardCap = domain.DefaultServerHardCap
	}
	l := &LibraryService{
		backend:  backend,
		sync:     controller,
		deleter:  deleter,
		info:     info,
		pageSize: pageSize,
		hardCap:  hardCap,
		filter:   domain.DefaultFilter(),
		page:     1,
	}
	controller.SetReloader(func(ctx context.Context) error {
		_, err := l.Refresh(ctx)
		return err
	})
	return l
}

// Start consumes backend push events and loads the info panel in the
// background until ctx ends.
func (l *LibraryService) Start(ctx context.Context) {
	go func() {
		if err := l.sync.Run(ctx, l.backend.Events()); err != nil && ctx.Err() == nil {
			logger.Warn("event loop stopped: %v", err)
		}
	}()
	if l.info != nil {
		go func() {
			_ = l.info.Run(ctx)
		}()
	}
}

// GetCurrentPage returns the current page, fetching on first use.
//
// If the first fetch fails but the cache holds records restored from a
// previous session, that page is returned instead; the failure has already
// been reported through the notifier.
func (l *LibraryService) GetCurrentPage(ctx context.Context) (*domain.Page, error) {
	l.mu.Lock()
	loaded := l.loaded
	l.mu.Unlock()
	if loaded {
		return l.currentPage(), nil
	}

	page, err := l.Refresh(ctx)
	if err != nil {
		if l.sync.State().CachedCount > 0 {
			logger.Warn("serving cached records: %v", err)
			return l.currentPage(), nil
		}
		return nil, err
	}
	return page, nil
}

// Refresh replaces the cache with an initial fetch of three pages.
func (l *LibraryService) Refresh(ctx context.Context) (*domain.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fetch(ctx, 0, InitialFetchSize(l.pageSize, l.hardCap)); err != nil {
		return nil, err
	}
	l.loaded = true
	return l.pageLocked(), nil
}

// LoadMore appends min(hardCap, remaining) records to the cache.
func (l *LibraryService) LoadMore(ctx context.Context) (*domain.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.loadMoreLocked(ctx); err != nil {
		return nil, err
	}
	return l.pageLocked(), nil
}

// GoToPage moves to page n, loading more records until the page is covered
// or the server has nothing left.
func (l *LibraryService) GoToPage(ctx context.Context, n int) (*domain.Page, error) {
	if n < 1 {
		return nil, fmt.Errorf("page %d: %w", n, domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		if err := l.fetch(ctx, 0, InitialFetchSize(l.pageSize, l.hardCap)); err != nil {
			return nil, err
		}
		l.loaded = true
	}

	l.page = n
	for len(l.sync.State().Groups) < n*l.pageSize {
		progressed, err := l.loadMoreLocked(ctx)
		if err != nil {
			return nil, err
		}
		if !progressed {
			break
		}
	}
	return l.pageLocked(), nil
}

// SetFilter invalidates the cache, resets to page 1 and fetches afresh.
func (l *LibraryService) SetFilter(ctx context.Context, filter domain.Filter) (*domain.Page, error) {
	if filter.Date == "" {
		filter.Date = domain.DateFilterAll
	}
	if !filter.Date.IsValid() {
		return nil, fmt.Errorf("date filter %q: %w", filter.Date, domain.ErrInvalidInput)
	}
	if filter.ContentType != "" && !filter.ContentType.IsValid() {
		return nil, fmt.Errorf("content type %q: %w", filter.ContentType, domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.filter = filter
	l.page = 1
	l.loaded = false
	if err := l.sync.Reset(ctx); err != nil {
		return nil, err
	}
	if err := l.fetch(ctx, 0, InitialFetchSize(l.pageSize, l.hardCap)); err != nil {
		return nil, err
	}
	l.loaded = true
	return l.pageLocked(), nil
}

// Filter returns the active filter.
func (l *LibraryService) Filter() domain.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// FindGroup returns the cached group with key. When the key is not cached
// yet, more records are loaded until it appears or the server is exhausted.
func (l *LibraryService) FindGroup(ctx context.Context, key string) (*domain.Group, error) {
	if _, err := l.GetCurrentPage(ctx); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		for _, g := range l.sync.State().Groups {
			if g.Key == key {
				return &g, nil
			}
		}
		progressed, err := l.loadMoreLocked(ctx)
		if err != nil {
			return nil, err
		}
		if !progressed {
			return nil, fmt.Errorf("group %q: %w", key, domain.ErrNotFound)
		}
	}
}

// RequestDelete removes every leaf of group.
func (l *LibraryService) RequestDelete(ctx context.Context, group domain.Group) (domain.DeleteOutcome, error) {
	return l.deleter.DeleteGroup(ctx, group)
}

// Add submits records. A successful confirmation reloads the list through
// the sync controller.
func (l *LibraryService) Add(ctx context.Context, records []domain.Record) (*domain.MutationResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("add: no records: %w", domain.ErrInvalidInput)
	}
	for i := range records {
		if !records[i].ContentType.IsValid() {
			return nil, fmt.Errorf("add record %d: content type %q: %w",
				i, records[i].ContentType, domain.ErrUnsupportedType)
		}
	}

	res, err := l.backend.Add(ctx, records)
	if mutErr := l.sync.HandleMutation(ctx, res, err); mutErr != nil {
		return res, mutErr
	}
	return res, nil
}

// ConnectionState returns backend reachability counters.
func (l *LibraryService) ConnectionState() domain.ConnectionState {
	return l.sync.Connection()
}

// Info returns the auxiliary info payload, or nil while unpopulated.
func (l *LibraryService) Info() *domain.BackendInfo {
	if l.info == nil {
		return nil
	}
	return l.info.Get()
}

// LoadInfo returns the info payload, fetching it until populated or ctx
// ends. It returns domain.ErrNotFound when no info loader is configured.
func (l *LibraryService) LoadInfo(ctx context.Context) (*domain.BackendInfo, error) {
	if l.info == nil {
		return nil, fmt.Errorf("info: %w", domain.ErrNotFound)
	}
	if info := l.info.Get(); info != nil {
		return info, nil
	}
	if err := l.info.Run(ctx); err != nil {
		return nil, fmt.Errorf("load info: %w", err)
	}
	return l.info.Get(), nil
}

// fetch issues one list request and applies the result. Callers hold mu.
func (l *LibraryService) fetch(ctx context.Context, offset, limit int) error {
	gen := l.sync.BeginList(offset)
	req := domain.ListRequest{
		Limit:       limit,
		Offset:      offset,
		DateFilter:  l.filter.Date,
		ContentType: l.filter.ContentType,
	}
	logger.Debug("list limit=%d offset=%d filter=%s type=%s", limit, offset, req.DateFilter, req.ContentType)
	resp, err := l.backend.List(ctx, req)
	return l.sync.ApplyList(ctx, gen, offset, resp, err)
}

// loadMoreLocked appends the next batch and reports whether the cache grew.
func (l *LibraryService) loadMoreLocked(ctx context.Context) (bool, error) {
	state := l.sync.State()
	n := LoadMoreSize(state.ServerTotal, state.CachedCount, l.hardCap)
	if n == 0 {
		return false, nil
	}
	if err := l.fetch(ctx, state.CachedCount, n); err != nil {
		return false, err
	}
	return l.sync.State().CachedCount > state.CachedCount, nil
}

func (l *LibraryService) currentPage() *domain.Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pageLocked()
}

func (l *LibraryService) pageLocked() *domain.Page {
	state := l.sync.State()
	page := Paginate(state.Groups, PageWindow{
		Page:        l.page,
		PageSize:    l.pageSize,
		ServerTotal: state.ServerTotal,
		CachedCount: state.CachedCount,
	})
	return &page
}
