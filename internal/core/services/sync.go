package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// SyncState is the last fully-settled view of the record cache.
type SyncState struct {
	// Groups are the display-ordered groups of the cache.
	Groups []domain.Group

	// ServerTotal is the record count the backend last reported.
	ServerTotal int

	// CachedCount is the number of records in the cache.
	CachedCount int

	// Dirty is set when a mutation confirmation is waiting for a reload.
	Dirty bool
}

// SyncController owns every write to the record cache.
//
// List results, mutation confirmations and connection changes all pass
// through it. A list response is applied atomically: the cache mutation,
// group recompute and state swap happen under one lock, followed by a
// single change signal.
type SyncController struct {
	cache    driven.RecordCache
	notifier driven.Notifier
	sort     domain.SortOrder
	now      func() time.Time

	mu          sync.RWMutex
	generation  uint64
	groups      []domain.Group
	serverTotal int
	cachedCount int
	dirty       bool
	conn        domain.ConnectionState

	// handled remembers recent mutation request IDs so a confirmation that
	// arrives both as a return value and as a push event reloads once.
	handled      map[string]struct{}
	handledOrder []string

	// removing counts leaf IDs with a local delete in flight.
	removing map[string]int

	listenersMu sync.RWMutex
	listeners   []func(SyncState)
	reloader    func(ctx context.Context) error
}

// NewSyncController creates a sync controller over cache.
// The notifier is optional.
func NewSyncController(cache driven.RecordCache, notifier driven.Notifier, order domain.SortOrder) *SyncController {
	return &SyncController{
		cache:    cache,
		notifier: notifier,
		sort:     order,
		now:      time.Now,
		handled:  make(map[string]struct{}),
		removing: make(map[string]int),
	}
}

// maxHandledMutations bounds the remembered mutation request IDs.
const maxHandledMutations = 64

// SetReloader sets the function used to reload the list after a mutation.
func (c *SyncController) SetReloader(fn func(ctx context.Context) error) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.reloader = fn
}

// OnChange registers a listener called once after every settled change.
func (c *SyncController) OnChange(fn func(SyncState)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Restore loads groups from whatever the cache already holds, such as a
// persisted snapshot from a previous session. The server total is unknown
// until the first list result, so it starts at the cached count.
func (c *SyncController) Restore(ctx context.Context) error {
	c.mu.Lock()
	if err := c.recompute(ctx); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("restore cache: %w", err)
	}
	c.serverTotal = c.cachedCount
	state := c.stateLocked()
	c.mu.Unlock()

	if state.CachedCount > 0 {
		logger.Debug("restored %d cached records in %d groups", state.CachedCount, len(state.Groups))
	}
	c.emit(state)
	return nil
}

// BeginList registers an outgoing list request and returns its generation.
// A request at offset 0 replaces the cache, so it supersedes every request
// issued before it.
func (c *SyncController) BeginList(offset int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset == 0 {
		c.generation++
	}
	return c.generation
}

// ApplyList applies the result of a list request.
//
// Offset 0 replaces the cache and any other offset appends to it. A transport
// error or a success:false response leaves the cache as it was, updates the
// connection counters and notifies. A response from a superseded generation
// is dropped.
func (c *SyncController) ApplyList(
	ctx context.Context,
	gen uint64,
	offset int,
	resp *domain.ListResponse,
	fetchErr error,
) error {
	if fetchErr != nil || resp == nil || !resp.Success {
		return c.failList(fetchErr, resp)
	}

	c.mu.Lock()
	if gen != c.generation {
		current := c.generation
		c.mu.Unlock()
		logger.Warn("dropping list response from generation %d (current %d, offset %d)", gen, current, offset)
		return domain.ErrStaleResponse
	}

	var err error
	if offset == 0 {
		err = c.cache.Replace(ctx, resp.Items)
	} else {
		err = c.cache.Append(ctx, resp.Items)
	}
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("update cache: %w", err)
	}
	if err := c.recompute(ctx); err != nil {
		c.mu.Unlock()
		return err
	}
	c.serverTotal = resp.Pagination.Count
	if offset == 0 {
		c.dirty = false
	}
	c.markSuccess()
	state := c.stateLocked()
	c.mu.Unlock()

	logger.Debug("applied list offset=%d items=%d cached=%d total=%d groups=%d",
		offset, len(resp.Items), state.CachedCount, state.ServerTotal, len(state.Groups))
	c.emit(state)
	return nil
}

func (c *SyncController) failList(fetchErr error, resp *domain.ListResponse) error {
	var err error
	switch {
	case fetchErr != nil:
		err = fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, fetchErr)
	case resp == nil:
		err = fmt.Errorf("%w: empty response", domain.ErrBackendUnavailable)
	default:
		err = fmt.Errorf("%w: %s", domain.ErrBackendRejected, resp.Message)
	}

	c.mu.Lock()
	c.markFailure(err)
	c.mu.Unlock()

	c.notify(domain.SeverityError, fmt.Sprintf("Failed to load content: %v", err))
	return err
}

// HandleMutation applies an add confirmation. A successful add marks the
// cache dirty and triggers a full reload instead of splicing records in,
// since new content can change the shape of an existing group.
func (c *SyncController) HandleMutation(ctx context.Context, res *domain.MutationResult, mutErr error) error {
	if mutErr != nil || res == nil || !res.Success {
		var err error
		switch {
		case mutErr != nil:
			err = fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, mutErr)
		case res == nil:
			err = fmt.Errorf("%w: empty response", domain.ErrBackendUnavailable)
		default:
			err = fmt.Errorf("%w: %s", domain.ErrBackendRejected, res.Message)
		}
		c.mu.Lock()
		c.markFailure(err)
		c.mu.Unlock()
		c.notify(domain.SeverityError, fmt.Sprintf("Failed to add content: %v", err))
		return err
	}

	c.mu.Lock()
	if res.RequestID != "" {
		if _, dup := c.handled[res.RequestID]; dup {
			c.mu.Unlock()
			logger.Debug("mutation %s already handled", res.RequestID)
			return nil
		}
		c.rememberLocked(res.RequestID)
	}
	c.dirty = true
	c.mu.Unlock()

	msg := res.Message
	if msg == "" {
		msg = "Content added"
	}
	c.notify(domain.SeveritySuccess, msg)
	return c.reload(ctx)
}

// HandleRemoteDelete reacts to a delete made by another client. When any of
// the ids are still cached the cache is marked dirty and reloaded. Deletes
// already applied locally, or still in flight locally, are ignored.
func (c *SyncController) HandleRemoteDelete(ctx context.Context, ids []string) error {
	want := make(map[string]struct{}, len(ids))
	c.mu.RLock()
	for _, id := range ids {
		if c.removing[id] == 0 {
			want[id] = struct{}{}
		}
	}
	c.mu.RUnlock()
	if len(want) == 0 {
		return nil
	}

	records, err := c.cache.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot cache: %w", err)
	}
	stale := false
	for i := range records {
		if _, ok := want[records[i].ID]; ok {
			stale = true
			break
		}
	}
	if !stale {
		return nil
	}

	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
	return c.reload(ctx)
}

// HandleConnection records a connect or disconnect signal. It never
// retries content loading itself.
func (c *SyncController) HandleConnection(connected bool) {
	c.mu.Lock()
	if connected {
		c.conn.Connected = true
		c.conn.ConsecutiveFailures = 0
		c.conn.LastSuccess = c.now()
		c.conn.LastError = ""
	} else {
		c.markFailure(domain.ErrBackendUnavailable)
	}
	conn := c.conn
	c.mu.Unlock()

	if connected {
		logger.Debug("backend connected")
		return
	}
	c.notify(domain.SeverityWarning,
		fmt.Sprintf("Backend disconnected (%d consecutive failures)", conn.ConsecutiveFailures))
}

// BeginRemoval marks ids as being deleted locally until the returned
// release func is called, so the backend's echo of those deletes does not
// trigger a reload.
func (c *SyncController) BeginRemoval(ids []string) (release func()) {
	c.mu.Lock()
	for _, id := range ids {
		c.removing[id]++
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			for _, id := range ids {
				if c.removing[id] <= 1 {
					delete(c.removing, id)
				} else {
					c.removing[id]--
				}
			}
			c.mu.Unlock()
		})
	}
}

// ApplyRemoval removes fully-deleted leaves from the cache, recomputes and
// signals once. The server total shrinks by the number removed.
func (c *SyncController) ApplyRemoval(ctx context.Context, ids []string) (int, error) {
	c.mu.Lock()
	removed, err := c.cache.Remove(ctx, ids)
	if err != nil {
		c.mu.Unlock()
		return 0, fmt.Errorf("remove from cache: %w", err)
	}
	if err := c.recompute(ctx); err != nil {
		c.mu.Unlock()
		return removed, err
	}
	c.serverTotal -= removed
	if c.serverTotal < c.cachedCount {
		c.serverTotal = c.cachedCount
	}
	state := c.stateLocked()
	c.mu.Unlock()

	c.emit(state)
	return removed, nil
}

// Reset empties the cache for a filter change. Bumping the generation drops
// any list response still in flight for the old filter.
func (c *SyncController) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	if err := c.cache.Replace(ctx, nil); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("reset cache: %w", err)
	}
	c.groups = nil
	c.serverTotal = 0
	c.cachedCount = 0
	c.dirty = false
	state := c.stateLocked()
	c.mu.Unlock()

	c.emit(state)
	return nil
}

// Run consumes backend push events until the channel closes or ctx ends.
func (c *SyncController) Run(ctx context.Context, events <-chan domain.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := c.handleEvent(ctx, ev); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
				logger.Debug("event %s: %v", ev.Type, err)
			}
		}
	}
}

func (c *SyncController) handleEvent(ctx context.Context, ev domain.Event) error {
	switch ev.Type {
	case domain.EventListed:
		c.mu.RLock()
		gen := c.generation
		c.mu.RUnlock()
		return c.ApplyList(ctx, gen, ev.Offset, ev.List, nil)
	case domain.EventAdded:
		return c.HandleMutation(ctx, ev.Mutation, nil)
	case domain.EventDeleted:
		return c.HandleRemoteDelete(ctx, ev.IDs)
	case domain.EventConnected:
		c.HandleConnection(true)
	case domain.EventDisconnected:
		c.HandleConnection(false)
	}
	return nil
}

// State returns the last settled state.
func (c *SyncController) State() SyncState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

// Connection returns the backend reachability counters.
func (c *SyncController) Connection() domain.ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// recompute regroups the cache from scratch. Callers hold mu.
func (c *SyncController) recompute(ctx context.Context) error {
	records, err := c.cache.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot cache: %w", err)
	}
	c.groups = SortGroups(GroupRecords(records), c.sort)
	c.cachedCount = len(records)
	return nil
}

func (c *SyncController) stateLocked() SyncState {
	groups := make([]domain.Group, len(c.groups))
	copy(groups, c.groups)
	return SyncState{
		Groups:      groups,
		ServerTotal: c.serverTotal,
		CachedCount: c.cachedCount,
		Dirty:       c.dirty,
	}
}

func (c *SyncController) rememberLocked(requestID string) {
	c.handled[requestID] = struct{}{}
	c.handledOrder = append(c.handledOrder, requestID)
	if len(c.handledOrder) > maxHandledMutations {
		delete(c.handled, c.handledOrder[0])
		c.handledOrder = c.handledOrder[1:]
	}
}

func (c *SyncController) markSuccess() {
	c.conn.Connected = true
	c.conn.ConsecutiveFailures = 0
	c.conn.LastSuccess = c.now()
	c.conn.LastError = ""
}

func (c *SyncController) markFailure(err error) {
	c.conn.Connected = false
	c.conn.ConsecutiveFailures++
	c.conn.LastFailure = c.now()
	c.conn.LastError = err.Error()
}

func (c *SyncController) reload(ctx context.Context) error {
	c.listenersMu.RLock()
	fn := c.reloader
	c.listenersMu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (c *SyncController) emit(state SyncState) {
	c.listenersMu.RLock()
	listeners := make([]func(SyncState), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(state)
	}
}

func (c *SyncController) notify(sev domain.Severity, msg string) {
	switch sev {
	case domain.SeverityError:
		logger.Error("%s", msg)
	case domain.SeverityWarning:
		logger.Warn("%s", msg)
	default:
		logger.Debug("%s", msg)
	}
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(domain.Notification{Severity: sev, Message: msg, At: c.now()})
}
