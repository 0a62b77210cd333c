package services

import (
	"sync"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// ChangeFeed fans settled sync changes out to interactive subscribers.
// Publishing never blocks: a subscriber with a change already queued
// re-reads the latest page anyway, so further changes are dropped.
type ChangeFeed struct {
	mu     sync.Mutex
	subs   map[int]chan domain.CacheChange
	nextID int
}

// NewChangeFeed creates a feed that follows controller.
func NewChangeFeed(controller *SyncController) *ChangeFeed {
	f := &ChangeFeed{subs: make(map[int]chan domain.CacheChange)}
	controller.OnChange(f.publish)
	return f
}

func (f *ChangeFeed) publish(state SyncState) {
	change := domain.CacheChange{
		Groups:      len(state.Groups),
		CachedCount: state.CachedCount,
		ServerTotal: state.ServerTotal,
		Dirty:       state.Dirty,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// Subscribe returns a channel of future changes and a function that
// unsubscribes and closes it.
func (f *ChangeFeed) Subscribe(buffer int) (<-chan domain.CacheChange, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.CacheChange, buffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}
