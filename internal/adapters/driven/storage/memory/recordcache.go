package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
)

// Ensure RecordCache implements the interface.
var _ driven.RecordCache = (*RecordCache)(nil)

// RecordCache is an in-memory implementation of driven.RecordCache.
type RecordCache struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewRecordCache creates a new empty in-memory record cache.
func NewRecordCache() *RecordCache {
	return &RecordCache{}
}

// Replace swaps the whole cache for records.
func (c *RecordCache) Replace(_ context.Context, records []domain.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make([]domain.Record, len(records))
	copy(c.records, records)
	return nil
}

// Append adds records to the end of the cache.
func (c *RecordCache) Append(_ context.Context, records []domain.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
	return nil
}

// Remove deletes every record whose ID is in ids.
func (c *RecordCache) Remove(_ context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.records[:0]
	removed := 0
	for _, r := range c.records {
		if _, ok := drop[r.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	// Clear the tail so dropped records can be collected.
	for i := len(kept); i < len(c.records); i++ {
		c.records[i] = domain.Record{}
	}
	c.records = kept
	return removed, nil
}

// Snapshot returns a copy of the cache in order.
func (c *RecordCache) Snapshot(_ context.Context) ([]domain.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Record, len(c.records))
	copy(out, c.records)
	return out, nil
}

// Len returns the number of cached records.
func (c *RecordCache) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records), nil
}
