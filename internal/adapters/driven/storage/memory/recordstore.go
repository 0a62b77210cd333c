package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

type recordKey struct {
	id string
	ct domain.ContentType
}

type storedRecord struct {
	seq    int
	record domain.Record
}

// RecordStore is an in-memory implementation of driven.RecordStore.
// Ordering matches the SQLite store: newest dateAdded first, undated
// records last, insertion order as the tie-break.
type RecordStore struct {
	mu      sync.RWMutex
	records map[recordKey]storedRecord
	nextSeq int
}

// NewRecordStore creates a new empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[recordKey]storedRecord),
	}
}

// Save inserts or replaces records keyed by id and content type.
func (s *RecordStore) Save(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		key := recordKey{id: r.ID, ct: r.ContentType}
		stored, ok := s.records[key]
		if !ok {
			stored.seq = s.nextSeq
			s.nextSeq++
		}
		stored.record = cloneRecord(r)
		s.records[key] = stored
	}
	return nil
}

// Query returns one window of matching records and the total match count.
func (s *RecordStore) Query(_ context.Context, q domain.RecordQuery) ([]domain.Record, int, error) {
	s.mu.RLock()
	matches := make([]storedRecord, 0, len(s.records))
	for _, stored := range s.records {
		if q.ContentType != "" && stored.record.ContentType != q.ContentType {
			continue
		}
		if !q.Since.IsZero() {
			added := stored.record.DateAdded()
			if added.IsZero() || added.Before(q.Since) {
				continue
			}
		}
		matches = append(matches, stored)
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i].record.DateAdded(), matches[j].record.DateAdded()
		switch {
		case a.IsZero() != b.IsZero():
			return b.IsZero()
		case !a.Equal(b):
			return a.After(b)
		default:
			return matches[i].seq < matches[j].seq
		}
	})

	total := len(matches)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}

	out := make([]domain.Record, 0, end-start)
	for _, stored := range matches[start:end] {
		out = append(out, cloneRecord(stored.record))
	}
	return out, total, nil
}

// Delete removes one record and reports whether it existed.
func (s *RecordStore) Delete(_ context.Context, id string, ct domain.ContentType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{id: id, ct: ct}
	if _, ok := s.records[key]; !ok {
		return false, nil
	}
	delete(s.records, key)
	return true, nil
}

// Stats counts records per content type and lists distinct collections.
func (s *RecordStore) Stats(_ context.Context) (*domain.BackendInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := &domain.BackendInfo{}
	seen := make(map[string]struct{})
	for _, stored := range s.records {
		switch stored.record.ContentType {
		case domain.ContentTypeDocument:
			info.Documents++
		case domain.ContentTypeImage:
			info.Images++
		}
		if c := stored.record.Collection(); c != "" {
			seen[c] = struct{}{}
		}
	}
	if len(seen) > 0 {
		info.Collections = slices.Sorted(maps.Keys(seen))
	}
	return info, nil
}

func cloneRecord(r domain.Record) domain.Record {
	r.Metadata = maps.Clone(r.Metadata)
	return r
}
