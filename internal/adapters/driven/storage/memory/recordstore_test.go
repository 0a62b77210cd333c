package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func dated(id string, ct domain.ContentType, added time.Time, collection string) domain.Record {
	meta := map[string]any{domain.MetaDateAdded: added.Format(time.RFC3339)}
	if collection != "" {
		meta[domain.MetaCollection] = collection
	}
	return domain.Record{ID: id, ContentType: ct, Metadata: meta}
}

func recordIDs(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func seededStore(t *testing.T) *RecordStore {
	t.Helper()
	s := NewRecordStore()
	require.NoError(t, s.Save(context.Background(), []domain.Record{
		dated("old", domain.ContentTypeDocument, base.Add(-72*time.Hour), "archive"),
		dated("mid", domain.ContentTypeImage, base.Add(-2*time.Hour), "research"),
		dated("new", domain.ContentTypeDocument, base, "research"),
	}))
	return s
}

func TestRecordStore_QueryNewestFirst(t *testing.T) {
	s := seededStore(t)

	records, total, err := s.Query(context.Background(), domain.RecordQuery{})

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"new", "mid", "old"}, recordIDs(records))
}

func TestRecordStore_QueryWindow(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	records, total, err := s.Query(ctx, domain.RecordQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"mid"}, recordIDs(records))

	records, total, err = s.Query(ctx, domain.RecordQuery{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, records)
}

func TestRecordStore_QueryFilters(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	records, total, err := s.Query(ctx, domain.RecordQuery{ContentType: domain.ContentTypeImage})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"mid"}, recordIDs(records))

	records, total, err = s.Query(ctx, domain.RecordQuery{Since: base.Add(-24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"new", "mid"}, recordIDs(records))
}

func TestRecordStore_UndatedLastInInsertionOrder(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, []domain.Record{
		{ID: "u1", ContentType: domain.ContentTypeDocument},
		{ID: "u2", ContentType: domain.ContentTypeDocument},
	}))

	records, _, err := s.Query(ctx, domain.RecordQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old", "u1", "u2"}, recordIDs(records))

	// Undated records never pass a date filter.
	_, total, err := s.Query(ctx, domain.RecordQuery{Since: base.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRecordStore_UpsertKeepsPosition(t *testing.T) {
	s := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, []domain.Record{
		{ID: "a", ContentType: domain.ContentTypeDocument, Text: "v1"},
		{ID: "b", ContentType: domain.ContentTypeDocument},
	}))
	require.NoError(t, s.Save(ctx, []domain.Record{{ID: "a", ContentType: domain.ContentTypeDocument, Text: "v2"}}))

	records, total, err := s.Query(ctx, domain.RecordQuery{})

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"a", "b"}, recordIDs(records))
	assert.Equal(t, "v2", records[0].Text)
}

func TestRecordStore_SameIDDifferentType(t *testing.T) {
	s := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, []domain.Record{
		{ID: "x", ContentType: domain.ContentTypeDocument},
		{ID: "x", ContentType: domain.ContentTypeImage},
	}))

	ok, err := s.Delete(ctx, "x", domain.ContentTypeImage)
	require.NoError(t, err)
	assert.True(t, ok)

	records, _, err := s.Query(ctx, domain.RecordQuery{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ContentTypeDocument, records[0].ContentType)
}

func TestRecordStore_DeleteMissing(t *testing.T) {
	s := seededStore(t)

	ok, err := s.Delete(context.Background(), "nope", domain.ContentTypeDocument)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordStore_ReturnsCopies(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	records, _, err := s.Query(ctx, domain.RecordQuery{Limit: 1})
	require.NoError(t, err)
	records[0].Metadata[domain.MetaCollection] = "mutated"

	again, _, err := s.Query(ctx, domain.RecordQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "research", again[0].Collection())
}

func TestRecordStore_Stats(t *testing.T) {
	s := seededStore(t)

	info, err := s.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, info.Documents)
	assert.Equal(t, 1, info.Images)
	assert.Equal(t, []string{"archive", "research"}, info.Collections)
}

func TestRecordStore_StatsEmpty(t *testing.T) {
	info, err := NewRecordStore().Stats(context.Background())

	require.NoError(t, err)
	assert.False(t, info.IsPopulated())
	assert.Nil(t, info.Collections)
}
