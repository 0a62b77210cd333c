package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateFilter_Since(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)

	assert.True(t, DateFilterAll.Since(now).IsZero())
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), DateFilterToday.Since(now))
	assert.Equal(t, time.Date(2025, 6, 8, 13, 0, 0, 0, time.UTC), DateFilterWeek.Since(now))
	assert.Equal(t, time.Date(2025, 5, 15, 13, 0, 0, 0, time.UTC), DateFilterMonth.Since(now))
}

func TestDateFilter_IsValid(t *testing.T) {
	assert.True(t, DateFilterAll.IsValid())
	assert.True(t, DateFilterWeek.IsValid())
	assert.False(t, DateFilter("year").IsValid())
}

func TestFilter_Matches(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)
	recent := Record{
		ContentType: ContentTypeImage,
		Metadata:    map[string]any{MetaDateAdded: "2025-06-14T10:00:00Z"},
	}
	old := Record{
		ContentType: ContentTypeDocument,
		Metadata:    map[string]any{MetaDateAdded: "2024-01-01T00:00:00Z"},
	}
	undated := Record{ContentType: ContentTypeDocument}

	all := DefaultFilter()
	assert.True(t, all.Matches(&recent, now))
	assert.True(t, all.Matches(&old, now))
	assert.True(t, all.Matches(&undated, now))

	week := Filter{Date: DateFilterWeek}
	assert.True(t, week.Matches(&recent, now))
	assert.False(t, week.Matches(&old, now))
	assert.False(t, week.Matches(&undated, now))

	images := Filter{Date: DateFilterAll, ContentType: ContentTypeImage}
	assert.True(t, images.Matches(&recent, now))
	assert.False(t, images.Matches(&old, now))
}

func TestRemovalResult_OK(t *testing.T) {
	assert.True(t, RemovalResult{Status: RemovalSuccess}.OK())
	assert.False(t, RemovalResult{Status: RemovalError}.OK())
	assert.False(t, RemovalResult{}.OK())
}

func TestDeleteOutcome_Total(t *testing.T) {
	assert.Equal(t, 3, DeleteOutcome{Deleted: 2, Failed: 1}.Total())
}

func TestBackendInfo_IsPopulated(t *testing.T) {
	var nilInfo *BackendInfo
	assert.False(t, nilInfo.IsPopulated())
	assert.False(t, (&BackendInfo{}).IsPopulated())
	assert.True(t, (&BackendInfo{Documents: 1}).IsPopulated())
	assert.True(t, (&BackendInfo{Collections: []string{"x"}}).IsPopulated())
}

func TestConnectionState_Degraded(t *testing.T) {
	assert.True(t, ConnectionState{}.Degraded())
	assert.False(t, ConnectionState{Connected: true}.Degraded())
	assert.True(t, ConnectionState{Connected: true, ConsecutiveFailures: 2}.Degraded())
}

func TestDefaultAppSettings_Library(t *testing.T) {
	s := DefaultAppSettings()
	assert.Equal(t, BackendLocal, s.Backend.Kind)
	assert.Equal(t, 10, s.Library.PageSize)
	assert.Equal(t, 25, s.Library.ServerHardCap)
	assert.Equal(t, SortCache, s.Library.Sort)
	assert.Equal(t, CacheMemory, s.Cache.Kind)
	assert.Equal(t, 3*time.Second, s.InfoRetry)
	assert.False(t, s.Assistant.IsConfigured())
}
