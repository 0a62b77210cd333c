package services

import (
	"sort"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// PageWindow holds the inputs of a page computation.
type PageWindow struct {
	// Page is the 1-based page number. Values below 1 are clamped.
	Page int

	// PageSize is the number of groups per page.
	PageSize int

	// ServerTotal is the record count the backend reports for the filter.
	ServerTotal int

	// CachedCount is the number of records held in the cache.
	CachedCount int
}

// Paginate returns the visible slice of groups for the window.
//
// TotalPages is derived from the server-reported total, not from len(groups),
// so the page count reflects server truth before every record is cached.
func Paginate(groups []domain.Group, w PageWindow) domain.Page {
	size := w.PageSize
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	page := w.Page
	if page < 1 {
		page = 1
	}
	total := w.ServerTotal
	if total < 0 {
		total = 0
	}

	start := (page - 1) * size
	end := start + size
	if start > len(groups) {
		start = len(groups)
	}
	if end > len(groups) {
		end = len(groups)
	}

	return domain.Page{
		Items:       groups[start:end],
		Page:        page,
		PageSize:    size,
		TotalGroups: len(groups),
		TotalPages:  (total + size - 1) / size,
		CachedCount: w.CachedCount,
		ServerTotal: total,
		HasMore:     w.CachedCount < total,
	}
}

// InitialFetchSize returns the limit for an initial or refresh fetch:
// three pages so two are pre-cached, bounded by the server cap.
func InitialFetchSize(pageSize, hardCap int) int {
	n := pageSize * 3
	if hardCap > 0 && n > hardCap {
		n = hardCap
	}
	return n
}

// LoadMoreSize returns the limit for a load-more fetch, or 0 when the cache
// already holds everything the server reports.
func LoadMoreSize(serverTotal, cached, hardCap int) int {
	remaining := serverTotal - cached
	if remaining <= 0 {
		return 0
	}
	if hardCap > 0 && remaining > hardCap {
		return hardCap
	}
	return remaining
}

// SortGroups orders groups for display. SortLatest puts the group with the
// most recently added leaf first; SortCache keeps first-seen order.
func SortGroups(groups []domain.Group, order domain.SortOrder) []domain.Group {
	if order != domain.SortLatest {
		return groups
	}
	sorted := make([]domain.Group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LatestAdded.After(sorted[j].LatestAdded)
	})
	return sorted
}
