package domain

import "time"

// DateFilter restricts a listing to records added within a window.
type DateFilter string

// Available date filters.
const (
	DateFilterAll   DateFilter = "all"
	DateFilterToday DateFilter = "today"
	DateFilterWeek  DateFilter = "week"
	DateFilterMonth DateFilter = "month"
)

// IsValid returns true if the date filter is recognised.
func (d DateFilter) IsValid() bool {
	switch d {
	case DateFilterAll, DateFilterToday, DateFilterWeek, DateFilterMonth:
		return true
	default:
		return false
	}
}

// Since returns the earliest dateAdded a record may have to pass the filter.
// The zero time means no lower bound.
func (d DateFilter) Since(now time.Time) time.Time {
	switch d {
	case DateFilterToday:
		y, m, day := now.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	case DateFilterWeek:
		return now.AddDate(0, 0, -7)
	case DateFilterMonth:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// Filter is the active listing filter. An empty ContentType means all types.
type Filter struct {
	Date        DateFilter
	ContentType ContentType
}

// DefaultFilter returns a filter that matches everything.
func DefaultFilter() Filter {
	return Filter{Date: DateFilterAll}
}

// Matches reports whether a record passes the filter.
func (f Filter) Matches(r *Record, now time.Time) bool {
	if f.ContentType != "" && r.ContentType != f.ContentType {
		return false
	}
	since := f.Date.Since(now)
	if since.IsZero() {
		return true
	}
	added := r.DateAdded()
	return !added.IsZero() && !added.Before(since)
}

// ListRequest is a paginated list request to the backend.
type ListRequest struct {
	Limit       int
	Offset      int
	DateFilter  DateFilter
	ContentType ContentType
}

// RecordQuery selects a window of stored records.
// A zero Since and an empty ContentType match everything; Limit 0 means no limit.
type RecordQuery struct {
	Since       time.Time
	ContentType ContentType
	Limit       int
	Offset      int
}

// Pagination describes the window a list response covers.
type Pagination struct {
	// Count is the number of records the backend holds for the filter.
	// It is the server-reported total the page count is derived from.
	Count int `json:"count"`

	// Offset is the offset the response starts at.
	Offset int `json:"offset"`
}

// ListResponse is the backend's answer to a ListRequest.
type ListResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Items      []Record   `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// MutationResult confirms an add operation.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	// RequestID identifies the mutation when the backend also pushes its
	// confirmation as an event.
	RequestID string `json:"requestId,omitempty"`
}

// Removal statuses reported by the backend.
const (
	RemovalSuccess = "success"
	RemovalError   = "error"
)

// RemovalResult is the outcome of a single leaf removal call.
type RemovalResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the removal succeeded.
func (r RemovalResult) OK() bool {
	return r.Status == RemovalSuccess
}

// DeleteOutcome reports the joined result of deleting a group.
type DeleteOutcome struct {
	Deleted int
	Failed  int
}

// Total returns the number of leaves the delete addressed.
func (o DeleteOutcome) Total() int {
	return o.Deleted + o.Failed
}

// BackendInfo is the payload of the auxiliary info channel.
type BackendInfo struct {
	Documents   int            `json:"documents"`
	Images      int            `json:"images"`
	Collections []string       `json:"collections,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// IsPopulated reports whether the info carries anything worth showing.
func (i *BackendInfo) IsPopulated() bool {
	return i != nil && (i.Documents > 0 || i.Images > 0 || len(i.Collections) > 0 || len(i.Extra) > 0)
}

// Page is a materialised window over the ordered group list.
type Page struct {
	Items       []Group
	Page        int
	PageSize    int
	TotalGroups int
	TotalPages  int
	CachedCount int
	ServerTotal int
	HasMore     bool
}
