// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// PageLoaded carries a freshly materialised page back to the model.
type PageLoaded struct {
	Page *domain.Page
	Err  error
}

// GroupSelected is sent when a group is opened from the page list.
type GroupSelected struct {
	Group domain.Group
}

// DeleteRequested asks the app to delete a group after confirmation.
type DeleteRequested struct {
	Group domain.Group
}

// GroupDeleted reports the joined outcome of a group delete.
type GroupDeleted struct {
	Key     string
	Outcome domain.DeleteOutcome
	Err     error
}

// FilterChanged is sent when the active filter was replaced.
type FilterChanged struct {
	Filter domain.Filter
}

// NotificationReceived carries one pushed notification.
type NotificationReceived struct {
	Notification domain.Notification
}

// LibraryChanged reports that the record cache settled into a new state.
type LibraryChanged struct {
	Change domain.CacheChange
}

// AnswerReady carries an assistant answer or summary for a group.
type AnswerReady struct {
	Key    string
	Answer string
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLibrary is the paged group list.
	ViewLibrary ViewType = iota
	// ViewGroup shows one group and its records.
	ViewGroup
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLibrary:
		return "library"
	case ViewGroup:
		return "group"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
