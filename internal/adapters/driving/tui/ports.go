package tui

import (
	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
)

// Notifications is the feed of user-visible outcomes the status bar follows.
type Notifications interface {
	Recent() []domain.Notification
	Subscribe(buffer int) (<-chan domain.Notification, func())
}

// Changes is the feed of settled record cache changes.
type Changes interface {
	Subscribe(buffer int) (<-chan domain.CacheChange, func())
}

// Ports holds the driving ports the TUI calls into.
// Only Library is required; the assistant and the two feeds light up
// extra features when present.
type Ports struct {
	Library       driving.LibraryService
	Assistant     driving.AssistantService
	Notifications Notifications
	Changes       Changes
}

// NewPorts creates a Ports instance with the given services.
func NewPorts(
	library driving.LibraryService,
	assistant driving.AssistantService,
	feed Notifications,
	changes Changes,
) *Ports {
	return &Ports{
		Library:       library,
		Assistant:     assistant,
		Notifications: feed,
		Changes:       changes,
	}
}

// Validate checks that all required ports are configured.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	return nil
}
