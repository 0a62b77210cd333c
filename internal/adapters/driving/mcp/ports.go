package mcp

import (
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls into.
type Ports struct {
	// Library pages, inspects and deletes groups.
	Library driving.LibraryService

	// Assistant answers questions about a group. Optional.
	Assistant driving.AssistantService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	return nil
}
