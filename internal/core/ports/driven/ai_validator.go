package driven

import "github.com/custodia-labs/sercha-library/internal/core/domain"

// AssistantValidator checks an assistant configuration by contacting the
// provider before it is saved.
type AssistantValidator interface {
	// ValidateAssistant returns nil if the configuration works or is not
	// configured at all.
	ValidateAssistant(settings domain.AssistantSettings) error
}
