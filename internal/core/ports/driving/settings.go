package driving

import "github.com/custodia-labs/sercha-library/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetBackend configures the content backend.
	SetBackend(kind domain.BackendKind, url string) error

	// SetPageSize updates the number of groups per page.
	SetPageSize(size int) error

	// SetAssistant configures the language model behind the assistant.
	SetAssistant(assistant domain.AssistantSettings) error

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
