package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyBackendKind       = "backend.kind"
	keyBackendURL        = "backend.url"
	keyBackendRateLimit  = "backend.rate_limit"
	keyBackendTimeout    = "backend.timeout_seconds"
	keyPageSize          = "library.page_size"
	keyServerHardCap     = "library.server_hard_cap"
	keySort              = "library.sort"
	keyCacheBackend      = "cache.backend"
	keyCacheDir          = "cache.dir"
	keyDeleteConcurrency = "delete.max_concurrency"
	keyInfoRetry         = "info.retry_seconds"
	keyAssistantProvider = "assistant.provider"
	keyAssistantModel    = "assistant.model"
	keyAssistantBaseURL  = "assistant.base_url"
	keyAssistantAPIKey   = "assistant.api_key"
	keyWatchDir          = "watch.dir"
)

// SettingsService turns the raw config store into typed application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.AssistantValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// WithValidator makes SetAssistant contact the provider before saving.
func (s *SettingsService) WithValidator(v driven.AssistantValidator) *SettingsService {
	s.validator = v
	return s
}

// Get retrieves current application settings.
// Missing or unrecognised values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Backend: domain.BackendSettings{
			Kind:      s.getBackendKind(defaults.Backend.Kind),
			URL:       s.getString(keyBackendURL, defaults.Backend.URL),
			RateLimit: s.configStore.GetFloat(keyBackendRateLimit), // 0 means unlimited
			Timeout:   s.getSeconds(keyBackendTimeout, defaults.Backend.Timeout),
		},
		Library: domain.LibrarySettings{
			PageSize:      s.getInt(keyPageSize, defaults.Library.PageSize),
			ServerHardCap: s.getInt(keyServerHardCap, defaults.Library.ServerHardCap),
			Sort:          s.getSortOrder(defaults.Library.Sort),
		},
		Cache: domain.CacheSettings{
			Kind: s.getCacheKind(defaults.Cache.Kind),
			Dir:  s.configStore.GetString(keyCacheDir),
		},
		Assistant: domain.AssistantSettings{
			Provider: domain.AIProvider(s.configStore.GetString(keyAssistantProvider)),
			Model:    s.configStore.GetString(keyAssistantModel),
			BaseURL:  s.configStore.GetString(keyAssistantBaseURL),
			APIKey:   s.configStore.GetString(keyAssistantAPIKey),
		},
		DeleteConcurrency: s.getInt(keyDeleteConcurrency, defaults.DeleteConcurrency),
		InfoRetry:         s.getSeconds(keyInfoRetry, defaults.InfoRetry),
		WatchDir:          s.configStore.GetString(keyWatchDir),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		what  string
	}{
		{keyBackendKind, settings.Backend.Kind.String(), "backend kind"},
		{keyBackendURL, settings.Backend.URL, "backend url"},
		{keyBackendRateLimit, settings.Backend.RateLimit, "backend rate limit"},
		{keyBackendTimeout, int(settings.Backend.Timeout / time.Second), "backend timeout"},
		{keyPageSize, settings.Library.PageSize, "page size"},
		{keyServerHardCap, settings.Library.ServerHardCap, "server hard cap"},
		{keySort, string(settings.Library.Sort), "sort order"},
		{keyCacheBackend, string(settings.Cache.Kind), "cache backend"},
		{keyCacheDir, settings.Cache.Dir, "cache dir"},
		{keyDeleteConcurrency, settings.DeleteConcurrency, "delete concurrency"},
		{keyInfoRetry, int(settings.InfoRetry / time.Second), "info retry"},
		{keyAssistantProvider, settings.Assistant.Provider.String(), "assistant provider"},
		{keyAssistantModel, settings.Assistant.Model, "assistant model"},
		{keyAssistantBaseURL, settings.Assistant.BaseURL, "assistant base_url"},
		{keyAssistantAPIKey, settings.Assistant.APIKey, "assistant api_key"},
		{keyWatchDir, settings.WatchDir, "watch dir"},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.what, err)
		}
	}
	return nil
}

// SetBackend configures the content backend.
// The HTTP backend needs an absolute http(s) URL; the local backend keeps
// the existing URL when url is empty.
func (s *SettingsService) SetBackend(kind domain.BackendKind, rawURL string) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid backend kind %q: %w", kind, domain.ErrUnsupportedType)
	}
	if kind == domain.BackendHTTP {
		if err := validateBackendURL(rawURL); err != nil {
			return err
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Backend.Kind = kind
	if rawURL != "" {
		settings.Backend.URL = rawURL
	}

	return s.Save(settings)
}

// SetPageSize updates the number of groups per page.
func (s *SettingsService) SetPageSize(size int) error {
	if size < 1 {
		return fmt.Errorf("page size must be at least 1, got %d: %w", size, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Library.PageSize = size
	return s.Save(settings)
}

// SetAssistant configures the language model behind the assistant.
// An empty model or URL selects the provider's default.
func (s *SettingsService) SetAssistant(assistant domain.AssistantSettings) error {
	if !assistant.Provider.IsValid() {
		return fmt.Errorf("invalid assistant provider %q: %w", assistant.Provider, domain.ErrUnsupportedType)
	}
	if assistant.Provider.RequiresAPIKey() && assistant.APIKey == "" {
		return fmt.Errorf("%s needs an API key: %w", assistant.Provider.Description(), domain.ErrInvalidInput)
	}
	if assistant.Provider == domain.AIProviderOllama && assistant.Model == "" {
		return fmt.Errorf("ollama needs a model name: %w", domain.ErrInvalidInput)
	}
	if s.validator != nil {
		if err := s.validator.ValidateAssistant(assistant); err != nil {
			return err
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Assistant = assistant
	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if raw := s.configStore.GetString(keyBackendKind); raw != "" && !domain.BackendKind(raw).IsValid() {
		return fmt.Errorf("invalid backend kind %q: %w", raw, domain.ErrUnsupportedType)
	}
	if raw := s.configStore.GetString(keySort); raw != "" && !domain.SortOrder(raw).IsValid() {
		return fmt.Errorf("invalid sort order %q: %w", raw, domain.ErrInvalidInput)
	}
	if raw := s.configStore.GetString(keyCacheBackend); raw != "" && !domain.CacheKind(raw).IsValid() {
		return fmt.Errorf("invalid cache backend %q: %w", raw, domain.ErrUnsupportedType)
	}

	if p := settings.Assistant.Provider; p != "" && !p.IsValid() {
		return fmt.Errorf("invalid assistant provider %q: %w", p, domain.ErrUnsupportedType)
	}

	if settings.Backend.Kind == domain.BackendHTTP {
		if err := validateBackendURL(settings.Backend.URL); err != nil {
			return err
		}
	}
	if settings.Library.PageSize < 1 {
		return fmt.Errorf("library.page_size must be at least 1: %w", domain.ErrInvalidInput)
	}
	if settings.Library.ServerHardCap < 1 {
		return fmt.Errorf("library.server_hard_cap must be at least 1: %w", domain.ErrInvalidInput)
	}
	if settings.DeleteConcurrency < 1 {
		return fmt.Errorf("delete.max_concurrency must be at least 1: %w", domain.ErrInvalidInput)
	}
	if settings.Backend.RateLimit < 0 {
		return fmt.Errorf("backend.rate_limit must not be negative: %w", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateBackendURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend url %q must be an absolute http(s) URL: %w", rawURL, domain.ErrInvalidInput)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getBackendKind(defaultVal domain.BackendKind) domain.BackendKind {
	kind := domain.BackendKind(s.configStore.GetString(keyBackendKind))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

func (s *SettingsService) getSortOrder(defaultVal domain.SortOrder) domain.SortOrder {
	order := domain.SortOrder(s.configStore.GetString(keySort))
	if !order.IsValid() {
		return defaultVal
	}
	return order
}

func (s *SettingsService) getCacheKind(defaultVal domain.CacheKind) domain.CacheKind {
	kind := domain.CacheKind(s.configStore.GetString(keyCacheBackend))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
