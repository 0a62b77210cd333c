package domain

import "time"

const unknownDescription = "Unknown"

// BackendKind selects the content backend adapter.
type BackendKind string

// Available backend kinds.
const (
	// BackendHTTP talks to a remote content service over JSON REST.
	BackendHTTP BackendKind = "http"

	// BackendLocal serves records from the local SQLite store.
	BackendLocal BackendKind = "local"
)

// IsValid returns true if the backend kind is recognised.
func (k BackendKind) IsValid() bool {
	return k == BackendHTTP || k == BackendLocal
}

// String returns the string representation.
func (k BackendKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the backend kind.
func (k BackendKind) Description() string {
	switch k {
	case BackendHTTP:
		return "HTTP (remote content service)"
	case BackendLocal:
		return "Local (SQLite records)"
	default:
		return unknownDescription
	}
}

// CacheKind selects where the record cache lives.
type CacheKind string

// Available cache kinds.
const (
	CacheMemory CacheKind = "memory"
	CacheSQLite CacheKind = "sqlite"
)

// IsValid returns true if the cache kind is recognised.
func (k CacheKind) IsValid() bool {
	return k == CacheMemory || k == CacheSQLite
}

// SortOrder controls the order groups are paginated in.
type SortOrder string

// Available sort orders.
const (
	// SortCache keeps first-seen cache order.
	SortCache SortOrder = "cache"

	// SortLatest orders groups by their most recently added leaf, newest first.
	SortLatest SortOrder = "latest"
)

// IsValid returns true if the sort order is recognised.
func (s SortOrder) IsValid() bool {
	return s == SortCache || s == SortLatest
}

// BackendSettings holds content backend configuration.
type BackendSettings struct {
	// Kind selects the adapter.
	Kind BackendKind

	// URL is the base URL of the HTTP backend.
	URL string

	// RateLimit is the maximum requests per second (0 = unlimited).
	RateLimit float64

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// LibrarySettings holds paging behaviour.
type LibrarySettings struct {
	// PageSize is the number of groups per page.
	PageSize int

	// ServerHardCap is the largest limit the backend accepts per request.
	ServerHardCap int

	// Sort is the group order before pagination.
	Sort SortOrder
}

// CacheSettings holds record cache configuration.
type CacheSettings struct {
	Kind CacheKind

	// Dir is the data directory for the SQLite cache and local backend.
	Dir string
}

// AIProvider identifies the language model service behind the assistant.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama server.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true for hosted providers.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI"
	case AIProviderAnthropic:
		return "Anthropic"
	default:
		return unknownDescription
	}
}

// AssistantSettings holds the LLM used by the ask command.
type AssistantSettings struct {
	// Provider selects the LLM service. Empty means Ollama.
	Provider AIProvider

	// Model is the LLM model name. Hosted providers have a default.
	Model string

	// BaseURL overrides the provider's API endpoint.
	BaseURL string

	// APIKey authenticates hosted providers.
	APIKey string
}

// ProviderOrDefault returns the configured provider, or Ollama.
func (a AssistantSettings) ProviderOrDefault() AIProvider {
	if a.Provider == "" {
		return AIProviderOllama
	}
	return a.Provider
}

// IsConfigured returns true if the assistant can be built. Ollama needs a
// model; hosted providers need an API key.
func (a AssistantSettings) IsConfigured() bool {
	p := a.ProviderOrDefault()
	if !p.IsValid() {
		return false
	}
	if p.RequiresAPIKey() {
		return a.APIKey != ""
	}
	return a.Model != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Backend   BackendSettings
	Library   LibrarySettings
	Cache     CacheSettings
	Assistant AssistantSettings

	// DeleteConcurrency bounds in-flight leaf removals per group delete.
	DeleteConcurrency int

	// InfoRetry is the fixed backoff of the auxiliary info channel.
	InfoRetry time.Duration

	// WatchDir is the drop folder watched for new record files.
	WatchDir string
}

// Default values.
const (
	DefaultPageSize          = 10
	DefaultServerHardCap     = 25
	DefaultDeleteConcurrency = 8
	DefaultInfoRetry         = 3 * time.Second
	DefaultBackendTimeout    = 30 * time.Second
	DefaultBackendURL        = "http://localhost:8000"
)

// DefaultAppSettings returns settings with sensible defaults.
// The local backend is used until a remote URL is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			Kind:    BackendLocal,
			URL:     DefaultBackendURL,
			Timeout: DefaultBackendTimeout,
		},
		Library: LibrarySettings{
			PageSize:      DefaultPageSize,
			ServerHardCap: DefaultServerHardCap,
			Sort:          SortCache,
		},
		Cache: CacheSettings{
			Kind: CacheMemory,
		},
		DeleteConcurrency: DefaultDeleteConcurrency,
		InfoRetry:         DefaultInfoRetry,
	}
}
