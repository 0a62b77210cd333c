package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-library/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backend.kind", "http")
	_ = store.Set("backend.url", "https://content.example.com")
	_ = store.Set("backend.rate_limit", 2.5)
	_ = store.Set("backend.timeout_seconds", int64(5))
	_ = store.Set("library.page_size", int64(20))
	_ = store.Set("library.server_hard_cap", int64(50))
	_ = store.Set("library.sort", "latest")
	_ = store.Set("cache.backend", "sqlite")
	_ = store.Set("cache.dir", "/var/lib/library")
	_ = store.Set("delete.max_concurrency", 4)
	_ = store.Set("info.retry_seconds", 10)
	_ = store.Set("assistant.provider", "openai")
	_ = store.Set("assistant.model", "gpt-4o-mini")
	_ = store.Set("assistant.api_key", "sk-test")
	_ = store.Set("watch.dir", "/tmp/drop")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.BackendHTTP, settings.Backend.Kind)
	assert.Equal(t, "https://content.example.com", settings.Backend.URL)
	assert.InDelta(t, 2.5, settings.Backend.RateLimit, 0.0001)
	assert.Equal(t, 5*time.Second, settings.Backend.Timeout)
	assert.Equal(t, 20, settings.Library.PageSize)
	assert.Equal(t, 50, settings.Library.ServerHardCap)
	assert.Equal(t, domain.SortLatest, settings.Library.Sort)
	assert.Equal(t, domain.CacheSQLite, settings.Cache.Kind)
	assert.Equal(t, "/var/lib/library", settings.Cache.Dir)
	assert.Equal(t, 4, settings.DeleteConcurrency)
	assert.Equal(t, 10*time.Second, settings.InfoRetry)
	assert.Equal(t, domain.AssistantSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
	}, settings.Assistant)
	assert.True(t, settings.Assistant.IsConfigured())
	assert.Equal(t, "/tmp/drop", settings.WatchDir)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backend.kind", "carrier-pigeon")
	_ = store.Set("library.sort", "alphabetical")
	_ = store.Set("cache.backend", "redis")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Backend.Kind, settings.Backend.Kind)
	assert.Equal(t, defaults.Library.Sort, settings.Library.Sort)
	assert.Equal(t, defaults.Cache.Kind, settings.Cache.Kind)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	want := domain.DefaultAppSettings()
	want.Backend.Kind = domain.BackendHTTP
	want.Backend.URL = "http://content:9000"
	want.Backend.RateLimit = 3
	want.Library.PageSize = 7
	want.Library.Sort = domain.SortLatest
	want.Cache.Kind = domain.CacheSQLite
	want.Assistant = domain.AssistantSettings{Provider: domain.AIProviderAnthropic, APIKey: "key"}
	want.InfoRetry = 5 * time.Second

	require.NoError(t, service.Save(&want))
	got, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

// failingConfigStore fails Set for one key, or for every key when failOn is empty.
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if f.failOn == "" || key == f.failOn {
		return assert.AnError
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Save_ReportsFailingKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"backend.kind", "backend kind"},
		{"library.page_size", "page size"},
		{"delete.max_concurrency", "delete concurrency"},
		{"watch.dir", "watch dir"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := &failingConfigStore{ConfigStore: memory.NewConfigStore(), failOn: tt.key}
			settings := domain.DefaultAppSettings()

			err := NewSettingsService(store).Save(&settings)

			require.Error(t, err)
			assert.ErrorIs(t, err, assert.AnError)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettingsService_SetBackend(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetBackend(domain.BackendHTTP, "https://content.example.com"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.BackendHTTP, settings.Backend.Kind)
	assert.Equal(t, "https://content.example.com", settings.Backend.URL)
}

func TestSettingsService_SetBackend_LocalKeepsURL(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backend.url", "http://old:8000")
	service := NewSettingsService(store)

	require.NoError(t, service.SetBackend(domain.BackendLocal, ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.BackendLocal, settings.Backend.Kind)
	assert.Equal(t, "http://old:8000", settings.Backend.URL)
}

func TestSettingsService_SetBackend_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	err := service.SetBackend("ftp", "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	for _, u := range []string{"", "content.example.com", "ftp://x", "http://"} {
		err = service.SetBackend(domain.BackendHTTP, u)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "url %q", u)
	}
}

func TestSettingsService_SetPageSize(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.SetPageSize(4))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 4, settings.Library.PageSize)

	assert.ErrorIs(t, service.SetPageSize(0), domain.ErrInvalidInput)
}

func TestSettingsService_SetPageSize_SaveError(t *testing.T) {
	store := &failingConfigStore{ConfigStore: memory.NewConfigStore()}

	err := NewSettingsService(store).SetPageSize(5)

	assert.Error(t, err)
}

func TestSettingsService_SetAssistant(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	want := domain.AssistantSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o", APIKey: "sk-1"}

	require.NoError(t, service.SetAssistant(want))
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, want, settings.Assistant)
}

type stubValidator struct {
	err  error
	seen []domain.AssistantSettings
}

func (v *stubValidator) ValidateAssistant(a domain.AssistantSettings) error {
	v.seen = append(v.seen, a)
	return v.err
}

func TestSettingsService_SetAssistant_Validates(t *testing.T) {
	store := memory.NewConfigStore()
	v := &stubValidator{err: domain.ErrLLMUnavailable}
	service := NewSettingsService(store).WithValidator(v)
	a := domain.AssistantSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}

	err := service.SetAssistant(a)

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Equal(t, []domain.AssistantSettings{a}, v.seen)
	settings, _ := service.Get()
	assert.False(t, settings.Assistant.IsConfigured())

	v.err = nil
	require.NoError(t, service.SetAssistant(a))
	settings, _ = service.Get()
	assert.Equal(t, a, settings.Assistant)
}

func TestSettingsService_SetAssistant_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	tests := []struct {
		name      string
		assistant domain.AssistantSettings
		wantErr   error
	}{
		{"unknown provider", domain.AssistantSettings{Provider: "cohere"}, domain.ErrUnsupportedType},
		{"hosted without key", domain.AssistantSettings{Provider: domain.AIProviderAnthropic}, domain.ErrInvalidInput},
		{"ollama without model", domain.AssistantSettings{Provider: domain.AIProviderOllama}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, service.SetAssistant(tt.assistant), tt.wantErr)
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
	}{
		{"defaults", nil, nil},
		{"http with url", map[string]any{"backend.kind": "http", "backend.url": "http://localhost:8000"}, nil},
		{"http with bad url", map[string]any{"backend.kind": "http", "backend.url": "not a url"}, domain.ErrInvalidInput},
		{"unknown backend", map[string]any{"backend.kind": "grpc"}, domain.ErrUnsupportedType},
		{"unknown sort", map[string]any{"library.sort": "random"}, domain.ErrInvalidInput},
		{"unknown cache", map[string]any{"cache.backend": "redis"}, domain.ErrUnsupportedType},
		{"negative page size", map[string]any{"library.page_size": -1}, domain.ErrInvalidInput},
		{"negative hard cap", map[string]any{"library.server_hard_cap": -5}, domain.ErrInvalidInput},
		{"negative concurrency", map[string]any{"delete.max_concurrency": -2}, domain.ErrInvalidInput},
		{"negative rate", map[string]any{"backend.rate_limit": -1.0}, domain.ErrInvalidInput},
		{"unknown assistant provider", map[string]any{"assistant.provider": "cohere"}, domain.ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.values {
				require.NoError(t, store.Set(k, v))
			}

			err := NewSettingsService(store).Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
