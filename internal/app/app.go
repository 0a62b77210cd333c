// Package app wires the library's adapters and services together from the
// persisted settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-library/internal/adapters/driven/backend/httpapi"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/backend/local"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/llm"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/notify"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/core/services"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// Options selects where configuration is read from.
type Options struct {
	// ConfigPath is an explicit config file. Empty uses the default location.
	ConfigPath string

	// ConfigStore replaces the file store entirely, for tests.
	ConfigStore driven.ConfigStore
}

// App holds the wired services and the resources they own.
type App struct {
	Settings  *domain.AppSettings
	Config    *services.SettingsService
	Library   *services.LibraryService
	Assistant *services.AssistantService
	Notifier  *notify.Recorder
	Changes   *services.ChangeFeed

	backend driven.ContentBackend
	closers []func() error
}

// New builds the application from settings. The caller must Close it.
func New(ctx context.Context, opts Options) (*App, error) {
	store, configDir, err := openConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	settingsSvc := services.NewSettingsService(store).WithValidator(llm.Validator{})
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a := &App{
		Settings: settings,
		Config:   settingsSvc,
		Notifier: notify.New(logger.Zap(), notify.DefaultHistory),
	}
	if err := a.wire(ctx, configDir); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func openConfig(opts Options) (driven.ConfigStore, string, error) {
	if opts.ConfigStore != nil {
		return opts.ConfigStore, "", nil
	}
	var (
		store *file.ConfigStore
		err   error
	)
	if opts.ConfigPath != "" {
		store, err = file.NewConfigStoreAt(opts.ConfigPath)
	} else {
		store, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, "", err
	}
	return store, filepath.Dir(store.Path()), nil
}

func (a *App) wire(ctx context.Context, configDir string) error {
	s := a.Settings

	var db *sqlite.Store
	if s.Backend.Kind == domain.BackendLocal || s.Cache.Kind == domain.CacheSQLite {
		dataDir := s.Cache.Dir
		if dataDir == "" && configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		var err error
		db, err = sqlite.NewStore(dataDir)
		if err != nil {
			return fmt.Errorf("open data store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		logger.Debug("data store at %s", db.Path())
	}

	switch s.Backend.Kind {
	case domain.BackendHTTP:
		client, err := httpapi.New(httpapi.Config{
			BaseURL:   s.Backend.URL,
			RateLimit: s.Backend.RateLimit,
			Timeout:   s.Backend.Timeout,
		})
		if err != nil {
			return fmt.Errorf("create http backend: %w", err)
		}
		a.backend = client
	default:
		a.backend = local.New(db.RecordStore())
	}
	a.closers = append(a.closers, a.backend.Close)
	logger.Debug("backend: %s", s.Backend.Kind.Description())

	var cache driven.RecordCache = memory.NewRecordCache()
	if s.Cache.Kind == domain.CacheSQLite {
		cache = db.RecordCache()
	}

	controller := services.NewSyncController(cache, a.Notifier, s.Library.Sort)
	a.Changes = services.NewChangeFeed(controller)
	if s.Cache.Kind == domain.CacheSQLite {
		if err := controller.Restore(ctx); err != nil {
			logger.Warn("restore record cache: %v", err)
		}
	}

	deleter := services.NewDeleteOrchestrator(a.backend, controller, a.Notifier, s.DeleteConcurrency)
	info := services.NewInfoLoader(a.backend, s.InfoRetry)
	a.Library = services.NewLibraryService(a.backend, controller, deleter, info, s.Library)

	model, err := llm.New(s.Assistant)
	if err != nil {
		// The library works without the assistant.
		logger.Warn("assistant disabled: %v", err)
	}
	if model != nil {
		a.closers = append(a.closers, model.Close)
		logger.Debug("assistant: %s %s", s.Assistant.ProviderOrDefault(), model.ModelName())
	}
	prompts, err := file.NewPromptStore(configDir)
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}
	a.Assistant = services.NewAssistantService(a.Library, model, prompts)
	return nil
}

// Start runs the background event loop and info loader until ctx ends.
func (a *App) Start(ctx context.Context) {
	a.Library.Start(ctx)
}

// Close releases every owned resource in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
