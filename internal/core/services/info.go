package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// InfoLoader populates the auxiliary info panel. Unlike content loading it
// retries on its own, with a fixed backoff, for as long as the panel is
// still unpopulated.
type InfoLoader struct {
	backend driven.ContentBackend
	retry   time.Duration

	mu   sync.RWMutex
	info *domain.BackendInfo
}

// NewInfoLoader creates an info loader. A non-positive retry uses the default.
func NewInfoLoader(backend driven.ContentBackend, retry time.Duration) *InfoLoader {
	if retry <= 0 {
		retry = domain.DefaultInfoRetry
	}
	return &InfoLoader{backend: backend, retry: retry}
}

// Run fetches info until a populated payload arrives or ctx ends.
// It returns nil once populated and ctx.Err() when cancelled first.
func (l *InfoLoader) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		info, err := l.backend.Info(ctx)
		switch {
		case err != nil:
			logger.Debug("info attempt %d failed: %v", attempt, err)
		case !info.IsPopulated():
			logger.Debug("info attempt %d returned an empty payload", attempt)
		default:
			l.mu.Lock()
			l.info = info
			l.mu.Unlock()
			return nil
		}
		timer.Reset(l.retry)
	}
}

// Get returns the loaded info, or nil while unpopulated.
func (l *InfoLoader) Get() *domain.BackendInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.info
}
