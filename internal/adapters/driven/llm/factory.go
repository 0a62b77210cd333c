// Package llm builds the assistant's language model from settings.
// Provider adapters live in the ollama, openai and anthropic subpackages.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-library/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/sercha-library/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
)

// pingTimeout bounds the connectivity check made by Validate.
const pingTimeout = 5 * time.Second

// Ensure Validator implements the interface.
var _ driven.AssistantValidator = Validator{}

// New creates the LLM service for settings. It returns nil when the
// assistant is not configured.
func New(settings domain.AssistantSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch p := settings.ProviderOrDefault(); p {
	case domain.AIProviderOllama:
		return ollama.NewLLMService(ollama.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		svc, err := openai.NewLLMService(openai.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderAnthropic:
		svc, err := anthropic.NewLLMService(anthropic.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: assistant provider %q", domain.ErrUnsupportedType, p)
	}
}

// Validate creates the service for settings and pings it.
func Validate(ctx context.Context, settings domain.AssistantSettings) error {
	svc, err := New(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", settings.ProviderOrDefault().Description(), err)
	}
	return nil
}

// Validator adapts Validate to driven.AssistantValidator.
type Validator struct{}

// ValidateAssistant pings the configured provider.
func (Validator) ValidateAssistant(settings domain.AssistantSettings) error {
	return Validate(context.Background(), settings)
}
