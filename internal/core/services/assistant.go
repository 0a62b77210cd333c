package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// maxContextRunes bounds the group text sent to the model.
const maxContextRunes = 12000

// GroupFinder resolves a group key against the record cache.
type GroupFinder interface {
	FindGroup(ctx context.Context, key string) (*domain.Group, error)
}

// AssistantService answers questions grounded in one group's text.
// The llm may be nil, in which case every call returns ErrLLMUnavailable.
type AssistantService struct {
	groups  GroupFinder
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAssistantService creates an assistant service.
func NewAssistantService(groups GroupFinder, llm driven.LLMService, prompts driven.PromptStore) *AssistantService {
	return &AssistantService{groups: groups, llm: llm, prompts: prompts}
}

// Available reports whether a language model is configured.
func (a *AssistantService) Available() bool {
	return a.llm != nil
}

// Ask answers question using the text of the group with the given key.
func (a *AssistantService) Ask(ctx context.Context, groupKey, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is empty: %w", domain.ErrInvalidInput)
	}
	group, text, err := a.resolve(ctx, groupKey)
	if err != nil {
		return "", err
	}

	system, err := a.prompts.Load(driven.PromptAskSystem)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}
	tmpl, err := a.prompts.Load(driven.PromptAskContext)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}

	logger.Debug("ask %s (%d chars of context) with %s", group.Key, len(text), a.llm.ModelName())
	answer, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(tmpl, group.Title, text, question)},
	}, driven.ChatOptions{Temperature: 0.2})
	if err != nil {
		return "", fmt.Errorf("ask %q: %w", group.Key, err)
	}
	return strings.TrimSpace(answer), nil
}

// Summarise condenses the group's text to at most maxChars characters.
func (a *AssistantService) Summarise(ctx context.Context, groupKey string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = 280
	}
	group, text, err := a.resolve(ctx, groupKey)
	if err != nil {
		return "", err
	}

	tmpl, err := a.prompts.Load(driven.PromptSummarise)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}

	summary, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "user", Content: fmt.Sprintf(tmpl, maxChars, text)},
	}, driven.ChatOptions{Temperature: 0.2})
	if err != nil {
		return "", fmt.Errorf("summarise %q: %w", group.Key, err)
	}
	return strings.TrimSpace(summary), nil
}

func (a *AssistantService) resolve(ctx context.Context, groupKey string) (*domain.Group, string, error) {
	if a.llm == nil {
		return nil, "", domain.ErrLLMUnavailable
	}
	group, err := a.groups.FindGroup(ctx, groupKey)
	if err != nil {
		return nil, "", err
	}
	text := groupText(group)
	if text == "" {
		return nil, "", fmt.Errorf("group %q has no text: %w", group.Key, domain.ErrInvalidInput)
	}
	return group, truncateRunes(text, maxContextRunes), nil
}

// groupText is the combined text of a chunk group, or the leaf texts
// separated by blank lines for other kinds.
func groupText(g *domain.Group) string {
	if g.Kind == domain.GroupChunks && g.CombinedText != "" {
		return strings.TrimSpace(g.CombinedText)
	}
	parts := make([]string, 0, len(g.Records))
	for i := range g.Records {
		if t := strings.TrimSpace(g.Records[i].Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
