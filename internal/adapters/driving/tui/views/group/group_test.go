package group

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// mockAssistant implements driving.AssistantService for testing.
type mockAssistant struct {
	available bool
	question  string
	maxChars  int
	answer    string
	err       error
}

func (m *mockAssistant) Ask(_ context.Context, _, question string) (string, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockAssistant) Summarise(_ context.Context, _ string, maxChars int) (string, error) {
	m.maxChars = maxChars
	return m.answer, m.err
}

func (m *mockAssistant) Available() bool { return m.available }

func chunkGroup() domain.Group {
	doc := domain.ContentTypeDocument
	return domain.Group{
		Key:          "https://example.com/guide",
		Kind:         domain.GroupChunks,
		Title:        "Guide",
		BaseURL:      "https://example.com/guide",
		Collection:   "research",
		TotalChunks:  2,
		LatestAdded:  time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
		CombinedText: "First part.\n\nSecond   part.",
		Records: []domain.Record{
			{ID: "c0", URL: "https://example.com/guide#chunk-0", ContentType: doc},
			{ID: "c1", URL: "https://example.com/guide#chunk-1", ContentType: doc},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v)
	assert.Nil(t, v.Group())
	assert.Contains(t, v.View(), "No item selected.")
}

func TestView_Render(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 40)
	v.SetGroup(chunkGroup())

	view := v.View()

	assert.Contains(t, view, "Guide")
	assert.Contains(t, view, "2 chunks")
	assert.Contains(t, view, "research")
	assert.Contains(t, view, "2026-05-04 12:00:00")
	assert.Contains(t, view, "Records (2)")
	assert.Contains(t, view, "c1  https://example.com/guide#chunk-1")
	assert.Contains(t, view, "First part. Second part.")
}

func TestView_BackReturnsToLibrary(t *testing.T) {
	v := NewView(nil, nil)
	v.SetGroup(chunkGroup())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewLibrary}, cmd())
}

func TestView_DeleteRequestsConfirmation(t *testing.T) {
	v := NewView(nil, nil)
	v.SetGroup(chunkGroup())

	_, cmd := v.Update(runes("d"))

	require.NotNil(t, cmd)
	req, ok := cmd().(messages.DeleteRequested)
	require.True(t, ok)
	assert.Equal(t, []string{"c0", "c1"}, req.Group.LeafIDs())
}

func TestView_AskWithoutAssistant(t *testing.T) {
	v := NewView(nil, &mockAssistant{available: false})
	v.SetGroup(chunkGroup())

	_, cmd := v.Update(runes("a"))

	assert.Nil(t, cmd)
	assert.False(t, v.PromptFocused())
	assert.ErrorIs(t, v.Err(), errNoAssistant)
}

func TestView_Ask(t *testing.T) {
	assistant := &mockAssistant{available: true, answer: "It explains setup."}
	v := NewView(nil, assistant)
	v.SetGroup(chunkGroup())

	v.Update(runes("a"))
	require.True(t, v.PromptFocused())

	v.Update(runes("what is it?"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Waiting())
	assert.False(t, v.PromptFocused())

	v.Update(cmd())

	assert.Equal(t, "what is it?", assistant.question)
	assert.False(t, v.Waiting())
	assert.Equal(t, "It explains setup.", v.Answer())
	assert.Contains(t, v.View(), "It explains setup.")
}

func TestView_AskEmptyQuestion(t *testing.T) {
	v := NewView(nil, &mockAssistant{available: true})
	v.SetGroup(chunkGroup())

	v.Update(runes("a"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Waiting())
}

func TestView_PromptEscCancels(t *testing.T) {
	v := NewView(nil, &mockAssistant{available: true})
	v.SetGroup(chunkGroup())

	v.Update(runes("a"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.PromptFocused())
}

func TestView_Summarise(t *testing.T) {
	assistant := &mockAssistant{available: true, answer: "Short summary."}
	v := NewView(nil, assistant)
	v.SetGroup(chunkGroup())

	_, cmd := v.Update(runes("s"))
	require.NotNil(t, cmd)

	_, again := v.Update(runes("s"))
	assert.Nil(t, again, "one request at a time")

	v.Update(cmd())
	assert.Equal(t, summaryChars, assistant.maxChars)
	assert.Equal(t, "Short summary.", v.Answer())
}

func TestView_AnswerError(t *testing.T) {
	v := NewView(nil, &mockAssistant{available: true, err: errors.New("model offline")})
	v.SetGroup(chunkGroup())

	_, cmd := v.Update(runes("s"))
	v.Update(cmd())

	assert.Contains(t, v.View(), "Error: model offline")
}

func TestView_StaleAnswerIgnored(t *testing.T) {
	v := NewView(nil, &mockAssistant{available: true})
	v.SetGroup(chunkGroup())

	v.Update(messages.AnswerReady{Key: "other", Answer: "not for this group"})

	assert.Empty(t, v.Answer())
}

func TestView_SetGroupResetsState(t *testing.T) {
	v := NewView(nil, &mockAssistant{available: true})
	v.SetGroup(chunkGroup())
	v.Update(messages.AnswerReady{Key: chunkGroup().Key, Answer: "old"})

	v.SetGroup(domain.Group{Key: "n", Kind: domain.GroupSingle, Records: []domain.Record{{ID: "n"}}})

	assert.Empty(t, v.Answer())
	assert.NoError(t, v.Err())
}

func TestView_ScrollsRecords(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 10)
	g := chunkGroup()
	for i := 0; i < 6; i++ {
		g.Records = append(g.Records, domain.Record{ID: "extra"})
	}
	v.SetGroup(g)

	assert.Contains(t, v.View(), "[1-3 of 8]")

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, v.View(), "[2-4 of 8]")

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Contains(t, v.View(), "[1-3 of 8]")
}
