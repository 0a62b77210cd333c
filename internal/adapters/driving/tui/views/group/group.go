// Package group provides the single-group detail view for the TUI.
package group

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
)

// summaryChars bounds summaries requested from this view.
const summaryChars = 400

// errNoAssistant is shown when ask or summarise is used without a model.
var errNoAssistant = errors.New("no assistant configured")

// View shows one group, its records and assistant answers about it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	assistant driving.AssistantService
	ctx       context.Context

	group    *domain.Group
	question *input.QuestionInput
	answer   string
	waiting  bool
	err      error
	scroll   int
	width    int
	height   int
}

// NewView creates a new group view. assistant may be nil.
func NewView(s *styles.Styles, assistant driving.AssistantService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		keymap:    keymap.DefaultKeyMap(),
		assistant: assistant,
		ctx:       context.Background(),
		question:  input.NewQuestionInput(s),
	}
}

// SetContext sets the context passed to assistant calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetGroup replaces the shown group and clears any previous answer.
func (v *View) SetGroup(g domain.Group) {
	v.group = &g
	v.answer = ""
	v.err = nil
	v.waiting = false
	v.scroll = 0
	v.question.Reset()
}

// Group returns the shown group, or nil.
func (v *View) Group() *domain.Group {
	return v.group
}

// Update handles messages for the group view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.question.Focused() {
			return v.handlePromptKey(msg)
		}
		return v.handleKey(msg)

	case messages.AnswerReady:
		if v.group == nil || msg.Key != v.group.Key {
			return v, nil
		}
		v.waiting = false
		v.answer = msg.Answer
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewLibrary} }
	case keymap.Matches(k, v.keymap.Up):
		if v.scroll > 0 {
			v.scroll--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.group != nil && v.scroll < len(v.group.Records)-1 {
			v.scroll++
		}
	case keymap.Matches(k, v.keymap.Delete):
		if v.group != nil {
			g := *v.group
			return v, func() tea.Msg { return messages.DeleteRequested{Group: g} }
		}
	case keymap.Matches(k, v.keymap.Ask):
		if !v.hasAssistant() {
			v.err = errNoAssistant
			return v, nil
		}
		return v, v.question.Focus()
	case keymap.Matches(k, v.keymap.Summarise):
		if !v.hasAssistant() {
			v.err = errNoAssistant
			return v, nil
		}
		return v, v.run(func(ctx context.Context, key string) (string, error) {
			return v.assistant.Summarise(ctx, key, summaryChars)
		})
	}
	return v, nil
}

func (v *View) handlePromptKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.question.Reset()
		return v, nil
	case tea.KeyEnter:
		q := strings.TrimSpace(v.question.Value())
		v.question.Reset()
		if q == "" {
			return v, nil
		}
		return v, v.run(func(ctx context.Context, key string) (string, error) {
			return v.assistant.Ask(ctx, key, q)
		})
	}
	var cmd tea.Cmd
	v.question, cmd = v.question.Update(msg)
	return v, cmd
}

func (v *View) run(call func(ctx context.Context, key string) (string, error)) tea.Cmd {
	if v.group == nil || v.waiting {
		return nil
	}
	v.waiting = true
	v.err = nil
	key := v.group.Key
	ctx := v.ctx
	return func() tea.Msg {
		answer, err := call(ctx, key)
		return messages.AnswerReady{Key: key, Answer: answer, Err: err}
	}
}

func (v *View) hasAssistant() bool {
	return v.assistant != nil && v.assistant.Available()
}

// Waiting reports whether an assistant call is in flight.
func (v *View) Waiting() bool {
	return v.waiting
}

// Answer returns the last assistant answer.
func (v *View) Answer() string {
	return v.answer
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// PromptFocused reports whether the question prompt has focus.
func (v *View) PromptFocused() bool {
	return v.question.Focused()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.question.SetWidth(width)
}

// View renders the group view.
func (v *View) View() string {
	if v.group == nil {
		return v.styles.Muted.Render("No item selected.")
	}
	g := v.group

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(list.Title(g)))
	b.WriteString("  ")
	b.WriteString(v.styles.Badge(g.ContentType()))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(g.Key))
	b.WriteString("\n\n")

	b.WriteString(v.field("Kind", list.Describe(g)))
	if g.Collection != "" {
		b.WriteString(v.field("Collection", g.Collection))
	}
	if !g.LatestAdded.IsZero() {
		b.WriteString(v.field("Added", g.LatestAdded.Format("2006-01-02 15:04:05")))
	}
	if g.BaseURL != "" {
		b.WriteString(v.field("URL", g.BaseURL))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Records (%d)", g.LeafCount())))
	b.WriteString("\n")
	b.WriteString(v.renderRecords())

	if preview := v.preview(); preview != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(preview))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.question.Focused():
		b.WriteString(v.question.View())
	case v.waiting:
		b.WriteString(v.styles.Muted.Render("Thinking..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.answer != "":
		b.WriteString(v.styles.Subtitle.Render("Assistant"))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(v.answer))
	}
	return b.String()
}

func (v *View) field(label, value string) string {
	return v.styles.Muted.Render(fmt.Sprintf("  %-11s", label+":")) + v.styles.Normal.Render(value) + "\n"
}

func (v *View) renderRecords() string {
	records := v.group.Records
	visible := max(v.height-18, 3)
	end := min(v.scroll+visible, len(records))

	lines := make([]string, 0, end-v.scroll+1)
	for i := v.scroll; i < end; i++ {
		r := &records[i]
		label := r.URL
		if label == "" {
			label = r.Filename()
		}
		lines = append(lines, v.styles.Normal.Render(fmt.Sprintf("  %s  %s", r.ID, label)))
	}
	if len(records) > visible {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scroll+1, end, len(records))))
	}
	return strings.Join(lines, "\n") + "\n"
}

// preview returns the opening text of the group, bounded to a few lines.
func (v *View) preview() string {
	text := v.group.CombinedText
	if text == "" && len(v.group.Records) > 0 {
		text = v.group.Records[0].Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	width := max(v.width-4, 40)
	return list.Truncate(strings.Join(strings.Fields(text), " "), width*3)
}
