// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// GroupList displays one page of groups in a navigable list.
type GroupList struct {
	groups   []domain.Group
	offset   int
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewGroupList creates a new group list component.
func NewGroupList(s *styles.Styles) *GroupList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &GroupList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation messages.
func (l *GroupList) Update(msg tea.Msg) (*GroupList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *GroupList) View() string {
	if len(l.groups) == 0 {
		return l.styles.Muted.Render("No content found.")
	}

	// Each group takes two lines.
	visible := l.height / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.groups))

	lines := make([]string, 0, (end-start)*2)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderGroup(i, &l.groups[i])...)
	}
	return strings.Join(lines, "\n")
}

func (l *GroupList) renderGroup(index int, g *domain.Group) []string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	maxTitle := l.width - 16
	if maxTitle < 10 {
		maxTitle = 10
	}
	title := Truncate(Title(g), maxTitle)

	label := fmt.Sprintf("%s%3d. %-*s", indicator, l.offset+index+1, maxTitle, title)
	var first string
	if index == l.selected {
		first = l.styles.Selected.Render(label)
	} else {
		first = l.styles.Normal.Render(label)
	}
	first += " " + l.styles.Badge(g.ContentType())

	detail := Describe(g)
	if !g.LatestAdded.IsZero() {
		detail += "  " + g.LatestAdded.Format("2006-01-02 15:04")
	}
	if g.Collection != "" {
		detail += "  #" + g.Collection
	}
	return []string{first, l.styles.Muted.Render("       " + detail)}
}

// SetGroups replaces the page contents. offset is the absolute index of the
// first group, so numbering continues across pages. The selection is kept
// where possible so a reload after a delete stays near the removed row.
func (l *GroupList) SetGroups(groups []domain.Group, offset int) {
	l.groups = groups
	l.offset = offset
	if l.selected >= len(groups) {
		l.selected = max(len(groups)-1, 0)
	}
}

// Groups returns the groups shown.
func (l *GroupList) Groups() []domain.Group {
	return l.groups
}

// Selected returns the index of the selected group.
func (l *GroupList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *GroupList) SetSelected(index int) {
	if index >= 0 && index < len(l.groups) {
		l.selected = index
	}
}

// SelectedGroup returns the currently selected group, or nil if none.
func (l *GroupList) SelectedGroup() *domain.Group {
	if l.selected < 0 || l.selected >= len(l.groups) {
		return nil
	}
	return &l.groups[l.selected]
}

// MoveUp moves selection up.
func (l *GroupList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *GroupList) MoveDown() {
	if l.selected < len(l.groups)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *GroupList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// IsEmpty returns whether the list is empty.
func (l *GroupList) IsEmpty() bool {
	return len(l.groups) == 0
}

// Title returns a displayable title for a group.
func Title(g *domain.Group) string {
	if g.Title != "" {
		return g.Title
	}
	if len(g.Records) > 0 && g.Records[0].ID != "" {
		return g.Records[0].ID
	}
	return "(untitled)"
}

// Describe summarises a group's shape.
func Describe(g *domain.Group) string {
	switch g.Kind {
	case domain.GroupChunks:
		if g.IsComplete() {
			return fmt.Sprintf("%d chunks", g.Count())
		}
		return fmt.Sprintf("%d of %d chunks", g.Count(), g.TotalChunks)
	case domain.GroupImageStack:
		return fmt.Sprintf("%d pages", g.Count())
	default:
		return g.ContentType().String()
	}
}

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
