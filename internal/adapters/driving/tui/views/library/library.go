// Package library provides the paged group list view for the TUI.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
)

var (
	dateCycle = []domain.DateFilter{
		domain.DateFilterAll, domain.DateFilterToday, domain.DateFilterWeek, domain.DateFilterMonth,
	}
	typeCycle = []domain.ContentType{"", domain.ContentTypeDocument, domain.ContentTypeImage}
)

// View is the paged group list.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	library driving.LibraryService
	ctx     context.Context

	list       *list.GroupList
	page       *domain.Page
	filter     domain.Filter
	busy       string
	confirming *domain.Group
	err        error
	notice     string
	width      int
	height     int
}

// NewView creates a new library view.
func NewView(s *styles.Styles, library driving.LibraryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{
		styles:  s,
		keymap:  keymap.DefaultKeyMap(),
		library: library,
		ctx:     context.Background(),
		list:    list.NewGroupList(s),
		filter:  domain.DefaultFilter(),
	}
	if library != nil {
		v.filter = library.Filter()
	}
	return v
}

// SetContext sets the context passed to library calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the current page.
func (v *View) Init() tea.Cmd {
	return v.Reload()
}

// Reload re-materialises the current page without changing position.
func (v *View) Reload() tea.Cmd {
	return v.fetch("Loading...", func(ctx context.Context) (*domain.Page, error) {
		return v.library.GetCurrentPage(ctx)
	})
}

// fetch runs a page-returning library call as a command.
func (v *View) fetch(busy string, call func(ctx context.Context) (*domain.Page, error)) tea.Cmd {
	if v.library == nil {
		return func() tea.Msg {
			return messages.PageLoaded{Err: errors.New("library service not available")}
		}
	}
	v.busy = busy
	ctx := v.ctx
	return func() tea.Msg {
		page, err := call(ctx)
		return messages.PageLoaded{Page: page, Err: err}
	}
}

// Update handles messages for the library view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirming != nil {
			return v.handleConfirmKey(msg)
		}
		return v.handleKey(msg)

	case messages.PageLoaded:
		v.busy = ""
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.setPage(msg.Page)
		return v, nil

	case messages.FilterChanged:
		v.filter = msg.Filter
		return v, nil

	case messages.GroupDeleted:
		v.busy = ""
		v.confirming = nil
		if msg.Err != nil {
			v.err = fmt.Errorf("deleted %d of %d records: %w", msg.Outcome.Deleted, msg.Outcome.Total(), msg.Err)
		} else {
			v.err = nil
			v.notice = fmt.Sprintf("Deleted %d records.", msg.Outcome.Deleted)
		}
		return v, v.Reload()

	case messages.ErrorOccurred:
		v.busy = ""
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) setPage(p *domain.Page) {
	if p == nil {
		return
	}
	v.page = p
	v.list.SetGroups(p.Items, (p.Page-1)*p.PageSize)
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	if v.library == nil {
		return v, nil
	}
	if v.busy != "" && !keymap.Matches(k, v.keymap.Up) && !keymap.Matches(k, v.keymap.Down) {
		return v, nil
	}
	v.notice = ""

	switch {
	case keymap.Matches(k, v.keymap.Up), keymap.Matches(k, v.keymap.Down):
		v.list, _ = v.list.Update(msg)
	case keymap.Matches(k, v.keymap.Open):
		if g := v.list.SelectedGroup(); g != nil {
			group := *g
			return v, func() tea.Msg { return messages.GroupSelected{Group: group} }
		}
	case keymap.Matches(k, v.keymap.NextPage):
		if v.canAdvance() {
			return v, v.goTo(v.page.Page + 1)
		}
	case keymap.Matches(k, v.keymap.PrevPage):
		if v.page != nil && v.page.Page > 1 {
			return v, v.goTo(v.page.Page - 1)
		}
	case keymap.Matches(k, v.keymap.LoadMore):
		if v.page == nil || v.page.HasMore {
			return v, v.fetch("Loading more...", v.library.LoadMore)
		}
		v.notice = "All records are loaded."
	case keymap.Matches(k, v.keymap.Refresh):
		return v, v.fetch("Refreshing...", v.library.Refresh)
	case keymap.Matches(k, v.keymap.Delete):
		if g := v.list.SelectedGroup(); g != nil {
			v.Confirm(*g)
		}
	case keymap.Matches(k, v.keymap.DateFilter):
		next := v.filter
		next.Date = cycle(dateCycle, v.filter.Date)
		return v, v.applyFilter(next)
	case keymap.Matches(k, v.keymap.TypeFilter):
		next := v.filter
		next.ContentType = cycle(typeCycle, v.filter.ContentType)
		return v, v.applyFilter(next)
	}
	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Confirm):
		group := *v.confirming
		v.busy = "Deleting..."
		ctx := v.ctx
		return v, func() tea.Msg {
			outcome, err := v.library.RequestDelete(ctx, group)
			return messages.GroupDeleted{Key: group.Key, Outcome: outcome, Err: err}
		}
	case keymap.Matches(k, v.keymap.Cancel):
		v.confirming = nil
	}
	return v, nil
}

// Confirm asks for confirmation before deleting g.
func (v *View) Confirm(g domain.Group) {
	v.confirming = &g
}

// Confirming returns the group awaiting delete confirmation, or nil.
func (v *View) Confirming() *domain.Group {
	return v.confirming
}

func (v *View) canAdvance() bool {
	if v.page == nil {
		return false
	}
	return v.page.Page < v.page.TotalPages || v.page.HasMore
}

func (v *View) goTo(n int) tea.Cmd {
	return v.fetch(fmt.Sprintf("Loading page %d...", n), func(ctx context.Context) (*domain.Page, error) {
		return v.library.GoToPage(ctx, n)
	})
}

func (v *View) applyFilter(f domain.Filter) tea.Cmd {
	v.filter = f
	return v.fetch("Filtering...", func(ctx context.Context) (*domain.Page, error) {
		return v.library.SetFilter(ctx, f)
	})
}

func cycle[T comparable](values []T, current T) T {
	for i, val := range values {
		if val == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// Busy returns the in-flight operation description, or "".
func (v *View) Busy() string {
	return v.busy
}

// Page returns the last loaded page.
func (v *View) Page() *domain.Page {
	return v.page
}

// Filter returns the active filter.
func (v *View) Filter() domain.Filter {
	return v.filter
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// List returns the group list component.
func (v *View) List() *list.GroupList {
	return v.list
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	// Title, filter line, footer and status bar.
	v.list.SetDimensions(width, max(height-7, 2))
}

// View renders the library view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Library"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render(v.describeFilter()))
	b.WriteString("\n\n")

	if v.page == nil && v.err == nil {
		b.WriteString(v.styles.Muted.Render("Loading..."))
		return b.String()
	}

	b.WriteString(v.list.View())
	b.WriteString("\n\n")

	if v.page != nil {
		footer := fmt.Sprintf("Page %d of %d  (%d of %d records loaded)",
			v.page.Page, max(v.page.TotalPages, 1), v.page.CachedCount, v.page.ServerTotal)
		if v.page.HasMore {
			footer += "  more available"
		}
		b.WriteString(v.styles.Muted.Render(footer))
		b.WriteString("\n")
	}

	switch {
	case v.confirming != nil:
		g := v.confirming
		prompt := fmt.Sprintf("Delete %q? [y/N]", list.Title(g))
		if g.IsComposite() {
			prompt = fmt.Sprintf("Delete %q and all %d of its records? [y/N]", list.Title(g), g.LeafCount())
		}
		b.WriteString(v.styles.Confirm.Render(prompt))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
	}
	return b.String()
}

func (v *View) describeFilter() string {
	date := v.filter.Date
	if date == "" {
		date = domain.DateFilterAll
	}
	ct := "all types"
	if v.filter.ContentType != "" {
		ct = v.filter.ContentType.String()
	}
	return fmt.Sprintf("[%s | %s]", date, ct)
}
