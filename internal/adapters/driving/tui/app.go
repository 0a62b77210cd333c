package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/views/group"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/views/library"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// notificationBuffer is how many notifications may queue between renders.
const notificationBuffer = 16

// changeBuffer is one: a queued change already triggers a reload of the
// latest page.
const changeBuffer = 1

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	libraryView *library.View
	groupView   *group.View
	statusBar   *status.Bar

	currentView messages.ViewType

	// notes is the notification subscription, nil without a feed.
	notes       <-chan domain.Notification
	unsubscribe func()

	// changes is the cache change subscription, nil without a feed.
	changes <-chan domain.CacheChange
	unwatch func()

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		libraryView: library.NewView(s, ports.Library),
		groupView:   group.NewView(s, ports.Assistant),
		statusBar:   status.NewBar(s, km),
		currentView: messages.ViewLibrary,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.libraryView.SetContext(ctx)
	a.groupView.SetContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("sercha-library"),
		a.libraryView.Init(),
	}
	if a.ports.Notifications != nil && a.notes == nil {
		a.notes, a.unsubscribe = a.ports.Notifications.Subscribe(notificationBuffer)
		if recent := a.ports.Notifications.Recent(); len(recent) > 0 {
			a.statusBar.SetNotification(recent[len(recent)-1])
		}
		cmds = append(cmds, waitForNotification(a.notes))
	}
	if a.ports.Changes != nil && a.changes == nil {
		a.changes, a.unwatch = a.ports.Changes.Subscribe(changeBuffer)
		cmds = append(cmds, waitForChange(a.changes))
	}
	return tea.Batch(cmds...)
}

// waitForNotification blocks on the feed and returns the next notification.
// A closed feed ends the loop.
func waitForNotification(ch <-chan domain.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return messages.NotificationReceived{Notification: n}
	}
}

// waitForChange blocks on the change feed and returns the next change.
func waitForChange(ch <-chan domain.CacheChange) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return messages.LibraryChanged{Change: c}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.PageLoaded:
		a.libraryView, cmd = a.libraryView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.GroupDeleted:
		a.libraryView, cmd = a.libraryView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.GroupSelected:
		a.groupView.SetGroup(msg.Group)
		a.currentView = messages.ViewGroup
		a.syncStatus()
		return a, nil

	case messages.DeleteRequested:
		a.currentView = messages.ViewLibrary
		a.libraryView.Confirm(msg.Group)
		a.syncStatus()
		return a, nil

	case messages.AnswerReady:
		a.groupView, cmd = a.groupView.Update(msg)
		return a, cmd

	case messages.NotificationReceived:
		a.statusBar.SetNotification(msg.Notification)
		return a, waitForNotification(a.notes)

	case messages.LibraryChanged:
		next := waitForChange(a.changes)
		// A dirty cache is about to be reloaded, and that reload settles
		// with a change of its own.
		if msg.Change.Dirty || !a.canReload() {
			return a, next
		}
		return a, tea.Batch(next, a.libraryView.Reload())

	case messages.ViewChanged:
		a.currentView = msg.View
		a.syncStatus()
		return a, nil

	case messages.ErrorOccurred:
		a.libraryView, cmd = a.libraryView.Update(msg)
		return a, cmd

	case messages.Quit:
		a.Close()
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		a.Close()
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewLibrary:
		if a.libraryView.Confirming() == nil {
			if keymap.Matches(k, a.keymap.Quit) {
				a.Close()
				return a, tea.Quit
			}
			if keymap.Matches(k, a.keymap.Help) {
				a.currentView = messages.ViewHelp
				a.syncStatus()
				return a, nil
			}
		}
		a.libraryView, cmd = a.libraryView.Update(msg)

	case messages.ViewGroup:
		a.groupView, cmd = a.groupView.Update(msg)

	case messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
			a.currentView = messages.ViewLibrary
		}
		if keymap.Matches(k, a.keymap.Quit) {
			a.Close()
			return a, tea.Quit
		}
	}
	a.syncStatus()
	return a, cmd
}

// canReload reports whether the library page can be re-rendered without
// interrupting the user.
func (a *App) canReload() bool {
	return a.currentView == messages.ViewLibrary &&
		a.libraryView.Busy() == "" &&
		a.libraryView.Confirming() == nil
}

// syncStatus points the status bar at the active view's state.
func (a *App) syncStatus() {
	a.statusBar.SetConnection(a.ports.Library.ConnectionState())
	switch {
	case a.currentView == messages.ViewHelp:
		a.statusBar.SetMode(status.ModeHelp)
	case a.currentView == messages.ViewGroup:
		a.statusBar.SetMode(status.ModeGroup)
	case a.libraryView.Busy() != "":
		a.statusBar.SetBusy(a.libraryView.Busy())
	case a.libraryView.Confirming() != nil:
		a.statusBar.SetMode(status.ModeConfirm)
	default:
		a.statusBar.SetMode(status.ModeLibrary)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewGroup:
		body = a.groupView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.libraryView.View()
	}
	return body + "\n\n" + a.statusBar.View()
}

func (a *App) viewHelp() string {
	return `Help

Library:
  j/k, ↑/↓    Move selection
  enter       Open item
  h/l, ←/→    Previous / next page
  m           Load more records
  r           Refresh from the backend
  d           Delete item (asks first)
  f           Cycle date filter
  t           Cycle content type filter

Item:
  a           Ask the assistant
  s           Summarise
  d           Delete item
  esc         Back to library

  q, ctrl+c   Quit

[esc] back to library`
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Close drops the feed subscriptions.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.unwatch != nil {
		a.unwatch()
		a.unwatch = nil
	}
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// One line for the status bar plus a blank separator.
	a.libraryView.SetDimensions(width, height-2)
	a.groupView.SetDimensions(width, height-2)
	a.statusBar.SetWidth(width)
}
