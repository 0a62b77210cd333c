package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

func newTestApp(t *testing.T, feed Notifications) (*App, *mockLibrary) {
	t.Helper()
	lib := newMockLibrary()
	app, err := NewApp(&Ports{Library: lib, Notifications: feed})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app, lib
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// isQuit reports whether cmd is tea.Quit.
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewApp_Success(t *testing.T) {
	app, _ := newTestApp(t, nil)

	assert.Equal(t, messages.ViewLibrary, app.CurrentView())
	assert.True(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingLibraryService)
	assert.Nil(t, app)
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app, err := NewApp(&Ports{Library: newMockLibrary()})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WithContext(t *testing.T) {
	app, _ := newTestApp(t, nil)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init_LoadsPageAndSubscribes(t *testing.T) {
	feed := newMockFeed(domain.Notification{Severity: domain.SeverityInfo, Message: "Welcome back"})
	app, _ := newTestApp(t, feed)

	cmd := app.Init()

	require.NotNil(t, cmd)
	assert.NotNil(t, app.notes)
	assert.Contains(t, app.View(), "Welcome back")
}

func TestApp_PageLoadedRendersGroups(t *testing.T) {
	app, lib := newTestApp(t, nil)

	page, err := lib.GetCurrentPage(context.Background())
	require.NoError(t, err)
	app.Update(messages.PageLoaded{Page: page})

	view := app.View()
	assert.Contains(t, view, "Note")
	assert.Contains(t, view, "online")
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Library: newMockLibrary()})
	require.NoError(t, err)

	_, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.width)
}

func TestApp_OpenGroupAndBack(t *testing.T) {
	app, lib := newTestApp(t, nil)
	app.Update(messages.PageLoaded{Page: lib.page})

	_, cmd := app.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewGroup, app.CurrentView())
	assert.Equal(t, status.ModeGroup, app.statusBar.Mode())
	assert.Contains(t, app.View(), "Records (1)")

	_, cmd = app.Update(keyMsg("esc"))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewLibrary, app.CurrentView())
}

func TestApp_DeleteFromGroupViewConfirmsInLibrary(t *testing.T) {
	app, lib := newTestApp(t, nil)
	app.Update(messages.PageLoaded{Page: lib.page})
	app.Update(messages.GroupSelected{Group: lib.page.Items[0]})

	_, cmd := app.Update(keyMsg("d"))
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewLibrary, app.CurrentView())
	assert.Equal(t, status.ModeConfirm, app.statusBar.Mode())

	// q answers the prompt rather than quitting.
	_, cmd = app.Update(keyMsg("q"))
	assert.False(t, isQuit(cmd))

	_, cmd = app.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, []string{"note"}, lib.deleted)
}

func TestApp_HelpView(t *testing.T) {
	app, _ := newTestApp(t, nil)

	app.Update(keyMsg("?"))
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Load more records")

	app.Update(keyMsg("esc"))
	assert.Equal(t, messages.ViewLibrary, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	feed := newMockFeed()
	app, _ := newTestApp(t, feed)
	app.Init()

	_, cmd := app.Update(keyMsg("q"))

	assert.True(t, isQuit(cmd))
	assert.True(t, feed.cancelled)
}

func TestApp_CtrlCQuitsFromGroupView(t *testing.T) {
	app, lib := newTestApp(t, nil)
	app.Update(messages.GroupSelected{Group: lib.page.Items[0]})

	_, cmd := app.Update(keyMsg("ctrl+c"))

	assert.True(t, isQuit(cmd))
}

func TestApp_QuitMessage(t *testing.T) {
	app, _ := newTestApp(t, nil)

	_, cmd := app.Update(messages.Quit{})

	assert.True(t, isQuit(cmd))
}

func TestApp_NotificationUpdatesStatus(t *testing.T) {
	feed := newMockFeed()
	app, lib := newTestApp(t, feed)
	app.Init()
	app.Update(messages.PageLoaded{Page: lib.page})

	n := domain.Notification{Severity: domain.SeveritySuccess, Message: "3 records added", At: time.Now()}
	feed.ch <- n
	msg := waitForNotification(app.notes)()
	require.Equal(t, messages.NotificationReceived{Notification: n}, msg)

	_, cmd := app.Update(msg)
	require.NotNil(t, cmd)

	assert.Contains(t, app.View(), "3 records added")
	assert.Empty(t, app.libraryView.Busy())
}

func newChangeApp(t *testing.T) (*App, *mockLibrary, *mockChanges) {
	t.Helper()
	lib := newMockLibrary()
	changes := newMockChanges()
	app, err := NewApp(&Ports{Library: lib, Changes: changes})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	app.Init()
	app.Update(messages.PageLoaded{Page: lib.page})
	require.Empty(t, app.libraryView.Busy())
	return app, lib, changes
}

func TestApp_LibraryChangeReloadsPage(t *testing.T) {
	app, lib, changes := newChangeApp(t)
	require.NotNil(t, app.changes)

	// A remote delete settled: the cache shrank to one group.
	change := domain.CacheChange{Groups: 1, CachedCount: 1, ServerTotal: 1}
	changes.ch <- change
	msg := waitForChange(app.changes)()
	require.Equal(t, messages.LibraryChanged{Change: change}, msg)

	before := lib.calls
	_, cmd := app.Update(msg)
	require.NotNil(t, cmd)

	assert.Equal(t, "Loading...", app.libraryView.Busy())
	assert.Equal(t, before, lib.calls, "reload runs as a command")
}

func TestApp_DirtyLibraryChangeWaitsForReload(t *testing.T) {
	app, _, _ := newChangeApp(t)

	app.Update(messages.LibraryChanged{Change: domain.CacheChange{Dirty: true}})

	assert.Empty(t, app.libraryView.Busy())
}

func TestApp_LibraryChangeInGroupViewDoesNotReload(t *testing.T) {
	app, lib, _ := newChangeApp(t)
	app.Update(messages.GroupSelected{Group: lib.page.Items[0]})

	app.Update(messages.LibraryChanged{Change: domain.CacheChange{Groups: 1}})

	assert.Empty(t, app.libraryView.Busy())
}

func TestApp_LibraryChangeWhileConfirmingDoesNotReload(t *testing.T) {
	app, lib, _ := newChangeApp(t)
	app.Update(messages.DeleteRequested{Group: lib.page.Items[0]})

	app.Update(messages.LibraryChanged{Change: domain.CacheChange{Groups: 1}})

	assert.Empty(t, app.libraryView.Busy())
	assert.NotNil(t, app.libraryView.Confirming())
}

func TestApp_CloseDropsChangeSubscription(t *testing.T) {
	app, _, changes := newChangeApp(t)

	app.Close()

	assert.True(t, changes.cancelled)
	assert.Nil(t, waitForChange(app.changes)())
}

func TestWaitForNotification_ClosedFeed(t *testing.T) {
	ch := make(chan domain.Notification)
	close(ch)

	assert.Nil(t, waitForNotification(ch)())
}

func TestApp_DegradedConnectionShown(t *testing.T) {
	app, lib := newTestApp(t, nil)
	lib.conn = domain.ConnectionState{Connected: true, ConsecutiveFailures: 2}

	app.Update(messages.PageLoaded{Err: domain.ErrBackendUnavailable})

	view := app.View()
	assert.Contains(t, view, "degraded (2)")
	assert.Contains(t, view, "backend unavailable")
}
