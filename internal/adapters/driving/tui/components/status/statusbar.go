// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// Mode selects which keybinding hints the bar shows.
type Mode string

const (
	ModeLibrary Mode = "library"
	ModeGroup   Mode = "group"
	ModeConfirm Mode = "confirm"
	ModeBusy    Mode = "busy"
	ModeHelp    Mode = "help"
)

// Bar displays connection health, the latest notification and key hints.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	mode         Mode
	busy         string
	conn         domain.ConnectionState
	notification *domain.Notification
	width        int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		mode:   ModeLibrary,
		conn:   domain.ConnectionState{Connected: true},
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	parts := []string{s.renderConnection()}
	switch {
	case s.mode == ModeBusy && s.busy != "":
		parts = append(parts, s.styles.Muted.Render(s.busy))
	case s.notification != nil:
		n := s.notification
		parts = append(parts, s.styles.Severity(n.Severity).Render(n.Message))
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderConnection() string {
	if !s.conn.Degraded() {
		return s.styles.Success.Render("● online")
	}
	if s.conn.ConsecutiveFailures > 0 {
		return s.styles.Warning.Render(fmt.Sprintf("● degraded (%d)", s.conn.ConsecutiveFailures))
	}
	return s.styles.Warning.Render("● offline")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.mode {
	case ModeLibrary:
		bindings = s.keymap.LibraryHelp()
	case ModeGroup:
		bindings = s.keymap.GroupHelp()
	case ModeConfirm:
		bindings = s.keymap.ConfirmHelp()
	case ModeBusy, ModeHelp:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetMode sets which hints are shown.
func (s *Bar) SetMode(mode Mode) {
	s.mode = mode
}

// Mode returns the current mode.
func (s *Bar) Mode() Mode {
	return s.mode
}

// SetBusy shows a progress message and switches to ModeBusy.
func (s *Bar) SetBusy(message string) {
	s.busy = message
	s.mode = ModeBusy
}

// SetConnection updates the reachability indicator.
func (s *Bar) SetConnection(state domain.ConnectionState) {
	s.conn = state
}

// SetNotification replaces the shown notification.
func (s *Bar) SetNotification(n domain.Notification) {
	s.notification = &n
}

// Notification returns the shown notification, or nil.
func (s *Bar) Notification() *domain.Notification {
	return s.notification
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Clear drops the notification and the busy message.
func (s *Bar) Clear() {
	s.notification = nil
	s.busy = ""
}
