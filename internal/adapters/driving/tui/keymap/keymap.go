// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding
	Up   key.Binding
	Down key.Binding

	// Open shows the selected group.
	Open key.Binding

	NextPage key.Binding
	PrevPage key.Binding

	// LoadMore appends the next batch without changing page.
	LoadMore key.Binding

	// Refresh replaces the cache with a fresh initial fetch.
	Refresh key.Binding

	Delete key.Binding

	// DateFilter and TypeFilter cycle through the filter values.
	DateFilter key.Binding
	TypeFilter key.Binding

	// Ask and Summarise use the assistant on the open group.
	Ask       key.Binding
	Summarise key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	bind := func(help, desc string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
	}
	return &KeyMap{
		Quit:       bind("q", "quit", "q", "ctrl+c"),
		Help:       bind("?", "help", "?"),
		Back:       bind("esc", "back", "esc"),
		Up:         bind("↑/k", "up", "up", "k"),
		Down:       bind("↓/j", "down", "down", "j"),
		Open:       bind("enter", "open", "enter"),
		NextPage:   bind("→/l", "next page", "right", "l", "pgdown"),
		PrevPage:   bind("←/h", "prev page", "left", "h", "pgup"),
		LoadMore:   bind("m", "load more", "m"),
		Refresh:    bind("r", "refresh", "r"),
		Delete:     bind("d", "delete", "d", "delete"),
		DateFilter: bind("f", "date filter", "f"),
		TypeFilter: bind("t", "type filter", "t"),
		Ask:        bind("a", "ask", "a"),
		Summarise:  bind("s", "summarise", "s"),
		Confirm:    bind("y", "confirm", "y", "Y"),
		Cancel:     bind("n", "cancel", "n", "N", "esc"),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// LibraryHelp returns keybindings for the page list.
func (k *KeyMap) LibraryHelp() []key.Binding {
	return []key.Binding{k.Open, k.NextPage, k.PrevPage, k.LoadMore, k.Delete, k.DateFilter}
}

// GroupHelp returns keybindings for the group view.
func (k *KeyMap) GroupHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Summarise, k.Delete, k.Back}
}

// ConfirmHelp returns keybindings shown while a delete awaits confirmation.
func (k *KeyMap) ConfirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.NextPage, k.PrevPage, k.LoadMore, k.Refresh},
		{k.Delete, k.DateFilter, k.TypeFilter},
		{k.Ask, k.Summarise},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
