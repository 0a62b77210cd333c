// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	// Document and Image tint the content-type badges in the group list.
	Document lipgloss.Color
	Image    lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Secondary:  lipgloss.Color("#06B6D4"),
		Background: lipgloss.Color("#1E1E2E"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
		Document:   lipgloss.Color("#89B4FA"),
		Image:      lipgloss.Color("#FAB387"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField frames the question prompt in the group view.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Confirm highlights the delete confirmation line.
	Confirm lipgloss.Style

	documentBadge lipgloss.Style
	imageBadge    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	base := lipgloss.NewStyle()
	return &Styles{
		theme:    theme,
		Title:    base.Bold(true).Foreground(theme.Primary),
		Subtitle: base.Bold(true).Foreground(theme.Secondary),
		Normal:   base.Foreground(theme.Foreground),
		Muted:    base.Foreground(theme.Muted),
		Selected: base.Bold(true).Foreground(theme.Foreground).Background(theme.Primary),
		Error:    base.Foreground(theme.Error),
		Success:  base.Foreground(theme.Success),
		Warning:  base.Foreground(theme.Warning),
		InputField: base.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: base.
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),
		Help: base.Foreground(theme.Muted),
		Border: base.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
		Confirm:       base.Bold(true).Foreground(theme.Warning),
		documentBadge: base.Foreground(theme.Document),
		imageBadge:    base.Foreground(theme.Image),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Badge renders a short content-type marker for a group.
func (s *Styles) Badge(ct domain.ContentType) string {
	switch ct {
	case domain.ContentTypeImage:
		return s.imageBadge.Render("img")
	case domain.ContentTypeDocument:
		return s.documentBadge.Render("doc")
	default:
		return s.Muted.Render("---")
	}
}

// Severity returns the style matching a notification severity.
func (s *Styles) Severity(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityError:
		return s.Error
	case domain.SeverityWarning:
		return s.Warning
	case domain.SeveritySuccess:
		return s.Success
	default:
		return s.Normal
	}
}
