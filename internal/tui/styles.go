package tui

import (
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-pikeru/internal/tui/theme"
)

// Styles holds the computed lipgloss styles for the picker.
type Styles struct {
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style

	Title lipgloss.Style
	Info  lipgloss.Style
	Muted lipgloss.Style
	Error lipgloss.Style

	Tile         lipgloss.Style
	TileSelected lipgloss.Style
	TileCursor   lipgloss.Style
	DirIcon      lipgloss.Style
	FileIcon     lipgloss.Style

	Bookmark       lipgloss.Style
	BookmarkTarget lipgloss.Style
	Button         lipgloss.Style
	ButtonActive   lipgloss.Style

	ConfirmPrompt     lipgloss.Style
	ConfirmSelected   lipgloss.Style
	ConfirmUnselected lipgloss.Style
}

var (
	stylesMu sync.Mutex
	styles   *Styles
)

// GetStyles returns the current styles, building them from the theme on
// first use.
func GetStyles() *Styles {
	stylesMu.Lock()
	defer stylesMu.Unlock()
	if styles == nil {
		s := buildStyles(theme.Current())
		styles = &s
	}
	return styles
}

// ReloadStyles rebuilds styles from the configured theme.
func ReloadStyles() *Styles {
	t, _ := theme.Reload()
	s := buildStyles(t)
	stylesMu.Lock()
	styles = &s
	stylesMu.Unlock()
	return &s
}

// applyStyle applies a theme.Style to a lipgloss.Style builder.
func applyStyle(s lipgloss.Style, ts theme.Style) lipgloss.Style {
	if ts.Fg != "" {
		s = s.Foreground(lipgloss.Color(ts.Fg))
	}
	if ts.Bg != "" {
		s = s.Background(lipgloss.Color(ts.Bg))
	}
	if ts.Bold {
		s = s.Bold(true)
	}
	if ts.Italic {
		s = s.Italic(true)
	}
	if ts.Underline {
		s = s.Underline(true)
	}
	return s
}

func buildStyles(t theme.Theme) Styles {
	return Styles{
		ActiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderActive())),
		InactiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderInactive())),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.GetAccent())),
		Info:  applyStyle(lipgloss.NewStyle(), t.TextSecondary),
		Muted: applyStyle(lipgloss.NewStyle(), t.TextMuted),
		Error: applyStyle(lipgloss.NewStyle(), t.Error),

		Tile:         applyStyle(lipgloss.NewStyle(), t.Tile),
		TileSelected: applyStyle(lipgloss.NewStyle(), t.TileSelected),
		TileCursor:   applyStyle(lipgloss.NewStyle(), t.TileCursor),
		DirIcon:      applyStyle(lipgloss.NewStyle(), t.DirIcon),
		FileIcon:     applyStyle(lipgloss.NewStyle(), t.FileIcon),

		Bookmark:       applyStyle(lipgloss.NewStyle(), t.Bookmark),
		BookmarkTarget: applyStyle(lipgloss.NewStyle(), t.BookmarkTarget),
		Button:         applyStyle(lipgloss.NewStyle(), t.Button).Padding(0, 1),
		ButtonActive:   applyStyle(lipgloss.NewStyle(), t.ButtonActive).Padding(0, 1),

		ConfirmPrompt: applyStyle(lipgloss.NewStyle(), t.ConfirmPrompt).
			Bold(true),
		ConfirmSelected: applyStyle(lipgloss.NewStyle(), t.ConfirmSelected).
			Bold(true).
			Padding(0, 2),
		ConfirmUnselected: applyStyle(lipgloss.NewStyle(), t.ConfirmUnselected).
			Padding(0, 2),
	}
}
