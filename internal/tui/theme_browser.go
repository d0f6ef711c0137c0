package tui

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-pikeru/internal/tui/theme"
)

type themeBrowserItem struct {
	meta   theme.ThemeMeta
	theme  theme.Theme
	active bool
}

// ThemeBrowserModel lists the available themes next to a sample picker
// drawn in the highlighted one.
type ThemeBrowserModel struct {
	items    []themeBrowserItem
	cursor   int
	preview  viewport.Model
	width    int
	height   int
	ready    bool
	selected string // "" when cancelled
}

// NewThemeBrowserModel loads every available theme, cursor on the active one.
func NewThemeBrowserModel() ThemeBrowserModel {
	metas, _ := theme.ListAvailable()
	activeName := theme.ActiveName()

	var m ThemeBrowserModel
	for i, meta := range metas {
		t, err := theme.LoadByName(meta.Name)
		if err != nil {
			t = theme.DefaultTheme()
		}
		active := meta.Name == activeName
		if active {
			m.cursor = i
		}
		m.items = append(m.items, themeBrowserItem{meta: meta, theme: t, active: active})
	}
	return m
}

func (m ThemeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m ThemeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.preview = viewport.New()
			m.ready = true
		}
		m.preview.SetWidth(max(1, m.width*55/100-4))
		m.preview.SetHeight(max(1, m.height-6))
		m.updatePreview()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.updatePreview()
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.updatePreview()
			}
		case "enter":
			if len(m.items) > 0 {
				m.selected = m.items[m.cursor].meta.Name
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// Selected is the chosen theme name, or "" when cancelled.
func (m ThemeBrowserModel) Selected() string { return m.selected }

func (m *ThemeBrowserModel) updatePreview() {
	if !m.ready || len(m.items) == 0 {
		return
	}
	t := m.items[m.cursor].theme
	m.preview.SetContent(renderSwatches(t) + "\n\n" + renderSamplePicker(buildStyles(t)))
}

func renderSwatches(t theme.Theme) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextMuted.Fg))
	var parts []string
	for _, c := range []struct{ label, color string }{
		{"accent", t.GetAccent()},
		{"border", t.GetBorderActive()},
		{"text", t.TextPrimary.Fg},
		{"muted", t.TextMuted.Fg},
	} {
		if c.color == "" {
			continue
		}
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(c.color)).Render("  ")
		parts = append(parts, muted.Render(c.label+" ")+swatch)
	}
	return strings.Join(parts, "  ")
}

// renderSamplePicker draws a few tiles, a bookmark column and the buttons
// with st, the way the picker would.
func renderSamplePicker(st Styles) string {
	tile := func(s lipgloss.Style, icon lipgloss.Style, glyph, name string) string {
		return s.Width(12).Render(icon.Render(glyph) + " " + name)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		tile(st.Tile, st.DirIcon, "▸", "photos"),
		" ",
		tile(st.TileCursor, st.FileIcon, "▪", "cat.png"),
		" ",
		tile(st.TileSelected, st.FileIcon, "▪", "dog.png"),
	)
	marks := strings.Join([]string{
		st.Title.Render("Bookmarks"),
		st.Bookmark.Render("Home"),
		st.BookmarkTarget.Render("Pictures"),
	}, "\n")
	buttons := st.ButtonActive.Render("Open") + " " + st.Button.Render("Cancel")
	body := lipgloss.JoinHorizontal(lipgloss.Top, marks, "   ", row)
	return strings.Join([]string{
		body,
		"",
		st.Info.Render("cat.png  1.2 MB  2 hours ago"),
		st.Error.Render("permission denied"),
		"",
		buttons,
	}, "\n")
}

func (m ThemeBrowserModel) View() tea.View {
	if !m.ready {
		v := tea.NewView("Loading...")
		v.AltScreen = true
		return v
	}

	listWidth := m.width * 35 / 100
	previewWidth := m.width - listWidth - 3

	accent, active, inactive := "#7D56F4", "#7D56F4", "#444444"
	if len(m.items) > 0 {
		t := m.items[m.cursor].theme
		accent, active, inactive = t.GetAccent(), t.GetBorderActive(), t.GetBorderInactive()
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent))
	listTitle := title.Render("Themes")
	header := listTitle + strings.Repeat(" ", max(0, listWidth-lipgloss.Width(listTitle)+3)) + title.Render("Preview")

	listPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(active)).
		Width(listWidth).
		Height(max(1, m.height-6)).
		Render(m.renderThemeList(accent, inactive))
	previewPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(inactive)).
		Width(previewWidth).
		Height(max(1, m.height-6)).
		Render(m.preview.View())

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color(inactive)).
		Render("↑/↓: navigate • enter: activate • q/esc: cancel")

	v := tea.NewView(header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, listPane, " ", previewPane) + "\n" + footer)
	v.AltScreen = true
	return v
}

func (m ThemeBrowserModel) renderThemeList(accent, muted string) string {
	var b strings.Builder
	for i, item := range m.items {
		prefix := "  "
		name := lipgloss.NewStyle()
		if i == m.cursor {
			prefix = "▸ "
			name = name.Bold(true).Foreground(lipgloss.Color(accent))
		}
		label := item.meta.Name
		if item.active {
			label += " *"
		}
		b.WriteString(prefix + name.Render(label) + "\n")
		if i == m.cursor && item.meta.Description != "" {
			b.WriteString("    " + lipgloss.NewStyle().Foreground(lipgloss.Color(muted)).Render(item.meta.Description) + "\n")
		}
	}
	return b.String()
}

// RunThemeBrowser shows the browser and returns the chosen theme name, or
// "" if the user cancelled.
func RunThemeBrowser() (string, error) {
	ioOpts, closeTTY := ttyOpts()
	defer closeTTY()
	final, err := tea.NewProgram(NewThemeBrowserModel(), ioOpts...).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(ThemeBrowserModel)
	if !ok {
		return "", nil
	}
	return m.selected, nil
}
