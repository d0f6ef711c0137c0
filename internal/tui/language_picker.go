package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/tui/theme"
)

const langListWidthPercent = 30

// previewStrings are the picker strings shown for the language under the
// cursor, grouped by the row they appear on.
var previewStrings = []struct {
	label string
	msgs  [][2]string
}{
	{"Mode", [][2]string{
		{"tui.mode.file", "Open file"},
		{"tui.mode.files", "Open files"},
		{"tui.mode.dir", "Select directory"},
		{"tui.mode.save", "Save"},
	}},
	{"Buttons", [][2]string{
		{"tui.button.open", "Open"},
		{"tui.button.save", "Save"},
		{"tui.button.cancel", "Cancel"},
	}},
	{"Sort", [][2]string{
		{"tui.sort.nameAsc", "Name, A to Z"},
		{"tui.sort.timeDesc", "Newest first"},
	}},
	{"Search", [][2]string{
		{"tui.search.placeholder", "press / to search names and captions"},
	}},
	{"Status", [][2]string{
		{"common.time.justNow", "just now"},
		{"tui.grid.nomatch", "No matches"},
	}},
}

// LanguagePickerModel lists the embedded locales with a preview of the
// picker's strings in each.
type LanguagePickerModel struct {
	langs    []i18n.LangInfo
	cursor   int
	preview  viewport.Model
	width    int
	height   int
	ready    bool
	selected string // "" when cancelled

	accent         string
	borderActive   string
	borderInactive string
	textPrimary    string
	textMuted      string
}

// NewLanguagePickerModel starts with the cursor on activeTag.
func NewLanguagePickerModel(activeTag string) LanguagePickerModel {
	t := theme.Current()
	m := LanguagePickerModel{
		langs:          i18n.Languages(activeTag),
		accent:         t.GetAccent(),
		borderActive:   t.GetBorderActive(),
		borderInactive: t.GetBorderInactive(),
		textPrimary:    t.TextPrimary.Fg,
		textMuted:      t.TextMuted.Fg,
	}
	for i, l := range m.langs {
		if l.Active {
			m.cursor = i
		}
	}
	return m
}

func (m LanguagePickerModel) Init() tea.Cmd {
	return nil
}

func (m LanguagePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.preview = viewport.New()
			m.ready = true
		}
		m.preview.SetWidth(m.previewWidth())
		m.preview.SetHeight(max(1, m.height-4))
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
			if m.cursor < len(m.langs)-1 {
				m.cursor++
				m.updatePreview()
			}
		case "enter":
			if len(m.langs) > 0 {
				m.selected = m.langs[m.cursor].Tag
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// Selected is the chosen tag, or "" when the picker was cancelled.
func (m LanguagePickerModel) Selected() string { return m.selected }

func (m LanguagePickerModel) listWidth() int {
	return m.width * langListWidthPercent / 100
}

func (m LanguagePickerModel) previewWidth() int {
	return max(1, m.width-m.listWidth()-2)
}

func (m *LanguagePickerModel) updatePreview() {
	if !m.ready || len(m.langs) == 0 {
		return
	}
	tag := m.langs[m.cursor].Tag
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.textMuted))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color(m.textPrimary)).Bold(true)

	var b strings.Builder
	b.WriteString("\n")
	for _, row := range previewStrings {
		b.WriteString(label.Render(fmt.Sprintf("  %-10s", row.label)))
		b.WriteString(value.Render(strings.Join(i18n.Preview(tag, row.msgs), " · ")))
		b.WriteString("\n\n")
	}
	m.preview.SetContent(b.String())
}

func (m LanguagePickerModel) View() tea.View {
	if !m.ready {
		v := tea.NewView(i18n.T("tui.loading", "Loading..."))
		v.AltScreen = true
		return v
	}

	listW := m.listWidth()
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.accent))
	listTitle := title.Render(i18n.T("tui.language.title", "Languages"))
	previewTitle := title.Render(i18n.T("tui.language.preview", "Preview"))
	gap := strings.Repeat(" ", max(0, listW-lipgloss.Width(listTitle)+3))
	header := listTitle + gap + previewTitle

	listPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.borderActive)).
		Width(listW).
		Height(max(1, m.height-2)).
		Render(m.renderList())
	previewPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.borderInactive)).
		Width(m.previewWidth()).
		Height(max(1, m.height-2)).
		Render(m.preview.View())

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color(m.borderInactive)).
		Render(i18n.T("tui.language.help", "↑/↓: navigate • enter: select • q/esc: cancel"))

	v := tea.NewView(header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, listPane, " ", previewPane) + "\n" + footer)
	v.AltScreen = true
	return v
}

func (m LanguagePickerModel) renderList() string {
	var b strings.Builder
	for i, l := range m.langs {
		prefix := "  "
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(m.textPrimary))
		if i == m.cursor {
			prefix = "▸ "
			name = name.Bold(true).Foreground(lipgloss.Color(m.accent))
		}
		label := l.Name
		if l.Active {
			label += " *"
		}
		b.WriteString(prefix + name.Render(label) + "\n")
		if i == m.cursor {
			desc := l.Tag
			if l.EnglishName != "" && l.EnglishName != l.Name {
				desc += ", " + l.EnglishName
			}
			b.WriteString("    " + lipgloss.NewStyle().Foreground(lipgloss.Color(m.textMuted)).Render(desc) + "\n")
		}
	}
	return b.String()
}

// RunLanguagePicker shows the picker and returns the chosen tag, or "" if
// the user cancelled.
func RunLanguagePicker(activeTag string) (string, error) {
	ioOpts, closeTTY := ttyOpts()
	defer closeTTY()
	final, err := tea.NewProgram(NewLanguagePickerModel(activeTag), ioOpts...).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(LanguagePickerModel)
	if !ok {
		return "", nil
	}
	return m.selected, nil
}
