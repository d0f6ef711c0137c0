package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
)

// menu is a vertical list modal used for the sort and command menus.
type menu struct {
	title  string
	items  []string
	cursor int
}

func newMenu(title string, items []string, cursor int) menu {
	return menu{title: title, items: items, cursor: max(0, min(cursor, len(items)-1))}
}

// update applies a key. It returns the chosen index, or -1, and whether
// the menu closed.
func (m *menu) update(msg tea.KeyPressMsg) (int, bool) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		return m.cursor, true
	case "esc", "q", "ctrl+c":
		return -1, true
	default:
		// 1-9 pick directly.
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.items) {
				return i, true
			}
		}
	}
	return -1, false
}

func (m menu) view() string {
	s := GetStyles()
	var b strings.Builder
	b.WriteString(s.Title.Render(m.title))
	b.WriteString("\n\n")
	for i, it := range m.items {
		line := fmt.Sprintf("%d  %s", i+1, it)
		if i == m.cursor {
			b.WriteString(s.ButtonActive.Render(line))
		} else {
			b.WriteString(s.Button.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
