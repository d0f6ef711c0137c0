package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/picker"
)

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.WindowTitle = m.windowTitle()
	return v
}

func (m *Model) windowTitle() string {
	title := m.title
	if title == "" {
		title = "pikeru"
	}
	return title + " - " + strings.Join(m.st.Dirs, ", ")
}

func (m *Model) render() string {
	if m.width == 0 || m.height == 0 {
		return i18n.T("tui.loading", "Loading...")
	}
	if m.modal != modalNone {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderModal())
	}

	l := m.layout()
	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderHeader()...)

	var body []string
	if m.st.Preview >= 0 {
		body = m.renderPreview(l)
	} else {
		body = m.renderGrid(l)
	}
	marks := m.renderBookmarks(l.gridH)
	for y := range l.gridH {
		row := ""
		if y < len(body) {
			row = body[y]
		}
		lines = append(lines, marks[y]+row)
	}
	lines = append(lines, m.renderFooter(l))
	return strings.Join(lines, "\n")
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	if n := ansi.StringWidth(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

// center pads plain text s to w cells, centered.
func center(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	gap := w - ansi.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
}

func (m *Model) renderHeader() []string {
	st := GetStyles()
	var path string
	if m.focus == focusPath {
		path = m.path.View()
	} else {
		path = st.Muted.Render(m.path.Prompt) + m.st.Pathbar
	}

	indicators := st.Info.Render(fmt.Sprintf("%s · %s · %dpx",
		modeLabel(m.st.Mode), sortLabel(m.st.Sort), m.st.ThumbSize))
	if m.st.ShowHidden {
		indicators = st.Muted.Render(i18n.T("tui.header.hidden", "hidden")+" · ") + indicators
	}
	iw := lipgloss.Width(indicators)
	searchLine := fit(m.query.View(), max(0, m.width-iw-1)) + " " + indicators

	return []string{fit(path, m.width), fit(searchLine, m.width)}
}

func modeLabel(mode picker.Mode) string {
	switch mode {
	case picker.ModeFile:
		return i18n.T("tui.mode.file", "open file")
	case picker.ModeSave:
		return i18n.T("tui.mode.save", "save")
	case picker.ModeDir:
		return i18n.T("tui.mode.dir", "choose directory")
	default:
		return i18n.T("tui.mode.files", "open files")
	}
}

func (m *Model) renderBookmarks(height int) []string {
	st := GetStyles()
	w := bookmarkWidth - 1
	sep := st.Muted.Render("│")
	out := make([]string, height)

	titleStyle := st.Title
	if m.dragOver {
		titleStyle = st.BookmarkTarget
	}
	for y := range height {
		var cell string
		switch i := y - 1; {
		case y == 0:
			cell = titleStyle.Render(fit(" "+i18n.T("tui.bookmarks.title", "Bookmarks"), w))
		case i < len(m.cfg.Bookmarks):
			b := m.cfg.Bookmarks[i]
			style := st.Bookmark
			if m.dragOver {
				style = st.BookmarkTarget
			}
			cell = style.Render(fit(" "+b.Label, w))
		case m.dragOver && i == len(m.cfg.Bookmarks):
			cell = st.BookmarkTarget.Render(fit(" + "+i18n.T("tui.bookmarks.drop", "drop here"), w))
		default:
			cell = strings.Repeat(" ", w)
		}
		out[y] = cell + sep
	}
	return out
}

func (m *Model) renderGrid(l layout) []string {
	if len(m.st.Displayed) == 0 {
		msg := i18n.T("tui.grid.empty", "Nothing here")
		if m.st.Searching() {
			msg = i18n.T("tui.grid.nomatch", "No matches")
		}
		return []string{"", center(GetStyles().Muted.Render(msg), l.gridW)}
	}

	var out []string
	for r := range l.rows + 1 {
		row := m.scroll + r
		first := row * l.cols
		if first >= len(m.st.Displayed) {
			break
		}
		rowLines := make([]string, l.tileH)
		for c := range l.cols {
			d := first + c
			if d >= len(m.st.Displayed) {
				break
			}
			for i, s := range m.renderTile(d, l) {
				rowLines[i] += s
			}
		}
		out = append(out, rowLines...)
	}
	if len(out) > l.gridH {
		out = out[:l.gridH]
	}
	return out
}

// renderTile returns the tileH lines of the tile at display index d, each
// exactly tileW cells wide.
func (m *Model) renderTile(d int, l layout) []string {
	st := GetStyles()
	it, _ := m.st.Item(d)

	gutter := " "
	labelStyle := st.Tile
	switch {
	case d == m.st.LastClicked.DisplayIdx && m.st.LastClicked.Index >= 0:
		gutter = st.TileCursor.Render("▌")
		if it.Selected {
			labelStyle = st.TileSelected
		}
	case it.Selected:
		gutter = st.TileSelected.Render("▌")
		labelStyle = st.TileSelected
	}

	lines := make([]string, 0, l.tileH)
	for _, s := range m.tileImage(it, l) {
		lines = append(lines, gutter+s+" ")
	}
	lines = append(lines,
		gutter+labelStyle.Render(center(it.Label1, l.imgCols))+" ",
		gutter+labelStyle.Render(center(it.Label2, l.imgCols))+" ",
		strings.Repeat(" ", l.tileW),
	)
	return lines
}

// tileImage returns the imgRows lines of the picture area: the kitty
// placeholders when the thumbnail was transmitted, an icon otherwise.
func (m *Model) tileImage(it *picker.Item, l layout) []string {
	lines := make([]string, l.imgRows)
	blank := strings.Repeat(" ", l.imgCols)

	if it.Thumb != "" {
		if p, ok := m.images.lookup(it.Thumb); ok && p.Columns <= l.imgCols && p.Rows <= l.imgRows {
			top := (l.imgRows - p.Rows) / 2
			left := strings.Repeat(" ", (l.imgCols-p.Columns)/2)
			right := strings.Repeat(" ", l.imgCols-p.Columns-len(left))
			grid := placeholderGrid(p)
			for i := range lines {
				if i >= top && i < top+p.Rows {
					lines[i] = left + grid[i-top] + right
				} else {
					lines[i] = blank
				}
			}
			return lines
		}
	}

	st := GetStyles()
	var icon string
	switch {
	case it.IsDir:
		icon = st.DirIcon.Render(center("▆▆▆▆", l.imgCols))
	case !it.Loaded && it.Kind.Visual():
		icon = st.Muted.Render(center("…", l.imgCols))
	default:
		tag := fsview.Ext(it.Path)
		if tag == "" {
			tag = it.Kind.String()
		}
		icon = st.FileIcon.Render(center("["+strings.ToUpper(tag)+"]", l.imgCols))
	}
	for i := range lines {
		lines[i] = blank
	}
	lines[l.imgRows/2] = icon
	return lines
}

func (m *Model) renderPreview(l layout) []string {
	st := GetStyles()
	it := &m.st.Items[m.st.Preview]
	var out []string

	if p, ok := m.images.lookup(m.previewKey); ok && m.previewKey != "" {
		pad := strings.Repeat(" ", max(0, (l.gridW-p.Columns)/2))
		for _, s := range placeholderGrid(p) {
			out = append(out, pad+s)
		}
	} else {
		msg := i18n.T("tui.preview.loading", "Loading preview...")
		switch {
		case m.previewErr != "":
			msg = st.Error.Render(m.previewErr)
		case getGraphicsProtocol() != protocolKitty:
			msg = i18n.T("tui.preview.unsupported", "This terminal cannot show images")
		}
		out = append(out, "", center(msg, l.gridW))
	}

	name := filepath.Base(it.Path) + "  " + fsview.HumanSize(it.Size)
	out = append(out, "", st.Title.Render(center(name, l.gridW)))
	if c := m.captionMap[it.Path]; c != "" {
		out = append(out, st.Info.Render(center(c, l.gridW)))
	}
	if len(out) > l.gridH {
		out = out[len(out)-l.gridH:]
	}
	return out
}

func (m *Model) renderFooter(l layout) string {
	st := GetStyles()
	var info string
	if lc := m.st.LastClicked; lc.Index >= 0 {
		info = lc.Path
		if lc.Size != "" {
			info += "  " + lc.Size
		}
		if !lc.ModTime.IsZero() {
			info += "  " + i18n.RelativeTime(lc.ModTime)
		}
	}
	if n := len(m.st.Selected()); n > 1 {
		info = i18n.Tn("tui.footer.selected", "{{.Count}} selected", "{{.Count}} selected", n) + "  " + info
	}

	hasChoice := len(m.st.Selected()) > 0 || m.st.Mode == picker.ModeSave
	var buttons strings.Builder
	x := l.width
	if len(l.buttons) > 0 {
		x = l.buttons[0].x0
	}
	for i, b := range l.buttons {
		if i > 0 {
			buttons.WriteString(" ")
		}
		if b.id == buttonOK && hasChoice {
			buttons.WriteString(st.ButtonActive.Render(b.label))
		} else {
			buttons.WriteString(st.Button.Render(b.label))
		}
	}
	return st.Info.Render(fit(" "+info, max(0, x))) + buttons.String()
}

func (m *Model) renderModal() string {
	st := GetStyles()
	var content string
	switch m.modal {
	case modalConfirm:
		content = m.confirm.view()
	case modalError:
		content = st.Error.Render(i18n.T("tui.error.title", "Error")) + "\n\n" +
			lipgloss.NewStyle().Width(min(60, max(20, m.width-8))).Render(m.errText) + "\n\n" +
			st.Muted.Render(i18n.T("tui.error.dismiss", "press any key"))
	case modalNewDir:
		content = st.Title.Render(i18n.T("tui.newdir.title", "New directory")) + "\n\n" + m.dirName.View()
	case modalSort, modalCommands:
		content = m.menu.view()
	case modalHelp:
		return m.help.View()
	}
	return st.ActiveBorder.Padding(1, 2).Render(content)
}
