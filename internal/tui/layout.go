package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/picker"
)

// Fixed parts of the window, in cells.
const (
	bookmarkWidth = 18 // bookmark column including its separator
	headerHeight  = 2  // path line and search line
	footerHeight  = 1
)

// tileImage returns the cells a thumbnail of thumbSize pixels occupies.
func tileImage(thumbSize int) (cols, rows int) {
	return max(fsview.LabelLine, thumbSize/cellW), max(3, thumbSize/cellH)
}

type button int

const (
	buttonCancel button = iota
	buttonOK
)

// buttonSpan is a footer button and its columns [x0, x1).
type buttonSpan struct {
	id     button
	label  string
	x0, x1 int
}

// layout is where everything is on screen for one window size.
type layout struct {
	width, height int

	gridX, gridY, gridW, gridH int
	tileW, tileH               int
	imgCols, imgRows           int
	cols, rows                 int // tiles per row, fully visible rows

	footerY int
	buttons []buttonSpan
}

func okLabel(mode picker.Mode) string {
	if mode == picker.ModeSave {
		return i18n.T("tui.button.save", "Save")
	}
	return i18n.T("tui.button.open", "Open")
}

func computeLayout(width, height, thumbSize int, mode picker.Mode) layout {
	l := layout{width: width, height: height}
	l.imgCols, l.imgRows = tileImage(thumbSize)
	l.tileW = l.imgCols + 2 // selection gutter and gap
	l.tileH = l.imgRows + 3 // two label lines and a gap

	l.gridX = bookmarkWidth
	l.gridY = headerHeight
	l.gridW = max(0, width-l.gridX)
	l.gridH = max(0, height-headerHeight-footerHeight)
	l.cols = max(1, l.gridW/l.tileW)
	l.rows = max(1, l.gridH/l.tileH)
	l.footerY = height - footerHeight

	// Buttons sit at the right end of the footer, one cell apart.
	st := GetStyles()
	labels := []buttonSpan{
		{id: buttonCancel, label: i18n.T("tui.button.cancel", "Cancel")},
		{id: buttonOK, label: okLabel(mode)},
	}
	x := width
	for i := len(labels) - 1; i >= 0; i-- {
		w := lipgloss.Width(st.Button.Render(labels[i].label))
		labels[i].x1 = x
		labels[i].x0 = x - w
		x -= w + 1
	}
	l.buttons = labels
	return l
}

type hitKind int

const (
	hitNone hitKind = iota
	hitTile
	hitBookmark
	hitBookmarkColumn
	hitButton
	hitPath
	hitSearch
)

type hit struct {
	kind  hitKind
	index int // display index, bookmark index or button
}

// hitTest maps a cell to what is drawn there. scroll is the first shown
// grid row; shown is the number of displayed items; bookmarks the number
// of bookmarks.
func (l layout) hitTest(x, y, scroll, shown, bookmarks int) hit {
	switch {
	case y == 0:
		return hit{kind: hitPath}
	case y == 1:
		return hit{kind: hitSearch}
	case y == l.footerY:
		for _, b := range l.buttons {
			if x >= b.x0 && x < b.x1 {
				return hit{kind: hitButton, index: int(b.id)}
			}
		}
		return hit{}
	case y < l.gridY || y >= l.footerY:
		return hit{}
	case x < bookmarkWidth:
		// The first line of the column is its title.
		if i := y - l.gridY - 1; i >= 0 && i < bookmarks {
			return hit{kind: hitBookmark, index: i}
		}
		return hit{kind: hitBookmarkColumn, index: -1}
	}

	col := (x - l.gridX) / l.tileW
	row := (y-l.gridY)/l.tileH + scroll
	if col >= l.cols {
		return hit{}
	}
	d := row*l.cols + col
	if d < 0 || d >= shown {
		return hit{}
	}
	return hit{kind: hitTile, index: d}
}

// scrollFor returns the scroll offset that keeps display index d visible.
func (l layout) scrollFor(d, scroll int) int {
	if d < 0 {
		return scroll
	}
	row := d / l.cols
	switch {
	case row < scroll:
		return row
	case row >= scroll+l.rows:
		return row - l.rows + 1
	}
	return scroll
}

// maxScroll is the largest useful scroll offset for shown items.
func (l layout) maxScroll(shown int) int {
	total := (shown + l.cols - 1) / l.cols
	return max(0, total-l.rows)
}
