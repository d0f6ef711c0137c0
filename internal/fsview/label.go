package fsview

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Label line widths, in terminal cells.
const (
	LabelLine = 20
	LabelMax  = 2 * LabelLine
)

// Label splits name into at most two display lines of LabelLine cells.
// The second line always holds the tail of the name; names longer than
// LabelMax lose their head and gain a "..." prefix.
func Label(name string) (string, string) {
	name = sanitize(name)
	if runewidth.StringWidth(name) <= LabelLine {
		return name, ""
	}

	rs := []rune(name)
	split := len(rs)
	for w := 0; split > 0; split-- {
		rw := runewidth.RuneWidth(rs[split-1])
		if w+rw > LabelLine {
			break
		}
		w += rw
	}
	start := split
	for w := 0; start > 0; start-- {
		rw := runewidth.RuneWidth(rs[start-1])
		if w+rw > LabelLine {
			break
		}
		w += rw
	}

	head := string(rs[start:split])
	if start > 0 {
		head = "..." + head
	}
	return head, string(rs[split:])
}

// sanitize replaces control characters so labels cannot break the grid.
func sanitize(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		if r < 0x20 || r == 0x7f {
			rs[i] = ' '
		}
	}
	return string(rs)
}

// HumanSize formats a byte count the way the status line shows it.
func HumanSize(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	f := float64(n)
	switch {
	case n > gb:
		return fmt.Sprintf("%.2fGB", f/gb)
	case n > mb:
		return fmt.Sprintf("%.1fMB", f/mb)
	case n > kb:
		return fmt.Sprintf("%.0fKB", f/kb)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
