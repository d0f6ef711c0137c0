package picker

import (
	"time"

	"github.com/wethinkt/go-pikeru/internal/fsview"
)

// Mods are the modifier keys held during a click.
type Mods struct {
	Shift bool
	Ctrl  bool
}

// DoubleClickWindow is the longest gap between the clicks of a double click.
const DoubleClickWindow = 300 * time.Millisecond

// ClickTimer turns two clicks on the same tile into a double click.
type ClickTimer struct {
	idx int
	at  time.Time
}

// Click records a click on idx at now and reports whether it completes a
// double click.
func (c *ClickTimer) Click(idx int, now time.Time) bool {
	double := !c.at.IsZero() && idx == c.idx && now.Sub(c.at) <= DoubleClickWindow
	if double {
		c.at = time.Time{}
		return true
	}
	c.idx, c.at = idx, now
	return false
}

// Click applies a click on display position d. With alwaysSel the item is
// selected even when it already was.
func (s *State) Click(d int, mods Mods, alwaysSel bool) {
	it, ok := s.Item(d)
	if !ok {
		return
	}
	i := s.Displayed[d]
	isDir := it.IsDir
	s.LastClicked = LastClicked{Index: i, DisplayIdx: d, Path: it.Path, ModTime: it.ModTime}
	if !isDir {
		s.LastClicked.Size = fsview.HumanSize(it.Size)
	}

	var prev []int
	for j := range s.Items {
		if s.Items[j].Selected {
			prev = append(prev, j)
		}
	}

	// Range select keeps items of the clicked type between the clicked
	// tile and the outermost previous selection.
	if mods.Shift && (s.Mode.Multi() || isDir) && len(prev) > 0 && s.Items[prev[0]].IsDir == isDir {
		lo, hi := d, d
		for _, j := range prev {
			if dj := s.Items[j].DisplayIdx; dj >= 0 {
				lo, hi = min(lo, dj), max(hi, dj)
			}
		}
		for k := lo; k <= hi; k++ {
			item := &s.Items[s.Displayed[k]]
			item.Selected = item.IsDir == isDir
		}
		return
	}

	switch {
	case alwaysSel || !it.Selected:
		it.Selected = true
	case len(prev) == 1 || mods.Ctrl:
		it.Selected = false
	}
	keep := mods.Ctrl && (s.Mode.Multi() || isDir)
	for _, j := range prev {
		if j == i {
			continue
		}
		if !keep || s.Items[j].IsDir != isDir {
			s.Items[j].Selected = false
		}
	}

	if it.Selected {
		s.Pathbar = it.Path
		if s.Mode == ModeSave && !isDir {
			s.SaveFilename = it.Name
		}
	} else {
		s.Pathbar = s.Dirs[0]
	}
}

// MiddleClick toggles d as if clicked with ctrl held.
func (s *State) MiddleClick(d int) {
	s.Click(d, Mods{Ctrl: true}, false)
}

// RightClick previews an image, or range-selects anything else.
func (s *State) RightClick(d int) {
	it, ok := s.Item(d)
	if !ok {
		s.Preview = -1
		return
	}
	if it.Kind == fsview.KindImage {
		s.Preview = s.Displayed[d]
		s.Click(d, Mods{}, true)
		return
	}
	s.Click(d, Mods{Shift: true}, false)
}

// ClosePreview leaves the image preview.
func (s *State) ClosePreview() { s.Preview = -1 }

// Direction is an arrow key.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Move clicks the tile next to the last clicked one. With nothing selected
// it starts at the first tile. While previewing it steps through images.
func (s *State) Move(dir Direction, mods Mods) {
	if len(s.Displayed) == 0 {
		return
	}
	from := s.LastClicked.DisplayIdx
	target := 0
	if len(s.Selected()) > 0 && s.LastClicked.Index >= 0 {
		switch dir {
		case Up:
			target = from - s.MaxCols
		case Down:
			target = from + s.MaxCols
		case Left:
			target = from - 1
		case Right:
			target = from + 1
		}
	}
	if s.Preview >= 0 {
		step := 1
		if target < from {
			step = -1
		}
		s.NextImage(step)
		return
	}
	target = max(0, min(target, len(s.Displayed)-1))
	s.Click(target, mods, true)
}

// NextImage moves the preview to the next image in display order in the
// direction of step. It reports false at either end.
func (s *State) NextImage(step int) bool {
	if s.Preview < 0 || step == 0 {
		return false
	}
	if step > 0 {
		step = 1
	} else {
		step = -1
	}
	for d := s.Items[s.Preview].DisplayIdx + step; d >= 0 && d < len(s.Displayed); d += step {
		i := s.Displayed[d]
		if s.Items[i].Kind == fsview.KindImage {
			s.Preview = i
			s.Click(d, Mods{}, true)
			return true
		}
	}
	return false
}

// Source says what triggered Select.
type Source int

const (
	SourceButton Source = iota // the Open/Save button
	SourceClick                // double click or enter
	SourceText                 // enter in the path bar
)

// OutcomeKind is what the UI should do after Select.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomePrint
	OutcomeNavigate
	OutcomeConfirmOverwrite
)

// Outcome is the result of Select.
type Outcome struct {
	Kind  OutcomeKind
	Paths []string
}

// Select confirms the current choice. Navigation outcomes have already
// been applied to the state when Select returns.
func (s *State) Select(src Source) (Outcome, error) {
	if s.Mode == ModeSave {
		return s.selectSave()
	}

	var sels []fsview.PathInfo
	if src == SourceText {
		sels = []fsview.PathInfo{fsview.Stat(s.Pathbar)}
	} else {
		for _, it := range s.Selected() {
			sels = append(sels, it.PathInfo)
		}
	}
	if len(sels) == 0 {
		return Outcome{}, nil
	}

	switch sels[0].Kind {
	case fsview.KindDir:
		if s.Mode == ModeDir && len(sels) == 1 && src == SourceButton {
			return Outcome{Kind: OutcomePrint, Paths: []string{sels[0].Path}}, nil
		}
		var dirs []string
		for _, pi := range sels {
			if pi.IsDir {
				dirs = append(dirs, pi.Path)
			}
		}
		return Outcome{Kind: OutcomeNavigate, Paths: dirs}, s.GoTo(dirs...)
	case fsview.KindNotExist:
		return Outcome{}, nil
	}

	paths := make([]string, 0, len(sels))
	for _, pi := range sels {
		paths = append(paths, pi.Path)
	}
	return Outcome{Kind: OutcomePrint, Paths: paths}, nil
}

func (s *State) selectSave() (Outcome, error) {
	if s.Pathbar == "" {
		return Outcome{}, nil
	}
	pi := fsview.Stat(s.Pathbar)
	switch pi.Kind {
	case fsview.KindNotExist:
		return Outcome{Kind: OutcomePrint, Paths: []string{pi.Path}}, nil
	case fsview.KindDir:
		return Outcome{Kind: OutcomeNavigate, Paths: []string{pi.Path}}, s.GoTo(pi.Path)
	}
	return Outcome{Kind: OutcomeConfirmOverwrite, Paths: []string{pi.Path}}, nil
}
