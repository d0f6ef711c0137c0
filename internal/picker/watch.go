package picker

import (
	"path/filepath"
	"slices"

	"github.com/wethinkt/go-pikeru/internal/fsview"
)

// InsertPath adds a path created inside one of the current dirs. It
// reports whether the grid changed.
func (s *State) InsertPath(path string) bool {
	path = filepath.Clean(path)
	if !slices.Contains(s.cleanDirs(), filepath.Dir(path)) || s.indexOf(path) >= 0 {
		return false
	}
	pi := fsview.Stat(path)
	if pi.Kind == fsview.KindNotExist {
		return false
	}
	s.Items = append(s.Items, newItem(pi))
	i := len(s.Items) - 1
	if pi.Hidden && !s.ShowHidden {
		s.Items[i].DisplayIdx = -1
		return true
	}
	s.Displayed = append(s.Displayed, i)
	if s.Searching() {
		s.reindex()
	} else {
		s.sortDisplayed()
	}
	return true
}

// RemovePath drops a deleted path from the grid. It reports whether the
// grid changed.
func (s *State) RemovePath(path string) bool {
	i := s.indexOf(filepath.Clean(path))
	if i < 0 {
		return false
	}
	s.Items = slices.Delete(s.Items, i, i+1)

	shown := s.Displayed[:0]
	for _, j := range s.Displayed {
		switch {
		case j == i:
		case j > i:
			shown = append(shown, j-1)
		default:
			shown = append(shown, j)
		}
	}
	s.Displayed = shown

	switch {
	case s.Preview == i:
		s.Preview = -1
	case s.Preview > i:
		s.Preview--
	}
	switch {
	case s.LastClicked.Index == i:
		s.LastClicked = LastClicked{Index: -1}
	case s.LastClicked.Index > i:
		s.LastClicked.Index--
	}
	s.reindex()
	return true
}

func (s *State) indexOf(path string) int {
	for i := range s.Items {
		if s.Items[i].Path == path {
			return i
		}
	}
	return -1
}

func (s *State) cleanDirs() []string {
	out := make([]string, len(s.Dirs))
	for i, d := range s.Dirs {
		out[i] = filepath.Clean(d)
	}
	return out
}
