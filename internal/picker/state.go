// Package picker holds the item grid of the file picker: what is listed,
// what is shown, what is selected and where navigation goes next. It does
// no rendering; the terminal UI drives it with messages.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/search"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// ErrNotExist is returned when an operation targets a path that is gone.
var ErrNotExist = errors.New("picker: path does not exist")

// Item is one tile of the grid.
type Item struct {
	fsview.PathInfo
	Label1, Label2 string

	Selected bool
	Loaded   bool   // thumbnail request finished
	InFlight bool   // thumbnail request submitted
	Thumb    string // cached thumbnail path; empty means draw an icon

	DisplayIdx int // position in Displayed, -1 when not shown
}

// LastClicked describes the most recent click for the status line.
type LastClicked struct {
	Index      int // into Items, -1 when nothing was clicked
	DisplayIdx int
	Path       string
	Size       string // human size, empty for directories
	ModTime    time.Time
}

// Lister lists dirs including hidden entries.
type Lister func(dirs []string) ([]fsview.PathInfo, error)

// Options configure a new State.
type Options struct {
	Mode         Mode
	Dirs         []string
	SaveFilename string
	Sort         fsview.SortMode
	ShowHidden   bool
	ThumbSize    int
	Lister       Lister
}

// State is the picker grid. It is not safe for concurrent use; the UI
// loop owns it.
type State struct {
	Mode         Mode
	Dirs         []string
	Items        []Item
	Displayed    []int // indices into Items in display order
	Pathbar      string
	SaveFilename string
	Sort         fsview.SortMode
	ShowHidden   bool
	ThumbSize    int
	MaxCols      int
	LastClicked  LastClicked
	Preview      int // Items index of the previewed image, -1 when closed

	// Nav changes whenever the listing is replaced, View whenever the
	// displayed order or thumbnail size changes.
	Nav  uint64
	View uint64

	query   string
	history [][]string
	list    Lister
}

// New builds a State. Call LoadDir to populate it.
func New(opts Options) *State {
	s := &State{
		Mode:         opts.Mode,
		Dirs:         slices.Clone(opts.Dirs),
		SaveFilename: opts.SaveFilename,
		Sort:         opts.Sort,
		ShowHidden:   opts.ShowHidden,
		ThumbSize:    config.ClampThumbSize(opts.ThumbSize),
		MaxCols:      1,
		Preview:      -1,
		list:         opts.Lister,
	}
	if s.Sort == 0 {
		s.Sort = fsview.SortNameAsc
	}
	if s.list == nil {
		s.list = func(dirs []string) ([]fsview.PathInfo, error) { return fsview.List(dirs, true) }
	}
	if len(s.Dirs) == 0 {
		if wd, err := os.Getwd(); err == nil {
			s.Dirs = []string{wd}
		} else {
			s.Dirs = []string{"/"}
		}
	}
	s.LastClicked.Index = -1
	return s
}

// Query returns the active search text, empty when not searching.
func (s *State) Query() string { return s.query }

// Searching reports whether a search result is being shown.
func (s *State) Searching() bool { return s.query != "" }

// LoadDir lists the current dirs and rebuilds the grid. The state is
// updated even on error so the UI shows the (possibly empty) new location.
func (s *State) LoadDir() error {
	s.Nav++
	s.Preview = -1
	s.query = ""
	s.LastClicked = LastClicked{Index: -1}
	if s.Mode == ModeSave && s.SaveFilename != "" {
		s.Pathbar = filepath.Join(s.Dirs[0], s.SaveFilename)
	} else {
		s.Pathbar = s.Dirs[0]
	}

	infos, err := s.list(s.Dirs)
	s.Items = make([]Item, 0, len(infos))
	for _, pi := range infos {
		s.Items = append(s.Items, newItem(pi))
	}
	s.Displayed = s.visible()
	s.sortDisplayed()
	tuilog.Log.Info("Loaded directory", "dirs", s.Dirs, "items", len(s.Items), "nav", s.Nav)
	if err != nil {
		return fmt.Errorf("list %v: %w", s.Dirs, err)
	}
	return nil
}

func newItem(pi fsview.PathInfo) Item {
	l1, l2 := fsview.Label(pi.Name)
	return Item{PathInfo: pi, Label1: l1, Label2: l2, DisplayIdx: -1}
}

// visible returns the Items indices that pass the hidden filter, in list
// order.
func (s *State) visible() []int {
	out := make([]int, 0, len(s.Items))
	for i := range s.Items {
		if s.ShowHidden || !s.Items[i].Hidden {
			out = append(out, i)
		}
	}
	return out
}

func (s *State) sortDisplayed() {
	slices.SortStableFunc(s.Displayed, func(a, b int) int {
		return s.Sort.Compare(&s.Items[a].PathInfo, &s.Items[b].PathInfo)
	})
	s.reindex()
}

// reindex syncs DisplayIdx with Displayed, including the last click, and
// starts a new view.
func (s *State) reindex() {
	for i := range s.Items {
		s.Items[i].DisplayIdx = -1
	}
	for d, i := range s.Displayed {
		s.Items[i].DisplayIdx = d
	}
	if lc := s.LastClicked.Index; lc >= 0 && lc < len(s.Items) {
		s.LastClicked.DisplayIdx = s.Items[lc].DisplayIdx
	}
	s.View++
}

// Item returns the item shown at display position d.
func (s *State) Item(d int) (*Item, bool) {
	if d < 0 || d >= len(s.Displayed) {
		return nil, false
	}
	return &s.Items[s.Displayed[d]], true
}

// Selected returns the selected items in list order.
func (s *State) Selected() []*Item {
	var out []*Item
	for i := range s.Items {
		if s.Items[i].Selected {
			out = append(out, &s.Items[i])
		}
	}
	return out
}

// SelectedPaths returns the paths of the selected items.
func (s *State) SelectedPaths() []string {
	var out []string
	for _, it := range s.Selected() {
		out = append(out, it.Path)
	}
	return out
}

// SetColumns records how many tiles fit in a row, for arrow movement.
func (s *State) SetColumns(n int) {
	s.MaxCols = max(n, 1)
}

// SetSort reorders the grid. During a search the score order is kept
// and the mode applies once the search is cleared.
func (s *State) SetSort(m fsview.SortMode) {
	s.Sort = m
	if s.Searching() {
		return
	}
	s.sortDisplayed()
}

// ToggleHidden flips the hidden filter. It returns true when a search is
// active and must be run again over the new candidates.
func (s *State) ToggleHidden() bool {
	s.ShowHidden = !s.ShowHidden
	if s.Searching() {
		return true
	}
	s.Displayed = s.visible()
	s.sortDisplayed()
	return false
}

// SetThumbSize changes the tile size. Every thumbnail must be reloaded.
func (s *State) SetThumbSize(n int) {
	n = config.ClampThumbSize(n)
	if n == s.ThumbSize {
		return
	}
	s.ThumbSize = n
	for i := range s.Items {
		s.Items[i].Loaded = false
		s.Items[i].InFlight = false
		s.Items[i].Thumb = ""
	}
	s.View++
}

// SearchCandidates returns the items a search runs over: everything that
// passes the hidden filter.
func (s *State) SearchCandidates() []search.Candidate {
	vis := s.visible()
	out := make([]search.Candidate, 0, len(vis))
	for _, i := range vis {
		out = append(out, search.Candidate{Index: i, Path: s.Items[i].Path, IsDir: s.Items[i].IsDir})
	}
	return out
}

// ApplySearch shows only the matched items in match order. Matches are
// resolved by path, so items removed since the search ran are dropped.
// An empty query is the same as ClearSearch.
func (s *State) ApplySearch(query string, matches []search.Match) {
	if query == "" {
		s.ClearSearch()
		return
	}
	s.query = query
	s.Displayed = s.Displayed[:0]
	for _, m := range matches {
		i := s.indexOf(m.Path)
		if m.Path == "" && m.Index >= 0 && m.Index < len(s.Items) {
			i = m.Index
		}
		if i >= 0 && (s.ShowHidden || !s.Items[i].Hidden) {
			s.Displayed = append(s.Displayed, i)
		}
	}
	s.reindex()
}

// ClearSearch restores the filtered listing in sort order.
func (s *State) ClearSearch() {
	s.query = ""
	s.Displayed = s.visible()
	s.sortDisplayed()
}
