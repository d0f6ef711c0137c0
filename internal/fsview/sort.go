package fsview

import (
	"cmp"
	"fmt"
	"strings"
)

// SortMode orders the grid. Directories always come before files.
type SortMode int

const (
	SortNameAsc  SortMode = 1
	SortNameDesc SortMode = 2
	SortTimeDesc SortMode = 3 // newest first
	SortTimeAsc  SortMode = 4 // oldest first
)

// SortModes lists all modes in menu order.
var SortModes = []SortMode{SortNameAsc, SortNameDesc, SortTimeDesc, SortTimeAsc}

func (m SortMode) String() string {
	switch m {
	case SortNameDesc:
		return "name_desc"
	case SortTimeDesc:
		return "time_desc"
	case SortTimeAsc:
		return "time_asc"
	default:
		return "name_asc"
	}
}

// ParseSortMode maps a config name to a SortMode. Unknown names fall back
// to SortNameAsc.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.TrimSpace(s) {
	case "name_asc", "":
		return SortNameAsc, nil
	case "name_desc":
		return SortNameDesc, nil
	case "time_desc":
		return SortTimeDesc, nil
	case "time_asc":
		return SortTimeAsc, nil
	}
	return SortNameAsc, fmt.Errorf("unknown sort mode %q", s)
}

// Compare orders a before b under mode m.
func (m SortMode) Compare(a, b *PathInfo) int {
	if a.IsDir != b.IsDir {
		if a.IsDir {
			return -1
		}
		return 1
	}
	switch m {
	case SortNameDesc:
		return cmp.Or(cmp.Compare(b.Key, a.Key), cmp.Compare(b.Path, a.Path))
	case SortTimeDesc:
		return cmp.Or(b.ModTime.Compare(a.ModTime), cmp.Compare(a.Path, b.Path))
	case SortTimeAsc:
		return cmp.Or(a.ModTime.Compare(b.ModTime), cmp.Compare(a.Path, b.Path))
	default:
		return cmp.Or(cmp.Compare(a.Key, b.Key), cmp.Compare(a.Path, b.Path))
	}
}
