package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/fsview"
)

// GoTo shows dirs, remembering the current location for DownDir.
func (s *State) GoTo(dirs ...string) error {
	if len(dirs) == 0 {
		return nil
	}
	clean := make([]string, 0, len(dirs))
	for _, d := range dirs {
		clean = append(clean, filepath.Clean(d))
	}
	s.history = append(s.history, s.Dirs)
	s.Dirs = clean
	return s.LoadDir()
}

// UpDir shows the parents of the current dirs.
func (s *State) UpDir() error {
	parents := fsview.Parents(s.Dirs)
	if slices.Equal(parents, s.Dirs) {
		return nil
	}
	return s.GoTo(parents...)
}

// DownDir returns to the location before the last GoTo. It reports false
// when there is no history.
func (s *State) DownDir() (bool, error) {
	if !s.CanGoBack() {
		return false, nil
	}
	last := len(s.history) - 1
	s.Dirs = s.history[last]
	s.history = s.history[:last]
	return true, s.LoadDir()
}

// CanGoBack reports whether DownDir has somewhere to go.
func (s *State) CanGoBack() bool { return len(s.history) > 0 }

// NewDir creates name inside the first current dir and adds it to the
// grid.
func (s *State) NewDir(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("directory name is empty")
	}
	path := filepath.Join(s.Dirs[0], name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	// Nested names put the new dir deeper than the grid shows.
	if filepath.Dir(path) == filepath.Clean(s.Dirs[0]) {
		s.InsertPath(path)
	}
	return path, nil
}

// Bookmarker persists a bookmark. *config.Config implements it.
type Bookmarker interface {
	AddBookmark(dir string) (config.Bookmark, error)
}

// AddBookmark bookmarks the directory shown at display position d.
func (s *State) AddBookmark(b Bookmarker, d int) (config.Bookmark, error) {
	it, ok := s.Item(d)
	if !ok {
		return config.Bookmark{}, ErrNotExist
	}
	if !it.IsDir {
		return config.Bookmark{}, fmt.Errorf("%s is not a directory", it.Name)
	}
	return b.AddBookmark(it.Path)
}
