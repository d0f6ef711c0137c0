// Package fsview lists directories for the picker grid and classifies,
// sorts and labels the entries it finds.
package fsview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// PathInfo is a filesystem path annotated for display. It is created per
// directory listing and never changed afterwards.
type PathInfo struct {
	Path    string
	Name    string
	Key     string // case-folded Name, the sort key
	ModTime time.Time
	Size    int64
	IsDir   bool
	Kind    Kind
	MIME    string // guessed for files, empty for directories
	Hidden  bool
}

// Stat builds a PathInfo for path. A path that cannot be stat'ed yields
// Kind NotExist.
func Stat(path string) PathInfo {
	path = filepath.Clean(path)
	name := filepath.Base(path)
	pi := PathInfo{
		Path:   path,
		Name:   name,
		Key:    cases.Fold().String(name),
		Hidden: strings.HasPrefix(name, "."),
	}

	info, err := os.Stat(path)
	if err != nil {
		pi.Kind = KindNotExist
		pi.ModTime = time.Now()
		return pi
	}
	pi.ModTime = info.ModTime()
	if info.IsDir() {
		pi.IsDir = true
		pi.Kind = KindDir
		return pi
	}
	pi.Size = info.Size()
	pi.Kind, pi.MIME = Classify(path)
	return pi
}

// List reads every directory in dirs and returns their entries
// concatenated, unsorted. Hidden entries are included only when
// showHidden is set. Unreadable entries are skipped.
func List(dirs []string, showHidden bool) ([]PathInfo, error) {
	defer tuilog.Log.Timed("fsview.List")()

	var out []PathInfo
	var firstErr error
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			tuilog.Log.Warn("Failed to read directory", "dir", dir, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("read %s: %w", dir, err)
			}
			continue
		}
		for _, e := range entries {
			if !showHidden && strings.HasPrefix(e.Name(), ".") {
				continue
			}
			pi := Stat(filepath.Join(dir, e.Name()))
			if pi.Kind == KindNotExist {
				continue // dangling symlink or removed since ReadDir
			}
			out = append(out, pi)
		}
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Parents returns the unique parent directories of dirs, keeping order.
func Parents(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	var out []string
	for _, d := range dirs {
		p := filepath.Dir(filepath.Clean(d))
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
