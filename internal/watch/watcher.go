// Package watch reports files appearing in and disappearing from the
// directories the picker shows.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// Op is the kind of change.
type Op int

const (
	Create Op = iota
	Delete
)

func (o Op) String() string {
	if o == Delete {
		return "delete"
	}
	return "create"
}

// Event is a path that appeared or went away.
type Event struct {
	Op   Op
	Path string
}

// DefaultQuiet is how long a new file must go without writes before its
// Create is reported.
const DefaultQuiet = 250 * time.Millisecond

// Watcher watches a set of directories, not recursively. New files are
// reported once writing to them has stopped, so the picker never
// thumbnails a half-written image.
type Watcher struct {
	fs     *fsnotify.Watcher
	quiet  time.Duration
	events chan Event
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	dirs    []string
	pending map[string]*time.Timer
}

// New starts a watcher with no directories. It stops when ctx is
// cancelled or Close is called.
func New(ctx context.Context, quiet time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	w := &Watcher{
		fs:      fw,
		quiet:   quiet,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}
	go w.loop(ctx)
	return w, nil
}

// Events delivers changes. It is never closed; select on your own
// shutdown signal alongside it.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// SetDirs replaces every watched directory with dirs. Pending creates in
// the old directories are dropped.
func (w *Watcher) SetDirs(dirs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, d := range w.dirs {
		_ = w.fs.Remove(d)
	}
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
	w.dirs = w.dirs[:0]
	for _, d := range dirs {
		d = filepath.Clean(d)
		if err := w.fs.Add(d); err != nil {
			tuilog.Log.Warn("Failed to watch directory", "dir", d, "error", err)
			continue
		}
		w.dirs = append(w.dirs, d)
	}
	tuilog.Log.Debug("Watching directories", "dirs", w.dirs)
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		for _, t := range w.pending {
			t.Stop()
		}
		w.mu.Unlock()
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			tuilog.Log.Error("Watcher error", "error", err)
		case <-w.done:
			return
		case <-ctx.Done():
			_ = w.Close()
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(path)
		w.emit(Event{Op: Delete, Path: path})
	case ev.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.emit(Event{Op: Create, Path: path})
			return
		}
		w.schedule(path)
	case ev.Has(fsnotify.Write):
		// Only files we saw created are reported; edits to existing files
		// do not change the grid.
		w.mu.Lock()
		t, ok := w.pending[path]
		w.mu.Unlock()
		if ok {
			t.Reset(w.quiet)
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(w.quiet)
		return
	}
	w.pending[path] = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.emit(Event{Op: Create, Path: path})
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
		tuilog.Log.Debug("Watch event", "op", ev.Op, "path", ev.Path)
	case <-w.done:
	}
}
