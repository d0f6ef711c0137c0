package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/wethinkt/go-pikeru/internal/caption"
	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// Options tune an Indexer. Zero values take the defaults.
type Options struct {
	Extensions   []string      // lowercase, without dots
	RetryDelay   time.Duration // between attempts on one file
	OfflineDelay time.Duration // between online checks while offline
	MaxRetries   int
	PickerOpen   func() bool // another process is showing a picker
}

// Status is a snapshot of the indexer for the status endpoint.
type Status struct {
	Running    bool     `json:"running"`
	Paused     bool     `json:"paused"`
	PickerOpen bool     `json:"picker_open"`
	Online     bool     `json:"online"`
	Current    string   `json:"current,omitempty"`
	Pending    []string `json:"pending"`
}

// Indexer captions the images of the directories it is told about and
// stores the captions. Work happens in Run; the other methods only change
// what Run does next and are safe to call from any goroutine.
type Indexer struct {
	store *Store
	cap   caption.Captioner
	opts  Options
	exts  map[string]bool

	wake chan struct{}

	mu         sync.Mutex
	pending    []string
	done       map[string]bool
	paused     bool
	running    bool
	pickerOpen bool
	online     bool
	current    string
	respectGit bool
	patterns   *ignore.GitIgnore
}

// NewIndexer returns an idle Indexer. Call Run to start it.
func NewIndexer(store *Store, c caption.Captioner, opts Options) *Indexer {
	if len(opts.Extensions) == 0 {
		opts.Extensions = config.DefaultPortal().Indexer.ExtensionList()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Minute
	}
	if opts.OfflineDelay <= 0 {
		opts.OfflineDelay = time.Minute
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 10
	}
	if opts.PickerOpen == nil {
		opts.PickerOpen = config.PickerOpen
	}
	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))] = true
	}
	return &Indexer{
		store:    store,
		cap:      c,
		opts:     opts,
		exts:     exts,
		wake:     make(chan struct{}, 1),
		done:     make(map[string]bool),
		patterns: ignore.CompileIgnoreLines(),
	}
}

// Update queues dirs for indexing and starts a batch if none is running.
func (ix *Indexer) Update(dirs []string) {
	ix.mu.Lock()
	for _, d := range dirs {
		d = filepath.Clean(d)
		if !slices.Contains(ix.pending, d) {
			ix.pending = append(ix.pending, d)
		}
		ix.done[d] = false
	}
	start := !ix.running && !ix.pickerOpen
	ix.mu.Unlock()
	tuilog.Log.Debug("Indexer update", "dirs", dirs)
	if start {
		ix.poke()
	}
}

// PauseResume pauses the indexer when active is false.
func (ix *Indexer) PauseResume(active bool) {
	ix.mu.Lock()
	ix.paused = !active
	ix.mu.Unlock()
	if active {
		tuilog.Log.Info("Resumed indexer")
		ix.poke()
	} else {
		tuilog.Log.Info("Paused indexer")
	}
}

// Configure sets gitignore-style patterns of files to skip. With
// respectGitignore the .gitignore of each indexed dir applies as well.
func (ix *Indexer) Configure(respectGitignore bool, patterns []string) {
	compiled := ignore.CompileIgnoreLines(patterns...)
	ix.mu.Lock()
	ix.respectGit = respectGitignore
	ix.patterns = compiled
	ix.mu.Unlock()
}

// SetPickerOpen holds indexing while a picker launched by the portal is
// showing.
func (ix *Indexer) SetPickerOpen(open bool) {
	ix.mu.Lock()
	ix.pickerOpen = open
	ix.mu.Unlock()
	if !open {
		ix.poke()
	}
}

// Status returns a snapshot of the indexer state.
func (ix *Indexer) Status() Status {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	st := Status{
		Running:    ix.running,
		Paused:     ix.paused,
		PickerOpen: ix.pickerOpen,
		Online:     ix.online,
		Current:    ix.current,
		Pending:    []string{},
	}
	for _, d := range ix.pending {
		if !ix.done[d] {
			st.Pending = append(st.Pending, d)
		}
	}
	return st
}

func (ix *Indexer) poke() {
	select {
	case ix.wake <- struct{}{}:
	default:
	}
}

// Run works through queued directories until ctx is cancelled. Between
// batches it sleeps until Update, PauseResume or SetPickerOpen wakes it,
// or OfflineDelay passes.
func (ix *Indexer) Run(ctx context.Context) error {
	ix.setOnline(ix.cap.Online(ctx))
	tuilog.Log.Info("Indexer started", "online", ix.Status().Online)

	ticker := time.NewTicker(ix.opts.OfflineDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ix.wake:
		case <-ticker.C:
		}
		if err := ix.batch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			tuilog.Log.Error("Indexing batch failed", "error", err)
		}
	}
}

// RunOnce indexes the queued directories in the foreground and returns
// when they are done. It returns caption.ErrOffline when the service is
// down before or during the batch.
func (ix *Indexer) RunOnce(ctx context.Context) error {
	online := ix.cap.Online(ctx)
	ix.setOnline(online)
	if !online {
		return caption.ErrOffline
	}
	err := ix.batch(ctx)
	if errors.Is(err, errGaveUp) {
		return caption.ErrOffline
	}
	return err
}

func (ix *Indexer) setOnline(v bool) {
	ix.mu.Lock()
	ix.online = v
	ix.mu.Unlock()
}

func (ix *Indexer) held() bool {
	ix.mu.Lock()
	open := ix.pickerOpen
	ix.mu.Unlock()
	return open || ix.opts.PickerOpen()
}

func (ix *Indexer) nextDir() (string, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, d := range ix.pending {
		if !ix.done[d] {
			return d, true
		}
	}
	return "", false
}

func (ix *Indexer) finishBatch() {
	ix.mu.Lock()
	ix.pending = ix.pending[:0]
	clear(ix.done)
	ix.mu.Unlock()
}

// batch indexes pending dirs until none are left, the picker opens or
// the service goes offline.
func (ix *Indexer) batch(ctx context.Context) error {
	if _, ok := ix.nextDir(); !ok || ix.held() {
		return nil
	}
	online := ix.cap.Online(ctx)
	ix.setOnline(online)
	if !online {
		tuilog.Log.Warn("Indexer offline")
		return nil
	}

	ix.mu.Lock()
	ix.running = true
	ix.mu.Unlock()
	indexActive.Set(1)
	defer func() {
		ix.mu.Lock()
		ix.running = false
		ix.current = ""
		ix.mu.Unlock()
		indexActive.Set(0)
	}()

	tuilog.Log.Debug("Starting index batch")
	for !ix.held() {
		dir, ok := ix.nextDir()
		if !ok {
			tuilog.Log.Debug("Indexing batch finished")
			ix.finishBatch()
			return nil
		}
		if err := ix.indexDir(ctx, dir); err != nil {
			ix.finishBatch()
			return err
		}
		ix.mu.Lock()
		ix.done[dir] = true
		ix.mu.Unlock()
	}
	return nil
}

var errGaveUp = errors.New("captioning service went offline")

func (ix *Indexer) indexDir(ctx context.Context, dir string) error {
	defer tuilog.Log.Timed("index " + dir)()

	entries, err := os.ReadDir(dir)
	if err != nil {
		tuilog.Log.Error("Error reading dir", "dir", dir, "error", err)
		return nil
	}
	skip := ix.matcher(dir)

	for _, e := range entries {
		if e.IsDir() || !ix.exts[fsview.Ext(e.Name())] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if skip(path) {
			filesTotal.WithLabelValues("ignored").Inc()
			continue
		}
		if err := ix.indexFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// matcher combines the configured patterns with dir's .gitignore.
func (ix *Indexer) matcher(dir string) func(path string) bool {
	ix.mu.Lock()
	patterns, respectGit := ix.patterns, ix.respectGit
	ix.mu.Unlock()

	var local *ignore.GitIgnore
	if respectGit {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
			local = gi
		}
	}
	return func(path string) bool {
		if patterns.MatchesPath(strings.TrimPrefix(path, "/")) {
			return true
		}
		return local != nil && local.MatchesPath(filepath.Base(path))
	}
}

// indexFile captions path, retrying while the service is flaky. It fails
// only when the service is offline after the last retry.
func (ix *Indexer) indexFile(ctx context.Context, path string) error {
	ix.mu.Lock()
	ix.current = path
	ix.mu.Unlock()

	online := true
	for tries := ix.opts.MaxRetries; ; {
		if ix.isPaused() {
			if err := sleep(ctx, ix.opts.RetryDelay); err != nil {
				return err
			}
			continue
		}
		if online && ix.updateFile(ctx, path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		tries--
		tuilog.Log.Warn("Retrying file", "path", path, "tries_left", tries)
		if err := sleep(ctx, ix.opts.RetryDelay); err != nil {
			return err
		}
		online = ix.cap.Online(ctx)
		ix.setOnline(online)
		if tries <= 0 {
			if !online {
				return errGaveUp
			}
			filesTotal.WithLabelValues("failed").Inc()
			tuilog.Log.Error("Giving up on file", "path", path)
			return nil
		}
	}
}

func (ix *Indexer) isPaused() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.paused
}

// updateFile reports whether path is done: captioned, unchanged since its
// caption, or gone. On a failed caption it reports the service state.
func (ix *Indexer) updateFile(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		tuilog.Log.Debug("File vanished before indexing", "path", path)
		return true
	}
	mtime := Mtime(info.ModTime())
	if prev, err := ix.store.Get(ctx, path); err == nil && prev.Mtime == mtime {
		filesTotal.WithLabelValues("skipped").Inc()
		return true
	}

	start := time.Now()
	text, err := ix.cap.Caption(ctx, path)
	captionSeconds.Observe(time.Since(start).Seconds())
	if err != nil || text == "" {
		tuilog.Log.Error("Caption failed", "path", path, "error", err)
		// Online means the file itself is the problem; skip it.
		online := ix.cap.Online(ctx)
		ix.setOnline(online)
		if online {
			filesTotal.WithLabelValues("failed").Inc()
		}
		return online
	}

	dir, fname := split(path)
	if err := ix.store.Upsert(ctx, Description{Fname: fname, Dir: dir, Description: text, Mtime: mtime}); err != nil {
		tuilog.Log.Error("Failed to save caption", "path", path, "error", err)
		return false
	}
	filesTotal.WithLabelValues("captioned").Inc()
	tuilog.Log.Debug("Indexed file", "path", path)
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
