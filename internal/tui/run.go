package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/index"
	"github.com/wethinkt/go-pikeru/internal/picker"
	"github.com/wethinkt/go-pikeru/internal/search"
	"github.com/wethinkt/go-pikeru/internal/thumb"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
	"github.com/wethinkt/go-pikeru/internal/watch"
)

// Options configure Run.
type Options struct {
	Title        string
	Mode         picker.Mode
	Dirs         []string
	SaveFilename string
	Config       *config.Config
}

// Run shows the picker and returns the chosen paths. A cancelled picker
// returns no paths and no error.
func Run(ctx context.Context, opts Options) ([]string, error) {
	cfg := opts.Config
	if cfg == nil {
		c, err := config.Load()
		if err != nil {
			tuilog.Log.Warn("Failed to load config, using defaults", "error", err)
		}
		cfg = &c
	}
	sortMode, err := fsview.ParseSortMode(cfg.Settings.SortBy)
	if err != nil {
		tuilog.Log.Warn("Bad sort_by setting", "error", err)
	}

	st := picker.New(picker.Options{
		Mode:         opts.Mode,
		Dirs:         opts.Dirs,
		SaveFilename: opts.SaveFilename,
		Sort:         sortMode,
		ShowHidden:   cfg.Settings.ShowHidden,
		ThumbSize:    cfg.Settings.ThumbnailSize,
	})
	if err := st.LoadDir(); err != nil {
		tuilog.Log.Warn("Initial listing failed", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cache, err := thumb.NewCache(cfg.Settings.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("thumbnail cache: %w", err)
	}
	pool := thumb.NewPool(ctx, cache, 0)
	defer pool.Close()

	watcher, err := watch.New(ctx, watch.DefaultQuiet)
	if err != nil {
		tuilog.Log.Warn("Directory watching disabled", "error", err)
		watcher = nil
	} else {
		defer watcher.Close()
	}

	pid := os.Getpid()
	if err := config.RegisterInstance(config.Instance{
		Type:      config.InstancePicker,
		PID:       pid,
		StartedAt: time.Now(),
	}); err != nil {
		tuilog.Log.Warn("Failed to register picker instance", "error", err)
	}
	defer config.UnregisterInstance(pid)

	m := NewModel(ctx, ModelOptions{
		Title:    opts.Title,
		State:    st,
		Config:   cfg,
		Pool:     pool,
		Watcher:  watcher,
		Captions: CaptionSource(cfg.Settings),
		Inflight: thumb.DefaultWorkers(),
		Output:   tuilog.Log.Writer(),
	})

	ioOpts, closeTTY := ttyOpts()
	defer closeTTY()
	progOpts := append(termSizeOpts(cfg.Settings), tea.WithContext(ctx))
	progOpts = append(progOpts, ioOpts...)

	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil && !errors.Is(err, tea.ErrInterrupted) {
		return nil, err
	}
	pm, ok := final.(*Model)
	if !ok || err != nil {
		return nil, nil
	}
	if err := pm.SaveSettings(); err != nil {
		tuilog.Log.Warn("Failed to save settings", "error", err)
	}
	return pm.Result(), nil
}

// CaptionSource returns the caption sources configured in s: the CSV
// index file and the caption database.
func CaptionSource(s config.Settings) search.Source {
	var srcs search.Sources
	if s.IndexFile != "" {
		srcs = append(srcs, search.CSVSource{Path: s.IndexFile})
	}
	if s.IndexDB != "" {
		srcs = append(srcs, index.ReadOnlySource{Path: s.IndexDB})
	}
	if len(srcs) == 0 {
		return nil
	}
	return srcs
}

// termSizeOpts reports the terminal size up front so the first frame is
// laid out correctly. window_size is the fallback when no descriptor is
// a terminal.
func termSizeOpts(s config.Settings) []tea.ProgramOption {
	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stdin.Fd()), int(os.Stderr.Fd())} {
		if term.IsTerminal(fd) {
			w, h, err := term.GetSize(fd)
			if err == nil && w > 0 && h > 0 {
				return []tea.ProgramOption{tea.WithWindowSize(w, h)}
			}
		}
	}
	if w, h, ok := s.WindowCells(); ok {
		return []tea.ProgramOption{tea.WithWindowSize(w, h)}
	}
	return nil
}

// ttyOpts draws on the controlling terminal when stdout is not one, so
// stdout carries only the result.
func ttyOpts() ([]tea.ProgramOption, func()) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, func() {}
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return []tea.ProgramOption{tea.WithOutput(os.Stderr)}, func() {}
	}
	return []tea.ProgramOption{tea.WithInput(tty), tea.WithOutput(tty)}, func() { tty.Close() }
}
