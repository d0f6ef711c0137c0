package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/caption"
	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/index"
	"github.com/wethinkt/go-pikeru/internal/index/db"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
	"github.com/wethinkt/go-pikeru/internal/watch"
)

var (
	indexDB        string
	indexURL       string
	indexWatch     bool
	indexGitignore bool
	indexIgnore    []string
	indexExt       string
)

var indexCmd = &cobra.Command{
	Use:   "index [dirs...]",
	Short: "Fill and maintain the caption database",
	Long: `Caption the images directly inside each directory and store the
captions in the caption database. Files whose caption is newer than the
file are skipped, so running it again only captions what changed.

With --watch the indexer keeps running, re-indexing directories as files
appear and dropping captions of deleted files. It holds off while a
picker is open.

Examples:
  pikeru index ~/Pictures
  pikeru index --gitignore --ignore '*.tmp.png' .
  pikeru index --watch ~/Pictures ~/Downloads
  pikeru index export captions.csv`,
	RunE: runIndex,
}

var indexExportCmd = &cobra.Command{
	Use:   "export <csv>",
	Short: "Write every caption to a CSV file (- for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexExport,
}

var indexImportCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Load captions from a path,caption CSV file (- for stdin)",
	Long: `Load captions from a CSV file with a header line and path,caption rows,
such as the index_file the picker reads. Imported captions take the
file's current mtime so they are not captioned again.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexImport,
}

func init() {
	indexCmd.PersistentFlags().StringVar(&indexDB, "db", "", "caption database (default: index_db from config)")
	indexCmd.Flags().StringVar(&indexURL, "url", "", "captioning service base URL (default: caption_url from config)")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep running and follow directory changes")
	indexCmd.Flags().BoolVar(&indexGitignore, "gitignore", false, "skip files matched by each directory's .gitignore")
	indexCmd.Flags().StringArrayVar(&indexIgnore, "ignore", nil, "gitignore-style pattern of files to skip (repeatable)")
	indexCmd.Flags().StringVar(&indexExt, "ext", config.DefaultPortal().Indexer.Extensions, "comma separated extensions to caption")

	indexCmd.AddCommand(indexExportCmd)
	indexCmd.AddCommand(indexImportCmd)
}

// openStore opens the caption database named by --db or the config.
func openStore(cfg config.Config) (*index.Store, string) {
	path := indexDB
	if path == "" {
		path = cfg.Settings.IndexDB
	}
	if path == "" {
		path = db.DefaultPath()
	}
	path = config.ExpandHome(path)
	return index.NewStore(db.NewLazyPool(path, 30*time.Second)), path
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	dirs, err := absDirs(args)
	if err != nil {
		return err
	}

	url := indexURL
	if url == "" {
		url = cfg.Settings.CaptionURL
	}
	client := caption.NewClient(url, "", "")

	store, path := openStore(cfg)
	defer store.Close()

	opts := index.Options{
		Extensions: config.IndexerConfig{Extensions: indexExt}.ExtensionList(),
	}
	if !indexWatch {
		opts.PickerOpen = func() bool { return false }
	}
	ix := index.NewIndexer(store, client, opts)
	ix.Configure(indexGitignore, indexIgnore)
	ix.Update(dirs)
	tuilog.Log.Info("Indexing", "dirs", dirs, "db", path, "watch", indexWatch)

	ctx := cmd.Context()
	if !indexWatch {
		before, _ := store.Count(ctx)
		if err := ix.RunOnce(ctx); err != nil {
			if errors.Is(err, caption.ErrOffline) {
				return fmt.Errorf("%w at %s", err, client.BaseURL)
			}
			return err
		}
		after, err := store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d director%s into %s (%d captions, %d new)\n",
			len(dirs), plural(len(dirs), "y", "ies"), path, after, after-before)
		return nil
	}
	return watchIndex(ctx, ix, store, dirs)
}

// watchIndex runs the indexer until ctx is cancelled, feeding it the
// directories that change.
func watchIndex(ctx context.Context, ix *index.Indexer, store *index.Store, dirs []string) error {
	pid := os.Getpid()
	if err := config.RegisterInstance(config.Instance{
		Type:      config.InstanceIndexerWatch,
		PID:       pid,
		StartedAt: time.Now(),
	}); err != nil {
		tuilog.Log.Warn("Failed to register indexer instance", "error", err)
	}
	defer config.UnregisterInstance(pid)

	w, err := watch.New(ctx, watch.DefaultQuiet)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	w.SetDirs(dirs)

	errCh := make(chan error, 1)
	go func() { errCh <- ix.Run(ctx) }()

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", strings.Join(dirs, ", "))
	for {
		select {
		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case ev, ok := <-w.Events():
			if !ok {
				return <-errCh
			}
			switch ev.Op {
			case watch.Create:
				ix.Update([]string{filepath.Dir(ev.Path)})
			case watch.Delete:
				if err := store.Delete(ctx, ev.Path); err != nil && !errors.Is(err, index.ErrNoRows) {
					tuilog.Log.Warn("Failed to drop caption", "path", ev.Path, "error", err)
				}
			}
		}
	}
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	store, _ := openStore(loadConfig())
	defer store.Close()

	var w io.Writer = os.Stdout
	if args[0] != "-" {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	n, err := store.ExportCSV(cmd.Context(), w)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if args[0] != "-" {
		fmt.Printf("Exported %d captions to %s\n", n, args[0])
	}
	return nil
}

func runIndexImport(cmd *cobra.Command, args []string) error {
	store, path := openStore(loadConfig())
	defer store.Close()

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	n, err := store.ImportCSV(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("Imported %d captions into %s\n", n, path)
	return nil
}

// absDirs makes args absolute, defaulting to the working directory.
func absDirs(args []string) ([]string, error) {
	if len(args) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		return []string{wd}, nil
	}
	dirs := make([]string, 0, len(args))
	for _, a := range args {
		d, err := filepath.Abs(config.ExpandHome(a))
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(d)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", a)
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func plural(n int, one, other string) string {
	if n == 1 {
		return one
	}
	return other
}
