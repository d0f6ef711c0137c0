package portal

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wethinkt/go-pikeru/internal/caption"
	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/index"
	"github.com/wethinkt/go-pikeru/internal/index/db"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// dbIdleTimeout is how long the daemon keeps the caption database open
// after its last write.
const dbIdleTimeout = 30 * time.Second

// DaemonOptions configure RunDaemon.
type DaemonOptions struct {
	Config     config.PortalConfig
	DBPath     string // caption database, db.DefaultPath when empty
	CaptionURL string // captioning service used when [indexer] cmd is empty
	HTTPAddr   string // status server address, disabled when empty
	Replace    bool
	Quiet      bool // no HTTP access log
}

// RunDaemon serves the portal until ctx is cancelled or the bus name is
// lost. With [indexer] enable it also runs the caption indexer and
// exports the SearchIndexer interface.
func RunDaemon(ctx context.Context, opts DaemonOptions) error {
	cfg := opts.Config

	var (
		ix      *index.Indexer
		store   *index.Store
		pool    *db.LazyPool
		indexer *SearchIndexer
		hook    PickerHook
	)
	if cfg.Indexer.Enable {
		path := opts.DBPath
		if path == "" {
			path = db.DefaultPath()
		}
		pool = db.NewLazyPool(path, dbIdleTimeout)
		store = index.NewStore(pool)
		defer store.Close()

		ix = index.NewIndexer(store, NewCaptioner(cfg.Indexer, opts.CaptionURL), index.Options{
			Extensions: cfg.Indexer.ExtensionList(),
		})
		indexer = NewSearchIndexer(ix)
		hook = ix
		tuilog.Log.Info("Indexer enabled", "db", path, "extensions", cfg.Indexer.Extensions)
	}

	chooser := NewFileChooser(cfg.FilePicker, hook)
	if pool != nil {
		chooser.BeforeLaunch = func() { pool.CloseIdle() }
	}
	svc := NewService(chooser, indexer)
	svc.Replace = opts.Replace

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Serve(ctx) })
	if ix != nil {
		g.Go(func() error {
			if err := ix.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if opts.HTTPAddr != "" {
		var (
			status   StatusSource
			captions CaptionIndex
		)
		if ix != nil {
			status, captions = ix, store
		}
		srv := NewServer(opts.HTTPAddr, status, captions, opts.Quiet)
		g.Go(func() error { return srv.ListenAndServe(ctx) })
	}
	return g.Wait()
}

// NewCaptioner returns the captioner configured in [indexer]: the shell
// command when set, the HTTP client at url otherwise.
func NewCaptioner(cfg config.IndexerConfig, url string) caption.Captioner {
	if cfg.Cmd != "" {
		return caption.CommandCaptioner{Cmd: cfg.Cmd, Check: cfg.Check}
	}
	return caption.NewClient(url, "", "")
}
