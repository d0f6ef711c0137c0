// xdg-desktop-portal-pikeru is the standalone portal backend. It serves the
// same daemon as "pikeru portal" with the flag set that portal service files
// expect.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/portal"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
	"github.com/wethinkt/go-pikeru/internal/version"
)

const name = "xdg-desktop-portal-pikeru"

func main() {
	var (
		configPath  = flag.String("c", "", "portal config file")
		level       = flag.String("l", "", "log level: debug, info, warn, error")
		logPath     = flag.String("log", "", "log to this file instead of stderr")
		replace     = flag.Bool("r", false, "replace a running portal backend")
		httpAddr    = flag.String("http", "", "serve status, search and metrics on this address")
		quiet       = flag.Bool("q", false, "suppress HTTP request logging")
		showVersion = flag.Bool("version", false, "print the version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", name)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(name))
		return
	}
	if err := run(*configPath, *level, *logPath, *httpAddr, *replace, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
}

func run(configPath, level, logPath, httpAddr string, replace, quiet bool) error {
	if logPath != "" {
		if err := tuilog.Init(logPath); err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer tuilog.Log.Close()
	} else {
		tuilog.InitWriter(os.Stderr)
	}

	pcfg, err := config.LoadPortal(configPath)
	switch {
	case errors.Is(err, config.ErrNoPortalConfig):
		tuilog.Log.Warn("No portal config found, using defaults", "searched", config.PortalSearchPaths())
	case err != nil:
		return err
	}
	if level == "" {
		level = pcfg.LogLevel
	}
	tuilog.Log.SetLevel(tuilog.ParseLevel(level))

	cfg, err := config.Load()
	if err != nil {
		tuilog.Log.Warn("Could not load picker config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tuilog.Log.Info("Starting portal", "version", version.Get(), "indexer", pcfg.Indexer.Enable, "http", httpAddr)
	err = portal.RunDaemon(ctx, portal.DaemonOptions{
		Config:     pcfg,
		DBPath:     cfg.Settings.IndexDB,
		CaptionURL: cfg.Settings.CaptionURL,
		HTTPAddr:   httpAddr,
		Replace:    replace,
		Quiet:      quiet,
	})
	if errors.Is(err, portal.ErrNameTaken) {
		return fmt.Errorf("%w; run with -r to take over", err)
	}
	return err
}
