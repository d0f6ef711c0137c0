// Package cmd provides the CLI commands for pikeru.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/picker"
	"github.com/wethinkt/go-pikeru/internal/tui"
	"github.com/wethinkt/go-pikeru/internal/tui/theme"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// global flags
var (
	profileFile *os.File // held open for profiling
	logPath     string
	logLevel    string
	verbose     bool
	outputJSON  bool
)

// picker flags
var (
	pickTitle string
	pickMode  string
	pickPath  string
)

// rootCmd is the root command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "pikeru",
	Short: "A file picker with a thumbnail grid and caption search",
	Long: `pikeru shows a directory as a grid of thumbnails and prints the
chosen paths to stdout, one per line. A cancelled picker prints nothing.

Running without a subcommand launches the picker.

Commands:
  caption   Caption images with the captioning service
  index     Fill and maintain the caption database
  search    Fuzzy-search captions and paths
  portal    Run the xdg-desktop-portal backend
  config    Show and edit pikeru.toml
  cache     Inspect and clean the thumbnail cache
  theme     List and switch color themes

Examples:
  pikeru                          # Pick files in the current directory
  pikeru -m dir -p ~/Pictures     # Pick a directory
  pikeru -m save -p ~/out.png     # Save dialog with a suggested name`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Start pprof profiling if PIKERU_PROFILE is set
		if profilePath := os.Getenv("PIKERU_PROFILE"); profilePath != "" {
			f, err := os.Create(profilePath)
			if err != nil {
				return fmt.Errorf("create profile file: %w", err)
			}
			profileFile = f

			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				profileFile = nil
				return fmt.Errorf("start CPU profile: %w", err)
			}
		}
		return initLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if profileFile != nil {
			pprof.StopCPUProfile()
			profileFile.Close()
			profileFile = nil
		}
		return tuilog.Log.Close()
	},
	RunE:         runPicker,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr when no --log file is given")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write debug log to file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug", "minimum log level (debug|info|warn|error)")

	rootCmd.Flags().StringVarP(&pickTitle, "title", "t", "", "window title")
	rootCmd.Flags().StringVarP(&pickMode, "mode", "m", "files", "picker mode (file|files|save|dir)")
	rootCmd.Flags().StringVarP(&pickPath, "path", "p", "", "start directory, or suggested file in save mode (default $PWD)")

	rootCmd.AddCommand(captionCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(portalCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(versionCmd)
}

// initLogging opens --log, or stderr with --verbose for commands that do
// not own the terminal.
func initLogging() error {
	switch {
	case logPath != "":
		if err := tuilog.Init(logPath); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	case verbose:
		tuilog.InitWriter(os.Stderr)
	}
	tuilog.Log.SetLevel(tuilog.ParseLevel(logLevel))
	return nil
}

// loadConfig reads pikeru.toml and applies its language and theme.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		tuilog.Log.Warn("Failed to load config, using defaults", "error", err)
	}
	i18n.Init(i18n.ResolveLocale(cfg.Settings.Language))
	if t, err := theme.LoadByName(cfg.Settings.Theme); err == nil {
		theme.Use(t)
	} else {
		tuilog.Log.Warn("Unknown theme", "theme", cfg.Settings.Theme, "error", err)
	}
	return cfg
}

func runPicker(cmd *cobra.Command, args []string) error {
	if verbose && logPath == "" {
		// stderr is the picker's screen.
		tuilog.InitWriter(nil)
	}
	mode, err := picker.ParseMode(pickMode)
	if err != nil {
		return err
	}
	opts, err := pickerOptions(mode, pickPath)
	if err != nil {
		return err
	}
	opts.Title = pickTitle
	cfg := loadConfig()
	opts.Config = &cfg

	tuilog.Log.Info("Starting picker", "mode", mode, "dirs", opts.Dirs, "save_filename", opts.SaveFilename)
	paths, err := tui.Run(cmd.Context(), opts)
	tuilog.Log.Info("Picker exited", "selected", len(paths), "error", err)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

// pickerOptions resolves the start directory. In save mode a path that
// is not a directory names the file to save.
func pickerOptions(mode picker.Mode, path string) (tui.Options, error) {
	opts := tui.Options{Mode: mode}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return opts, fmt.Errorf("working directory: %w", err)
		}
		path = wd
	}
	path, err := filepath.Abs(config.ExpandHome(path))
	if err != nil {
		return opts, err
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		opts.Dirs = []string{path}
	case mode == picker.ModeSave && (err == nil || errors.Is(err, os.ErrNotExist)):
		opts.Dirs = []string{filepath.Dir(path)}
		opts.SaveFilename = filepath.Base(path)
	case err != nil:
		return opts, fmt.Errorf("start path: %w", err)
	default:
		opts.Dirs = []string{filepath.Dir(path)}
	}
	return opts, nil
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) || term.IsTerminal(int(os.Stderr.Fd()))
}
