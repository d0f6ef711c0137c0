package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/portal"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

var (
	portalConfigPath string
	portalHTTP       string
	portalReplace    bool
	portalQuiet      bool
)

var portalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Run the xdg-desktop-portal backend",
	Long: `Serve org.freedesktop.impl.portal.FileChooser on the session bus so
applications using xdg-desktop-portal get pikeru as their file dialog.

When [indexer] enable is set in the portal config, the caption indexer
runs too and org.freedesktop.impl.portal.SearchIndexer is exported.

The portal config is read from xdg-desktop-portal-pikeru/<desktop> or
xdg-desktop-portal-pikeru/config under $XDG_CONFIG_HOME, ~/.config and
/etc/xdg, first match wins.

Examples:
  pikeru portal
  pikeru portal --replace --http localhost:7861
  pikeru portal -v --log-level info`,
	Args: cobra.NoArgs,
	RunE: runPortal,
}

func init() {
	portalCmd.Flags().StringVarP(&portalConfigPath, "config", "c", "", "portal config file (default: search the XDG paths)")
	portalCmd.Flags().StringVar(&portalHTTP, "http", "", "serve status, search and metrics on this address")
	portalCmd.Flags().BoolVarP(&portalReplace, "replace", "r", false, "replace a running portal backend")
	portalCmd.Flags().BoolVarP(&portalQuiet, "quiet", "q", false, "suppress HTTP request logging")
}

func runPortal(cmd *cobra.Command, args []string) error {
	if logPath == "" && !verbose {
		tuilog.InitWriter(os.Stderr)
	}
	pcfg, err := config.LoadPortal(portalConfigPath)
	switch {
	case errors.Is(err, config.ErrNoPortalConfig):
		tuilog.Log.Warn("No portal config found, using defaults", "searched", config.PortalSearchPaths())
	case err != nil:
		return err
	}
	if !cmd.Flags().Changed("log-level") && pcfg.LogLevel != "" {
		tuilog.Log.SetLevel(tuilog.ParseLevel(pcfg.LogLevel))
	}

	cfg := loadConfig()
	tuilog.Log.Info("Starting portal", "picker", pcfg.FilePicker.Cmd, "indexer", pcfg.Indexer.Enable, "http", portalHTTP)
	err = portal.RunDaemon(cmd.Context(), portal.DaemonOptions{
		Config:     pcfg,
		DBPath:     cfg.Settings.IndexDB,
		CaptionURL: cfg.Settings.CaptionURL,
		HTTPAddr:   portalHTTP,
		Replace:    portalReplace,
		Quiet:      portalQuiet,
	})
	if errors.Is(err, portal.ErrNameTaken) {
		return fmt.Errorf("%w; use --replace to take over", err)
	}
	return err
}
