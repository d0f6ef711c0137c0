package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit pikeru.toml",
	Long: `Show and edit the picker configuration.

The config lives at $XDG_CONFIG_HOME/pikeru/pikeru.toml, or
~/.config/pikeru/pikeru.toml. It is created with defaults on first use.

Examples:
  pikeru config path
  pikeru config show --json
  pikeru config bookmark add ~/Projects
  pikeru config bookmark remove 3`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(p)
		if pp, err := config.FindPortalConfig(); err == nil {
			fmt.Println(pp)
		} else if verbose {
			for _, c := range config.PortalSearchPaths() {
				fmt.Fprintln(os.Stderr, "portal config not at", c)
			}
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage bookmarks",
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks with their numbers",
	Args:  cobra.NoArgs,
	RunE:  runBookmarkList,
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <dir>",
	Short: "Bookmark a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmarkAdd,
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <number>",
	Short: "Remove a bookmark by its number from 'bookmark list'",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmarkRemove,
}

func init() {
	configShowCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(bookmarkCmd)
	bookmarkCmd.AddCommand(bookmarkListCmd)
	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkRemoveCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	fmt.Printf("# %s\n", cfg.FilePath())
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

func runBookmarkList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tLABEL\tPATH")
	for i, b := range cfg.Bookmarks {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, b.Label, b.Path)
	}
	return w.Flush()
}

func runBookmarkAdd(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(config.ExpandHome(args[0]))
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	bm, err := cfg.AddBookmark(dir)
	if err != nil {
		return fmt.Errorf("save bookmark: %w", err)
	}
	fmt.Printf("Bookmarked %s as %q\n", bm.Path, bm.Label)
	return nil
}

func runBookmarkRemove(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bookmark number: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if n < 1 || n > len(cfg.Bookmarks) {
		return fmt.Errorf("no bookmark %d (have %d)", n, len(cfg.Bookmarks))
	}
	bm := cfg.Bookmarks[n-1]
	if err := cfg.RemoveBookmark(n - 1); err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	fmt.Printf("Removed bookmark %q (%s)\n", bm.Label, bm.Path)
	return nil
}
