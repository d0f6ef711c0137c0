package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/thumb"
	"github.com/wethinkt/go-pikeru/internal/tui"
)

var (
	cacheOlderThan time.Duration
	cacheYes       bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clean the thumbnail cache",
	Long: `Inspect and clean the thumbnail cache in cache_dir.

Thumbnails are regenerated whenever their source file changes, so
cleaning the cache is always safe; it only costs time on the next visit.

Examples:
  pikeru cache stats
  pikeru cache clean --older-than 720h
  pikeru cache clean --yes`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number and size of cached thumbnails",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete cached thumbnails",
	Args:  cobra.NoArgs,
	RunE:  runCacheClean,
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	cacheCleanCmd.Flags().DurationVar(&cacheOlderThan, "older-than", 0, "only delete thumbnails not refreshed for this long (default: all)")
	cacheCleanCmd.Flags().BoolVarP(&cacheYes, "yes", "y", false, "skip confirmation prompt")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func openCache() (*thumb.Cache, error) {
	cfg := loadConfig()
	c, err := thumb.NewCache(cfg.Settings.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("thumbnail cache: %w", err)
	}
	return c, nil
}

type cacheStats struct {
	Dir    string    `json:"dir"`
	Files  int       `json:"files"`
	Bytes  int64     `json:"bytes"`
	Oldest time.Time `json:"oldest,omitzero"`
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	st, err := c.Stats()
	if err != nil {
		return err
	}
	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(cacheStats{Dir: c.Dir, Files: st.Files, Bytes: st.Bytes, Oldest: st.Oldest})
	}
	fmt.Printf("%s: %d thumbnails, %s", c.Dir, st.Files, fsview.HumanSize(st.Bytes))
	if st.Files > 0 {
		fmt.Printf(", oldest %s", i18n.Age(time.Since(st.Oldest)))
	}
	fmt.Println()
	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}

	if !cacheYes {
		if !isTTY() {
			return fmt.Errorf("refusing to clean %s without a terminal; pass --yes", c.Dir)
		}
		prompt := fmt.Sprintf("Delete all thumbnails in %s?", c.Dir)
		if cacheOlderThan > 0 {
			prompt = fmt.Sprintf("Delete thumbnails older than %s in %s?", cacheOlderThan, c.Dir)
		}
		result, err := tui.Confirm(tui.ConfirmOptions{
			Prompt:      prompt,
			Affirmative: "Delete",
			Negative:    "Cancel",
		})
		if err != nil {
			return err
		}
		if result != tui.ConfirmYes {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	n, err := c.Clean(cacheOlderThan)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d thumbnails from %s\n", n, c.Dir)
	return nil
}
