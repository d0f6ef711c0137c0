package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/index"
	"github.com/wethinkt/go-pikeru/internal/search"
)

var (
	searchDirs []string
	searchDB   string
	searchCSV  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search captions and paths",
	Long: `Match query against the stored captions and file paths, the way the
picker's search bar does, and print the hits best first.

Captions come from the caption database, or from a CSV index with --csv.

Examples:
  pikeru search "red car"
  pikeru search --dir ~/Pictures beach
  pikeru search --csv /tmp/captions.csv dog`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringArrayVar(&searchDirs, "dir", nil, "only search files directly inside this directory (repeatable)")
	searchCmd.Flags().StringVar(&searchDB, "db", "", "caption database (default: index_db from config)")
	searchCmd.Flags().StringVar(&searchCSV, "csv", "", "search a path,caption CSV file instead of the database")
	searchCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagsMutuallyExclusive("db", "csv")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	dirs, err := absDirs(searchDirs)
	if err != nil {
		return err
	}
	if len(searchDirs) == 0 {
		dirs = nil
	}

	var hits []index.Hit
	if searchCSV != "" {
		hits, err = searchCSVFile(cmd, config.ExpandHome(searchCSV), args[0], dirs)
	} else {
		path := searchDB
		if path == "" {
			path = cfg.Settings.IndexDB
		}
		var store *index.Store
		store, err = index.OpenReadOnly(config.ExpandHome(path))
		if err != nil {
			return fmt.Errorf("open caption database: %w", err)
		}
		defer store.Close()
		hits, err = store.Search(cmd.Context(), args[0], dirs)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		if hits == nil {
			hits = []index.Hit{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Fprintln(os.Stderr, "No matches.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tPATH\tCAPTION")
	for _, h := range hits {
		fmt.Fprintf(w, "%d\t%s\t%s\n", h.Score, h.Path, h.Caption)
	}
	return w.Flush()
}

// searchCSVFile runs the picker's matcher over the captions of a CSV index.
func searchCSVFile(cmd *cobra.Command, path, query string, dirs []string) ([]index.Hit, error) {
	captions, err := search.CSVSource{Path: path}.Captions(cmd.Context(), dirs)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(captions))
	for p := range captions {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	cands := make([]search.Candidate, len(paths))
	for i, p := range paths {
		cands[i] = search.Candidate{Index: i, Path: p}
	}
	matches := search.Search(query, cands, captions)
	hits := make([]index.Hit, len(matches))
	for i, m := range matches {
		p := paths[m.Index]
		hits[i] = index.Hit{Path: p, Caption: captions[p], Score: m.Score}
	}
	return hits, nil
}
