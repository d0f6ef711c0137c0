// Command gen-themes downloads iTerm2 color schemes and converts them into
// the picker's built-in theme files.
//
// Usage:
//
//	go run ./cmd/gen-themes [-out internal/tui/theme/themes] [name...]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/wethinkt/go-pikeru/internal/tui/theme"
)

type scheme struct {
	iterm string // file name in the iTerm2-Color-Schemes repo, without .itermcolors
	name  string // theme name
}

var curated = []scheme{
	{"Dracula", "dracula"},
	{"Nord", "nord"},
	{"Gruvbox Dark", "gruvbox-dark"},
	{"Gruvbox Light", "gruvbox-light"},
	{"Catppuccin Mocha", "catppuccin-mocha"},
	{"Catppuccin Latte", "catppuccin-latte"},
	{"Solarized Dark Patched", "solarized-dark"},
	{"iTerm2 Solarized Light", "solarized-light"},
	{"TokyoNight", "tokyo-night"},
}

const baseURL = "https://raw.githubusercontent.com/mbadolato/iTerm2-Color-Schemes/master/schemes/"

func main() {
	outDir := flag.String("out", filepath.Join("internal", "tui", "theme", "themes"), "directory for the generated JSON")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}
	failed := 0
	for _, s := range curated {
		if flag.NArg() > 0 && !slices.Contains(flag.Args(), s.name) {
			continue
		}
		fmt.Printf("%-20s ", s.name)
		if err := generate(client, s, *outDir); err != nil {
			fmt.Println(err)
			failed++
			continue
		}
		fmt.Println("OK")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func generate(client *http.Client, s scheme, outDir string) error {
	resp, err := client.Get(baseURL + url.PathEscape(s.iterm) + ".itermcolors")
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	t, err := theme.ImportIterm(resp.Body, s.name)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, s.name+".json"), append(data, '\n'), 0644)
}
