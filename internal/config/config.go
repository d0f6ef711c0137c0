// Package config provides configuration management for pikeru.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Thumbnail size bounds accepted by the picker.
const (
	MinThumbSize     = 50
	MaxThumbSize     = 500
	DefaultThumbSize = 160
)

// Config holds the picker configuration stored in pikeru.toml.
type Config struct {
	Settings  Settings   `toml:"settings"`
	Bookmarks []Bookmark `toml:"bookmarks"`
	Commands  []Command  `toml:"commands"`

	// NeedsUpdate is set by Load when keys were missing from disk.
	NeedsUpdate bool `toml:"-"`
	path        string
}

// Settings is the [settings] table.
type Settings struct {
	ThumbnailSize int     `toml:"thumbnail_size"`
	IndexFile     string  `toml:"index_file"`  // CSV caption index (path,caption)
	IndexDB       string  `toml:"index_db"`    // DuckDB caption database
	DPIScale      float64 `toml:"dpi_scale"`   // Multiplier for window_size
	Theme         string  `toml:"theme"`       // "dark", "light" or a user theme name
	CacheDir      string  `toml:"cache_dir"`   // Thumbnail cache directory
	WindowSize    string  `toml:"window_size"` // WIDTHxHEIGHT, used when the terminal size is unknown
	SortBy        string  `toml:"sort_by"`     // name_asc, name_desc, time_desc, time_asc
	ShowHidden    bool    `toml:"show_hidden"` // List dotfiles
	Language      string  `toml:"language"`    // UI language (BCP 47)
	CaptionURL    string  `toml:"caption_url"` // Captioning service base URL
}

// Bookmark is a labelled directory shortcut.
type Bookmark struct {
	Label string `toml:"label"`
	Path  string `toml:"path"`
}

// Command is a shell template run from the command menu.
// See picker.Expand for the placeholders.
type Command struct {
	Label    string `toml:"label"`
	Template string `toml:"template"`
}

// settingKeys lists every key of [settings]; a missing one triggers a rewrite.
var settingKeys = []string{
	"thumbnail_size", "index_file", "index_db", "dpi_scale", "theme",
	"cache_dir", "window_size", "sort_by", "show_hidden", "language", "caption_url",
}

// Dir returns the pikeru configuration directory.
func Dir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "pikeru"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pikeru"), nil
}

// Path returns the path to the main config file.
func Path() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "pikeru.toml"), nil
}

// CacheDir returns the default thumbnail cache directory.
func CacheDir() string {
	if d := os.Getenv("XDG_CACHE_HOME"); d != "" {
		return filepath.Join(d, "pikeru")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "pikeru")
	}
	return filepath.Join(home, ".cache", "pikeru")
}

// Load reads the config from the default path, writing a default one
// when it does not exist or has missing keys.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p)
}

// LoadFile reads the config at path. A missing file yields defaults,
// which are persisted. Missing keys are filled with defaults and the file
// is rewritten as a whole.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	cfg.path = path

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		cfg.NeedsUpdate = true
		if saveErr := cfg.Save(); saveErr != nil {
			return cfg, nil // return defaults even if save fails
		}
		return cfg, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, k := range settingKeys {
		if !md.IsDefined("settings", k) {
			cfg.NeedsUpdate = true
		}
	}
	if !md.IsDefined("bookmarks") || !md.IsDefined("commands") {
		cfg.NeedsUpdate = true
	}

	cfg.normalize()
	if cfg.NeedsUpdate {
		if err := cfg.Save(); err != nil {
			return cfg, fmt.Errorf("update %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Default returns a configuration with all defaults set.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Settings: Settings{
			ThumbnailSize: DefaultThumbSize,
			IndexFile:     "/tmp/captions.csv",
			IndexDB:       filepath.Join(CacheDir(), "index.duckdb"),
			DPIScale:      1,
			Theme:         "dark",
			CacheDir:      CacheDir(),
			WindowSize:    "1400x800",
			SortBy:        "name_asc",
			CaptionURL:    "http://127.0.0.1:7860",
		},
		Bookmarks: []Bookmark{
			{Label: "Home", Path: home},
			{Label: "Documents", Path: filepath.Join(home, "Documents")},
			{Label: "Pictures", Path: filepath.Join(home, "Pictures")},
			{Label: "Downloads", Path: filepath.Join(home, "Downloads")},
		},
		Commands: []Command{
			{Label: "Open", Template: "xdg-open [path]"},
			{Label: "Convert to png", Template: "convert [path] [part].png"},
		},
	}
}

func (c *Config) normalize() {
	s := &c.Settings
	s.ThumbnailSize = ClampThumbSize(s.ThumbnailSize)
	if s.Theme == "" {
		s.Theme = "dark"
	}
	if s.DPIScale <= 0 {
		s.DPIScale = 1
	}
	s.CacheDir = ExpandHome(s.CacheDir)
	s.IndexFile = ExpandHome(s.IndexFile)
	s.IndexDB = ExpandHome(s.IndexDB)
	for i := range c.Bookmarks {
		c.Bookmarks[i].Path = ExpandHome(c.Bookmarks[i].Path)
	}
}

// ClampThumbSize bounds n to the supported thumbnail range.
func ClampThumbSize(n int) int {
	if n < MinThumbSize {
		return MinThumbSize
	}
	if n > MaxThumbSize {
		return MaxThumbSize
	}
	return n
}

// WindowCells parses WindowSize scaled by DPIScale into terminal cells,
// assuming 8x16 pixel cells. ok is false when the value is malformed.
func (s Settings) WindowCells() (w, h int, ok bool) {
	ws, hs, found := strings.Cut(s.WindowSize, "x")
	if !found {
		return 0, 0, false
	}
	wf, err1 := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	hf, err2 := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err1 != nil || err2 != nil || wf <= 0 || hf <= 0 {
		return 0, 0, false
	}
	return int(wf * s.DPIScale / 8), int(hf * s.DPIScale / 16), true
}

// FilePath returns the file this config was loaded from.
func (c Config) FilePath() string {
	return c.path
}

// Save writes the whole configuration back to disk.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		c.path = p
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(commandsHelp); err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	c.NeedsUpdate = false
	return nil
}

const commandsHelp = `# Commands from the command menu substitute these values from each
# selected file before running. Every value except [ext] is quoted.
#   [path] full file path
#   [name] filename without directory
#   [dir]  directory without trailing slash
#   [part] filename without directory or extension
#   [ext]  file extension, including the period

`

// AddBookmark appends a bookmark for dir, labelled with its basename,
// and rewrites the config file. Duplicate paths are ignored.
func (c *Config) AddBookmark(dir string) (Bookmark, error) {
	dir = filepath.Clean(dir)
	for _, b := range c.Bookmarks {
		if b.Path == dir {
			return b, nil
		}
	}
	label := filepath.Base(dir)
	if label == string(filepath.Separator) || label == "." {
		label = dir
	}
	bm := Bookmark{Label: label, Path: dir}
	c.Bookmarks = append(c.Bookmarks, bm)
	return bm, c.Save()
}

// RemoveBookmark drops the bookmark at index i and rewrites the config.
func (c *Config) RemoveBookmark(i int) error {
	if i < 0 || i >= len(c.Bookmarks) {
		return fmt.Errorf("bookmark %d out of range", i)
	}
	c.Bookmarks = append(c.Bookmarks[:i], c.Bookmarks[i+1:]...)
	return c.Save()
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
