package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrNoPortalConfig is returned when no portal config file can be found.
var ErrNoPortalConfig = errors.New("no portal config file found")

// PortalConfig configures the xdg-desktop-portal backend.
type PortalConfig struct {
	LogLevel   string           `toml:"log_level"`
	FilePicker FilePickerConfig `toml:"filepicker"`
	Indexer    IndexerConfig    `toml:"indexer"`
}

// FilePickerConfig is the [filepicker] table.
type FilePickerConfig struct {
	Cmd            string `toml:"cmd"`              // Picker launcher, called as: cmd multi dir save path
	DefaultSaveDir string `toml:"default_save_dir"` // Used when SaveFile has no current_folder
	PostprocessDir string `toml:"postprocess_dir"`
	Postprocessor  string `toml:"postprocessor"`
}

// IndexerConfig is the [indexer] table.
type IndexerConfig struct {
	Cmd        string `toml:"cmd"`        // Captioning command, called with the quoted image path
	Check      string `toml:"check"`      // Exits 0 when the captioning service is online
	Extensions string `toml:"extensions"` // Comma separated, without dots
	Enable     bool   `toml:"enable"`
}

// ExtensionList splits Extensions into lowercase names.
func (c IndexerConfig) ExtensionList() []string {
	var exts []string
	for _, e := range strings.Split(c.Extensions, ",") {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

// DefaultPortal returns the portal defaults.
func DefaultPortal() PortalConfig {
	home, _ := os.UserHomeDir()
	cmd := FindPickerWrapper()
	return PortalConfig{
		LogLevel: "info",
		FilePicker: FilePickerConfig{
			Cmd:            cmd,
			DefaultSaveDir: filepath.Join(home, "Downloads"),
			PostprocessDir: "/tmp/pk_postprocess",
		},
		Indexer: IndexerConfig{
			Extensions: "png,jpg,jpeg,webp,gif,bmp,tiff",
		},
	}
}

// PortalSearchPaths lists candidate portal config files in priority order:
// for each of $XDG_CONFIG_HOME, ~/.config and $SYSCONFDIR/xdg, one file per
// $XDG_CURRENT_DESKTOP entry followed by "config".
func PortalSearchPaths() []string {
	home, _ := os.UserHomeDir()
	sysconf := os.Getenv("SYSCONFDIR")
	if sysconf == "" {
		sysconf = "/etc"
	}
	desktops := os.Getenv("XDG_CURRENT_DESKTOP")
	if desktops == "" {
		desktops = "Gnome"
	}
	names := append(strings.Split(desktops, ":"), "config")

	var roots []string
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		roots = append(roots, x)
	}
	roots = append(roots, filepath.Join(home, ".config"), filepath.Join(sysconf, "xdg"))

	var paths []string
	for _, root := range roots {
		for _, name := range names {
			if name == "" {
				continue
			}
			paths = append(paths, filepath.Join(root, "xdg-desktop-portal-pikeru", name))
		}
	}
	return paths
}

// FindPortalConfig returns the first existing portal config file.
func FindPortalConfig() (string, error) {
	for _, p := range PortalSearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", ErrNoPortalConfig
}

// LoadPortal reads the portal config at path, or searches for one when
// path is empty. Missing files yield defaults alongside ErrNoPortalConfig.
func LoadPortal(path string) (PortalConfig, error) {
	cfg := DefaultPortal()
	if path == "" {
		p, err := FindPortalConfig()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	fp := &cfg.FilePicker
	fp.Cmd = ExpandHome(fp.Cmd)
	fp.DefaultSaveDir = ExpandHome(fp.DefaultSaveDir)
	fp.PostprocessDir = ExpandHome(fp.PostprocessDir)
	fp.Postprocessor = ExpandHome(fp.Postprocessor)
	cfg.Indexer.Cmd = ExpandHome(cfg.Indexer.Cmd)
	cfg.Indexer.Check = ExpandHome(cfg.Indexer.Check)
	return cfg, nil
}
