// Package theme provides theming support for the picker.
package theme

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wethinkt/go-pikeru/internal/config"
)

//go:embed themes/*.json
var embeddedThemes embed.FS

// Style defines colors and text attributes for a UI element.
type Style struct {
	Fg        string `json:"fg,omitempty"`
	Bg        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Theme defines all styles used by the picker.
type Theme struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// UI chrome
	Accent         string `json:"accent,omitempty"`
	BorderActive   string `json:"border_active,omitempty"`
	BorderInactive string `json:"border_inactive,omitempty"`

	TextPrimary   Style `json:"text_primary,omitempty"`
	TextSecondary Style `json:"text_secondary,omitempty"`
	TextMuted     Style `json:"text_muted,omitempty"`

	// Grid tiles
	Tile         Style `json:"tile,omitempty"`
	TileSelected Style `json:"tile_selected,omitempty"`
	TileCursor   Style `json:"tile_cursor,omitempty"`
	DirIcon      Style `json:"dir_icon,omitempty"`
	FileIcon     Style `json:"file_icon,omitempty"`

	// Bars and panels
	Bookmark       Style `json:"bookmark,omitempty"`
	BookmarkTarget Style `json:"bookmark_target,omitempty"`
	Button         Style `json:"button,omitempty"`
	ButtonActive   Style `json:"button_active,omitempty"`
	Error          Style `json:"error,omitempty"`

	// Confirm dialog
	ConfirmPrompt     Style `json:"confirm_prompt,omitempty"`
	ConfirmSelected   Style `json:"confirm_selected,omitempty"`
	ConfirmUnselected Style `json:"confirm_unselected,omitempty"`
}

// ThemeMeta holds metadata about an available theme.
type ThemeMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`     // File path (empty for embedded)
	Embedded    bool   `json:"embedded"` // True if this is a built-in theme
}

// DefaultTheme returns the embedded dark theme.
func DefaultTheme() Theme {
	theme, _ := LoadEmbedded("dark")
	return theme
}

// LoadEmbedded loads a theme from the embedded themes.
func LoadEmbedded(name string) (Theme, error) {
	data, err := embeddedThemes.ReadFile("themes/" + name + ".json")
	if err != nil {
		return Theme{}, err
	}

	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// ListEmbedded returns the names of all embedded themes.
func ListEmbedded() []string {
	entries, err := embeddedThemes.ReadDir("themes")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names
}

// ThemesDir returns the user themes directory.
func ThemesDir() (string, error) {
	configDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "themes"), nil
}

// ListAvailable returns embedded themes followed by user themes.
func ListAvailable() ([]ThemeMeta, error) {
	var themes []ThemeMeta
	for _, name := range ListEmbedded() {
		theme, err := LoadEmbedded(name)
		if err != nil {
			continue
		}
		themes = append(themes, ThemeMeta{Name: name, Description: theme.Description, Embedded: true})
	}

	themesDir, err := ThemesDir()
	if err != nil {
		return themes, nil
	}
	entries, err := os.ReadDir(themesDir)
	if err != nil {
		return themes, nil
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(themesDir, entry.Name())
		description := "User theme"
		if data, err := os.ReadFile(path); err == nil {
			var t Theme
			if json.Unmarshal(data, &t) == nil && t.Description != "" {
				description = t.Description
			}
		}
		themes = append(themes, ThemeMeta{
			Name:        strings.TrimSuffix(entry.Name(), ".json"),
			Description: description,
			Path:        path,
		})
	}
	return themes, nil
}

// LoadByName loads a theme by name, checking user themes first, then
// embedded ones. Fields missing from a user theme keep the dark defaults.
func LoadByName(name string) (Theme, error) {
	if themesDir, err := ThemesDir(); err == nil {
		if data, err := os.ReadFile(filepath.Join(themesDir, name+".json")); err == nil {
			theme := DefaultTheme()
			if err := json.Unmarshal(data, &theme); err == nil {
				theme.Name = name
				return theme, nil
			}
		}
	}
	return LoadEmbedded(name)
}

// Load loads the configured theme, falling back to dark.
func Load() (Theme, error) {
	cfg, err := config.Load()
	if err != nil {
		return DefaultTheme(), err
	}
	theme, err := LoadByName(cfg.Settings.Theme)
	if err != nil {
		return DefaultTheme(), err
	}
	return theme, nil
}

// Save writes a theme to the user themes directory.
func Save(name string, theme Theme) error {
	themesDir, err := ThemesDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(themesDir, 0755); err != nil {
		return err
	}

	theme.Name = name
	data, err := json.MarshalIndent(theme, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(themesDir, name+".json"), data, 0644)
}

// SetActive sets the active theme in the config.
func SetActive(name string) error {
	if _, err := LoadByName(name); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Settings.Theme = name
	return cfg.Save()
}

// ActiveName returns the name of the configured theme.
func ActiveName() string {
	cfg, _ := config.Load()
	return cfg.Settings.Theme
}

var (
	mu      sync.Mutex
	current *Theme
)

// Current returns the current theme, loading it if necessary.
func Current() Theme {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		theme, _ := Load()
		current = &theme
	}
	return *current
}

// Use makes t the current theme without touching the config.
func Use(t Theme) {
	mu.Lock()
	current = &t
	mu.Unlock()
}

// Reload forces a reload of the theme from disk.
func Reload() (Theme, error) {
	theme, err := Load()
	Use(theme)
	return theme, err
}

// GetAccent returns the accent color, with fallback.
func (t Theme) GetAccent() string {
	if t.Accent != "" {
		return t.Accent
	}
	return "#d08770"
}

// GetBorderActive returns the active border color.
func (t Theme) GetBorderActive() string {
	if t.BorderActive != "" {
		return t.BorderActive
	}
	return t.GetAccent()
}

// GetBorderInactive returns the inactive border color.
func (t Theme) GetBorderInactive() string {
	if t.BorderInactive != "" {
		return t.BorderInactive
	}
	return "#444444"
}
