package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/tui"
	"github.com/wethinkt/go-pikeru/internal/tui/theme"
)

// Theme command
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "List and switch color themes",
	Long: `List and switch the picker's color themes.

The theme controls colors for tiles, the selection highlight, bookmarks,
buttons and dialogs. Built-in themes are dark and light; user themes are
JSON files in the themes/ directory next to pikeru.toml.

Examples:
  pikeru theme                       # Show the active theme
  pikeru theme list                  # List all available themes
  pikeru theme set light             # Switch to a theme
  pikeru theme browse                # Pick a theme with a live preview
  pikeru theme import f.itermcolors  # Import an iTerm2 color scheme`,
	Args: cobra.MaximumNArgs(1),
	RunE: runThemeShow,
}

var themeShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Display a theme with styled samples",
	Long: `Display a theme with styled samples.

If no name is provided, shows the active theme.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runThemeShow,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	Long:  `List all built-in and user themes. The active theme is marked with *.`,
	Args:  cobra.NoArgs,
	RunE:  runThemeList,
}

var themeSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Set the active theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeSet,
}

var themeBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Pick a theme interactively",
	Long:  `Browse the available themes with a sample picker drawn in each and activate the chosen one.`,
	Args:  cobra.NoArgs,
	RunE:  runThemeBrowse,
}

var themeImportName string

var themeImportCmd = &cobra.Command{
	Use:   "import <file.itermcolors>",
	Short: "Import an iTerm2 color scheme as a theme",
	Long: `Import an iTerm2 .itermcolors file and convert it to a pikeru theme.

The imported theme is saved to the user themes directory and can be
activated with 'pikeru theme set'.

Examples:
  pikeru theme import ~/Downloads/Dracula.itermcolors
  pikeru theme import scheme.itermcolors --name my-theme`,
	Args: cobra.ExactArgs(1),
	RunE: runThemeImport,
}

func init() {
	themeCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
	themeImportCmd.Flags().StringVar(&themeImportName, "name", "", "theme name (default: derived from the file name)")

	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeBrowseCmd)
	themeCmd.AddCommand(themeImportCmd)
}

// runThemeShow displays a theme by name, or the active theme if no name given.
func runThemeShow(cmd *cobra.Command, args []string) error {
	var t theme.Theme
	var err error

	if len(args) > 0 {
		t, err = theme.LoadByName(args[0])
		if err != nil {
			return fmt.Errorf("theme %q not found", args[0])
		}
	} else {
		t, err = theme.Load()
		if err != nil {
			t = theme.DefaultTheme()
		}
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	}
	return showTheme(os.Stdout, t)
}

// swatch is one theme color shown with a sample.
type swatch struct {
	name     string
	category string
	style    theme.Style
	sample   string
}

func showTheme(w io.Writer, t theme.Theme) error {
	swatches := []swatch{
		{"Accent", "Chrome", theme.Style{Fg: t.GetAccent()}, "▌Accent"},
		{"BorderActive", "Chrome", theme.Style{Fg: t.GetBorderActive()}, "▌Active border"},
		{"BorderInactive", "Chrome", theme.Style{Fg: t.GetBorderInactive()}, "│ Inactive border"},

		{"TextPrimary", "Text", t.TextPrimary, "holiday.png"},
		{"TextSecondary", "Text", t.TextSecondary, "3.2MB  2 hours ago"},
		{"TextMuted", "Text", t.TextMuted, "? help"},

		{"Tile", "Grid", t.Tile, " IMG "},
		{"TileSelected", "Grid", t.TileSelected, " selected "},
		{"TileCursor", "Grid", t.TileCursor, " cursor "},
		{"DirIcon", "Grid", t.DirIcon, "▇▇ Pictures"},
		{"FileIcon", "Grid", t.FileIcon, "▤ notes.txt"},

		{"Bookmark", "Panels", t.Bookmark, "Downloads"},
		{"BookmarkTarget", "Panels", t.BookmarkTarget, " drop here "},
		{"Button", "Panels", t.Button, " Cancel "},
		{"ButtonActive", "Panels", t.ButtonActive, " Open "},
		{"Error", "Panels", t.Error, "permission denied"},

		{"ConfirmPrompt", "Confirm", t.ConfirmPrompt, "Overwrite report.pdf?"},
		{"ConfirmSelected", "Confirm", t.ConfirmSelected, " Yes "},
		{"ConfirmUnselected", "Confirm", t.ConfirmUnselected, " No "},
	}

	themesDir, _ := theme.ThemesDir()
	fmt.Fprintf(w, "Theme:       %s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", t.Description)
	}
	fmt.Fprintf(w, "Themes Dir:  %s\n\n", themesDir)

	categoryStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.GetAccent()))
	nameStyle := lipgloss.NewStyle().Width(20)
	colorStyle := lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color(t.TextMuted.Fg))

	current := ""
	for _, s := range swatches {
		if s.category != current {
			if current != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, categoryStyle.Render(s.category))
			fmt.Fprintln(w, strings.Repeat("─", len(s.category)+2))
			current = s.category
		}
		fmt.Fprintf(w, "  %s %s %s\n",
			nameStyle.Render(s.name),
			colorStyle.Render(colorLabel(s.style)),
			render(s.style, s.sample),
		)
	}
	fmt.Fprintln(w)
	return nil
}

func colorLabel(s theme.Style) string {
	switch {
	case s.Fg != "" && s.Bg != "":
		return s.Fg + "/" + s.Bg
	case s.Bg != "":
		return "bg " + s.Bg
	default:
		return s.Fg
	}
}

func render(s theme.Style, text string) string {
	st := lipgloss.NewStyle().Bold(s.Bold).Italic(s.Italic).Underline(s.Underline)
	if s.Fg != "" {
		st = st.Foreground(lipgloss.Color(s.Fg))
	}
	if s.Bg != "" {
		st = st.Background(lipgloss.Color(s.Bg))
	}
	return st.Render(text)
}

// runThemeList lists all available themes.
func runThemeList(cmd *cobra.Command, args []string) error {
	themes, err := theme.ListAvailable()
	if err != nil {
		return err
	}
	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(themes)
	}

	active := theme.ActiveName()
	fmt.Println("Available Themes:")
	fmt.Println()
	for _, t := range themes {
		marker := "  "
		if t.Name == active {
			marker = "* "
		}
		source := "built-in"
		if !t.Embedded {
			source = "user"
		}
		fmt.Printf("%s%-12s  %-10s  %s\n", marker, t.Name, "("+source+")", t.Description)
	}
	fmt.Println()
	fmt.Println("Active theme marked with *")
	fmt.Println("Use 'pikeru theme set <name>' to change theme")
	return nil
}

// runThemeSet sets the active theme.
func runThemeSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := theme.SetActive(name); err != nil {
		return fmt.Errorf("failed to set theme: %w", err)
	}

	fmt.Printf("Theme set to: %s\n", name)
	return nil
}

func runThemeBrowse(cmd *cobra.Command, args []string) error {
	if !isTTY() {
		return fmt.Errorf("theme browse needs a terminal; use 'pikeru theme set <name>'")
	}
	name, err := tui.RunThemeBrowser()
	if err != nil || name == "" {
		return err
	}
	return runThemeSet(cmd, []string{name})
}

func runThemeImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	name := themeImportName
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
		name = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	}

	t, err := theme.ImportIterm(f, name)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := theme.Save(name, t); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}

	fmt.Printf("Theme %q imported successfully.\n", name)
	fmt.Printf("Activate it with: pikeru theme set %s\n", name)
	return nil
}
