package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/tui/theme"
)

// helpMarkdown builds the help text from the keymap.
func helpMarkdown(keys pickerKeyMap) string {
	var b strings.Builder
	b.WriteString("# " + i18n.T("tui.help.title", "pikeru") + "\n\n")
	b.WriteString("## " + i18n.T("tui.help.keys", "Keys") + "\n\n")
	b.WriteString("| | |\n|---|---|\n")
	for _, k := range keys.bindings() {
		h := k.Help()
		fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
	}
	b.WriteString("\n## " + i18n.T("tui.help.mouseTitle", "Mouse") + "\n\n")
	b.WriteString("- " + i18n.T("tui.help.mouse.click", "Click selects; shift extends the range, ctrl toggles.") + "\n")
	b.WriteString("- " + i18n.T("tui.help.mouse.double", "Double click opens a file or enters a directory.") + "\n")
	b.WriteString("- " + i18n.T("tui.help.mouse.right", "Right click previews an image; on a bookmark it removes it.") + "\n")
	b.WriteString("- " + i18n.T("tui.help.mouse.middle", "Middle click toggles like ctrl+click.") + "\n")
	b.WriteString("- " + i18n.T("tui.help.mouse.drag", "Drag a directory onto the bookmarks to add it.") + "\n")
	return b.String()
}

// renderHelp renders the help markdown for width columns. Rendering
// failures fall back to the raw markdown.
func renderHelp(keys pickerKeyMap, width int) string {
	md := helpMarkdown(keys)
	style := "dark"
	if theme.Current().Name == "light" {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(20, width-4)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// newHelpViewport sizes a viewport for the help overlay.
func newHelpViewport(keys pickerKeyMap, width, height int) viewport.Model {
	vp := viewport.New()
	vp.SetWidth(max(20, width-4))
	vp.SetHeight(max(5, height-4))
	vp.SetContent(renderHelp(keys, width-4))
	return vp
}
