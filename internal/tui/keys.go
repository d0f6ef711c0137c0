package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/wethinkt/go-pikeru/internal/i18n"
)

// pickerKeyMap defines key bindings for the picker grid.
type pickerKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Select  key.Binding
	Open    key.Binding
	Cancel  key.Binding
	Quit    key.Binding
	UpDir   key.Binding
	DownDir key.Binding

	Search    key.Binding
	PathEntry key.Binding
	Hidden    key.Binding
	Sort      key.Binding
	Commands  key.Binding
	NewDir    key.Binding
	Bigger    key.Binding
	Smaller   key.Binding
	Preview   key.Binding
	NextImage key.Binding
	PrevImage key.Binding
	Bookmark  key.Binding
	Help      key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "shift+up", "ctrl+up"),
			key.WithHelp("↑", i18n.T("tui.keys.up", "move up")),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "shift+down", "ctrl+down"),
			key.WithHelp("↓", i18n.T("tui.keys.down", "move down")),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "shift+left", "ctrl+left"),
			key.WithHelp("←", i18n.T("tui.keys.left", "move left")),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "shift+right", "ctrl+right"),
			key.WithHelp("→", i18n.T("tui.keys.right", "move right")),
		),

		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", i18n.T("tui.keys.select", "open the selection")),
		),
		Open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", i18n.T("tui.keys.open", "press the Open/Save button")),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", i18n.T("tui.keys.cancel", "close preview, clear search or cancel")),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", i18n.T("tui.keys.quit", "cancel")),
		),
		UpDir: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", i18n.T("tui.keys.updir", "parent directory")),
		),
		DownDir: key.NewBinding(
			key.WithKeys("alt+left"),
			key.WithHelp("alt+←", i18n.T("tui.keys.downdir", "back")),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", i18n.T("tui.keys.search", "search names and captions")),
		),
		PathEntry: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", i18n.T("tui.keys.path", "edit the path")),
		),
		Hidden: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", i18n.T("tui.keys.hidden", "show hidden files")),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", i18n.T("tui.keys.sort", "sort")),
		),
		Commands: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", i18n.T("tui.keys.commands", "run a command")),
		),
		NewDir: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", i18n.T("tui.keys.newdir", "new directory")),
		),
		Bigger: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", i18n.T("tui.keys.bigger", "bigger thumbnails")),
		),
		Smaller: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", i18n.T("tui.keys.smaller", "smaller thumbnails")),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", i18n.T("tui.keys.preview", "preview image")),
		),
		NextImage: key.NewBinding(
			key.WithKeys("space"),
			key.WithHelp("space", i18n.T("tui.keys.nextimage", "next image in preview")),
		),
		PrevImage: key.NewBinding(
			key.WithKeys("shift+space"),
			key.WithHelp("shift+space", i18n.T("tui.keys.previmage", "previous image in preview")),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", i18n.T("tui.keys.bookmark", "bookmark directory")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", i18n.T("tui.keys.help", "help")),
		),
	}
}

// bindings lists the keymap in help order.
func (k pickerKeyMap) bindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right,
		k.Select, k.Open, k.Cancel, k.Quit, k.UpDir, k.DownDir,
		k.Search, k.PathEntry, k.Hidden, k.Sort, k.Commands, k.NewDir,
		k.Bigger, k.Smaller, k.Preview, k.NextImage, k.PrevImage,
		k.Bookmark, k.Help,
	}
}
