package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestThemeBrowserPreviewAndSelect(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var model tea.Model = NewThemeBrowserModel()
	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := model.View().Content
	for _, want := range []string{"Themes", "dark", "light", "cat.png", "Bookmarks"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	model, _ = model.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	model, _ = model.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := model.(ThemeBrowserModel).Selected(); got == "" {
		t.Error("enter selected nothing")
	}
}
