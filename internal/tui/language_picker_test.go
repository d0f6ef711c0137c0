package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-pikeru/internal/i18n"
)

func TestLanguagePickerSelects(t *testing.T) {
	i18n.Init("en")
	m := NewLanguagePickerModel("en")
	if m.langs[m.cursor].Tag != "en" {
		t.Fatalf("cursor starts on %q", m.langs[m.cursor].Tag)
	}

	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := model.View().Content
	if !strings.Contains(view, "Languages") || !strings.Contains(view, "English") {
		t.Errorf("view missing list:\n%s", view)
	}

	// Locales are sorted, so de sits above en.
	model, _ = model.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	model, cmd := model.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	if got := model.(LanguagePickerModel).Selected(); got != "de" {
		t.Errorf("Selected() = %q, want de", got)
	}
}

func TestLanguagePickerCancel(t *testing.T) {
	var model tea.Model = NewLanguagePickerModel("de")
	model, _ = model.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if got := model.(LanguagePickerModel).Selected(); got != "" {
		t.Errorf("cancel selected %q", got)
	}
}
