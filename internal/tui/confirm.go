// Package tui is the terminal rendition of the pikeru picker window.
package tui

import (
	"fmt"
	"io"
	"os"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-pikeru/internal/i18n"
)

// ConfirmResult represents the outcome of a confirmation dialog.
type ConfirmResult int

const (
	ConfirmYes ConfirmResult = iota
	ConfirmNo
	ConfirmCancelled
)

// ConfirmOptions configures the confirm dialog.
type ConfirmOptions struct {
	Prompt      string    // The question to ask
	Affirmative string    // Text for yes button (default "Yes")
	Negative    string    // Text for no button (default "No")
	Default     bool      // Default selection (true = affirmative)
	Output      io.Writer // Where to draw the dialog (default os.Stderr)
}

// Confirm runs a one-question program and returns the answer. The picker
// uses the same dialog as a modal.
func Confirm(opts ConfirmOptions) (ConfirmResult, error) {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	m := confirmProgram{dialog: newConfirmDialog(opts)}
	final, err := tea.NewProgram(m, tea.WithOutput(opts.Output)).Run()
	if err != nil {
		return ConfirmCancelled, err
	}
	return final.(confirmProgram).dialog.result, nil
}

// confirmDialog is a yes/no question. It is embedded in the picker for the
// overwrite prompt and wrapped by confirmProgram for Confirm.
type confirmDialog struct {
	prompt      string
	affirmative string
	negative    string
	selection   bool // true = affirmative selected
	result      ConfirmResult
	keys        confirmKeyMap
}

type confirmKeyMap struct {
	Toggle      key.Binding
	Submit      key.Binding
	Affirmative key.Binding
	Negative    key.Binding
	Quit        key.Binding
}

func defaultConfirmKeyMap(affirmative, negative string) confirmKeyMap {
	return confirmKeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("left", "right", "h", "l", "tab", "shift+tab"),
			key.WithHelp("←/→", "toggle"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Affirmative: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", affirmative),
		),
		Negative: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", negative),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func newConfirmDialog(opts ConfirmOptions) confirmDialog {
	if opts.Affirmative == "" {
		opts.Affirmative = i18n.T("tui.confirm.yes", "Yes")
	}
	if opts.Negative == "" {
		opts.Negative = i18n.T("tui.confirm.no", "No")
	}
	return confirmDialog{
		prompt:      opts.Prompt,
		affirmative: opts.Affirmative,
		negative:    opts.Negative,
		selection:   opts.Default,
		result:      ConfirmCancelled,
		keys:        defaultConfirmKeyMap(opts.Affirmative, opts.Negative),
	}
}

// update applies a key and reports whether the dialog is finished.
func (d *confirmDialog) update(msg tea.KeyPressMsg) bool {
	switch {
	case key.Matches(msg, d.keys.Quit):
		d.result = ConfirmCancelled
		return true
	case key.Matches(msg, d.keys.Affirmative):
		d.result = ConfirmYes
		return true
	case key.Matches(msg, d.keys.Negative):
		d.result = ConfirmNo
		return true
	case key.Matches(msg, d.keys.Toggle):
		d.selection = !d.selection
	case key.Matches(msg, d.keys.Submit):
		if d.selection {
			d.result = ConfirmYes
		} else {
			d.result = ConfirmNo
		}
		return true
	}
	return false
}

func (d confirmDialog) view() string {
	s := GetStyles()
	var aff, neg string
	if d.selection {
		aff = s.ConfirmSelected.Render(d.affirmative)
		neg = s.ConfirmUnselected.Render(d.negative)
	} else {
		aff = s.ConfirmUnselected.Render(d.affirmative)
		neg = s.ConfirmSelected.Render(d.negative)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, aff, "  ", neg)
	return fmt.Sprintf("\n%s\n\n%s\n", s.ConfirmPrompt.Render(d.prompt), buttons)
}

// confirmProgram runs a confirmDialog on its own.
type confirmProgram struct {
	dialog   confirmDialog
	quitting bool
}

func (m confirmProgram) Init() tea.Cmd {
	return nil
}

func (m confirmProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		if m.dialog.update(msg) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmProgram) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	return tea.NewView(m.dialog.view())
}
