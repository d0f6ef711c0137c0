package tui

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/picker"
)

// runCmds executes cmd and any batches it returns, collecting messages.
func runCmds(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, runCmds(sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func isQuit(cmd tea.Cmd) bool {
	for _, msg := range runCmds(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

type captionMap map[string]string

func (c captionMap) Captions(context.Context, []string) (map[string]string, error) {
	return c, nil
}

// newTestModel lists a directory holding sub/, a.txt and b.txt in a
// 120x40 window. Tiles are 22x13 cells, four per row, starting at x=18.
func newTestModel(t *testing.T, mode picker.Mode) (*Model, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PIKERU_GRAPHICS", "none")

	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	st := picker.New(picker.Options{Mode: mode, Dirs: []string{dir}, ThumbSize: 160, SaveFilename: "a.txt"})
	if err := st.LoadDir(); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Bookmarks = []config.Bookmark{{Label: "tmp", Path: os.TempDir()}}
	cfg.Commands = nil

	m := NewModel(context.Background(), ModelOptions{State: st, Config: &cfg, Inflight: 2})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, dir
}

func press(m *Model, k tea.KeyPressMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func keyCode(code rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: code} }
func keyText(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func TestLayoutHitTest(t *testing.T) {
	l := computeLayout(120, 40, 160, picker.ModeFiles)
	if l.cols != 4 || l.tileW != 22 || l.tileH != 13 {
		t.Fatalf("layout = %+v", l)
	}
	tests := []struct {
		name string
		x, y int
		want hit
	}{
		{"path bar", 50, 0, hit{kind: hitPath}},
		{"search bar", 50, 1, hit{kind: hitSearch}},
		{"first tile", 20, 5, hit{kind: hitTile, index: 0}},
		{"second tile", 42, 5, hit{kind: hitTile, index: 1}},
		{"second row", 20, 16, hit{kind: hitTile, index: 4}},
		{"past the last item", 42, 16, hit{}},
		{"bookmark title", 3, 2, hit{kind: hitBookmarkColumn, index: -1}},
		{"first bookmark", 3, 3, hit{kind: hitBookmark, index: 0}},
		{"ok button", 118, 39, hit{kind: hitButton, index: int(buttonOK)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.hitTest(tt.x, tt.y, 0, 5, 1); got != tt.want {
				t.Errorf("hitTest(%d, %d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if got := l.hitTest(20, 5, 1, 9, 1); got.index != 4 {
		t.Errorf("scrolled hit = %+v, want index 4", got)
	}
	if s := l.scrollFor(12, 0); s != 2 {
		t.Errorf("scrollFor(12) = %d, want 2", s)
	}
	if s := l.maxScroll(9); s != 1 {
		t.Errorf("maxScroll(9) = %d, want 1", s)
	}
}

func TestArrowKeysAndEnter(t *testing.T) {
	m, dir := newTestModel(t, picker.ModeFiles)

	press(m, keyCode(tea.KeyDown)) // nothing selected: first tile
	if m.st.LastClicked.Path != filepath.Join(dir, "sub") {
		t.Fatalf("first move clicked %q", m.st.LastClicked.Path)
	}
	press(m, keyCode(tea.KeyRight))
	if m.st.LastClicked.Path != filepath.Join(dir, "a.txt") {
		t.Fatalf("right moved to %q", m.st.LastClicked.Path)
	}

	cmd := press(m, keyCode(tea.KeyEnter))
	if !isQuit(cmd) {
		t.Fatal("enter on a file should quit")
	}
	if want := []string{filepath.Join(dir, "a.txt")}; !slices.Equal(m.Result(), want) {
		t.Errorf("Result() = %v, want %v", m.Result(), want)
	}
}

func TestEnterDirectoryAndBack(t *testing.T) {
	m, dir := newTestModel(t, picker.ModeFiles)
	sub := filepath.Join(dir, "sub")
	if m.keys.DownDir.Enabled() {
		t.Error("alt+left should be disabled with no history")
	}

	press(m, keyCode(tea.KeyDown))
	press(m, keyCode(tea.KeyEnter))
	if !slices.Equal(m.st.Dirs, []string{sub}) {
		t.Fatalf("dirs = %v, want [%s]", m.st.Dirs, sub)
	}
	if !m.keys.DownDir.Enabled() {
		t.Error("alt+left should be enabled after entering a directory")
	}
	if m.Result() != nil {
		t.Error("navigating must not finish the picker")
	}

	press(m, keyCode(tea.KeyBackspace))
	if !slices.Equal(m.st.Dirs, []string{dir}) {
		t.Fatalf("after backspace dirs = %v", m.st.Dirs)
	}

	press(m, tea.KeyPressMsg{Code: tea.KeyLeft, Mod: tea.ModAlt})
	if !slices.Equal(m.st.Dirs, []string{sub}) {
		t.Errorf("alt+left should return to %s, got %v", sub, m.st.Dirs)
	}
	press(m, tea.KeyPressMsg{Code: tea.KeyLeft, Mod: tea.ModAlt})
	if !slices.Equal(m.st.Dirs, []string{dir}) || m.keys.DownDir.Enabled() {
		t.Errorf("history should be used up at %s, got %v enabled=%v", dir, m.st.Dirs, m.keys.DownDir.Enabled())
	}
}

func TestDoubleClickSelects(t *testing.T) {
	m, dir := newTestModel(t, picker.ModeFile)
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	click := tea.MouseClickMsg{X: 42, Y: 5, Button: tea.MouseLeft}
	if _, cmd := m.Update(click); isQuit(cmd) {
		t.Fatal("single click quit")
	}
	now = now.Add(100 * time.Millisecond)
	_, cmd := m.Update(click)
	if !isQuit(cmd) {
		t.Fatal("double click should quit")
	}
	if want := []string{filepath.Join(dir, "a.txt")}; !slices.Equal(m.Result(), want) {
		t.Errorf("Result() = %v, want %v", m.Result(), want)
	}
}

func TestCancel(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)
	if cmd := press(m, keyCode(tea.KeyEscape)); !isQuit(cmd) {
		t.Fatal("esc should quit")
	}
	if !m.Cancelled() || m.Result() != nil {
		t.Errorf("cancelled = %v, result = %v", m.Cancelled(), m.Result())
	}
}

func TestCancelButton(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)
	l := m.layout()
	b := l.buttons[0]
	_, cmd := m.Update(tea.MouseClickMsg{X: b.x0, Y: l.footerY, Button: tea.MouseLeft})
	if !isQuit(cmd) || !m.Cancelled() {
		t.Error("cancel button should cancel")
	}
}

func TestSaveConfirmOverwrite(t *testing.T) {
	m, dir := newTestModel(t, picker.ModeSave)

	press(m, keyCode(tea.KeyEnter))
	if m.modal != modalConfirm {
		t.Fatalf("modal = %v, want overwrite confirm", m.modal)
	}
	if !strings.Contains(m.render(), "a.txt") {
		t.Error("confirm prompt should name the file")
	}

	press(m, keyText("n"))
	if m.modal != modalNone || m.Result() != nil {
		t.Fatal("answering no should return to the grid")
	}

	press(m, keyCode(tea.KeyEnter))
	cmd := press(m, keyText("y"))
	if !isQuit(cmd) {
		t.Fatal("answering yes should quit")
	}
	if want := []string{filepath.Join(dir, "a.txt")}; !slices.Equal(m.Result(), want) {
		t.Errorf("Result() = %v, want %v", m.Result(), want)
	}
}

func TestDragDirectoryToBookmarks(t *testing.T) {
	m, dir := newTestModel(t, picker.ModeFiles)

	m.Update(tea.MouseClickMsg{X: 20, Y: 5, Button: tea.MouseLeft})
	if m.dragFrom != 0 {
		t.Fatalf("dragFrom = %d, want 0", m.dragFrom)
	}
	m.Update(tea.MouseMotionMsg{X: 5, Y: 6, Button: tea.MouseLeft})
	if !m.dragOver {
		t.Error("dragging over the bookmark column should highlight it")
	}
	m.Update(tea.MouseReleaseMsg{X: 5, Y: 6, Button: tea.MouseLeft})

	if len(m.cfg.Bookmarks) != 2 || m.cfg.Bookmarks[1].Path != filepath.Join(dir, "sub") {
		t.Fatalf("bookmarks = %+v", m.cfg.Bookmarks)
	}
	saved, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.Bookmarks) != 2 {
		t.Errorf("bookmark not written to disk: %+v", saved.Bookmarks)
	}
}

func TestBookmarkClickNavigates(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)
	m.Update(tea.MouseClickMsg{X: 3, Y: 3, Button: tea.MouseLeft})
	if !slices.Equal(m.st.Dirs, []string{filepath.Clean(os.TempDir())}) {
		t.Errorf("dirs = %v", m.st.Dirs)
	}
}

func TestSearchByCaption(t *testing.T) {
	m, dir := newTestModel(t, picker.ModeFiles)
	m.captions = captionMap{filepath.Join(dir, "b.txt"): "zebra crossing"}
	for _, msg := range runCmds(m.loadCaptions()) {
		m.Update(msg)
	}

	m.query.SetValue("zebra")
	for _, msg := range runCmds(m.queryChanged()) {
		m.Update(msg)
	}
	if !m.st.Searching() {
		t.Fatal("search not applied")
	}
	if len(m.st.Displayed) == 0 {
		t.Fatal("no matches")
	}
	if it, _ := m.st.Item(0); it.Name != "b.txt" {
		t.Errorf("best match = %s, want b.txt", it.Name)
	}

	press(m, keyCode(tea.KeyEscape))
	if m.st.Searching() || len(m.st.Displayed) != 3 {
		t.Errorf("esc should clear the search, displayed = %d", len(m.st.Displayed))
	}
	if m.Cancelled() {
		t.Error("esc while searching must not cancel")
	}
}

func TestStaleSearchDropped(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)
	m.query.SetValue("b")
	m.Update(searchMsg{query: "a", nav: m.st.Nav})
	if m.st.Searching() {
		t.Error("result for an old query was applied")
	}
}

func TestSortMenuAndSize(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)

	press(m, keyText("s"))
	if m.modal != modalSort {
		t.Fatalf("modal = %v, want sort menu", m.modal)
	}
	press(m, keyText("3"))
	if m.modal != modalNone || m.st.Sort != fsview.SortTimeDesc {
		t.Fatalf("sort = %v, modal = %v", m.st.Sort, m.modal)
	}

	press(m, keyText("+"))
	if m.st.ThumbSize != 180 {
		t.Errorf("size = %d, want 180", m.st.ThumbSize)
	}

	if err := m.SaveSettings(); err != nil {
		t.Fatal(err)
	}
	saved, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if saved.Settings.SortBy != "time_desc" || saved.Settings.ThumbnailSize != 180 {
		t.Errorf("saved settings = %+v", saved.Settings)
	}
}

func TestHiddenToggleIsSaved(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)

	press(m, keyText("."))
	if !m.st.ShowHidden {
		t.Fatal("'.' should show hidden files")
	}
	if err := m.SaveSettings(); err != nil {
		t.Fatal(err)
	}
	saved, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !saved.Settings.ShowHidden {
		t.Errorf("show_hidden not saved: %+v", saved.Settings)
	}
}

func TestCommandsWithoutConfigShowError(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)
	press(m, keyText("c"))
	if m.modal != modalError {
		t.Fatalf("modal = %v, want error", m.modal)
	}
	press(m, keyText("x"))
	if m.modal != modalNone {
		t.Error("any key should close the error")
	}
}

func TestNewDirModal(t *testing.T) {
	m, dir := newTestModel(t, picker.ModeFiles)
	press(m, keyText("n"))
	if m.modal != modalNewDir {
		t.Fatalf("modal = %v", m.modal)
	}
	m.dirName.SetValue("fresh")
	press(m, keyCode(tea.KeyEnter))
	if _, err := os.Stat(filepath.Join(dir, "fresh")); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if len(m.st.Displayed) != 4 {
		t.Errorf("new directory not shown, displayed = %d", len(m.st.Displayed))
	}
}

func TestRenderGrid(t *testing.T) {
	m, _ := newTestModel(t, picker.ModeFiles)
	view := m.View()
	if !view.AltScreen || view.MouseMode != tea.MouseModeCellMotion {
		t.Error("picker should use the alt screen with cell motion mouse")
	}
	for _, want := range []string{"Bookmarks", "tmp", "a.txt", "b.txt", "sub", "Open", "Cancel"} {
		if !strings.Contains(view.Content, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(view.Content, "\n") + 1; lines != 40 {
		t.Errorf("view has %d lines, want 40", lines)
	}
}
