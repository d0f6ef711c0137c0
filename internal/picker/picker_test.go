package picker

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/search"
	"github.com/wethinkt/go-pikeru/internal/thumb"
)

// newTestState creates a directory holding sub/, a.txt, b.png, c.png and
// .hidden, and loads it. Display order is sub, a.txt, b.png, c.png.
func newTestState(t *testing.T, mode Mode) (*State, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.png", "c.png", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	s := New(Options{Mode: mode, Dirs: []string{dir}, ThumbSize: 160})
	if err := s.LoadDir(); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	return s, dir
}

func names(s *State) []string {
	var out []string
	for _, i := range s.Displayed {
		out = append(out, s.Items[i].Name)
	}
	return out
}

func selectedNames(s *State) []string {
	var out []string
	for _, it := range s.Selected() {
		out = append(out, it.Name)
	}
	slices.Sort(out)
	return out
}

func TestLoadDir(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)

	if got, want := names(s), []string{"sub", "a.txt", "b.png", "c.png"}; !slices.Equal(got, want) {
		t.Errorf("displayed = %v, want %v", got, want)
	}
	if len(s.Items) != 5 {
		t.Errorf("items = %d, want 5 including hidden", len(s.Items))
	}
	if s.Pathbar != dir {
		t.Errorf("pathbar = %q, want %q", s.Pathbar, dir)
	}
	if s.Nav != 1 {
		t.Errorf("nav = %d, want 1", s.Nav)
	}
	for d, i := range s.Displayed {
		if s.Items[i].DisplayIdx != d {
			t.Errorf("item %s has DisplayIdx %d, want %d", s.Items[i].Name, s.Items[i].DisplayIdx, d)
		}
	}
}

func TestLoadDirSaveModePathbar(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{Mode: ModeSave, Dirs: []string{dir}, SaveFilename: "out.png"})
	if err := s.LoadDir(); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "out.png"); s.Pathbar != want {
		t.Errorf("pathbar = %q, want %q", s.Pathbar, want)
	}
}

func TestClickSingle(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)

	s.Click(1, Mods{}, false)
	s.Click(2, Mods{}, false)
	if got := selectedNames(s); !slices.Equal(got, []string{"b.png"}) {
		t.Fatalf("selected = %v", got)
	}
	if s.Pathbar != filepath.Join(dir, "b.png") {
		t.Errorf("pathbar = %q", s.Pathbar)
	}
	if s.LastClicked.Size != "1B" || s.LastClicked.DisplayIdx != 2 {
		t.Errorf("last clicked = %+v", s.LastClicked)
	}

	// Clicking the only selection again clears it.
	s.Click(2, Mods{}, false)
	if len(s.Selected()) != 0 {
		t.Errorf("selected = %v, want none", selectedNames(s))
	}
	if s.Pathbar != dir {
		t.Errorf("pathbar = %q, want dir", s.Pathbar)
	}

	// alwaysSel never deselects.
	s.Click(2, Mods{}, true)
	s.Click(2, Mods{}, true)
	if got := selectedNames(s); !slices.Equal(got, []string{"b.png"}) {
		t.Errorf("selected = %v", got)
	}
}

func TestClickCtrl(t *testing.T) {
	t.Run("multi keeps", func(t *testing.T) {
		s, _ := newTestState(t, ModeFiles)
		s.Click(1, Mods{}, false)
		s.Click(3, Mods{Ctrl: true}, false)
		if got := selectedNames(s); !slices.Equal(got, []string{"a.txt", "c.png"}) {
			t.Fatalf("selected = %v", got)
		}
		s.Click(3, Mods{Ctrl: true}, false)
		if got := selectedNames(s); !slices.Equal(got, []string{"a.txt"}) {
			t.Errorf("ctrl-click should toggle off, selected = %v", got)
		}
	})
	t.Run("single file mode replaces", func(t *testing.T) {
		s, _ := newTestState(t, ModeFile)
		s.Click(1, Mods{}, false)
		s.Click(3, Mods{Ctrl: true}, false)
		if got := selectedNames(s); !slices.Equal(got, []string{"c.png"}) {
			t.Errorf("selected = %v", got)
		}
	})
	t.Run("type pruning", func(t *testing.T) {
		s, _ := newTestState(t, ModeFiles)
		s.Click(0, Mods{}, false)
		s.Click(1, Mods{Ctrl: true}, false)
		if got := selectedNames(s); !slices.Equal(got, []string{"a.txt"}) {
			t.Errorf("selecting a file must drop the directory, selected = %v", got)
		}
	})
	t.Run("middle click", func(t *testing.T) {
		s, _ := newTestState(t, ModeFiles)
		s.Click(1, Mods{}, false)
		s.MiddleClick(2)
		if got := selectedNames(s); !slices.Equal(got, []string{"a.txt", "b.png"}) {
			t.Errorf("selected = %v", got)
		}
	})
}

func TestClickShiftRange(t *testing.T) {
	s, _ := newTestState(t, ModeFiles)
	s.Click(3, Mods{}, false)
	s.Click(1, Mods{Shift: true}, false)
	if got := selectedNames(s); !slices.Equal(got, []string{"a.txt", "b.png", "c.png"}) {
		t.Errorf("range = %v", got)
	}

	// A shift-click on the other type starts a new selection.
	s.Click(0, Mods{Shift: true}, false)
	if got := selectedNames(s); !slices.Equal(got, []string{"sub"}) {
		t.Errorf("dir shift-click over files = %v, want [sub]", got)
	}

	single, _ := newTestState(t, ModeFile)
	single.Click(1, Mods{}, false)
	single.Click(3, Mods{Shift: true}, false)
	if got := selectedNames(single); !slices.Equal(got, []string{"c.png"}) {
		t.Errorf("single mode shift-click = %v", got)
	}
}

func TestClickTimer(t *testing.T) {
	var ct ClickTimer
	now := time.Now()
	if ct.Click(1, now) {
		t.Error("first click is not a double click")
	}
	if !ct.Click(1, now.Add(100*time.Millisecond)) {
		t.Error("second click within the window is a double click")
	}
	if ct.Click(1, now.Add(150*time.Millisecond)) {
		t.Error("a third click starts over")
	}
	if ct.Click(2, now.Add(200*time.Millisecond)) {
		t.Error("clicks on different tiles are not a double click")
	}
	if ct.Click(2, now.Add(time.Second)) {
		t.Error("slow clicks are not a double click")
	}
}

func TestMove(t *testing.T) {
	s, _ := newTestState(t, ModeFiles)
	s.SetColumns(2)

	s.Move(Right, Mods{})
	if s.LastClicked.DisplayIdx != 0 {
		t.Fatalf("first move should land on tile 0, got %d", s.LastClicked.DisplayIdx)
	}
	s.Move(Down, Mods{})
	if s.LastClicked.DisplayIdx != 2 {
		t.Fatalf("down = %d, want 2", s.LastClicked.DisplayIdx)
	}
	s.Move(Down, Mods{})
	if s.LastClicked.DisplayIdx != 3 {
		t.Errorf("down past the end should clamp, got %d", s.LastClicked.DisplayIdx)
	}
	if got := selectedNames(s); !slices.Equal(got, []string{"c.png"}) {
		t.Errorf("selected = %v", got)
	}
	s.Move(Left, Mods{Shift: true})
	if got := selectedNames(s); !slices.Equal(got, []string{"b.png", "c.png"}) {
		t.Errorf("shift-left = %v", got)
	}
}

func TestPreviewNextImage(t *testing.T) {
	s, _ := newTestState(t, ModeFiles)
	s.RightClick(2)
	if s.Preview < 0 || s.Items[s.Preview].Name != "b.png" {
		t.Fatalf("preview = %d", s.Preview)
	}
	if !s.NextImage(1) || s.Items[s.Preview].Name != "c.png" {
		t.Fatal("NextImage(1) should move to c.png")
	}
	if s.NextImage(1) {
		t.Error("NextImage past the last image should report false")
	}
	if !s.NextImage(-1) || s.Items[s.Preview].Name != "b.png" {
		t.Error("NextImage(-1) should move back")
	}
	if s.NextImage(-1) {
		t.Error("a.txt is not an image")
	}
	if got := selectedNames(s); !slices.Equal(got, []string{"b.png"}) {
		t.Errorf("selected = %v", got)
	}

	// Right click on a non-image range-selects.
	s.ClosePreview()
	s.RightClick(1)
	if got := selectedNames(s); !slices.Equal(got, []string{"a.txt", "b.png"}) {
		t.Errorf("selected = %v", got)
	}
}

func TestSelectFiles(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)
	if out, _ := s.Select(SourceButton); out.Kind != OutcomeNone {
		t.Errorf("nothing selected = %+v", out)
	}

	s.Click(1, Mods{}, false)
	s.Click(2, Mods{Ctrl: true}, false)
	out, err := s.Select(SourceButton)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.png")}
	if out.Kind != OutcomePrint || !slices.Equal(out.Paths, want) {
		t.Errorf("outcome = %+v", out)
	}

	s.Pathbar = filepath.Join(dir, "missing.png")
	if out, _ := s.Select(SourceText); out.Kind != OutcomeNone {
		t.Errorf("missing path = %+v", out)
	}
}

func TestSelectDirNavigates(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)
	s.Click(0, Mods{}, false)
	out, err := s.Select(SourceClick)
	if err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "sub")
	if out.Kind != OutcomeNavigate || !slices.Equal(s.Dirs, []string{sub}) {
		t.Fatalf("outcome = %+v, dirs = %v", out, s.Dirs)
	}
	if s.Nav != 2 || len(s.Displayed) != 0 {
		t.Errorf("nav = %d, displayed = %v", s.Nav, s.Displayed)
	}

	ok, err := s.DownDir()
	if !ok || err != nil || !slices.Equal(s.Dirs, []string{dir}) {
		t.Errorf("DownDir = %v, %v; dirs = %v", ok, err, s.Dirs)
	}
	if ok, _ := s.DownDir(); ok {
		t.Error("history should be empty")
	}
}

func TestSelectDirMode(t *testing.T) {
	s, dir := newTestState(t, ModeDir)
	s.Click(0, Mods{}, false)
	out, err := s.Select(SourceButton)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomePrint || !slices.Equal(out.Paths, []string{filepath.Join(dir, "sub")}) {
		t.Errorf("button on a dir in dir mode = %+v", out)
	}

	s.Click(0, Mods{}, true)
	if out, _ := s.Select(SourceClick); out.Kind != OutcomeNavigate {
		t.Errorf("double click in dir mode = %+v", out)
	}
}

func TestSelectSave(t *testing.T) {
	s, dir := newTestState(t, ModeSave)

	s.Pathbar = filepath.Join(dir, "new.png")
	if out, _ := s.Select(SourceButton); out.Kind != OutcomePrint || out.Paths[0] != s.Pathbar {
		t.Errorf("new file = %+v", out)
	}

	s.Click(2, Mods{}, false)
	if s.SaveFilename != "b.png" {
		t.Errorf("save filename = %q", s.SaveFilename)
	}
	if out, _ := s.Select(SourceButton); out.Kind != OutcomeConfirmOverwrite {
		t.Errorf("existing file = %+v", out)
	}

	s.Pathbar = filepath.Join(dir, "sub")
	out, err := s.Select(SourceButton)
	if err != nil || out.Kind != OutcomeNavigate {
		t.Fatalf("dir = %+v, %v", out, err)
	}
	if want := filepath.Join(dir, "sub", "b.png"); s.Pathbar != want {
		t.Errorf("pathbar = %q, want %q", s.Pathbar, want)
	}

	s.Pathbar = ""
	if out, _ := s.Select(SourceButton); out.Kind != OutcomeNone {
		t.Errorf("empty pathbar = %+v", out)
	}
}

func TestUpDir(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)
	if err := s.GoTo(filepath.Join(dir, "sub"), filepath.Join(dir, "sub")+"/"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpDir(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Dirs, []string{dir}) {
		t.Errorf("dirs = %v, want [%s]", s.Dirs, dir)
	}

	root := New(Options{Dirs: []string{"/"}, Lister: func([]string) ([]fsview.PathInfo, error) { return nil, nil }})
	if err := root.LoadDir(); err != nil {
		t.Fatal(err)
	}
	if err := root.UpDir(); err != nil || root.CanGoBack() {
		t.Errorf("UpDir at / should do nothing")
	}
}

func TestNewDir(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)
	path, err := s.NewDir("made")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "made") {
		t.Errorf("path = %q", path)
	}
	if got := names(s); !slices.Equal(got, []string{"made", "sub", "a.txt", "b.png", "c.png"}) {
		t.Errorf("displayed = %v", got)
	}
	if _, err := s.NewDir("  "); err == nil {
		t.Error("empty name should fail")
	}
}

func TestInsertAndRemovePath(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)
	s.Click(3, Mods{}, false) // c.png

	newFile := filepath.Join(dir, "aa.png")
	if err := os.WriteFile(newFile, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !s.InsertPath(newFile) {
		t.Fatal("InsertPath returned false")
	}
	if s.InsertPath(newFile) {
		t.Error("inserting twice should be a no-op")
	}
	if s.InsertPath("/elsewhere/x.png") {
		t.Error("paths outside the current dirs are ignored")
	}
	if got := names(s); !slices.Equal(got, []string{"sub", "a.txt", "aa.png", "b.png", "c.png"}) {
		t.Errorf("displayed = %v", got)
	}

	if !s.RemovePath(filepath.Join(dir, "a.txt")) {
		t.Fatal("RemovePath returned false")
	}
	if s.RemovePath(filepath.Join(dir, "a.txt")) {
		t.Error("removing twice should be a no-op")
	}
	if got := names(s); !slices.Equal(got, []string{"sub", "aa.png", "b.png", "c.png"}) {
		t.Errorf("displayed = %v", got)
	}
	if got := selectedNames(s); !slices.Equal(got, []string{"c.png"}) {
		t.Errorf("selection lost: %v", got)
	}
	if it := s.Items[s.LastClicked.Index]; it.Name != "c.png" || s.LastClicked.DisplayIdx != it.DisplayIdx {
		t.Errorf("last clicked = %+v", s.LastClicked)
	}
	for d, i := range s.Displayed {
		if s.Items[i].DisplayIdx != d {
			t.Errorf("%s DisplayIdx = %d, want %d", s.Items[i].Name, s.Items[i].DisplayIdx, d)
		}
	}
}

func TestNextToLoadAndMarkLoaded(t *testing.T) {
	s, _ := newTestState(t, ModeFiles)

	jobs := s.NextToLoad(1)
	if len(jobs) != 1 || filepath.Base(jobs[0].Path) != "b.png" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if more := s.NextToLoad(1); len(more) != 0 {
		t.Errorf("limit exceeded: %+v", more)
	}

	// Stale listing.
	stale := thumb.Result{Job: jobs[0], CachePath: "/c/x.png"}
	stale.Nav--
	if s.MarkLoaded(stale) {
		t.Error("stale nav result applied")
	}

	ok := s.MarkLoaded(thumb.Result{Job: jobs[0], CachePath: "/c/b.png"})
	if !ok {
		t.Fatal("MarkLoaded returned false")
	}
	it := &s.Items[jobs[0].Index]
	if !it.Loaded || it.InFlight || it.Thumb != "/c/b.png" {
		t.Errorf("item = %+v", it)
	}

	next := s.NextToLoad(4)
	if len(next) != 1 || filepath.Base(next[0].Path) != "c.png" {
		t.Fatalf("next = %+v", next)
	}

	// A view change while in flight frees the slot and requests again.
	s.SetSort(fsview.SortNameDesc)
	if s.MarkLoaded(thumb.Result{Job: next[0], CachePath: "/c/c.png"}) {
		t.Error("stale view result applied")
	}
	again := s.NextToLoad(4)
	if len(again) != 1 || again[0].View != s.View {
		t.Errorf("again = %+v", again)
	}
}

func TestSetThumbSize(t *testing.T) {
	s, _ := newTestState(t, ModeFiles)
	for _, j := range s.NextToLoad(10) {
		s.MarkLoaded(thumb.Result{Job: j, CachePath: "/c"})
	}
	s.SetThumbSize(10_000)
	if s.ThumbSize != config.MaxThumbSize {
		t.Errorf("size = %d, want clamp to %d", s.ThumbSize, config.MaxThumbSize)
	}
	for _, it := range s.Items {
		if it.Loaded || it.Thumb != "" {
			t.Errorf("%s still loaded after resize", it.Name)
		}
	}
}

func TestSearchAndHidden(t *testing.T) {
	s, _ := newTestState(t, ModeFiles)

	cands := s.SearchCandidates()
	if len(cands) != 4 {
		t.Fatalf("candidates = %d, want 4 (hidden excluded)", len(cands))
	}
	matches := search.Search(".png", cands, nil)
	s.ApplySearch(".png", matches)
	if !s.Searching() || len(s.Displayed) != 2 {
		t.Fatalf("displayed = %v", names(s))
	}
	if !s.ToggleHidden() {
		t.Error("ToggleHidden during a search should ask for a new search")
	}
	if len(s.SearchCandidates()) != 5 {
		t.Error("hidden files should now be candidates")
	}

	s.ClearSearch()
	if got := names(s); !slices.Equal(got, []string{"sub", ".hidden", "a.txt", "b.png", "c.png"}) {
		t.Errorf("displayed = %v", got)
	}
	if s.ToggleHidden() {
		t.Error("no search is active")
	}
	if len(s.Displayed) != 4 {
		t.Errorf("displayed = %v", names(s))
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		tmpl, path, want string
	}{
		{"convert [path] [part].png", "/a/b c/x.tar.gz", `convert "/a/b c/x.tar.gz" "x".png`},
		{"cp [name] [dir]/copy[ext]", "/p/q.jpg", `cp "q.jpg" "/p"/copy.jpg`},
		{"echo [name]", `/p/say "hi".txt`, `echo 'say "hi".txt'`},
		{"echo [ext]", "/p/noext", "echo ."},
		{"echo [ext]", "/home/u/.bashrc", "echo ."},
		{"echo [part][ext]", "/home/u/.config.bak", `echo "".bak`},
		{"echo [ext]", "/p/x.tar.gz", "echo .gz"},
	}
	for _, tt := range tests {
		if got := Expand(tt.tmpl, tt.path); got != tt.want {
			t.Errorf("Expand(%q, %q) = %q, want %q", tt.tmpl, tt.path, got, tt.want)
		}
	}
}

func TestRunCommand(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := RunCommand(context.Background(), "pwd; echo [part]", []string{path}, &out); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "CMD:pwd; echo \"pic\"") || !strings.Contains(got, "\npic\n") {
		t.Errorf("output = %q", got)
	}

	if err := RunCommand(context.Background(), "exit 3", []string{path}, &out); err == nil {
		t.Error("failing command should return an error")
	}
}

type fakeBookmarks struct{ added []string }

func (f *fakeBookmarks) AddBookmark(dir string) (config.Bookmark, error) {
	f.added = append(f.added, dir)
	return config.Bookmark{Label: filepath.Base(dir), Path: dir}, nil
}

func TestAddBookmark(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)
	var fb fakeBookmarks
	bm, err := s.AddBookmark(&fb, 0)
	if err != nil || bm.Label != "sub" || !slices.Equal(fb.added, []string{filepath.Join(dir, "sub")}) {
		t.Errorf("AddBookmark = %+v, %v (%v)", bm, err, fb.added)
	}
	if _, err := s.AddBookmark(&fb, 1); err == nil {
		t.Error("files cannot be bookmarked")
	}
	if _, err := s.AddBookmark(&fb, 99); !errors.Is(err, ErrNotExist) {
		t.Errorf("out of range err = %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"file": ModeFile, "FILES": ModeFiles, "save": ModeSave, "dir": ModeDir, "": ModeFiles} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("folder"); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestApplySearchAfterRemove(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)

	// The search runs over a snapshot; a delete lands before its result.
	matches := search.Search("c.png", s.SearchCandidates(), nil)
	if !s.RemovePath(filepath.Join(dir, "a.txt")) {
		t.Fatal("RemovePath(a.txt) = false")
	}
	s.ApplySearch("c.png", matches)

	got := names(s)
	if len(got) == 0 || got[0] != "c.png" {
		t.Fatalf("displayed = %v, want c.png first", got)
	}
	for _, n := range got {
		if !strings.HasSuffix(n, ".png") {
			t.Errorf("search for c.png shows %s", n)
		}
	}
	for d, i := range s.Displayed {
		if s.Items[i].DisplayIdx != d {
			t.Errorf("item %s has DisplayIdx %d, want %d", s.Items[i].Name, s.Items[i].DisplayIdx, d)
		}
	}
}

func TestLastClickedFollowsReorder(t *testing.T) {
	s, dir := newTestState(t, ModeFiles)
	s.SetColumns(4)

	s.Click(1, Mods{}, false) // a.txt
	s.SetSort(fsview.SortNameDesc)
	if got := names(s); !slices.Equal(got, []string{"sub", "c.png", "b.png", "a.txt"}) {
		t.Fatalf("displayed = %v", got)
	}
	if s.LastClicked.DisplayIdx != 3 {
		t.Fatalf("LastClicked.DisplayIdx = %d after sort, want 3", s.LastClicked.DisplayIdx)
	}
	s.Move(Left, Mods{})
	if got := selectedNames(s); !slices.Equal(got, []string{"b.png"}) {
		t.Errorf("left from a.txt selected %v, want [b.png]", got)
	}

	s.SetSort(fsview.SortNameAsc)
	s.Click(3, Mods{}, false) // c.png
	if err := os.WriteFile(filepath.Join(dir, "a0.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !s.InsertPath(filepath.Join(dir, "a0.png")) {
		t.Fatal("InsertPath(a0.png) = false")
	}
	if it, _ := s.Item(s.LastClicked.DisplayIdx); it == nil || it.Name != "c.png" {
		t.Errorf("LastClicked.DisplayIdx = %d does not point at c.png after insert", s.LastClicked.DisplayIdx)
	}

	s.ApplySearch("png", search.Search("png", s.SearchCandidates(), nil))
	if it, ok := s.Item(s.LastClicked.DisplayIdx); !ok || it.Name != "c.png" {
		t.Errorf("LastClicked.DisplayIdx = %d does not point at c.png during search", s.LastClicked.DisplayIdx)
	}
}
