package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/picker"
	"github.com/wethinkt/go-pikeru/internal/search"
	"github.com/wethinkt/go-pikeru/internal/thumb"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
	"github.com/wethinkt/go-pikeru/internal/watch"
)

// sizeStep is how much +/- change the thumbnail size.
const sizeStep = 20

type focus int

const (
	focusGrid focus = iota
	focusPath
	focusSearch
)

type modal int

const (
	modalNone modal = iota
	modalConfirm
	modalError
	modalNewDir
	modalSort
	modalCommands
	modalHelp
)

// ModelOptions wire a Model to its collaborators. Pool, Watcher and
// Captions may be nil.
type ModelOptions struct {
	Title    string
	State    *picker.State
	Config   *config.Config
	Pool     *thumb.Pool
	Watcher  *watch.Watcher
	Captions search.Source
	Inflight int       // thumbnail jobs in flight, default thumb.DefaultWorkers
	Output   io.Writer // where command templates write, default discarded
}

// Model is the picker window.
type Model struct {
	ctx      context.Context
	st       *picker.State
	cfg      *config.Config
	title    string
	pool     *thumb.Pool
	watcher  *watch.Watcher
	captions search.Source
	inflight int
	cmdOut   io.Writer

	keys          pickerKeyMap
	width, height int
	scroll        int
	focus         focus
	path          textinput.Model
	query         textinput.Model
	dirName       textinput.Model

	modal   modal
	confirm confirmDialog
	pending []string // paths waiting for the overwrite answer
	errText string
	menu    menu
	help    viewport.Model

	captionMap map[string]string
	clicks     picker.ClickTimer
	dragFrom   int // display index of a dragged directory, -1 when none
	dragOver   bool
	images     *imageTracker
	previewKey string
	previewErr string
	now        func() time.Time

	result    []string
	cancelled bool
	dirty     bool // sort, size or hidden filter changed
}

// NewModel creates a picker model. The state must already be loaded.
func NewModel(ctx context.Context, opts ModelOptions) *Model {
	cfg := opts.Config
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	inflight := opts.Inflight
	if inflight <= 0 {
		inflight = thumb.DefaultWorkers()
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	path := textinput.New()
	path.Prompt = i18n.T("tui.path.prompt", "Path: ")
	path.SetValue(opts.State.Pathbar)

	query := textinput.New()
	query.Prompt = i18n.T("tui.search.prompt", "Search: ")
	query.Placeholder = i18n.T("tui.search.placeholder", "press / to search names and captions")
	query.CharLimit = 256

	dirName := textinput.New()
	dirName.Placeholder = i18n.T("tui.newdir.placeholder", "directory name")

	keys := defaultPickerKeyMap()
	keys.DownDir.SetEnabled(opts.State.CanGoBack())
	return &Model{
		ctx:      ctx,
		st:       opts.State,
		cfg:      cfg,
		title:    opts.Title,
		pool:     opts.Pool,
		watcher:  opts.Watcher,
		captions: opts.Captions,
		inflight: inflight,
		cmdOut:   out,
		keys:     keys,
		path:     path,
		query:    query,
		dirName:  dirName,
		dragFrom: -1,
		images:   newImageTracker(),
		now:      time.Now,
	}
}

// Result returns the chosen paths, or nil when the picker was cancelled.
func (m *Model) Result() []string { return m.result }

// Cancelled reports whether the user dismissed the picker.
func (m *Model) Cancelled() bool { return m.cancelled }

// SaveSettings writes a changed sort mode, thumbnail size or hidden
// filter back to the config file.
func (m *Model) SaveSettings() error {
	if !m.dirty {
		return nil
	}
	m.cfg.Settings.SortBy = m.st.Sort.String()
	m.cfg.Settings.ThumbnailSize = m.st.ThumbSize
	m.cfg.Settings.ShowHidden = m.st.ShowHidden
	return m.cfg.Save()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.navigated(nil), m.waitThumb(), m.waitWatch())
}

func (m *Model) layout() layout {
	return computeLayout(m.width, m.height, m.st.ThumbSize, m.st.Mode)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		l := m.layout()
		m.st.SetColumns(l.cols)
		m.scroll = min(m.scroll, l.maxScroll(len(m.st.Displayed)))
		m.path.SetWidth(max(10, m.width-lenPrompt(m.path)-1))
		m.query.SetWidth(max(10, m.width-lenPrompt(m.query)-30))
		if m.modal == modalHelp {
			m.help = newHelpViewport(m.keys, m.width, m.height)
		}
		if m.st.Preview >= 0 {
			return m, m.openPreview()
		}
		return m, nil

	case thumbMsg:
		changed := m.st.MarkLoaded(msg.res)
		var raw tea.Cmd
		if msg.seq != "" {
			if changed {
				raw = rawCmd(msg.seq)
			} else {
				m.images.forget(msg.key)
			}
		}
		m.loadMore()
		return m, tea.Batch(raw, m.waitThumb())

	case thumbsClosedMsg, watchClosedMsg:
		return m, nil

	case watchMsg:
		m.applyWatch(msg.ev)
		return m, m.waitWatch()

	case captionsMsg:
		if msg.nav != m.st.Nav {
			return m, nil
		}
		if msg.err != nil {
			tuilog.Log.Warn("Failed to load captions", "error", msg.err)
		}
		m.captionMap = msg.captions
		if m.st.Searching() {
			return m, m.searchCmd(m.st.Query())
		}
		return m, nil

	case searchMsg:
		if msg.nav != m.st.Nav || msg.query != m.query.Value() {
			return m, nil
		}
		m.st.ApplySearch(msg.query, msg.matches)
		m.scroll = 0
		m.loadMore()
		return m, nil

	case previewMsg:
		if m.st.Preview < 0 || m.st.Items[m.st.Preview].Path != msg.path {
			if msg.seq != "" {
				m.images.forget(msg.key)
			}
			return m, nil
		}
		if msg.err != nil {
			m.previewErr = msg.err.Error()
			return m, nil
		}
		m.previewKey = msg.key
		return m, rawCmd(msg.seq)

	case cmdDoneMsg:
		if msg.err != nil {
			m.showError(fmt.Errorf("%s: %w", msg.label, msg.err))
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleClick(msg.Mouse())
	case tea.MouseReleaseMsg:
		return m.handleRelease(msg.Mouse())
	case tea.MouseMotionMsg:
		mouse := msg.Mouse()
		if m.dragFrom >= 0 {
			m.dragOver = mouse.X < bookmarkWidth && mouse.Y >= headerHeight
		}
		return m, nil
	case tea.MouseWheelMsg:
		return m.handleWheel(msg.Mouse())
	}

	// Cursor blink and other input messages.
	var cmd tea.Cmd
	switch m.focus {
	case focusPath:
		m.path, cmd = m.path.Update(msg)
	case focusSearch:
		m.query, cmd = m.query.Update(msg)
	}
	return m, cmd
}

func lenPrompt(ti textinput.Model) int { return len([]rune(ti.Prompt)) }

// finish ends the program with paths as the result.
func (m *Model) finish(paths []string) (tea.Model, tea.Cmd) {
	m.result = paths
	tuilog.Log.Info("Picker finished", "paths", len(paths))
	return m, tea.Quit
}

func (m *Model) cancel() (tea.Model, tea.Cmd) {
	m.cancelled = true
	tuilog.Log.Info("Picker cancelled")
	return m, tea.Quit
}

func (m *Model) showError(err error) {
	tuilog.Log.Warn("Picker error", "error", err)
	m.modal = modalError
	m.errText = err.Error()
}

// selectItems runs Select and acts on its outcome.
func (m *Model) selectItems(src picker.Source) (tea.Model, tea.Cmd) {
	out, err := m.st.Select(src)
	switch out.Kind {
	case picker.OutcomePrint:
		return m.finish(out.Paths)
	case picker.OutcomeNavigate:
		return m, m.navigated(err)
	case picker.OutcomeConfirmOverwrite:
		m.pending = out.Paths
		m.modal = modalConfirm
		m.confirm = newConfirmDialog(ConfirmOptions{
			Prompt: i18n.Tf("tui.confirm.overwrite", "%s already exists. Overwrite?", out.Paths[0]),
		})
		return m, nil
	}
	if err != nil {
		m.showError(err)
	}
	return m, nil
}

// navigated resets everything tied to the previous listing. err is the
// listing error, if any.
func (m *Model) navigated(err error) tea.Cmd {
	if err != nil {
		m.showError(err)
	}
	m.scroll = 0
	m.focus = focusGrid
	m.path.Blur()
	m.path.SetValue(m.st.Pathbar)
	m.query.Blur()
	m.query.Reset()
	m.captionMap = nil
	m.previewKey, m.previewErr = "", ""
	m.dragFrom = -1
	m.keys.DownDir.SetEnabled(m.st.CanGoBack())

	if m.pool != nil {
		m.pool.Flush()
	}
	if m.watcher != nil {
		m.watcher.SetDirs(m.st.Dirs)
	}
	m.loadMore()
	return tea.Batch(rawCmd(m.images.reset()), m.loadCaptions())
}

// loadMore submits thumbnail jobs up to the in-flight limit.
func (m *Model) loadMore() {
	jobs := m.st.NextToLoad(m.inflight)
	if m.pool == nil {
		return
	}
	for _, j := range jobs {
		m.pool.Submit(j)
	}
}

// waitThumb waits for the next thumbnail and prepares its transmission
// off the UI loop.
func (m *Model) waitThumb() tea.Cmd {
	if m.pool == nil {
		return nil
	}
	results := m.pool.Results()
	images := m.images
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return thumbsClosedMsg{}
		}
		msg := thumbMsg{res: r, key: r.CachePath}
		if r.Err == nil && r.CachePath != "" {
			cols, rows := tileImage(r.Size)
			seq, err := images.prepareImage(r.CachePath, r.CachePath, cols, rows, 0)
			if err != nil {
				tuilog.Log.Debug("Thumbnail transmit failed", "path", r.CachePath, "error", err)
			}
			msg.seq = seq
		}
		return msg
	}
}

func (m *Model) waitWatch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return watchMsg{ev: ev}
	}
}

func (m *Model) applyWatch(ev watch.Event) {
	switch ev.Op {
	case watch.Create:
		if m.st.InsertPath(ev.Path) {
			m.loadMore()
		}
	case watch.Delete:
		m.st.RemovePath(ev.Path)
		m.scroll = min(m.scroll, m.layout().maxScroll(len(m.st.Displayed)))
	}
}

func (m *Model) loadCaptions() tea.Cmd {
	if m.captions == nil {
		return nil
	}
	src := m.captions
	nav := m.st.Nav
	dirs := slices.Clone(m.st.Dirs)
	ctx := m.ctx
	return func() tea.Msg {
		caps, err := src.Captions(ctx, dirs)
		return captionsMsg{nav: nav, captions: caps, err: err}
	}
}

// searchCmd matches query over the current candidates off the UI loop.
func (m *Model) searchCmd(query string) tea.Cmd {
	cands := m.st.SearchCandidates()
	captions := m.captionMap
	nav := m.st.Nav
	return func() tea.Msg {
		return searchMsg{query: query, nav: nav, matches: search.Search(query, cands, captions)}
	}
}

// queryChanged reacts to an edit of the search field.
func (m *Model) queryChanged() tea.Cmd {
	q := m.query.Value()
	if q == "" {
		m.st.ClearSearch()
		m.scroll = 0
		m.loadMore()
		return nil
	}
	return m.searchCmd(q)
}

// openPreview shows the image at Items index i, or closes the preview.
func (m *Model) openPreview() tea.Cmd {
	m.previewKey, m.previewErr = "", ""
	if m.st.Preview < 0 {
		return nil
	}
	path := m.st.Items[m.st.Preview].Path
	l := m.layout()
	cols, rows := max(1, l.gridW-2), max(1, l.gridH-2)
	key := fmt.Sprintf("preview:%s:%dx%d", path, cols, rows)
	images := m.images
	return func() tea.Msg {
		if getGraphicsProtocol() != protocolKitty {
			return previewMsg{path: path, key: key}
		}
		seq, err := images.prepareImage(key, path, cols, rows, max(cols*cellW, rows*cellH))
		return previewMsg{path: path, key: key, seq: seq, err: err}
	}
}

func (m *Model) setThumbSize(n int) {
	before := m.st.ThumbSize
	m.st.SetThumbSize(n)
	if m.st.ThumbSize == before {
		return
	}
	m.dirty = true
	if m.pool != nil {
		m.pool.Flush()
	}
	m.st.SetColumns(m.layout().cols)
	m.scroll = m.layout().scrollFor(m.st.LastClicked.DisplayIdx, 0)
	m.loadMore()
}

func (m *Model) setSort(mode fsview.SortMode) {
	if mode == m.st.Sort {
		return
	}
	m.st.SetSort(mode)
	m.dirty = true
	m.loadMore()
}

// keepVisible scrolls the last clicked item into view.
func (m *Model) keepVisible() {
	m.scroll = m.layout().scrollFor(m.st.LastClicked.DisplayIdx, m.scroll)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}
	switch m.focus {
	case focusPath:
		return m.handlePathKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	}

	mods := picker.Mods{Shift: msg.Mod.Contains(tea.ModShift), Ctrl: msg.Mod.Contains(tea.ModCtrl)}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.cancel()
	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.st.Preview >= 0:
			m.st.ClosePreview()
			m.previewKey = ""
		case m.st.Searching():
			m.query.Reset()
			return m, m.queryChanged()
		default:
			return m.cancel()
		}
	case key.Matches(msg, m.keys.Select):
		return m.selectItems(picker.SourceClick)
	case key.Matches(msg, m.keys.Open):
		return m.selectItems(picker.SourceButton)
	case key.Matches(msg, m.keys.DownDir):
		if ok, err := m.st.DownDir(); ok {
			return m, m.navigated(err)
		}
	case key.Matches(msg, m.keys.Up):
		return m.move(picker.Up, mods)
	case key.Matches(msg, m.keys.Down):
		return m.move(picker.Down, mods)
	case key.Matches(msg, m.keys.Left):
		return m.move(picker.Left, mods)
	case key.Matches(msg, m.keys.Right):
		return m.move(picker.Right, mods)
	case key.Matches(msg, m.keys.UpDir):
		nav := m.st.Nav
		if err := m.st.UpDir(); err != nil || m.st.Nav != nav {
			return m, m.navigated(err)
		}
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.PathEntry):
		m.focus = focusPath
		m.path.SetValue(m.st.Pathbar)
		m.path.CursorEnd()
		return m, m.path.Focus()
	case key.Matches(msg, m.keys.Hidden):
		m.dirty = true
		if m.st.ToggleHidden() {
			return m, m.searchCmd(m.st.Query())
		}
		m.scroll = min(m.scroll, m.layout().maxScroll(len(m.st.Displayed)))
		m.loadMore()
	case key.Matches(msg, m.keys.Sort):
		items := make([]string, len(fsview.SortModes))
		cur := 0
		for i, mode := range fsview.SortModes {
			items[i] = sortLabel(mode)
			if mode == m.st.Sort {
				cur = i
			}
		}
		m.menu = newMenu(i18n.T("tui.sort.title", "Sort by"), items, cur)
		m.modal = modalSort
	case key.Matches(msg, m.keys.Commands):
		if len(m.cfg.Commands) == 0 {
			m.showError(errors.New(i18n.T("tui.commands.none", "No commands configured")))
			return m, nil
		}
		items := make([]string, len(m.cfg.Commands))
		for i, c := range m.cfg.Commands {
			items[i] = c.Label
		}
		m.menu = newMenu(i18n.T("tui.commands.title", "Run command"), items, 0)
		m.modal = modalCommands
	case key.Matches(msg, m.keys.NewDir):
		m.dirName.Reset()
		m.modal = modalNewDir
		return m, m.dirName.Focus()
	case key.Matches(msg, m.keys.Bigger):
		m.setThumbSize(m.st.ThumbSize + sizeStep)
	case key.Matches(msg, m.keys.Smaller):
		m.setThumbSize(m.st.ThumbSize - sizeStep)
	case key.Matches(msg, m.keys.Preview):
		if m.st.Preview >= 0 {
			m.st.ClosePreview()
			m.previewKey = ""
			return m, nil
		}
		d := m.st.LastClicked.DisplayIdx
		if it, ok := m.st.Item(d); ok && it.Kind == fsview.KindImage {
			m.st.RightClick(d)
			return m, m.openPreview()
		}
	case key.Matches(msg, m.keys.NextImage):
		if m.st.NextImage(1) {
			m.keepVisible()
			return m, m.openPreview()
		}
	case key.Matches(msg, m.keys.PrevImage):
		if m.st.NextImage(-1) {
			m.keepVisible()
			return m, m.openPreview()
		}
	case key.Matches(msg, m.keys.Bookmark):
		if m.st.LastClicked.Index < 0 {
			return m, nil
		}
		if _, err := m.st.AddBookmark(m.cfg, m.st.LastClicked.DisplayIdx); err != nil {
			m.showError(err)
		}
	case key.Matches(msg, m.keys.Help):
		m.help = newHelpViewport(m.keys, m.width, m.height)
		m.modal = modalHelp
	}
	return m, nil
}

func (m *Model) move(dir picker.Direction, mods picker.Mods) (tea.Model, tea.Cmd) {
	previewing := m.st.Preview >= 0
	m.st.Move(dir, mods)
	m.keepVisible()
	if previewing {
		return m, m.openPreview()
	}
	return m, nil
}

func (m *Model) handlePathKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusGrid
		m.path.Blur()
		m.path.SetValue(m.st.Pathbar)
		return m, nil
	case "enter":
		m.focus = focusGrid
		m.path.Blur()
		m.st.Pathbar = config.ExpandHome(m.path.Value())
		return m.selectItems(picker.SourceText)
	case "ctrl+c":
		return m.cancel()
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusGrid
		m.query.Blur()
		m.query.Reset()
		return m, m.queryChanged()
	case "enter", "tab":
		m.focus = focusGrid
		m.query.Blur()
		return m, nil
	case "ctrl+c":
		return m.cancel()
	}
	before := m.query.Value()
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	if m.query.Value() != before {
		return m, tea.Batch(cmd, m.queryChanged())
	}
	return m, cmd
}

func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirm:
		if !m.confirm.update(msg) {
			return m, nil
		}
		m.modal = modalNone
		if m.confirm.result == ConfirmYes {
			return m.finish(m.pending)
		}
		m.pending = nil

	case modalError:
		m.modal = modalNone
		m.errText = ""

	case modalNewDir:
		switch msg.String() {
		case "esc":
			m.modal = modalNone
			m.dirName.Blur()
		case "enter":
			m.modal = modalNone
			m.dirName.Blur()
			if _, err := m.st.NewDir(m.dirName.Value()); err != nil {
				m.showError(err)
			}
			m.loadMore()
		default:
			var cmd tea.Cmd
			m.dirName, cmd = m.dirName.Update(msg)
			return m, cmd
		}

	case modalSort:
		i, done := m.menu.update(msg)
		if done {
			m.modal = modalNone
			if i >= 0 {
				m.setSort(fsview.SortModes[i])
			}
		}

	case modalCommands:
		i, done := m.menu.update(msg)
		if done {
			m.modal = modalNone
			if i >= 0 {
				return m, m.runCommand(m.cfg.Commands[i])
			}
		}

	case modalHelp:
		switch msg.String() {
		case "esc", "q", "?", "enter":
			m.modal = modalNone
		default:
			var cmd tea.Cmd
			m.help, cmd = m.help.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// runCommand runs c over the selection, or the shown directory when
// nothing is selected.
func (m *Model) runCommand(c config.Command) tea.Cmd {
	paths := m.st.SelectedPaths()
	if len(paths) == 0 {
		paths = []string{m.st.Dirs[0]}
	}
	ctx, out := m.ctx, m.cmdOut
	return func() tea.Msg {
		return cmdDoneMsg{label: c.Label, err: picker.RunCommand(ctx, c.Template, paths, out)}
	}
}

func sortLabel(mode fsview.SortMode) string {
	switch mode {
	case fsview.SortNameDesc:
		return i18n.T("tui.sort.nameDesc", "Name, Z to A")
	case fsview.SortTimeDesc:
		return i18n.T("tui.sort.timeDesc", "Newest first")
	case fsview.SortTimeAsc:
		return i18n.T("tui.sort.timeAsc", "Oldest first")
	default:
		return i18n.T("tui.sort.nameAsc", "Name, A to Z")
	}
}

func (m *Model) handleClick(mouse tea.Mouse) (tea.Model, tea.Cmd) {
	if m.modal != modalNone {
		if m.modal == modalError {
			m.modal = modalNone
		}
		return m, nil
	}
	l := m.layout()
	h := l.hitTest(mouse.X, mouse.Y, m.scroll, len(m.st.Displayed), len(m.cfg.Bookmarks))
	mods := picker.Mods{Shift: mouse.Mod.Contains(tea.ModShift), Ctrl: mouse.Mod.Contains(tea.ModCtrl)}

	switch h.kind {
	case hitPath:
		m.focus = focusPath
		m.query.Blur()
		return m, m.path.Focus()
	case hitSearch:
		m.focus = focusSearch
		m.path.Blur()
		return m, m.query.Focus()
	}
	if m.focus != focusGrid {
		m.focus = focusGrid
		m.path.Blur()
		m.query.Blur()
	}

	switch mouse.Button {
	case tea.MouseLeft:
		switch h.kind {
		case hitTile:
			if m.clicks.Click(h.index, m.now()) {
				m.st.Click(h.index, picker.Mods{}, true)
				return m.selectItems(picker.SourceClick)
			}
			m.st.Click(h.index, mods, false)
			if it, ok := m.st.Item(h.index); ok && it.IsDir {
				m.dragFrom = h.index
			}
		case hitBookmark:
			return m, m.goTo(m.cfg.Bookmarks[h.index].Path)
		case hitButton:
			if button(h.index) == buttonCancel {
				return m.cancel()
			}
			return m.selectItems(picker.SourceButton)
		}

	case tea.MouseRight:
		switch h.kind {
		case hitTile:
			m.st.RightClick(h.index)
			if m.st.Preview >= 0 {
				return m, m.openPreview()
			}
		case hitBookmark:
			if err := m.cfg.RemoveBookmark(h.index); err != nil {
				m.showError(err)
			}
		default:
			m.st.ClosePreview()
		}

	case tea.MouseMiddle:
		if h.kind == hitTile {
			m.st.MiddleClick(h.index)
		}
	}
	return m, nil
}

func (m *Model) goTo(dir string) tea.Cmd {
	return m.navigated(m.st.GoTo(config.ExpandHome(dir)))
}

// handleRelease finishes a drag onto the bookmark column.
func (m *Model) handleRelease(mouse tea.Mouse) (tea.Model, tea.Cmd) {
	from := m.dragFrom
	m.dragFrom, m.dragOver = -1, false
	if from < 0 {
		return m, nil
	}
	h := m.layout().hitTest(mouse.X, mouse.Y, m.scroll, len(m.st.Displayed), len(m.cfg.Bookmarks))
	if h.kind != hitBookmark && h.kind != hitBookmarkColumn {
		return m, nil
	}
	if _, err := m.st.AddBookmark(m.cfg, from); err != nil {
		m.showError(err)
	}
	return m, nil
}

func (m *Model) handleWheel(mouse tea.Mouse) (tea.Model, tea.Cmd) {
	if m.modal == modalHelp {
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(tea.MouseWheelMsg(mouse))
		return m, cmd
	}
	if m.modal != modalNone {
		return m, nil
	}
	step := 0
	switch mouse.Button {
	case tea.MouseWheelUp:
		step = -1
	case tea.MouseWheelDown:
		step = 1
	}
	if m.st.Preview >= 0 {
		if m.st.NextImage(step) {
			m.keepVisible()
			return m, m.openPreview()
		}
		return m, nil
	}
	l := m.layout()
	m.scroll = max(0, min(m.scroll+step, l.maxScroll(len(m.st.Displayed))))
	return m, nil
}
