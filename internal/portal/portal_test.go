package portal

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wethinkt/go-pikeru/internal/caption"
	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/index"
)

type fakeHook struct{ states []bool }

func (h *fakeHook) SetPickerOpen(open bool) { h.states = append(h.states, open) }

type recorder struct {
	lines []string
	env   []string
	out   string
}

func (r *recorder) run(_ context.Context, line string, env []string) (string, error) {
	r.lines = append(r.lines, line)
	r.env = env
	return r.out, nil
}

func newChooser(t *testing.T, out string) (*FileChooser, *recorder, *fakeHook) {
	t.Helper()
	hook := &fakeHook{}
	rec := &recorder{out: out}
	fc := NewFileChooser(config.FilePickerConfig{
		Cmd:            "pick",
		DefaultSaveDir: "/saves",
		PostprocessDir: "/tmp/pk_postprocess",
		Postprocessor:  "convert",
	}, hook)
	fc.run = rec.run
	return fc, rec, hook
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	fc, rec, hook := newChooser(t, a+"\n"+b+"\n")
	launched := false
	fc.BeforeLaunch = func() { launched = true }
	fc.prevPath = "/start"

	code, results, derr := fc.OpenFile("/h", "app", "", "Open", map[string]dbus.Variant{
		"multiple": dbus.MakeVariant(true),
	})
	if derr != nil || code != ResponseSuccess {
		t.Fatalf("OpenFile = %d, %v", code, derr)
	}
	uris, _ := results["uris"].Value().([]string)
	if !slices.Equal(uris, []string{"file://" + a, "file://" + b}) {
		t.Errorf("uris = %v", uris)
	}
	if want := `pick 1 0 0 "/start"`; rec.lines[0] != want {
		t.Errorf("command = %q, want %q", rec.lines[0], want)
	}
	if !slices.Contains(rec.env, "POSTPROCESS_DIR=/tmp/pk_postprocess") || !slices.Contains(rec.env, "POSTPROCESSOR=convert") {
		t.Errorf("env = %v", rec.env)
	}
	if !slices.Equal(hook.states, []bool{true, false}) {
		t.Errorf("picker-open transitions = %v", hook.states)
	}
	if !launched {
		t.Error("BeforeLaunch not called")
	}
	if fc.PrevPath() != dir {
		t.Errorf("PrevPath = %q, want %q", fc.PrevPath(), dir)
	}
}

func TestOpenFileCancelled(t *testing.T) {
	fc, rec, _ := newChooser(t, "")
	code, results, _ := fc.OpenFile("/h", "app", "", "Open", map[string]dbus.Variant{
		"directory": dbus.MakeVariant(true),
	})
	if code != ResponseCancelled || len(results) != 0 {
		t.Errorf("OpenFile = %d, %v", code, results)
	}
	if !strings.HasPrefix(rec.lines[0], "pick 0 1 0 ") {
		t.Errorf("command = %q", rec.lines[0])
	}
}

func TestPrevPathSkipsPostprocessDir(t *testing.T) {
	fc, _, _ := newChooser(t, "/tmp/pk_postprocess/out.png\n")
	fc.prevPath = "/keep"
	fc.OpenFile("/h", "app", "", "Open", nil)
	if fc.PrevPath() != "/keep" {
		t.Errorf("PrevPath = %q, want /keep", fc.PrevPath())
	}

	fc, _, _ = newChooser(t, "/no/such/dir/file.png\n")
	fc.prevPath = "/keep"
	fc.OpenFile("/h", "app", "", "Open", nil)
	if fc.PrevPath() != "/keep" {
		t.Errorf("PrevPath = %q after missing parent", fc.PrevPath())
	}
}

func TestSaveFile(t *testing.T) {
	fc, rec, _ := newChooser(t, "/saves/report.pdf\n")
	code, _, _ := fc.SaveFile("/h", "app", "", "Save", map[string]dbus.Variant{
		"current_folder": dbus.MakeVariant([]byte("/docs\x00")),
		"current_name":   dbus.MakeVariant("report.pdf"),
	})
	if code != ResponseSuccess {
		t.Fatalf("SaveFile = %d", code)
	}
	if want := `pick 0 0 1 "/docs/report.pdf"`; rec.lines[0] != want {
		t.Errorf("command = %q, want %q", rec.lines[0], want)
	}

	fc.SaveFile("/h", "app", "", "Save", map[string]dbus.Variant{})
	if want := `pick 0 0 1 "/saves/download"`; rec.lines[1] != want {
		t.Errorf("default command = %q, want %q", rec.lines[1], want)
	}
}

type fakeIndex struct {
	dirs      []string
	active    *bool
	respect   bool
	patterns  []string
	captioned []index.Hit
}

func (f *fakeIndex) Update(dirs []string) { f.dirs = append(f.dirs, dirs...) }
func (f *fakeIndex) PauseResume(active bool) { f.active = &active }
func (f *fakeIndex) Configure(respect bool, patterns []string) {
	f.respect, f.patterns = respect, patterns
}
func (f *fakeIndex) Status() index.Status {
	return index.Status{Running: true, Pending: f.dirs}
}
func (f *fakeIndex) Count(context.Context) (int, error) { return len(f.captioned), nil }
func (f *fakeIndex) Search(_ context.Context, q string, _ []string) ([]index.Hit, error) {
	var out []index.Hit
	for _, h := range f.captioned {
		if strings.Contains(h.Caption, q) {
			out = append(out, h)
		}
	}
	return out, nil
}

func TestSearchIndexer(t *testing.T) {
	fi := &fakeIndex{}
	si := NewSearchIndexer(fi)

	si.Update([]string{"/a", "/b"})
	si.PauseResume(false)
	si.Configure(true, "*.tmp\n\n  build/  \n")

	if !slices.Equal(fi.dirs, []string{"/a", "/b"}) {
		t.Errorf("dirs = %v", fi.dirs)
	}
	if fi.active == nil || *fi.active {
		t.Error("PauseResume(false) should pause")
	}
	if !fi.respect || !slices.Equal(fi.patterns, []string{"*.tmp", "build/"}) {
		t.Errorf("Configure = %v, %v", fi.respect, fi.patterns)
	}
}

func TestServer(t *testing.T) {
	fi := &fakeIndex{
		dirs:      []string{"/pics"},
		captioned: []index.Hit{{Path: "/pics/a.png", Caption: "a cat"}, {Path: "/pics/b.png", Caption: "a dog"}},
	}
	srv := httptest.NewServer(NewServer("127.0.0.1:0", fi, fi, true).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	var st StatusResponse
	json.NewDecoder(resp.Body).Decode(&st)
	resp.Body.Close()
	if st.Captions != 2 || st.Indexer == nil || !st.Indexer.Running {
		t.Errorf("status = %+v", st)
	}

	resp, err = http.Get(srv.URL + "/api/v1/search?q=cat")
	if err != nil {
		t.Fatal(err)
	}
	var sr SearchResponse
	json.NewDecoder(resp.Body).Decode(&sr)
	resp.Body.Close()
	if len(sr.Hits) != 1 || sr.Hits[0].Path != "/pics/a.png" {
		t.Errorf("search = %+v", sr)
	}

	resp, err = http.Get(srv.URL + "/api/v1/search")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("search without q = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics = %d", resp.StatusCode)
	}
}

func TestNewCaptioner(t *testing.T) {
	c := NewCaptioner(config.IndexerConfig{Cmd: "describe", Check: "true"}, "")
	if cc, ok := c.(caption.CommandCaptioner); !ok || cc.Cmd != "describe" || cc.Check != "true" {
		t.Errorf("with cmd: got %#v", c)
	}

	c = NewCaptioner(config.IndexerConfig{}, "http://captioner:9000/")
	cl, ok := c.(*caption.Client)
	if !ok {
		t.Fatalf("without cmd: got %T, want *caption.Client", c)
	}
	if cl.BaseURL != "http://captioner:9000" || cl.Endpoint != caption.EndpointCaption {
		t.Errorf("client = %+v", cl)
	}
}

func TestServerPortHeldByInstance(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port
	if err := config.RegisterInstance(config.Instance{
		Type:      config.InstancePortal,
		PID:       os.Getpid(),
		Port:      port,
		StartedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	defer config.UnregisterInstance(os.Getpid())

	err = NewServer(ln.Addr().String(), nil, nil, true).ListenAndServe(context.Background())
	if err == nil || !strings.Contains(err.Error(), "held by pikeru portal") {
		t.Errorf("ListenAndServe on a busy port = %v", err)
	}
}
