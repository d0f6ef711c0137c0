package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClientCaption(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != EndpointInterrogate {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(response{Caption: " a red square \n"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", EndpointInterrogate, "")
	text, err := c.Caption(context.Background(), writePNG(t, 1024, 256))
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if text != "a red square" {
		t.Errorf("caption = %q", text)
	}
	if got.Model != DefaultModel {
		t.Errorf("model = %q", got.Model)
	}

	raw, err := base64.StdEncoding.DecodeString(got.Image)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 512 || cfg.Height != 128 {
		t.Errorf("uploaded %dx%d, want 512x128", cfg.Width, cfg.Height)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "").Caption(context.Background(), writePNG(t, 4, 4))
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v, want a 503 error", err)
	}
}

func TestClientOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", "")
	if c.Online(context.Background()) {
		t.Error("closed server reported online")
	}
	if _, err := c.Caption(context.Background(), writePNG(t, 4, 4)); !errors.Is(err, ErrOffline) {
		t.Errorf("err = %v, want ErrOffline", err)
	}
}

func TestClientOnline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if !NewClient(srv.URL, "", "").Online(context.Background()) {
		t.Error("any HTTP answer means online")
	}
}

func TestCommandCaptioner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	c := CommandCaptioner{Cmd: "echo caption for", Check: "true"}
	text, err := c.Caption(context.Background(), "/pics/my cat.png")
	if err != nil {
		t.Fatal(err)
	}
	if text != "caption for /pics/my cat.png" {
		t.Errorf("caption = %q", text)
	}
	if !c.Online(context.Background()) {
		t.Error("check `true` should be online")
	}
	if (CommandCaptioner{Check: "false"}).Online(context.Background()) {
		t.Error("check `false` should be offline")
	}
	if _, err := (CommandCaptioner{Cmd: "exit 1;"}).Caption(context.Background(), "x"); err == nil {
		t.Error("failing command should error")
	}
}
