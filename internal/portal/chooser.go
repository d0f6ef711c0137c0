// Package portal implements the xdg-desktop-portal backend: a FileChooser
// that launches the picker for other applications, and a SearchIndexer
// that feeds the caption indexer.
package portal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/picker"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// Portal response codes.
const (
	ResponseSuccess   uint32 = 0
	ResponseCancelled uint32 = 1
)

// PickerHook is told when the launched picker opens and closes.
type PickerHook interface {
	SetPickerOpen(open bool)
}

// Runner runs a shell command line with extra environment and returns its
// standard output.
type Runner func(ctx context.Context, line string, env []string) (string, error)

// FileChooser serves org.freedesktop.impl.portal.FileChooser.
type FileChooser struct {
	cfg  config.FilePickerConfig
	hook PickerHook
	run  Runner

	// BeforeLaunch runs before the picker starts, e.g. to let go of the
	// caption database so the picker can read it.
	BeforeLaunch func()

	mu       sync.Mutex
	prevPath string
}

// NewFileChooser returns a chooser that launches cfg.Cmd. hook may be nil.
func NewFileChooser(cfg config.FilePickerConfig, hook PickerHook) *FileChooser {
	home, _ := os.UserHomeDir()
	return &FileChooser{cfg: cfg, hook: hook, run: runShell, prevPath: home}
}

// OpenFile asks the user for files or a directory to open.
func (fc *FileChooser) OpenFile(handle dbus.ObjectPath, appID, parent, title string, options map[string]dbus.Variant) (uint32, map[string]dbus.Variant, *dbus.Error) {
	multi := boolOption(options, "multiple")
	dir := boolOption(options, "directory")
	tuilog.Log.Info("OpenFile", "app", appID, "title", title, "multiple", multi, "directory", dir)

	fc.mu.Lock()
	start := fc.prevPath
	fc.mu.Unlock()

	code, results := fc.selectFiles(context.Background(), fc.command(multi, dir, false, start))
	requestsTotal.WithLabelValues("OpenFile", resultLabel(code)).Inc()
	return code, results, nil
}

// SaveFile asks the user for a path to save to.
func (fc *FileChooser) SaveFile(handle dbus.ObjectPath, appID, parent, title string, options map[string]dbus.Variant) (uint32, map[string]dbus.Variant, *dbus.Error) {
	dir := fc.cfg.DefaultSaveDir
	if v, ok := options["current_folder"]; ok {
		if b, ok := v.Value().([]byte); ok && len(b) > 0 {
			dir = string(bytes.TrimRight(b, "\x00"))
		}
	}
	name := "download"
	if v, ok := options["current_name"]; ok {
		if s, ok := v.Value().(string); ok && s != "" {
			name = s
		}
	}
	tuilog.Log.Info("SaveFile", "app", appID, "title", title, "dir", dir, "name", name)

	code, results := fc.selectFiles(context.Background(), fc.command(false, false, true, filepath.Join(dir, name)))
	requestsTotal.WithLabelValues("SaveFile", resultLabel(code)).Inc()
	return code, results, nil
}

// command builds the picker launch line: cmd multi dir save path.
func (fc *FileChooser) command(multi, dir, save bool, path string) string {
	return fmt.Sprintf("%s %d %d %d %s", fc.cfg.Cmd, b2i(multi), b2i(dir), b2i(save), picker.Shquote(config.ExpandHome(path)))
}

func (fc *FileChooser) env() []string {
	return []string{
		"POSTPROCESS_DIR=" + fc.cfg.PostprocessDir,
		"POSTPROCESSOR=" + fc.cfg.Postprocessor,
	}
}

func (fc *FileChooser) selectFiles(ctx context.Context, line string) (uint32, map[string]dbus.Variant) {
	if fc.hook != nil {
		fc.hook.SetPickerOpen(true)
	}
	if fc.BeforeLaunch != nil {
		fc.BeforeLaunch()
	}
	tuilog.Log.Debug("Launching picker", "cmd", line)
	out, err := fc.run(ctx, line, fc.env())
	if fc.hook != nil {
		fc.hook.SetPickerOpen(false)
	}
	if err != nil {
		tuilog.Log.Error("Picker failed", "error", err)
	}

	uris := fc.collect(out)
	if len(uris) == 0 {
		return ResponseCancelled, map[string]dbus.Variant{}
	}
	return ResponseSuccess, map[string]dbus.Variant{"uris": dbus.MakeVariant(uris)}
}

// collect turns picker output into URIs and remembers where the first
// result lives for the next OpenFile.
func (fc *FileChooser) collect(out string) []string {
	var uris []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if len(uris) == 0 {
			if dir, ok := fc.parentDir(line); ok {
				fc.mu.Lock()
				fc.prevPath = dir
				fc.mu.Unlock()
			}
		}
		uris = append(uris, "file://"+line)
	}
	return uris
}

func (fc *FileChooser) parentDir(path string) (string, bool) {
	parent := filepath.Dir(path)
	if parent == filepath.Clean(fc.cfg.PostprocessDir) {
		return "", false
	}
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return "", false
	}
	return parent, true
}

// PrevPath returns the folder the next OpenFile starts in.
func (fc *FileChooser) PrevPath() string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.prevPath
}

func runShell(ctx context.Context, line string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		if err != nil {
			tuilog.Log.Error("From filepicker", "stderr", msg)
		} else {
			tuilog.Log.Info("From filepicker", "stderr", msg)
		}
	}
	return stdout.String(), err
}

func boolOption(options map[string]dbus.Variant, key string) bool {
	v, ok := options[key]
	if !ok {
		return false
	}
	b, ok := v.Value().(bool)
	if !ok {
		tuilog.Log.Warn("Option has the wrong type", "option", key, "signature", v.Signature().String())
	}
	return b
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func resultLabel(code uint32) string {
	if code == ResponseSuccess {
		return "success"
	}
	return "cancelled"
}
