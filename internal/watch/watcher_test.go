package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := New(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	w.SetDirs([]string{dir})
	return w
}

func waitFor(t *testing.T, w *Watcher, want Event) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %+v", want)
		}
	}
}

func TestCreateAndDelete(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	file := filepath.Join(dir, "a.png")
	if err := os.WriteFile(file, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, Event{Op: Create, Path: file})

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, Event{Op: Create, Path: sub})

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, Event{Op: Delete, Path: file})
}

func TestDeleteCancelsPendingCreate(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	file := filepath.Join(dir, "tmp.part")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, Event{Op: Delete, Path: file})

	select {
	case ev := <-w.Events():
		if ev.Op == Create && ev.Path == file {
			t.Errorf("create of a deleted file was reported")
		}
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSetDirsReplacesWatches(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	w := newWatcher(t, first)
	w.SetDirs([]string{second})

	if err := os.WriteFile(filepath.Join(first, "ignored"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(second, "seen")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if filepath.Dir(ev.Path) == first {
				t.Fatalf("event from an unwatched dir: %+v", ev)
			}
			if ev.Path == file {
				return
			}
		case <-timeout:
			t.Fatal("timed out")
		}
	}
}

func TestOpString(t *testing.T) {
	if Create.String() != "create" || Delete.String() != "delete" {
		t.Error("unexpected Op names")
	}
}
