package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.duckdb")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if d.Path() != path {
		t.Errorf("Path = %q", d.Path())
	}
	var n int
	if err := d.QueryRow("SELECT count(*) FROM descriptions").Scan(&n); err != nil {
		t.Fatalf("descriptions table missing: %v", err)
	}
}

func TestExternalAccessBlocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.duckdb")
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Query("SELECT * FROM read_csv_auto('/etc/passwd')"); err == nil {
		t.Error("reading an external file should fail")
	}
	d.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer ro.Close()
	if _, err := ro.Query("SELECT * FROM read_csv_auto('/etc/passwd')"); err == nil {
		t.Error("reading an external file should fail in read-only mode")
	}
	if _, err := ro.Exec("INSERT INTO descriptions VALUES ('a', '/d', 'x', 1)"); err == nil {
		t.Error("writes should fail in read-only mode")
	}
}

func TestOpenReadOnlyMissing(t *testing.T) {
	if _, err := OpenReadOnly(filepath.Join(t.TempDir(), "none.duckdb")); err == nil {
		t.Error("a missing database should not be created read-only")
	}
}

func TestLazyPool(t *testing.T) {
	p := NewLazyPool(filepath.Join(t.TempDir(), "index.duckdb"), 20*time.Millisecond)
	defer p.Close()

	a, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("Acquire should reuse the open connection")
	}

	p.Release()
	time.Sleep(60 * time.Millisecond)
	if !p.IsOpen() {
		t.Fatal("connection closed while still held")
	}

	p.Release()
	deadline := time.Now().Add(2 * time.Second)
	for p.IsOpen() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.IsOpen() {
		t.Error("idle connection was not closed")
	}
}

func TestLazyPoolCloseIdle(t *testing.T) {
	p := NewLazyPool(filepath.Join(t.TempDir(), "index.duckdb"), time.Hour)
	defer p.Close()

	if _, err := p.Acquire(); err != nil {
		t.Fatal(err)
	}
	if p.CloseIdle() {
		t.Error("CloseIdle closed a held connection")
	}
	p.Release()
	if !p.CloseIdle() || p.IsOpen() {
		t.Error("CloseIdle left an idle connection open")
	}
}
