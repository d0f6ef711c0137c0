package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func notOnPath(string) (string, error) { return "", errors.New("not found") }

func TestFindWrapper_PrefersSibling(t *testing.T) {
	dir := t.TempDir()
	sibling := filepath.Join(dir, wrapperName)
	if err := os.WriteFile(sibling, nil, 0755); err != nil {
		t.Fatal(err)
	}

	got := findWrapper(
		func() (string, error) { return filepath.Join(dir, "xdg-desktop-portal-pikeru"), nil },
		os.Stat,
		func(string) (string, error) { return "/usr/bin/" + wrapperName, nil },
		nil,
	)
	if got != sibling {
		t.Fatalf("expected sibling %q, got %q", sibling, got)
	}
}

func TestFindWrapper_ShareDirBesideBin(t *testing.T) {
	prefix := t.TempDir()
	share := filepath.Join(prefix, "share", "xdg-desktop-portal-pikeru")
	if err := os.MkdirAll(share, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(share, wrapperName)
	if err := os.WriteFile(want, nil, 0755); err != nil {
		t.Fatal(err)
	}

	got := findWrapper(
		func() (string, error) { return filepath.Join(prefix, "bin", "pikeru"), nil },
		os.Stat, notOnPath, nil,
	)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFindWrapper_FallsBackToPATHThenSystem(t *testing.T) {
	exe := func() (string, error) { return filepath.Join(t.TempDir(), "pikeru"), nil }

	got := findWrapper(exe, os.Stat, func(string) (string, error) { return "/usr/bin/" + wrapperName, nil }, nil)
	if got != "/usr/bin/"+wrapperName {
		t.Fatalf("expected PATH result, got %q", got)
	}

	sys := t.TempDir()
	want := filepath.Join(sys, wrapperName)
	if err := os.WriteFile(want, nil, 0755); err != nil {
		t.Fatal(err)
	}
	if got := findWrapper(exe, os.Stat, notOnPath, []string{"/nonexistent", sys}); got != want {
		t.Fatalf("expected system dir %q, got %q", want, got)
	}
	if got := findWrapper(exe, os.Stat, notOnPath, nil); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
