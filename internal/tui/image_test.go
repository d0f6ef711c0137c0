package tui

import (
	"image"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi/kitty"
)

func TestPlaceholderGrid(t *testing.T) {
	grid := placeholderGrid(placement{ID: 42, Columns: 3, Rows: 2})
	if len(grid) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(grid))
	}

	// Each row should contain 3 placeholder characters
	for i, line := range grid {
		count := strings.Count(line, string(kitty.Placeholder))
		if count != 3 {
			t.Errorf("row %d: expected 3 placeholders, got %d", i, count)
		}
		if !strings.Contains(line, string(kitty.Diacritic(i))) {
			t.Errorf("row %d: missing row diacritic", i)
		}
	}

	// Foreground color encodes image ID 42 (R=0, G=0, B=42)
	if !strings.Contains(grid[0], "\x1b[38;2;0;0;42m") {
		t.Error("missing foreground color encoding for image ID 42")
	}
	if !strings.HasSuffix(grid[1], "\x1b[39m") {
		t.Error("missing foreground color reset")
	}
}

func TestFitCells(t *testing.T) {
	tests := []struct {
		name             string
		w, h             int
		maxCols, maxRows int
		cols, rows       int
	}{
		{"square fits width", 160, 160, 20, 10, 20, 10},
		{"wide", 160, 80, 20, 10, 20, 5},
		{"tall is bounded by rows", 80, 160, 20, 10, 10, 10},
		{"tiny", 1, 1, 20, 10, 1, 1},
		{"empty", 0, 10, 20, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := fitCells(tt.w, tt.h, tt.maxCols, tt.maxRows)
			if cols != tt.cols || rows != tt.rows {
				t.Errorf("fitCells(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, cols, rows, tt.cols, tt.rows)
			}
		})
	}
}

func TestImageTracker(t *testing.T) {
	tracker := newImageTracker()

	p1 := tracker.assign("/cache/a_160.png", 20, 10)
	p2 := tracker.assign("/cache/a_160.png", 5, 5) // already known
	p3 := tracker.assign("/cache/b_160.png", 20, 10)

	if p1 != p2 {
		t.Errorf("same key should keep its placement: %+v != %+v", p1, p2)
	}
	if p1.ID == p3.ID {
		t.Error("different keys should get different IDs")
	}
	if _, ok := tracker.lookup("/cache/b_160.png"); !ok {
		t.Error("lookup of an assigned key failed")
	}

	tracker.forget("/cache/b_160.png")
	if _, ok := tracker.lookup("/cache/b_160.png"); ok {
		t.Error("forgotten key still assigned")
	}

	if seq := tracker.reset(); !strings.Contains(seq, "a=d") {
		t.Errorf("reset should delete images, got %q", seq)
	}
	if _, ok := tracker.lookup("/cache/a_160.png"); ok {
		t.Error("reset kept assignments")
	}
	if seq := tracker.reset(); seq != "" {
		t.Errorf("second reset = %q, want nothing", seq)
	}
}

func TestImageTrackerIDWraps(t *testing.T) {
	tracker := newImageTracker()
	tracker.nextID = 0xFFFFFF
	p := tracker.assign("k", 1, 1)
	if p.ID != 1 {
		t.Errorf("ID after wrap = %d, want 1", p.ID)
	}
}

func TestTransmitSequence(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	seq, err := transmitSequence(img, placement{ID: 7, Columns: 2, Rows: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(seq, "\x1b_G") {
		t.Errorf("not a kitty graphics sequence: %q", seq[:min(len(seq), 20)])
	}
	if !strings.Contains(seq, "i=7") {
		t.Error("sequence does not carry the image ID")
	}
}
