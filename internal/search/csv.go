package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// CaptionRow is one line of a caption CSV index: path,caption. The first
// line of a file is a header and is skipped on read.
type CaptionRow struct {
	Path    string `csv:"path" json:"path"`
	Caption string `csv:"caption" json:"caption"`
}

// ReadCaptions reads a caption CSV. Columns are taken by position so any
// header names are accepted.
func ReadCaptions(r io.Reader) ([]CaptionRow, error) {
	var rows []CaptionRow
	if err := gocsv.UnmarshalWithoutHeaders(r, &rows); err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

// WriteCaptions writes rows with a path,caption header.
func WriteCaptions(w io.Writer, rows []CaptionRow) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	return nil
}

// CSVSource serves captions from a CSV index file. A missing file means no
// captions.
type CSVSource struct {
	Path string
}

// Captions returns the captions of files directly inside dirs. With no
// dirs every caption is returned.
func (s CSVSource) Captions(ctx context.Context, dirs []string) (map[string]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	rows, err := ReadCaptions(f)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[filepath.Clean(d)] = true
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(want) > 0 && !want[filepath.Dir(r.Path)] {
			continue
		}
		out[r.Path] = r.Caption
	}
	return out, nil
}
