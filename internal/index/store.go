// Package index keeps the caption database and the indexer that fills it.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wethinkt/go-pikeru/internal/index/db"
	"github.com/wethinkt/go-pikeru/internal/search"
)

// ErrNoRows is returned when a path has no caption.
var ErrNoRows = db.ErrNoRows

// Description is the caption of one file.
type Description struct {
	Fname       string
	Dir         string
	Description string
	Mtime       float64 // source mtime in seconds when captioned
}

// Path joins Dir and Fname.
func (d Description) Path() string {
	return filepath.Join(d.Dir, d.Fname)
}

// Mtime converts a modification time to the stored form.
func Mtime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Store reads and writes captions.
type Store struct {
	acquire func() (*db.DB, error)
	release func()
	close   func() error
}

// NewStore serves captions through pool. Closing the store closes the
// pool.
func NewStore(pool *db.LazyPool) *Store {
	return &Store{acquire: pool.Acquire, release: pool.Release, close: pool.Close}
}

// OpenReadOnly opens the database at path for reading only.
func OpenReadOnly(path string) (*Store, error) {
	d, err := db.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		acquire: func() (*db.DB, error) { return d, nil },
		release: func() {},
		close:   d.Close,
	}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.close()
}

func (s *Store) with(fn func(*db.DB) error) error {
	d, err := s.acquire()
	if err != nil {
		return err
	}
	defer s.release()
	return fn(d)
}

func split(path string) (dir, fname string) {
	path = filepath.Clean(path)
	return filepath.Dir(path), filepath.Base(path)
}

// Get returns the caption of path.
func (s *Store) Get(ctx context.Context, path string) (Description, error) {
	dir, fname := split(path)
	d := Description{Dir: dir, Fname: fname}
	err := s.with(func(conn *db.DB) error {
		return conn.QueryRowContext(ctx,
			"SELECT description, mtime FROM descriptions WHERE dir = ? AND fname = ?",
			dir, fname).Scan(&d.Description, &d.Mtime)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Description{}, ErrNoRows
	}
	return d, err
}

// Upsert stores d, replacing any earlier caption of the same file.
func (s *Store) Upsert(ctx context.Context, d Description) error {
	return s.with(func(conn *db.DB) error {
		_, err := conn.ExecContext(ctx,
			"INSERT OR REPLACE INTO descriptions (fname, dir, description, mtime) VALUES (?, ?, ?, ?)",
			d.Fname, d.Dir, d.Description, d.Mtime)
		return err
	})
}

// Delete removes the caption of path.
func (s *Store) Delete(ctx context.Context, path string) error {
	dir, fname := split(path)
	return s.with(func(conn *db.DB) error {
		_, err := conn.ExecContext(ctx, "DELETE FROM descriptions WHERE dir = ? AND fname = ?", dir, fname)
		return err
	})
}

// ForDirs returns the captions of files directly inside dirs, or every
// caption when dirs is empty.
func (s *Store) ForDirs(ctx context.Context, dirs []string) ([]Description, error) {
	query := "SELECT fname, dir, description, mtime FROM descriptions"
	args := make([]any, 0, len(dirs))
	if len(dirs) > 0 {
		marks := make([]string, len(dirs))
		for i, d := range dirs {
			marks[i] = "?"
			args = append(args, filepath.Clean(d))
		}
		query += " WHERE dir IN (" + strings.Join(marks, ", ") + ")"
	}
	query += " ORDER BY dir, fname"

	var out []Description
	err := s.with(func(conn *db.DB) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var d Description
			if err := rows.Scan(&d.Fname, &d.Dir, &d.Description, &d.Mtime); err != nil {
				return err
			}
			out = append(out, d)
		}
		return rows.Err()
	})
	return out, err
}

// Captions implements search.Source.
func (s *Store) Captions(ctx context.Context, dirs []string) (map[string]string, error) {
	descs, err := s.ForDirs(ctx, dirs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(descs))
	for _, d := range descs {
		out[d.Path()] = d.Description
	}
	return out, nil
}

var _ search.Source = (*Store)(nil)

// ReadOnlySource opens the database at Path for each lookup and closes it
// again, so a running indexer is only locked out briefly. A missing
// database has no captions.
type ReadOnlySource struct {
	Path string
}

// Captions implements search.Source.
func (s ReadOnlySource) Captions(ctx context.Context, dirs []string) (map[string]string, error) {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	st, err := OpenReadOnly(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open caption db: %w", err)
	}
	defer st.Close()
	return st.Captions(ctx, dirs)
}

// Hit is a caption that matched a Search.
type Hit struct {
	Path    string `json:"path"`
	Caption string `json:"caption"`
	Score   int    `json:"score"`
}

// Search fuzzy-matches query against the paths and captions stored for
// dirs, or for every dir when dirs is empty. Best matches come first.
func (s *Store) Search(ctx context.Context, query string, dirs []string) ([]Hit, error) {
	descs, err := s.ForDirs(ctx, dirs)
	if err != nil {
		return nil, err
	}
	cands := make([]search.Candidate, len(descs))
	captions := make(map[string]string, len(descs))
	for i, d := range descs {
		cands[i] = search.Candidate{Index: i, Path: d.Path()}
		captions[d.Path()] = d.Description
	}
	matches := search.Search(query, cands, captions)
	hits := make([]Hit, len(matches))
	for i, m := range matches {
		d := descs[m.Index]
		hits[i] = Hit{Path: d.Path(), Caption: d.Description, Score: m.Score}
	}
	return hits, nil
}

// Count returns the number of captions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.with(func(conn *db.DB) error {
		return conn.QueryRowContext(ctx, "SELECT count(*) FROM descriptions").Scan(&n)
	})
	return n, err
}

// ExportCSV writes every caption as path,caption and returns how many
// rows were written.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	descs, err := s.ForDirs(ctx, nil)
	if err != nil {
		return 0, err
	}
	rows := make([]search.CaptionRow, len(descs))
	for i, d := range descs {
		rows[i] = search.CaptionRow{Path: d.Path(), Caption: d.Description}
	}
	return len(rows), search.WriteCaptions(w, rows)
}

// ImportCSV loads a path,caption CSV. Each row takes the file's current
// mtime, or zero when the file is gone, so the indexer re-captions only
// files edited after the import.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := search.ReadCaptions(r)
	if err != nil {
		return 0, err
	}
	n := 0
	err = s.with(func(conn *db.DB) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx,
			"INSERT OR REPLACE INTO descriptions (fname, dir, description, mtime) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			if row.Path == "" {
				continue
			}
			dir, fname := split(row.Path)
			var mtime float64
			if info, err := os.Stat(row.Path); err == nil {
				mtime = Mtime(info.ModTime())
			}
			if _, err := stmt.ExecContext(ctx, fname, dir, strings.TrimSpace(row.Caption), mtime); err != nil {
				return fmt.Errorf("import %s: %w", row.Path, err)
			}
			n++
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
