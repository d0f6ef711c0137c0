// Package thumb generates grid thumbnails and keeps them in an on-disk
// PNG cache keyed by the source path.
package thumb

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache is a directory of PNG thumbnails named
// hex(md5(abs source path))_size.png.
type Cache struct {
	Dir string
}

// NewCache returns a Cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create thumbnail cache: %w", err)
	}
	return &Cache{Dir: dir}, nil
}

// Path returns where the thumbnail of src at size lives. The file may not
// exist.
func (c *Cache) Path(src string, size int) string {
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	sum := md5.Sum([]byte(abs))
	return filepath.Join(c.Dir, fmt.Sprintf("%s_%d.png", hex.EncodeToString(sum[:]), size))
}

// Lookup returns the cached thumbnail path when it exists and is at least
// as new as src.
func (c *Cache) Lookup(src string, size int) (string, bool) {
	p := c.Path(src, size)
	ci, err := os.Stat(p)
	if err != nil {
		cacheMisses.Inc()
		return p, false
	}
	si, err := os.Stat(src)
	if err != nil || ci.ModTime().Before(si.ModTime()) {
		cacheMisses.Inc()
		return p, false
	}
	cacheHits.Inc()
	return p, true
}

// Store encodes img as the thumbnail of src. The file is written to a
// temporary name first so readers never see a partial PNG.
func (c *Cache) Store(src string, size int, img image.Image) (string, error) {
	p := c.Path(src, size)
	tmp, err := os.CreateTemp(c.Dir, ".tmp-*.png")
	if err != nil {
		return "", fmt.Errorf("create thumbnail: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	return p, nil
}

// Clean removes thumbnails not modified within maxAge and returns how many
// were deleted. A zero maxAge removes everything.
func (c *Cache) Clean(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if maxAge > 0 && info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// CacheStats summarizes the cache directory.
type CacheStats struct {
	Files  int
	Bytes  int64
	Oldest time.Time // mtime of the least recently refreshed thumbnail
}

// Stats reports the number of cached thumbnails, their total size and the
// oldest one.
func (c *Cache) Stats() (CacheStats, error) {
	var st CacheStats
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.Files++
		st.Bytes += info.Size()
		if st.Oldest.IsZero() || info.ModTime().Before(st.Oldest) {
			st.Oldest = info.ModTime()
		}
	}
	return st, nil
}
