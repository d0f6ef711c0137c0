// Package search fuzzy-matches grid items by path and by image caption.
package search

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/sahilm/fuzzy"
)

// Source supplies captions for the images in dirs, keyed by full path.
type Source interface {
	Captions(ctx context.Context, dirs []string) (map[string]string, error)
}

// Sources merges several sources. Later sources win when two caption the
// same path. A failing source is skipped and its error is returned along
// with the captions of the others.
type Sources []Source

// Captions implements Source.
func (ss Sources) Captions(ctx context.Context, dirs []string) (map[string]string, error) {
	out := make(map[string]string)
	var errs []error
	for _, s := range ss {
		caps, err := s.Captions(ctx, dirs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		maps.Copy(out, caps)
	}
	return out, errors.Join(errs...)
}

// Candidate is one item that may match. Index is opaque to this package
// and handed back in Match.
type Candidate struct {
	Index int
	Path  string
	IsDir bool
}

// Match is a Candidate that matched, with its best score. Path is the
// stable key; Index may be stale once the candidates change.
type Match struct {
	Index int
	Path  string
	Score int
	IsDir bool
}

// Search matches query against each candidate's path and caption and keeps
// the better score. Results are ordered directories first, then by score.
// An empty query returns nil.
func Search(query string, cands []Candidate, captions map[string]string) []Match {
	if query == "" || len(cands) == 0 {
		return nil
	}

	best := make(map[int]int, len(cands))
	for _, m := range fuzzy.FindFrom(query, paths(cands)) {
		best[m.Index] = m.Score
	}

	if len(captions) > 0 {
		var withCaption captionList
		for i, c := range cands {
			if text, ok := captions[c.Path]; ok && text != "" {
				withCaption.text = append(withCaption.text, text)
				withCaption.cand = append(withCaption.cand, i)
			}
		}
		for _, m := range fuzzy.FindFrom(query, withCaption) {
			i := withCaption.cand[m.Index]
			if prev, ok := best[i]; !ok || m.Score > prev {
				best[i] = m.Score
			}
		}
	}

	out := make([]Match, 0, len(best))
	for i, score := range best {
		out = append(out, Match{Index: cands[i].Index, Path: cands[i].Path, Score: score, IsDir: cands[i].IsDir})
	}
	slices.SortFunc(out, func(a, b Match) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.Index - b.Index
	})
	return out
}

type paths []Candidate

func (p paths) String(i int) string { return p[i].Path }
func (p paths) Len() int            { return len(p) }

type captionList struct {
	text []string
	cand []int
}

func (c captionList) String(i int) string { return c.text[i] }
func (c captionList) Len() int            { return len(c.text) }
