package picker

import (
	"github.com/wethinkt/go-pikeru/internal/thumb"
)

// NextToLoad returns thumbnail jobs for displayed items that have none yet,
// in display order, keeping at most limit requests in flight.
func (s *State) NextToLoad(limit int) []thumb.Job {
	inflight := 0
	for i := range s.Items {
		if s.Items[i].InFlight {
			inflight++
		}
	}
	var jobs []thumb.Job
	for _, i := range s.Displayed {
		if inflight >= limit {
			break
		}
		it := &s.Items[i]
		if it.Loaded || it.InFlight {
			continue
		}
		if !it.Kind.Visual() {
			// Icon tiles need no work.
			it.Loaded = true
			continue
		}
		it.InFlight = true
		inflight++
		jobs = append(jobs, thumb.Job{
			Path:  it.Path,
			Kind:  it.Kind,
			Size:  s.ThumbSize,
			Index: i,
			Nav:   s.Nav,
			View:  s.View,
		})
	}
	return jobs
}

// MarkLoaded applies a finished job. Results from an older listing are
// ignored. Results from an older view free the slot but leave the item
// unloaded so it is requested again. It reports whether the item changed.
func (s *State) MarkLoaded(r thumb.Result) bool {
	if r.Nav != s.Nav {
		return false
	}
	i := r.Index
	if i < 0 || i >= len(s.Items) || s.Items[i].Path != r.Path {
		// The grid shifted under a watch event since the job was queued.
		if i = s.indexOf(r.Path); i < 0 {
			return false
		}
	}
	it := &s.Items[i]
	it.InFlight = false
	if r.View != s.View || r.Size != s.ThumbSize {
		return false
	}
	it.Loaded = true
	if r.Err == nil {
		it.Thumb = r.CachePath
	}
	return true
}
