package tui

import (
	"github.com/wethinkt/go-pikeru/internal/search"
	"github.com/wethinkt/go-pikeru/internal/thumb"
	"github.com/wethinkt/go-pikeru/internal/watch"
)

// thumbMsg carries a finished thumbnail and, when the terminal shows
// images, the sequence that transmits it.
type thumbMsg struct {
	res thumb.Result
	key string
	seq string
}

// thumbsClosedMsg is sent when the pool's result channel closes.
type thumbsClosedMsg struct{}

// watchMsg is a change in a shown directory.
type watchMsg struct {
	ev watch.Event
}

// watchClosedMsg is sent when the watcher stops.
type watchClosedMsg struct{}

// captionsMsg carries the captions for the listing tagged nav.
type captionsMsg struct {
	nav      uint64
	captions map[string]string
	err      error
}

// searchMsg is a finished search. It is dropped when the listing or the
// query changed in the meantime.
type searchMsg struct {
	query   string
	nav     uint64
	matches []search.Match
}

// previewMsg carries the full-size image for the preview.
type previewMsg struct {
	path string
	key  string
	seq  string
	err  error
}

// cmdDoneMsg is sent when a command template finishes.
type cmdDoneMsg struct {
	label string
	err   error
}
