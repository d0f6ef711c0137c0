package portal

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// IndexControl is the part of the indexer the portal drives.
type IndexControl interface {
	Update(dirs []string)
	PauseResume(active bool)
	Configure(respectGitignore bool, patterns []string)
}

// SearchIndexer serves org.freedesktop.impl.portal.SearchIndexer.
type SearchIndexer struct {
	ix IndexControl
}

// NewSearchIndexer wraps ix for D-Bus.
func NewSearchIndexer(ix IndexControl) *SearchIndexer {
	return &SearchIndexer{ix: ix}
}

// PauseResume pauses indexing when active is false.
func (s *SearchIndexer) PauseResume(active bool) *dbus.Error {
	requestsTotal.WithLabelValues("PauseResume", "success").Inc()
	s.ix.PauseResume(active)
	return nil
}

// Update queues directories for indexing.
func (s *SearchIndexer) Update(dirs []string) *dbus.Error {
	requestsTotal.WithLabelValues("Update", "success").Inc()
	s.ix.Update(dirs)
	return nil
}

// Configure sets the skip patterns, one gitignore pattern per line.
func (s *SearchIndexer) Configure(respectGitignore bool, ignore string) *dbus.Error {
	requestsTotal.WithLabelValues("Configure", "success").Inc()
	var patterns []string
	for _, line := range strings.Split(ignore, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			patterns = append(patterns, line)
		}
	}
	tuilog.Log.Info("Indexer configured", "respect_gitignore", respectGitignore, "patterns", len(patterns))
	s.ix.Configure(respectGitignore, patterns)
	return nil
}
