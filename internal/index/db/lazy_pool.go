package db

import (
	"sync"
	"time"
)

// LazyPool keeps one connection open while it is in use and closes it
// after idleTimeout without an Acquire. The indexer daemon holds the
// database only while it is writing, leaving it free for readers in
// between.
type LazyPool struct {
	path    string
	conn    *DB
	timer   *time.Timer
	timeout time.Duration
	users   int
	mu      sync.Mutex
}

// NewLazyPool returns a pool for the database at path.
func NewLazyPool(path string, idleTimeout time.Duration) *LazyPool {
	return &LazyPool{path: path, timeout: idleTimeout}
}

// Acquire returns the open connection, opening it if needed. Every
// Acquire must be paired with a Release.
func (p *LazyPool) Acquire() (*DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.conn == nil {
		conn, err := Open(p.path)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	p.users++
	return p.conn, nil
}

// Release schedules the connection to close once nobody holds it.
func (p *LazyPool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.users > 0 {
		p.users--
	}
	if p.conn == nil || p.users > 0 {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.timeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.conn != nil && p.users == 0 {
			p.conn.Close()
			p.conn = nil
		}
		p.timer = nil
	})
}

// IsOpen reports whether a connection is currently open.
func (p *LazyPool) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

// Close closes the connection now.
func (p *LazyPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// CloseIdle closes the connection if nobody holds it. It reports whether
// the database is closed afterwards.
func (p *LazyPool) CloseIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.users > 0 {
		return false
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	return true
}
