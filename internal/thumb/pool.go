package thumb

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wethinkt/go-pikeru/internal/fsview"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// Job asks for the thumbnail of one grid item. Nav and View are the
// picker's tags at submit time; the consumer drops results whose tags are
// stale.
type Job struct {
	Path  string
	Kind  fsview.Kind
	Size  int
	Index int
	Nav   uint64
	View  uint64
}

// Result is a finished Job. CachePath is set on success.
type Result struct {
	Job
	CachePath string
	Err       error
}

// Pool runs thumbnail jobs on a fixed set of workers.
type Pool struct {
	cache   *Cache
	results chan Result
	done    chan struct{}
	g       *errgroup.Group
	stop    func() bool

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool
	once   sync.Once
}

// DefaultWorkers is the worker count used when NewPool gets zero.
func DefaultWorkers() int {
	return runtime.NumCPU() * 2
}

// NewPool starts workers that serve jobs from cache until ctx is cancelled
// or Close is called.
func NewPool(ctx context.Context, cache *Cache, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	p := &Pool{
		cache:   cache,
		results: make(chan Result, workers),
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	g, gctx := errgroup.WithContext(ctx)
	p.g = g
	p.stop = context.AfterFunc(gctx, p.shutdown)
	for range workers {
		g.Go(func() error {
			p.work(gctx)
			return nil
		})
	}
	return p
}

// Submit queues a job. It never blocks.
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.queue = append(p.queue, job)
	queueDepth.Set(float64(len(p.queue)))
	p.cond.Signal()
}

// Flush drops every queued job. Jobs already running still deliver
// results.
func (p *Pool) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = p.queue[:0]
	queueDepth.Set(0)
}

// Pending returns the number of queued jobs.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Results delivers finished jobs. It is closed by Close.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops the workers, discarding queued jobs, and waits for them.
func (p *Pool) Close() {
	p.shutdown()
	p.stop()
	_ = p.g.Wait()
	p.once.Do(func() { close(p.results) })
}

func (p *Pool) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.queue = nil
	close(p.done)
	p.cond.Broadcast()
}

func (p *Pool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return Job{}, false
	}
	job := p.queue[0]
	p.queue = p.queue[1:]
	queueDepth.Set(float64(len(p.queue)))
	return job, true
}

func (p *Pool) work(ctx context.Context) {
	for {
		job, ok := p.next()
		if !ok {
			return
		}
		res := p.run(ctx, job)
		select {
		case p.results <- res:
		case <-p.done:
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	if path, ok := p.cache.Lookup(job.Path, job.Size); ok {
		res.CachePath = path
		return res
	}
	img, err := Generate(ctx, job.Path, job.Kind, job.Size)
	if err != nil {
		if err != ErrUnsupported {
			tuilog.Log.Debug("Thumbnail failed", "path", job.Path, "error", err)
		}
		res.Err = err
		return res
	}
	res.CachePath, res.Err = p.cache.Store(job.Path, job.Size, img)
	return res
}
