package thread

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	plog "github.com/TheusHen/ptstd/ptstd/log"
)

var (
	ErrNoWorkers  = errors.New("thread: pool needs at least one worker")
	ErrPoolClosed = errors.New("thread: pool closed")
	ErrNilJob     = errors.New("thread: nil job")
)

type poolOptions struct {
	queueSize int
	logger    *zerolog.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*poolOptions)

// WithQueueSize bounds the number of queued jobs. Defaults to workers*16.
func WithQueueSize(n int) PoolOption {
	return func(o *poolOptions) {
		if n >= 0 {
			o.queueSize = n
		}
	}
}

// WithLogger overrides the pool logger.
func WithLogger(l zerolog.Logger) PoolOption {
	return func(o *poolOptions) { o.logger = &l }
}

// Pool runs queued jobs on a fixed number of goroutines.
type Pool struct {
	jobs    chan func()
	workers int
	log     zerolog.Logger

	// mu guards sends on jobs against close(jobs).
	mu     sync.RWMutex
	closed atomic.Bool
	wg     sync.WaitGroup

	completed atomic.Uint64
	panicked  atomic.Uint64
}

// NewPool starts workers goroutines.
func NewPool(workers int, opts ...PoolOption) (*Pool, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	o := poolOptions{queueSize: workers * 16}
	for _, opt := range opts {
		opt(&o)
	}
	logger := plog.WithTarget("thread")
	if o.logger != nil {
		logger = *o.logger
	}

	p := &Pool{
		jobs:    make(chan func(), o.queueSize),
		workers: workers,
		log:     logger,
	}
	p.wg.Add(workers)
	for id := 0; id < workers; id++ {
		go p.worker(id)
	}
	p.log.Debug().Int("workers", workers).Int("queue", o.queueSize).Msg("pool started")
	return p, nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(id, job)
	}
	p.log.Trace().Int("worker", id).Msg("worker stopped")
}

func (p *Pool) run(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			p.log.Error().Int("worker", id).Str("panic", fmt.Sprint(r)).Msg("job panicked")
		}
		p.completed.Add(1)
	}()
	job()
}

// Execute queues job, blocking while the queue is full.
func (p *Pool) Execute(job func()) error {
	return p.Submit(context.Background(), job)
}

// Submit queues job, giving up when ctx is done before a queue slot frees up.
func (p *Pool) Submit(ctx context.Context, job func()) error {
	if job == nil {
		return ErrNilJob
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs, runs what is already queued and waits for
// every worker to exit. Safe to call more than once.
//
// Close must not be called from a job: the job's own worker cannot exit until
// the job returns, so Close would wait forever. Jobs use Shutdown with a
// deadline, or call Close from a new goroutine.
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}

// Shutdown is Close bounded by ctx. When ctx is done first the pool still
// stops accepting jobs and drains in the background; Shutdown returns ctx.Err().
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	first := !p.closed.Swap(true)
	if first {
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if first {
		p.log.Debug().
			Uint64("completed", p.completed.Load()).
			Uint64("panicked", p.panicked.Load()).
			Msg("pool closed")
	}
	return nil
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Pending returns the number of queued jobs not yet picked up.
func (p *Pool) Pending() int { return len(p.jobs) }

// Completed returns the number of jobs that have finished, panicked ones included.
func (p *Pool) Completed() uint64 { return p.completed.Load() }

// Panicked returns the number of jobs that panicked.
func (p *Pool) Panicked() uint64 { return p.panicked.Load() }
