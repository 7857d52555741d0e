// internal/worker/worker_pool.go
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	ErrQueueFull  = errors.New("work queue full")
	ErrPoolClosed = errors.New("worker pool stopped")
)

// Work is a unit of work run by the pool; ctx carries the per-item timeout
type Work func(ctx context.Context)

// Pool runs submitted work on a fixed number of goroutines
type Pool struct {
	workers     int
	work        chan Work
	wg          sync.WaitGroup
	workTimeout time.Duration

	mu      sync.RWMutex
	stopped bool
}

func NewPool(workers int, workTimeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers:     workers,
		work:        make(chan Work, workers*2),
		workTimeout: workTimeout,
	}
}

// Workers returns the number of goroutines serving the pool
func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop closes the queue and waits for queued work to drain
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.work)
	p.mu.Unlock()

	p.wg.Wait()
}

// TrySubmit queues work without blocking
func (p *Pool) TrySubmit(w Work) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolClosed
	}

	select {
	case p.work <- w:
		return nil
	default:
		return ErrQueueFull
	}
}

// Submit queues work, waiting for room until ctx is done
func (p *Pool) Submit(ctx context.Context, w Work) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolClosed
	}

	select {
	case p.work <- w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for w := range p.work {
		func() {
			workCtx, cancel := context.WithTimeout(ctx, p.workTimeout)
			defer cancel()

			defer func() {
				if r := recover(); r != nil {
					log.Printf("Recovered from panic in worker: %v", r)
				}
			}()

			w(workCtx)
		}()
	}
}
