// Package worker is a fixed-size goroutine pool for background batch jobs.
package worker

import (
	"context"
	"sync"

	"cinetrack/internal/logging"
)

// Task represents a unit of work
type Task func(ctx context.Context) error

// Pool runs submitted tasks on workerCount goroutines.
type Pool struct {
	name        string
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
	closeMux    sync.Mutex
}

// NewPool creates a pool whose workers stop when parent is cancelled.
func NewPool(parent context.Context, name string, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &Pool{
		name:        name,
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logging.Debug().Str("pool", p.name).Int("workers", p.workerCount).Msg("worker pool started")
}

// Submit queues a task. It reports false when the pool is shutting down.
func (p *Pool) Submit(task Task) bool {
	p.closeMux.Lock()
	defer p.closeMux.Unlock()
	if p.closed {
		return false
	}

	select {
	case p.taskQueue <- task:
		return true
	case <-p.ctx.Done():
		logging.Warn().Str("pool", p.name).Msg("pool is shutting down, task rejected")
		return false
	}
}

// Wait closes the queue and blocks until queued tasks complete.
func (p *Pool) Wait() {
	p.closeMux.Lock()
	if !p.closed {
		close(p.taskQueue)
		p.closed = true
	}
	p.closeMux.Unlock()

	p.wg.Wait()
	p.cancel()
}

// Shutdown cancels all workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			if err := task(p.ctx); err != nil {
				logging.Warn().Err(err).Str("pool", p.name).Int("worker", id).Msg("task failed")
			}
		case <-p.ctx.Done():
			return
		}
	}
}
