// Package workerpool runs submitted tasks on a fixed set of long-lived
// goroutines shared by every batch in the process.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrClosed = errors.New("worker pool closed")

const (
	DefaultWorkers   = 4
	defaultQueueSize = 64
)

type Pool struct {
	logger  *slog.Logger
	workers int

	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Pool)

func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.tasks = make(chan func(), n)
		}
	}
}

func New(workers int, logger *slog.Logger, opts ...Option) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		logger:  logger,
		workers: workers,
		tasks:   make(chan func(), defaultQueueSize),
	}
	for _, o := range opts {
		o(p)
	}
	p.start()
	return p
}

func (p *Pool) Workers() int { return p.workers }

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				p.logger.Debug("worker_started", "worker_id", workerID)
				for task := range p.tasks {
					p.run(workerID, task)
				}
				p.logger.Debug("worker_stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// run keeps the worker alive when a task panics.
func (p *Pool) run(workerID int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task_panicked", "worker_id", workerID, "panic", fmt.Sprint(r))
		}
	}()
	task()
}

// Submit queues task, blocking while the queue is full. It fails when ctx is
// done first or the pool is closed; a task that was not accepted never runs.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		p.logger.Warn("worker_pool_shutdown_interrupted")
		return ctx.Err()
	case <-done:
		p.logger.Info("worker_pool_drained")
		return nil
	}
}
