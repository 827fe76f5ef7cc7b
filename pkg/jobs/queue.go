// Package jobs runs fire-and-forget background work on a bounded channel.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work. Payload is interpreted by the handler.
type Job struct {
	ID      string
	Type    string
	Payload interface{}
}

// Handler processes a single job. A non-nil error triggers a retry.
type Handler func(context.Context, Job) error

// QueueConfig tunes the worker pool. Zero values fall back to defaults.
type QueueConfig struct {
	Workers int
	Buffer  int
	Retries int
	Backoff time.Duration
	Logger  *zap.Logger
}

// Queue dispatches jobs to a fixed pool of goroutine workers. Failed jobs
// are retried in place with a fixed backoff before being abandoned.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewQueue builds a queue for the given handler. Start must be called
// before jobs can be enqueued.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Buffer < 1 {
		cfg.Buffer = 16
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		jobs:    make(chan Job, cfg.Buffer),
	}
}

// Start launches the workers. Calling Start on a running queue is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.running = true
	q.cfg.Logger.Info("queue started",
		zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for in-flight jobs to finish.
// Jobs still sitting in the buffer are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	q.cfg.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue submits a job, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	running := q.running
	ctx := q.ctx
	q.mu.Unlock()

	if !running {
		return fmt.Errorf("queue %s is not running", q.name)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.process(job)
		}
	}
}

func (q *Queue) process(job Job) {
	for attempt := 0; ; attempt++ {
		err := q.handler(q.ctx, job)
		if err == nil {
			return
		}
		if attempt >= q.cfg.Retries {
			q.cfg.Logger.Error("job abandoned",
				zap.String("queue", q.name), zap.String("job_id", job.ID),
				zap.String("type", job.Type), zap.Error(err))
			return
		}
		q.cfg.Logger.Warn("job failed, retrying",
			zap.String("queue", q.name), zap.String("job_id", job.ID),
			zap.Int("attempt", attempt+1), zap.Error(err))

		select {
		case <-q.ctx.Done():
			return
		case <-time.After(q.cfg.Backoff):
		}
	}
}
