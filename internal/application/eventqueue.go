package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Enqueue when the backlog is at capacity.
var ErrQueueFull = errors.New("event queue full")

// ErrQueueStopped is returned by Enqueue after Start has returned.
var ErrQueueStopped = errors.New("event queue stopped")

// Job is one unit of deferred work, such as processing a webhook delivery
// after its HTTP response has been sent.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// EventQueue runs jobs in the background on a fixed pool of workers, so slow
// upstream calls never hold an HTTP response open. Jobs wait in a bounded
// backlog while every worker is busy. Jobs get a context that is not canceled
// when the queue stops; Start waits for them before returning.
type EventQueue struct {
	jobs    chan Job
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
}

// NewEventQueue creates a queue running at most workers jobs at once and
// holding at most backlog pending jobs. Each job is bounded by timeout; zero
// means no bound.
func NewEventQueue(backlog, workers int, timeout time.Duration) *EventQueue {
	return &EventQueue{
		jobs:    make(chan Job, backlog),
		workers: max(workers, 1),
		timeout: timeout,
	}
}

// Enqueue schedules job without blocking. It fails with ErrQueueFull when
// the backlog is at capacity.
func (q *EventQueue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return ErrQueueStopped
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start runs the workers until ctx is canceled, then lets them finish every
// job still in the backlog. Start blocks until then and must be called once.
func (q *EventQueue) Start(ctx context.Context) {
	jobCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup

	for range q.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range q.jobs {
				q.run(jobCtx, job)
			}
		}()
	}

	<-ctx.Done()

	q.mu.Lock()
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	wg.Wait()
	slog.Info("event queue stopped")
}

func (q *EventQueue) run(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("job panicked", "job", job.Name, "panic", rec)
		}
	}()

	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		slog.Error("job failed", "job", job.Name, "error", err, "duration", time.Since(start).Round(time.Millisecond))
		return
	}
	slog.Debug("job complete", "job", job.Name, "duration", time.Since(start).Round(time.Millisecond))
}
