package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the pacing applied to provider job-creation calls
// when no interval is configured.
const DefaultMinInterval = time.Second

// Task is one unit of work dispatched through a queue.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	task Task
	done chan error
}

// Queue serializes tasks for one provider, dispatching them strictly in
// enqueue order with at least the minimum interval between dispatch starts.
// Pacing is measured dispatch-to-dispatch, not completion-to-dispatch, so a
// slow task does not earn the next one a shorter wait. A failing task
// resolves only its own result; it never poisons the rest of the queue.
type Queue struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	pending  []*job
	draining bool
}

// NewQueue builds a queue enforcing the given minimum dispatch interval.
func NewQueue(minInterval time.Duration) *Queue {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Queue{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Enqueue appends a task and returns a channel that resolves with the task's
// result once it has been dispatched and settled. If the task's context ends
// before dispatch, the channel resolves with the context error and the task
// never runs.
func (q *Queue) Enqueue(ctx context.Context, task Task) <-chan error {
	j := &job{ctx: ctx, task: task, done: make(chan error, 1)}

	q.mu.Lock()
	q.pending = append(q.pending, j)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
	return j.done
}

// Do enqueues a task and blocks until it settles.
func (q *Queue) Do(ctx context.Context, task Task) error {
	return <-q.Enqueue(ctx, task)
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if err := next.ctx.Err(); err != nil {
			next.done <- err
			continue
		}
		if err := q.limiter.Wait(next.ctx); err != nil {
			next.done <- err
			continue
		}
		next.done <- next.task(next.ctx)
	}
}

// Registry hands out one queue per provider so pacing applies per backend.
type Registry struct {
	interval time.Duration

	mu     sync.Mutex
	queues map[string]*Queue
}

// NewRegistry builds a registry whose queues all share the same minimum
// interval.
func NewRegistry(minInterval time.Duration) *Registry {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Registry{
		interval: minInterval,
		queues:   make(map[string]*Queue),
	}
}

// For returns the queue for a provider, creating it on first use.
func (r *Registry) For(provider string) *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[provider]
	if !ok {
		q = NewQueue(r.interval)
		r.queues[provider] = q
	}
	return q
}
