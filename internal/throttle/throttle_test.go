package throttle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reel/internal/throttle"
)

func TestDispatchOrderAndSpacing(t *testing.T) {
	const minInterval = 30 * time.Millisecond
	q := throttle.NewQueue(minInterval)
	ctx := context.Background()

	var mu sync.Mutex
	var dispatched []int
	var times []time.Time

	record := func(id int, latency time.Duration) throttle.Task {
		return func(context.Context) error {
			mu.Lock()
			dispatched = append(dispatched, id)
			times = append(times, time.Now())
			mu.Unlock()
			time.Sleep(latency)
			return nil
		}
	}

	// Mixed latencies: completion order would differ from enqueue order if
	// dispatch were not serialized.
	results := []<-chan error{
		q.Enqueue(ctx, record(1, 50*time.Millisecond)),
		q.Enqueue(ctx, record(2, 0)),
		q.Enqueue(ctx, record(3, 10*time.Millisecond)),
		q.Enqueue(ctx, record(4, 0)),
	}
	for i, done := range results {
		if err := <-done; err != nil {
			t.Fatalf("task %d failed: %v", i+1, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, id := range dispatched {
		if id != i+1 {
			t.Fatalf("dispatch order %v does not match enqueue order", dispatched)
		}
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < minInterval {
			t.Fatalf("dispatch %d followed %d after %v, want >= %v", i+1, i, gap, minInterval)
		}
	}
}

func TestFailingTaskDoesNotPoisonQueue(t *testing.T) {
	q := throttle.NewQueue(time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	first := q.Enqueue(ctx, func(context.Context) error { return boom })
	second := q.Enqueue(ctx, func(context.Context) error { return nil })

	if err := <-first; !errors.Is(err, boom) {
		t.Fatalf("expected boom from first task, got %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second task should succeed, got %v", err)
	}
}

func TestCanceledContextSkipsPendingTask(t *testing.T) {
	q := throttle.NewQueue(50 * time.Millisecond)
	ctx := context.Background()

	// Occupy the queue so the second task waits on the interval.
	blocker := q.Enqueue(ctx, func(context.Context) error { return nil })

	canceledCtx, cancel := context.WithCancel(ctx)
	ran := false
	pending := q.Enqueue(canceledCtx, func(context.Context) error {
		ran = true
		return nil
	})
	cancel()

	<-blocker
	if err := <-pending; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran {
		t.Fatal("canceled task must not run")
	}
}

func TestDoBlocksUntilSettled(t *testing.T) {
	q := throttle.NewQueue(time.Millisecond)
	done := false
	err := q.Do(context.Background(), func(context.Context) error {
		done = true
		return nil
	})
	if err != nil || !done {
		t.Fatalf("Do should run the task to completion: done=%v err=%v", done, err)
	}
}

func TestRegistryReusesQueuePerProvider(t *testing.T) {
	reg := throttle.NewRegistry(time.Millisecond)
	if reg.For("mux") != reg.For("mux") {
		t.Fatal("expected the same queue for one provider")
	}
	if reg.For("mux") == reg.For("s3") {
		t.Fatal("expected distinct queues per provider")
	}
}
