package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMemoryQueueRunsHandler(t *testing.T) {
	q := NewMemoryQueue(zap.NewNop())
	defer q.Close()

	done := make(chan interface{}, 1)
	q.Register("jobs", func(ctx context.Context, payload interface{}) error {
		done <- payload
		return nil
	})

	if err := q.Enqueue(context.Background(), "jobs", "hello", JobOptions{}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case got := <-done:
		if got != "hello" {
			t.Fatalf("payload = %v, want hello", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
}

func TestMemoryQueueDelaysJob(t *testing.T) {
	q := NewMemoryQueue(zap.NewNop())
	defer q.Close()

	fired := make(chan time.Time, 1)
	q.Register("jobs", func(ctx context.Context, payload interface{}) error {
		fired <- time.Now()
		return nil
	})

	start := time.Now()
	if err := q.Enqueue(context.Background(), "jobs", nil, JobOptions{Delay: 50 * time.Millisecond}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case at := <-fired:
		if at.Sub(start) < 50*time.Millisecond {
			t.Fatalf("job fired after %s, want at least 50ms", at.Sub(start))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delayed job did not fire")
	}
}

func TestMemoryQueueRetriesUpToAttempts(t *testing.T) {
	q := NewMemoryQueue(zap.NewNop())
	defer q.Close()

	var calls int32
	done := make(chan struct{})
	q.Register("jobs", func(ctx context.Context, payload interface{}) error {
		if atomic.AddInt32(&calls, 1) == 3 {
			close(done)
		}
		return context.DeadlineExceeded
	})

	if err := q.Enqueue(context.Background(), "jobs", nil, JobOptions{Attempts: 3}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler ran %d times, want 3", atomic.LoadInt32(&calls))
	}
}

func TestMemoryQueueDropsJobsAfterClose(t *testing.T) {
	q := NewMemoryQueue(zap.NewNop())

	ran := make(chan struct{}, 1)
	q.Register("jobs", func(ctx context.Context, payload interface{}) error {
		ran <- struct{}{}
		return nil
	})

	q.Close()
	if err := q.Enqueue(context.Background(), "jobs", nil, JobOptions{}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case <-ran:
		t.Fatal("job ran on a closed queue")
	case <-time.After(100 * time.Millisecond):
	}
}
