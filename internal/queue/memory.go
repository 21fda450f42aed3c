package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryQueue is an in-process Queue that fires registered handlers after the
// job's delay elapses. Jobs without a handler are logged and dropped. It backs
// the reminder and sync queues in single-instance deployments; a broker-backed
// implementation can replace it behind the same interface.
type MemoryQueue struct {
	log *zap.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	timers   []*time.Timer
	closed   bool
}

func NewMemoryQueue(log *zap.Logger) *MemoryQueue {
	return &MemoryQueue{
		log:      log,
		handlers: make(map[string]Handler),
	}
}

// Register installs the handler for a queue name. Later registrations replace
// earlier ones.
func (q *MemoryQueue) Register(queueName string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[queueName] = h
}

func (q *MemoryQueue) Enqueue(ctx context.Context, queueName string, payload interface{}, opts JobOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.log.Warn("enqueue on closed queue", zap.String("queue", queueName))
		return nil
	}

	run := func() {
		q.mu.Lock()
		h, ok := q.handlers[queueName]
		q.mu.Unlock()
		if !ok {
			q.log.Warn("no handler registered for queue", zap.String("queue", queueName))
			return
		}
		attempts := opts.Attempts
		if attempts < 1 {
			attempts = 1
		}
		for i := 0; i < attempts; i++ {
			err := h(context.Background(), payload)
			if err == nil {
				return
			}
			q.log.Warn("job handler failed",
				zap.String("queue", queueName),
				zap.Int("attempt", i+1),
				zap.Error(err))
			if i < attempts-1 && opts.Backoff > 0 {
				time.Sleep(opts.Backoff)
			}
		}
	}

	if opts.Delay <= 0 {
		go run()
		return nil
	}
	q.timers = append(q.timers, time.AfterFunc(opts.Delay, run))
	return nil
}

// Close stops pending delayed jobs.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for _, t := range q.timers {
		t.Stop()
	}
	q.timers = nil
}
