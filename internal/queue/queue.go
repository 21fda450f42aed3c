package queue

import (
	"context"
	"time"
)

// Queue names used by the scheduling engine.
const (
	QueueReminders       = "reminders"
	QueueCalendarSync    = "calendar-sync"
	QueueIntegrationSync = "integration-sync"
)

// JobOptions controls delivery of an enqueued job.
type JobOptions struct {
	Delay    time.Duration
	Attempts int
	Backoff  time.Duration
}

// Queue accepts background jobs for deferred processing. Retry and backoff
// semantics belong to the implementation; producers only describe intent
// through JobOptions.
type Queue interface {
	Enqueue(ctx context.Context, queueName string, payload interface{}, opts JobOptions) error
}

// Handler processes jobs from one queue.
type Handler func(ctx context.Context, payload interface{}) error
