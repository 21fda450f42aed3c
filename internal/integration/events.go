package integration

import (
	"context"
	"fmt"
	"time"

	"recruiting-service/internal/model"
	"recruiting-service/internal/queue"
	"recruiting-service/internal/scheduling"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service fans interview lifecycle events out to every CRM/calendar provider
// the tenant has connected, as outbound sync jobs. Throttled per
// (tenant, provider) by the injected Limiter. Like the automation service it
// runs on the best-effort side channel.
type Service struct {
	db      *gorm.DB
	queue   queue.Queue
	limiter Limiter
	log     *zap.Logger
}

func NewService(db *gorm.DB, q queue.Queue, limiter Limiter, log *zap.Logger) *Service {
	return &Service{db: db, queue: q, limiter: limiter, log: log}
}

func (s *Service) InterviewCreated(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.sync(ctx, "interview.created", ev)
}

func (s *Service) InterviewRescheduled(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.sync(ctx, "interview.rescheduled", ev)
}

func (s *Service) InterviewCancelled(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.sync(ctx, "interview.cancelled", ev)
}

func (s *Service) InterviewCompleted(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.sync(ctx, "interview.completed", ev)
}

func (s *Service) sync(ctx context.Context, event string, ev scheduling.InterviewEvent) error {
	var connections []model.IntegrationConnection
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", ev.TenantID, true).
		Find(&connections).Error
	if err != nil {
		return fmt.Errorf("loading integration connections: %w", err)
	}

	for _, conn := range connections {
		if !s.limiter.Allow(ev.TenantID, conn.Provider) {
			s.log.Warn("integration sync throttled",
				zap.Uint("tenant_id", ev.TenantID),
				zap.String("provider", conn.Provider),
				zap.String("event", event))
			continue
		}
		payload := map[string]interface{}{
			"provider":     conn.Provider,
			"event":        event,
			"tenant_id":    ev.TenantID,
			"interview_id": ev.InterviewID,
			"candidate_id": ev.CandidateID,
			"date":         ev.Date,
			"duration":     ev.DurationMins,
		}
		opts := queue.JobOptions{Attempts: 5, Backoff: time.Minute}
		if err := s.queue.Enqueue(ctx, queue.QueueIntegrationSync, payload, opts); err != nil {
			s.log.Warn("failed to enqueue integration sync",
				zap.String("provider", conn.Provider),
				zap.Error(err))
		}
	}
	return nil
}
