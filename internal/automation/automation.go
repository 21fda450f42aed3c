package automation

import (
	"context"
	"fmt"

	"recruiting-service/internal/model"
	"recruiting-service/internal/queue"
	"recruiting-service/internal/scheduling"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event names matched against tenant rules.
const (
	EventInterviewCreated     = "interview.created"
	EventInterviewRescheduled = "interview.rescheduled"
	EventInterviewCancelled   = "interview.cancelled"
	EventInterviewCompleted   = "interview.completed"
)

// Service evaluates tenant-defined automation rules on interview lifecycle
// events and enqueues the resulting notification jobs. It is invoked through
// the best-effort side channel; returned errors are logged there, never
// surfaced to the scheduling caller.
type Service struct {
	db    *gorm.DB
	queue queue.Queue
	log   *zap.Logger
}

func NewService(db *gorm.DB, q queue.Queue, log *zap.Logger) *Service {
	return &Service{db: db, queue: q, log: log}
}

func (s *Service) InterviewCreated(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.handle(ctx, EventInterviewCreated, ev)
}

func (s *Service) InterviewRescheduled(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.handle(ctx, EventInterviewRescheduled, ev)
}

func (s *Service) InterviewCancelled(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.handle(ctx, EventInterviewCancelled, ev)
}

func (s *Service) InterviewCompleted(ctx context.Context, ev scheduling.InterviewEvent) error {
	return s.handle(ctx, EventInterviewCompleted, ev)
}

func (s *Service) handle(ctx context.Context, event string, ev scheduling.InterviewEvent) error {
	var rules []model.AutomationRule
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND event = ? AND active = ?", ev.TenantID, event, true).
		Find(&rules).Error
	if err != nil {
		return fmt.Errorf("loading automation rules: %w", err)
	}

	for _, rule := range rules {
		payload := map[string]interface{}{
			"rule_id":      rule.ID,
			"action":       rule.Action,
			"params":       rule.Params,
			"event":        event,
			"tenant_id":    ev.TenantID,
			"interview_id": ev.InterviewID,
			"candidate_id": ev.CandidateID,
		}
		if err := s.queue.Enqueue(ctx, queue.QueueReminders, payload, queue.JobOptions{}); err != nil {
			s.log.Warn("failed to enqueue automation action",
				zap.Uint("rule_id", rule.ID),
				zap.String("event", event),
				zap.Error(err))
			continue
		}
		s.log.Info("automation rule triggered",
			zap.Uint("rule_id", rule.ID),
			zap.String("event", event),
			zap.Uint("interview_id", ev.InterviewID))
	}
	return nil
}
