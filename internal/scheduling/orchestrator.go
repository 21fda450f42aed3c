package scheduling

import (
	"context"
	"fmt"
	"time"

	"recruiting-service/internal/audit"
	"recruiting-service/internal/model"
	"recruiting-service/internal/queue"
	"recruiting-service/prometheus"

	"go.uber.org/zap"
)

// reminderOffsets are how far before the interview start each reminder fires.
var reminderOffsets = []time.Duration{24 * time.Hour, time.Hour}

// Service orchestrates interview scheduling: transactional create and
// reschedule combining conflict checks, busy-block bookkeeping and audit
// writes, plus lifecycle transitions and post-commit fan-out.
type Service struct {
	store        Store
	queue        Queue
	audit        AuditRecorder
	automation   EventSink
	integrations EventSink
	side         *SideChannel
	log          *zap.Logger
	now          func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, q Queue, rec AuditRecorder, automation, integrations EventSink, side *SideChannel, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		queue:        q,
		audit:        rec,
		automation:   automation,
		integrations: integrations,
		side:         side,
		log:          log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the request to schedule one interview.
type CreateInput struct {
	CandidateID    uint
	InterviewerIDs []uint
	StartAt        time.Time
	DurationMins   int
	Stage          string
	MeetingLink    string
	Notes          string
}

// Create schedules an interview. Conflict detection is a hard gate here: any
// interviewer overlap or an existing active interview for the candidate
// aborts the transaction with a Conflict error.
func (s *Service) Create(ctx context.Context, tenantID, actorID uint, in CreateInput) (*model.Interview, error) {
	if err := s.validateWindow(in.StartAt, in.DurationMins); err != nil {
		return nil, err
	}
	if len(in.InterviewerIDs) == 0 {
		return nil, BadRequest("at least one interviewer is required")
	}
	candidate, err := s.store.GetCandidate(ctx, tenantID, in.CandidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, NotFound("candidate %d not found", in.CandidateID)
	}
	if err := s.requireInterviewers(ctx, tenantID, in.InterviewerIDs); err != nil {
		return nil, err
	}

	start := in.StartAt
	end := start.Add(time.Duration(in.DurationMins) * time.Minute)
	interviewers := model.IDList(in.InterviewerIDs)

	iv := &model.Interview{
		TenantID:       tenantID,
		CandidateID:    in.CandidateID,
		InterviewerIDs: interviewers,
		Date:           start,
		DurationMins:   in.DurationMins,
		Stage:          in.Stage,
		Status:         model.StatusScheduled,
		MeetingLink:    in.MeetingLink,
		Notes:          in.Notes,
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		// re-checked inside the serializable transaction to close the race
		// with a concurrent create for the same candidate
		existing, err := tx.FindActiveInterview(ctx, tenantID, in.CandidateID, s.now())
		if err != nil {
			return err
		}
		if existing != nil {
			return Conflict("candidate already has an active interview", map[string]interface{}{
				"existing_interview_id": existing.ID,
				"existing_date":         existing.Date,
			})
		}
		conflicts, err := DetectConflicts(ctx, tx, tenantID, interviewers, start, end, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			prometheus.RecordConflictDetected("create")
			return Conflict("interviewer unavailable", conflictDetails(conflicts))
		}
		if err := tx.CreateInterview(ctx, iv); err != nil {
			return err
		}
		return reserveBlocks(ctx, tx, tenantID, interviewers, start, end, iv.ID,
			fmt.Sprintf("Interview #%d", iv.ID))
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, audit.Entry{
		TenantID: tenantID,
		UserID:   actorID,
		Action:   "interview.create",
		Metadata: map[string]interface{}{
			"interview_id":  iv.ID,
			"candidate_id":  iv.CandidateID,
			"date":          iv.Date,
			"duration_mins": iv.DurationMins,
		},
	})
	s.afterCommit(ctx, iv, "created")
	return iv, nil
}

// RescheduleInput carries the new window for an existing interview.
type RescheduleInput struct {
	StartAt      time.Time
	DurationMins int
}

// RescheduleResult returns the updated interview along with any conflicts
// found for the new window. Unlike Create, conflicts here are advisory.
type RescheduleResult struct {
	Interview    *model.Interview  `json:"interview"`
	Conflicts    []ConflictSummary `json:"conflicts"`
	HasConflicts bool              `json:"has_conflicts"`
	Message      string            `json:"message"`
}

// Reschedule moves an interview to a new window. The conflict check runs
// outside the update transaction and its result is returned as a warning
// rather than blocking the move. This asymmetry with Create is deliberate.
func (s *Service) Reschedule(ctx context.Context, tenantID, actorID, id uint, in RescheduleInput) (*RescheduleResult, error) {
	if err := s.validateWindow(in.StartAt, in.DurationMins); err != nil {
		return nil, err
	}
	iv, err := s.store.GetInterview(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, NotFound("interview %d not found", id)
	}
	if !Reschedulable(iv.Status) {
		return nil, BadRequest("interview in status %s cannot be rescheduled", iv.Status)
	}

	oldDate, oldDuration := iv.Date, iv.DurationMins
	start := in.StartAt
	end := start.Add(time.Duration(in.DurationMins) * time.Minute)

	conflicts, err := DetectConflicts(ctx, s.store, tenantID, iv.InterviewerIDs, start, end, iv.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		prometheus.RecordConflictDetected("reschedule")
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		if err := releaseBlocks(ctx, tx, tenantID, iv.ID); err != nil {
			return err
		}
		iv.Date = start
		iv.DurationMins = in.DurationMins
		iv.Status = model.StatusScheduled
		if err := tx.UpdateInterview(ctx, iv); err != nil {
			return err
		}
		return reserveBlocks(ctx, tx, tenantID, iv.InterviewerIDs, start, end, iv.ID,
			fmt.Sprintf("Interview #%d", iv.ID))
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, audit.Entry{
		TenantID: tenantID,
		UserID:   actorID,
		Action:   "interview.reschedule",
		Metadata: map[string]interface{}{
			"interview_id":      iv.ID,
			"old_date":          oldDate,
			"old_duration_mins": oldDuration,
			"new_date":          iv.Date,
			"new_duration_mins": iv.DurationMins,
			"has_conflicts":     len(conflicts) > 0,
		},
	})
	note := fmt.Sprintf("Interview rescheduled from %s to %s",
		oldDate.Format(time.RFC3339), iv.Date.Format(time.RFC3339))
	if err := s.store.AppendCandidateNote(ctx, tenantID, iv.CandidateID, note); err != nil {
		s.log.Warn("failed to append reschedule note",
			zap.Uint("candidate_id", iv.CandidateID), zap.Error(err))
	}
	s.afterCommit(ctx, iv, "rescheduled")

	msg := "interview rescheduled"
	if len(conflicts) > 0 {
		msg = "interview rescheduled with conflicts"
	}
	return &RescheduleResult{
		Interview:    iv,
		Conflicts:    conflicts,
		HasConflicts: len(conflicts) > 0,
		Message:      msg,
	}, nil
}

// Cancel transitions an interview to CANCELLED and releases its busy blocks.
func (s *Service) Cancel(ctx context.Context, tenantID, actorID, id uint) (*model.Interview, error) {
	iv, err := s.transition(ctx, tenantID, id, model.StatusCancelled, func(iv *model.Interview) {})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.Entry{
		TenantID: tenantID,
		UserID:   actorID,
		Action:   "interview.cancel",
		Metadata: map[string]interface{}{"interview_id": iv.ID},
	})
	ev := eventFor(iv)
	s.side.Go("automation.interview_cancelled", func() error {
		return s.automation.InterviewCancelled(context.Background(), ev)
	})
	return iv, nil
}

// CompleteInput carries optional feedback captured at completion.
type CompleteInput struct {
	HasFeedback bool
	AvgRating   float64
}

// Complete transitions an interview to COMPLETED and fires an integration
// sync event in addition to the automation one.
func (s *Service) Complete(ctx context.Context, tenantID, actorID, id uint, in CompleteInput) (*model.Interview, error) {
	iv, err := s.transition(ctx, tenantID, id, model.StatusCompleted, func(iv *model.Interview) {
		iv.HasFeedback = in.HasFeedback
		iv.AvgRating = in.AvgRating
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.Entry{
		TenantID: tenantID,
		UserID:   actorID,
		Action:   "interview.complete",
		Metadata: map[string]interface{}{"interview_id": iv.ID},
	})
	ev := eventFor(iv)
	s.side.Go("automation.interview_completed", func() error {
		return s.automation.InterviewCompleted(context.Background(), ev)
	})
	s.side.Go("integrations.interview_completed", func() error {
		return s.integrations.InterviewCompleted(context.Background(), ev)
	})
	return iv, nil
}

// MarkNoShow transitions an interview to NO_SHOW and flags it.
func (s *Service) MarkNoShow(ctx context.Context, tenantID, actorID, id uint) (*model.Interview, error) {
	iv, err := s.transition(ctx, tenantID, id, model.StatusNoShow, func(iv *model.Interview) {
		iv.IsNoShow = true
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.Entry{
		TenantID: tenantID,
		UserID:   actorID,
		Action:   "interview.no_show",
		Metadata: map[string]interface{}{"interview_id": iv.ID},
	})
	return iv, nil
}

// Get returns a single interview scoped to the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id uint) (*model.Interview, error) {
	iv, err := s.store.GetInterview(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, NotFound("interview %d not found", id)
	}
	return iv, nil
}

// transition validates the status change against the transition table,
// applies mutate, persists, and releases busy blocks when the new status no
// longer occupies the window.
func (s *Service) transition(ctx context.Context, tenantID, id uint, to model.InterviewStatus, mutate func(*model.Interview)) (*model.Interview, error) {
	iv, err := s.store.GetInterview(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, NotFound("interview %d not found", id)
	}
	if err := ValidateTransition(iv.Status, to); err != nil {
		return nil, err
	}
	iv.Status = to
	mutate(iv)

	err = s.store.InTx(ctx, func(tx Store) error {
		if err := tx.UpdateInterview(ctx, iv); err != nil {
			return err
		}
		if to == model.StatusCancelled {
			return releaseBlocks(ctx, tx, tenantID, iv.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func (s *Service) validateWindow(start time.Time, durationMins int) error {
	if start.IsZero() {
		return BadRequest("start time is required")
	}
	if durationMins <= 0 {
		return BadRequest("duration must be positive")
	}
	return nil
}

func (s *Service) requireInterviewers(ctx context.Context, tenantID uint, ids []uint) error {
	// COUNT collapses duplicate ids, so dedupe before comparing.
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	count, err := s.store.CountUsers(ctx, tenantID, unique)
	if err != nil {
		return err
	}
	if count != int64(len(unique)) {
		return BadRequest("one or more interviewers do not belong to this tenant")
	}
	return nil
}

// recordAudit awaits the write but only logs failures; a lost audit row never
// fails an operation that already committed.
func (s *Service) recordAudit(ctx context.Context, entry audit.Entry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Error("audit write failed",
			zap.String("action", entry.Action),
			zap.Uint("tenant_id", entry.TenantID),
			zap.Error(err))
	}
}

// afterCommit enqueues reminders and calendar sync and fans lifecycle events
// out to the automation and integration collaborators. Everything here is
// best-effort: the interview mutation has already committed.
func (s *Service) afterCommit(ctx context.Context, iv *model.Interview, lifecycle string) {
	s.enqueueReminders(ctx, iv)
	if err := s.queue.Enqueue(ctx, queue.QueueCalendarSync, eventFor(iv), queue.JobOptions{Attempts: 3, Backoff: 30 * time.Second}); err != nil {
		s.log.Warn("failed to enqueue calendar sync",
			zap.Uint("interview_id", iv.ID), zap.Error(err))
	}

	ev := eventFor(iv)
	switch lifecycle {
	case "created":
		s.side.Go("automation.interview_created", func() error {
			return s.automation.InterviewCreated(context.Background(), ev)
		})
		s.side.Go("integrations.interview_created", func() error {
			return s.integrations.InterviewCreated(context.Background(), ev)
		})
	case "rescheduled":
		s.side.Go("automation.interview_rescheduled", func() error {
			return s.automation.InterviewRescheduled(context.Background(), ev)
		})
		s.side.Go("integrations.interview_rescheduled", func() error {
			return s.integrations.InterviewRescheduled(context.Background(), ev)
		})
	}
}

// enqueueReminders schedules the 24h and 1h reminders, silently skipping any
// whose fire time is already in the past.
func (s *Service) enqueueReminders(ctx context.Context, iv *model.Interview) {
	now := s.now()
	for _, offset := range reminderOffsets {
		fireAt := iv.Date.Add(-offset)
		if !fireAt.After(now) {
			continue
		}
		payload := map[string]interface{}{
			"interview_id": iv.ID,
			"tenant_id":    iv.TenantID,
			"offset":       offset.String(),
			"fire_at":      fireAt,
		}
		if err := s.queue.Enqueue(ctx, queue.QueueReminders, payload, queue.JobOptions{Delay: fireAt.Sub(now)}); err != nil {
			s.log.Warn("failed to enqueue reminder",
				zap.Uint("interview_id", iv.ID),
				zap.Duration("offset", offset),
				zap.Error(err))
		}
	}
}
