package scheduling

import (
	"context"
	"time"

	"recruiting-service/internal/audit"
	"recruiting-service/internal/model"
	"recruiting-service/internal/queue"
)

// InterviewEvent is the normalized payload handed to the automation and
// integration collaborators on interview lifecycle transitions.
type InterviewEvent struct {
	TenantID       uint         `json:"tenant_id"`
	InterviewID    uint         `json:"interview_id"`
	CandidateID    uint         `json:"candidate_id"`
	InterviewerIDs model.IDList `json:"interviewer_ids"`
	Date           time.Time    `json:"date"`
	DurationMins   int          `json:"duration_mins"`
	Stage          string       `json:"stage,omitempty"`
	MeetingLink    string       `json:"meeting_link,omitempty"`
	EmailSubject   string       `json:"email_subject,omitempty"`
	EmailBody      string       `json:"email_body,omitempty"`
}

func eventFor(iv *model.Interview) InterviewEvent {
	return InterviewEvent{
		TenantID:       iv.TenantID,
		InterviewID:    iv.ID,
		CandidateID:    iv.CandidateID,
		InterviewerIDs: iv.InterviewerIDs,
		Date:           iv.Date,
		DurationMins:   iv.DurationMins,
		Stage:          iv.Stage,
		MeetingLink:    iv.MeetingLink,
	}
}

// EventSink receives interview lifecycle events. Implementations must be safe
// for concurrent use; the orchestrator invokes them through the best-effort
// side channel and never waits for completion.
type EventSink interface {
	InterviewCreated(ctx context.Context, ev InterviewEvent) error
	InterviewRescheduled(ctx context.Context, ev InterviewEvent) error
	InterviewCancelled(ctx context.Context, ev InterviewEvent) error
	InterviewCompleted(ctx context.Context, ev InterviewEvent) error
}

// Queue enqueues background jobs (reminders, calendar sync).
type Queue interface {
	Enqueue(ctx context.Context, queueName string, payload interface{}, opts queue.JobOptions) error
}

// AuditRecorder appends audit entries. Calls are awaited so the write is part
// of the observable operation, but a failed write never rolls back the
// scheduling mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}
