package model

import (
	"time"

	"gorm.io/gorm"
)

// InterviewStatus enumerates interview lifecycle states.
type InterviewStatus string

const (
	StatusScheduled   InterviewStatus = "SCHEDULED"
	StatusRescheduled InterviewStatus = "RESCHEDULED"
	StatusCompleted   InterviewStatus = "COMPLETED"
	StatusCancelled   InterviewStatus = "CANCELLED"
	StatusNoShow      InterviewStatus = "NO_SHOW"
)

// BulkMode enumerates batch placement strategies.
type BulkMode string

const (
	BulkModeGroup      BulkMode = "GROUP"
	BulkModeSequential BulkMode = "SEQUENTIAL"
)

// Interview represents a scheduled interview for a candidate
type Interview struct {
	ID             uint            `json:"id" gorm:"primarykey"`
	TenantID       uint            `json:"tenant_id" gorm:"index;not null"`
	CandidateID    uint            `json:"candidate_id" gorm:"index;not null"`
	CandidateIDs   IDList          `json:"candidate_ids,omitempty" gorm:"type:jsonb"`
	InterviewerIDs IDList          `json:"interviewer_ids" gorm:"type:jsonb;not null"`
	Date           time.Time       `json:"date" gorm:"index;not null"`
	DurationMins   int             `json:"duration_mins" gorm:"not null;default:30"`
	Stage          string          `json:"stage" gorm:"type:varchar(100)"`
	Status         InterviewStatus `json:"status" gorm:"type:varchar(20);index;not null;default:'SCHEDULED'"`
	MeetingLink    string          `json:"meeting_link" gorm:"type:varchar(512)"`
	Notes          string          `json:"notes" gorm:"type:text"`
	BulkMode       BulkMode        `json:"bulk_mode,omitempty" gorm:"type:varchar(20)"`
	BulkBatchID    string          `json:"bulk_batch_id,omitempty" gorm:"type:varchar(36);index"`
	IsNoShow       bool            `json:"is_no_show" gorm:"default:false"`
	HasFeedback    bool            `json:"has_feedback" gorm:"default:false"`
	AvgRating      float64         `json:"avg_rating" gorm:"default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// EndTime returns the exclusive end of the interview window.
func (i *Interview) EndTime() time.Time {
	return i.Date.Add(time.Duration(i.DurationMins) * time.Minute)
}

// Active reports whether the interview still occupies its window.
func (i *Interview) Active() bool {
	return i.Status != StatusCancelled
}
