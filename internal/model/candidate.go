package model

import (
	"time"

	"gorm.io/gorm"
)

// StageChangeSource identifies who triggered a stage change.
const (
	StageChangeSourceSystem = "SYSTEM"
	StageChangeSourceUser   = "USER"
)

// Candidate represents an applicant tracked by a tenant
type Candidate struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Email     string         `json:"email" gorm:"type:varchar(255);index"`
	Phone     string         `json:"phone" gorm:"type:varchar(50)"`
	Stage     string         `json:"stage" gorm:"type:varchar(100)"`
	Notes     string         `json:"notes" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// CandidateStageHistory is an append-only log of stage transitions.
// Rows are never updated or deleted.
type CandidateStageHistory struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	TenantID      uint      `json:"tenant_id" gorm:"index;not null"`
	CandidateID   uint      `json:"candidate_id" gorm:"index;not null"`
	PreviousStage string    `json:"previous_stage" gorm:"type:varchar(100)"`
	NewStage      string    `json:"new_stage" gorm:"type:varchar(100);not null"`
	Source        string    `json:"source" gorm:"type:varchar(20);not null"`
	TriggeredBy   string    `json:"triggered_by" gorm:"type:varchar(100)"`
	ActorID       uint      `json:"actor_id"`
	Reason        string    `json:"reason" gorm:"type:varchar(255)"`
	CreatedAt     time.Time `json:"created_at"`
}
