package model

import "time"

// BusyBlockSource identifies what kind of record reserved the block.
const BusyBlockSourceInterview = "interview"

// BusyBlock represents a reserved time interval for one participant.
// Blocks back the conflict detector and are rewritten atomically whenever
// the owning interview's window changes.
type BusyBlock struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	StartAt   time.Time `json:"start_at" gorm:"index;not null"`
	EndAt     time.Time `json:"end_at" gorm:"not null"`
	Source    string    `json:"source" gorm:"type:varchar(50);not null"`
	SourceID  uint      `json:"source_id" gorm:"index;not null"`
	Reason    string    `json:"reason" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
