package model

import "time"

// AuditLog is an append-only record of user-visible operations.
type AuditLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Action    string    `json:"action" gorm:"type:varchar(100);index;not null"`
	Metadata  Metadata  `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at"`
}
