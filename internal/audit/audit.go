package audit

import (
	"context"

	"recruiting-service/internal/model"

	"gorm.io/gorm"
)

// Entry is one append-only audit record.
type Entry struct {
	TenantID uint
	UserID   uint
	Action   string
	Metadata map[string]interface{}
}

// Recorder appends audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Trail is the gorm-backed Recorder. Rows are never updated or deleted.
type Trail struct {
	db *gorm.DB
}

func NewTrail(db *gorm.DB) *Trail {
	return &Trail{db: db}
}

func (t *Trail) Record(ctx context.Context, entry Entry) error {
	row := model.AuditLog{
		TenantID: entry.TenantID,
		UserID:   entry.UserID,
		Action:   entry.Action,
		Metadata: model.Metadata(entry.Metadata),
	}
	return t.db.WithContext(ctx).Create(&row).Error
}
