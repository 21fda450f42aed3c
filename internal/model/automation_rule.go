package model

import (
	"time"

	"gorm.io/gorm"
)

// AutomationRule is a tenant-defined rule evaluated on interview lifecycle
// events.
type AutomationRule struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Event     string         `json:"event" gorm:"type:varchar(50);index;not null"`
	Action    string         `json:"action" gorm:"type:varchar(50);not null"`
	Params    Metadata       `json:"params" gorm:"type:jsonb"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// IntegrationConnection records a tenant's link to an external CRM or
// calendar provider.
type IntegrationConnection struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Provider  string         `json:"provider" gorm:"type:varchar(50);index;not null"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
