package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Action string

const (
	ActionActivated   Action = "ACTIVATED"
	ActionDeactivated Action = "DEACTIVATED"
)

// ModuleAuditLog is one immutable record of a successful toggle. Rows are
// append-only; nothing in the engine reads them back for decisions.
type ModuleAuditLog struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index:ix_module_audit_logs_tenant"`

	ActorID   *string      `gorm:"type:text"`
	Action    Action       `gorm:"type:text;not null"`
	ModuleID  snowflake.ID `gorm:"column:module_id;not null"`
	ModuleKey string       `gorm:"type:text;not null"`

	PreviousState bool              `gorm:"not null"`
	NewState      bool              `gorm:"not null"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ModuleAuditLog) TableName() string { return "module_audit_logs" }

// Cursor positions audit pagination by (created_at, id).
type Cursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}
