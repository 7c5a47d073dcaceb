package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Module is a catalog entry: an optional product feature offered platform-wide.
// Key is immutable once the module is referenced by dependencies or
// subscriptions. Enabled is the operator-level kill switch, distinct from
// per-tenant activation.
type Module struct {
	ID  snowflake.ID `gorm:"primaryKey"`
	Key string       `gorm:"type:text;not null;uniqueIndex:ux_modules_key"`

	Name         string            `gorm:"type:text;not null"`
	Description  *string           `gorm:"type:text"`
	Category     string            `gorm:"type:text;not null"`
	DisplayOrder int               `gorm:"not null;default:0"`
	// No default tag: gorm omits zero-valued defaulted fields from the
	// INSERT, so enabled=false would persist as true. The service fills in
	// the default.
	Enabled bool `gorm:"not null"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Module) TableName() string { return "modules" }
