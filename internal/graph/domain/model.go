package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DependencyEdge declares that ModuleID requires DependsOnID to be active
// before it can be active itself. The full edge set is a DAG by construction:
// insertion rejects self-loops, duplicates and cycles.
type DependencyEdge struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	ModuleID    snowflake.ID `gorm:"column:module_id;not null;index:ux_module_dependencies_pair,unique,priority:1"`
	DependsOnID snowflake.ID `gorm:"column:depends_on_id;not null;index:ux_module_dependencies_pair,unique,priority:2"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DependencyEdge) TableName() string { return "module_dependencies" }
