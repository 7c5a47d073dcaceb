package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	TenantID  snowflake.ID
	Action    string
	ModuleKey string
	StartAt   *time.Time
	EndAt     *time.Time
	Cursor    *Cursor
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ModuleAuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*ModuleAuditLog, error)
}
