package repository

import (
	"context"

	"github.com/odontix/odontix/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ModuleAuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.ModuleAuditLog, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.ModuleAuditLog{}).
		Where("tenant_id = ?", filter.TenantID)

	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}
	if filter.ModuleKey != "" {
		stmt = stmt.Where("module_key = ?", filter.ModuleKey)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", *filter.EndAt)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var items []*domain.ModuleAuditLog
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
