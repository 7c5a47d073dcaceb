package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, row *domain.TenantModule) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) FindByTenantAndModule(ctx context.Context, db *gorm.DB, tenantID, moduleID snowflake.ID) (*domain.TenantModule, error) {
	var row domain.TenantModule
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND module_id = ?", tenantID, moduleID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.TenantModule, error) {
	var items []domain.TenantModule
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByTenantForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.TenantModule, error) {
	stmt := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id asc")

	// sqlite has no FOR UPDATE; its writer lock serializes transactions anyway.
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var items []domain.TenantModule
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenant_modules SET is_active = ?, updated_at = ? WHERE id = ?`,
		active,
		now,
		id,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, row *domain.TenantModule) error {
	if row == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE tenant_modules
		 SET is_active = ?, granted_at = ?, revoked_at = ?, updated_at = ?
		 WHERE id = ?`,
		row.IsActive,
		row.GrantedAt,
		row.RevokedAt,
		row.UpdatedAt,
		row.ID,
	).Error
}
