package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/graph/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, edge *domain.DependencyEdge) error {
	return db.WithContext(ctx).Create(edge).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, moduleID, dependsOnID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).
		Where("module_id = ? AND depends_on_id = ?", moduleID, dependsOnID).
		Delete(&domain.DependencyEdge{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, moduleID, dependsOnID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.DependencyEdge{}).
		Where("module_id = ? AND depends_on_id = ?", moduleID, dependsOnID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]domain.DependencyEdge, error) {
	var items []domain.DependencyEdge
	if err := db.WithContext(ctx).Order("created_at asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
