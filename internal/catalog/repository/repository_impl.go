package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, module *domain.Module) error {
	return db.WithContext(ctx).Create(module).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Module, error) {
	var m domain.Module
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.Module, error) {
	var m domain.Module
	err := db.WithContext(ctx).
		Where("modules.key = ?", key).
		Limit(1).
		Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Module, error) {
	var items []domain.Module
	stmt := db.WithContext(ctx).Model(&domain.Module{})

	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.Enabled != nil {
		stmt = stmt.Where("enabled = ?", *filter.Enabled)
	}

	if err := stmt.Order("category asc, display_order asc, name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, module *domain.Module) error {
	if module == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE modules
		 SET name = ?, description = ?, category = ?, display_order = ?, enabled = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		module.Name,
		module.Description,
		module.Category,
		module.DisplayOrder,
		module.Enabled,
		module.Metadata,
		module.UpdatedAt,
		module.ID,
	).Error
}
