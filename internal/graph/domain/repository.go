package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, edge *DependencyEdge) error
	Delete(ctx context.Context, db *gorm.DB, moduleID, dependsOnID snowflake.ID) (bool, error)
	Exists(ctx context.Context, db *gorm.DB, moduleID, dependsOnID snowflake.ID) (bool, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]DependencyEdge, error)
}
