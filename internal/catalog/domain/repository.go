package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, module *Module) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Module, error)
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*Module, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Module, error)
	Update(ctx context.Context, db *gorm.DB, module *Module) error
}
