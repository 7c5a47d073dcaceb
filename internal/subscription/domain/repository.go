package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, row *TenantModule) error
	FindByTenantAndModule(ctx context.Context, db *gorm.DB, tenantID, moduleID snowflake.ID) (*TenantModule, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]TenantModule, error)
	// ListByTenantForUpdate locks the tenant's subscription rows for the
	// duration of the surrounding transaction, serializing concurrent toggles
	// for the same tenant.
	ListByTenantForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]TenantModule, error)
	UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, now time.Time) error
	Update(ctx context.Context, db *gorm.DB, row *TenantModule) error
}
