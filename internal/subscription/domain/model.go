package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TenantModule is one tenant's entitlement to one catalog module. Existence
// of the row (with RevokedAt unset) means the tenant is subscribed; IsActive
// tracks whether the tenant has switched the module on. Entitlement removal
// sets RevokedAt instead of deleting, so audit history keeps its references.
type TenantModule struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index:ux_tenant_modules_pair,unique,priority:1"`
	ModuleID snowflake.ID `gorm:"column:module_id;not null;index:ux_tenant_modules_pair,unique,priority:2"`

	IsActive  bool       `gorm:"not null;default:false"`
	GrantedAt time.Time  `gorm:"not null"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TenantModule) TableName() string { return "tenant_modules" }

// Subscribed reports whether the entitlement is currently in force.
func (t *TenantModule) Subscribed() bool {
	return t != nil && t.RevokedAt == nil
}
