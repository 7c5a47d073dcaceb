package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Grant(ctx context.Context, req GrantRequest) (*Response, error)
	Revoke(ctx context.Context, tenantID, moduleKey string) error
	ListForTenant(ctx context.Context, tenantID string) ([]Response, error)
}

type GrantRequest struct {
	TenantID  string `json:"tenant_id"`
	ModuleKey string `json:"module_key"`
	// Activate switches the module on at grant time. The activation runs
	// through the same dependency checks as a tenant toggle; if they fail
	// the grant stands and Grant returns the inactive entitlement together
	// with the activation error.
	Activate bool   `json:"activate"`
	ActorID  string `json:"-"`
}

type Response struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	ModuleKey string     `json:"module_key"`
	IsActive  bool       `json:"is_active"`
	GrantedAt time.Time  `json:"granted_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidModuleKey  = errors.New("invalid_module_key")
	ErrModuleNotFound    = errors.New("module_not_found")
	ErrAlreadySubscribed = errors.New("already_subscribed")
	ErrNotSubscribed     = errors.New("not_subscribed")
	ErrModuleStillActive = errors.New("module_still_active")
)
