package domain

import "context"

// Service is the tenant-facing activation surface: one writer (Toggle) and
// one reader (ListModules). Tenant and actor identity are explicit arguments,
// never ambient state.
type Service interface {
	Toggle(ctx context.Context, req ToggleRequest) (*ToggleResult, error)
	ListModules(ctx context.Context, tenantID string) ([]ModuleView, error)
}
