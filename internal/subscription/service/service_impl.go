package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activationdomain "github.com/odontix/odontix/internal/activation/domain"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	"github.com/odontix/odontix/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	Toggler     activationdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	toggler     activationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("subscription.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		toggler:     p.Toggler,
	}
}

// Grant creates the entitlement row, inactive by default. Re-granting a
// revoked entitlement reuses the existing row so audit references stay valid.
func (s *Service) Grant(ctx context.Context, req domain.GrantRequest) (*domain.Response, error) {
	tenantID, err := parseTenantID(req.TenantID)
	if err != nil {
		return nil, err
	}

	moduleKey := normalizeKey(req.ModuleKey)
	if moduleKey == "" {
		return nil, domain.ErrInvalidModuleKey
	}

	var row domain.TenantModule
	var key string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.catalogRepo.FindByKey(ctx, tx, moduleKey)
		if err != nil {
			return err
		}
		if module == nil {
			return domain.ErrModuleNotFound
		}
		key = module.Key

		existing, err := s.repo.FindByTenantAndModule(ctx, tx, tenantID, module.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing != nil {
			if existing.Subscribed() {
				return domain.ErrAlreadySubscribed
			}
			existing.RevokedAt = nil
			existing.IsActive = false
			existing.GrantedAt = now
			existing.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, existing); err != nil {
				return err
			}
			row = *existing
			return nil
		}

		record := domain.TenantModule{
			ID:        s.genID.Generate(),
			TenantID:  tenantID,
			ModuleID:  module.ID,
			IsActive:  false,
			GrantedAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, &record); err != nil {
			return err
		}
		row = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("module granted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("module", key),
	)

	if req.Activate {
		result, toggleErr := s.toggler.Toggle(ctx, activationdomain.ToggleRequest{
			TenantID:  req.TenantID,
			ModuleKey: key,
			ActorID:   req.ActorID,
		})
		if toggleErr != nil {
			// The entitlement is already committed. Return it with the
			// activation error so callers can tell the grant stood.
			resp := toResponse(&row, key)
			return &resp, toggleErr
		}
		row.IsActive = result.NewState
		row.UpdatedAt = result.ToggledAt
	}

	resp := toResponse(&row, key)
	return &resp, nil
}

// Revoke withdraws the entitlement. The module must be switched off first so
// the tenant's active set stays dependency-closed.
func (s *Service) Revoke(ctx context.Context, tenantIDRaw, moduleKey string) error {
	tenantID, err := parseTenantID(tenantIDRaw)
	if err != nil {
		return err
	}

	moduleKey = normalizeKey(moduleKey)
	if moduleKey == "" {
		return domain.ErrInvalidModuleKey
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.catalogRepo.FindByKey(ctx, tx, moduleKey)
		if err != nil {
			return err
		}
		if module == nil {
			return domain.ErrModuleNotFound
		}

		row, err := s.repo.FindByTenantAndModule(ctx, tx, tenantID, module.ID)
		if err != nil {
			return err
		}
		if row == nil || !row.Subscribed() {
			return domain.ErrNotSubscribed
		}
		if row.IsActive {
			return domain.ErrModuleStillActive
		}

		now := time.Now().UTC()
		row.RevokedAt = &now
		row.UpdatedAt = now
		return s.repo.Update(ctx, tx, row)
	})
}

func (s *Service) ListForTenant(ctx context.Context, tenantIDRaw string) ([]domain.Response, error) {
	tenantID, err := parseTenantID(tenantIDRaw)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}

	modules, err := s.catalogRepo.List(ctx, s.db, catalogdomain.ListRequest{})
	if err != nil {
		return nil, err
	}
	keys := make(map[snowflake.ID]string, len(modules))
	for _, m := range modules {
		keys[m.ID] = m.Key
	}

	resp := make([]domain.Response, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toResponse(&row, keys[row.ModuleID]))
	}
	return resp, nil
}

func toResponse(row *domain.TenantModule, moduleKey string) domain.Response {
	return domain.Response{
		ID:        row.ID.String(),
		TenantID:  row.TenantID.String(),
		ModuleKey: moduleKey,
		IsActive:  row.IsActive,
		GrantedAt: row.GrantedAt,
		RevokedAt: row.RevokedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func parseTenantID(raw string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidTenant
	}
	return parsed, nil
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
