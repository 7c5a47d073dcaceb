package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/catalog/domain"
	"github.com/odontix/odontix/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	key := normalizeKey(req.Key)
	if key == "" {
		return nil, domain.ErrInvalidKey
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}

	description := strings.TrimSpace(ptrToString(req.Description))
	var descriptionPtr *string
	if description != "" {
		descriptionPtr = &description
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now().UTC()
	record := &domain.Module{
		ID:           s.genID.Generate(),
		Key:          key,
		Name:         name,
		Description:  descriptionPtr,
		Category:     category,
		DisplayOrder: req.DisplayOrder,
		Enabled:      enabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Metadata != nil {
		record.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}

	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	key := normalizeKey(req.Key)
	if key == "" {
		return nil, domain.ErrInvalidKey
	}

	item, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			item.Description = nil
		} else {
			item.Description = &description
		}
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, domain.ErrInvalidCategory
		}
		item.Category = category
	}
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}
	if req.Enabled != nil {
		item.Enabled = *req.Enabled
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListRequest{
		Category: strings.TrimSpace(req.Category),
		Enabled:  req.Enabled,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) GetByKey(ctx context.Context, key string) (*domain.Response, error) {
	normalized := normalizeKey(key)
	if normalized == "" {
		return nil, domain.ErrInvalidKey
	}

	item, err := s.repo.FindByKey(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

// Disable flips the operator kill switch. Tenants keep their subscription and
// activation state; the module simply stops being toggleable until re-enabled.
func (s *Service) Disable(ctx context.Context, key string) (*domain.Response, error) {
	normalized := normalizeKey(key)
	if normalized == "" {
		return nil, domain.ErrInvalidKey
	}

	item, err := s.repo.FindByKey(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Enabled = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("module disabled", zap.String("key", item.Key))

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) toResponse(m *domain.Module) domain.Response {
	resp := domain.Response{
		ID:           m.ID.String(),
		Key:          m.Key,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.Category,
		DisplayOrder: m.DisplayOrder,
		Enabled:      m.Enabled,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if len(m.Metadata) > 0 {
		resp.Metadata = map[string]any(m.Metadata)
	}
	return resp
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
