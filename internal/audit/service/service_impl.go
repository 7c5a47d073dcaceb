package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/audit/domain"
	"github.com/odontix/odontix/pkg/db/pagination"
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
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) error {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	if req.Action != domain.ActionActivated && req.Action != domain.ActionDeactivated {
		return domain.ErrInvalidAction
	}

	moduleID, err := snowflake.ParseString(strings.TrimSpace(req.ModuleID))
	if err != nil || moduleID == 0 {
		return domain.ErrInvalidAction
	}

	entry := domain.ModuleAuditLog{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		Action:        req.Action,
		ModuleID:      moduleID,
		ModuleKey:     req.ModuleKey,
		PreviousState: req.PreviousState,
		NewState:      req.NewState,
		CreatedAt:     time.Now().UTC(),
	}
	if actor := strings.TrimSpace(req.ActorID); actor != "" {
		entry.ActorID = &actor
	}
	if len(req.Metadata) > 0 {
		entry.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("tenant_id", req.TenantID),
			zap.String("module", req.ModuleKey),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil || tenantID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidTenant
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}

	var cursor *domain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.Cursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		TenantID:  tenantID,
		Action:    strings.TrimSpace(req.Action),
		ModuleKey: strings.TrimSpace(req.ModuleKey),
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Cursor:    cursor,
		Limit:     int(pageSize),
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.ModuleAuditLog) string {
		// Nanosecond precision: a second-truncated cursor would skip rows
		// sharing the boundary second.
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	logs := make([]domain.ModuleAuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}

	resp := domain.ListResponse{AuditLogs: logs}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
