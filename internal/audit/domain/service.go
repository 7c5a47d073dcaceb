package domain

import (
	"context"
	"errors"
	"time"

	"github.com/odontix/odontix/pkg/db/pagination"
)

type RecordRequest struct {
	TenantID      string
	ActorID       string
	Action        Action
	ModuleID      string
	ModuleKey     string
	PreviousState bool
	NewState      bool
	Metadata      map[string]any
}

type ListRequest struct {
	pagination.Pagination
	TenantID  string
	Action    string
	ModuleKey string
	StartAt   *time.Time
	EndAt     *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	AuditLogs []ModuleAuditLog `json:"audit_logs"`
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
