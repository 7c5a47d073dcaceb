package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	GetByKey(ctx context.Context, key string) (*Response, error)
	Disable(ctx context.Context, key string) (*Response, error)
}

type ListRequest struct {
	Category string
	Enabled  *bool
}

type CreateRequest struct {
	Key          string         `json:"key"`
	Name         string         `json:"name"`
	Description  *string        `json:"description"`
	Category     string         `json:"category"`
	DisplayOrder int            `json:"display_order"`
	Enabled      *bool          `json:"enabled"`
	Metadata     map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	Key          string         `json:"key"`
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Category     *string        `json:"category,omitempty"`
	DisplayOrder *int           `json:"display_order,omitempty"`
	Enabled      *bool          `json:"enabled,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type Response struct {
	ID           string         `json:"id"`
	Key          string         `json:"key"`
	Name         string         `json:"name"`
	Description  *string        `json:"description,omitempty"`
	Category     string         `json:"category"`
	DisplayOrder int            `json:"display_order"`
	Enabled      bool           `json:"enabled"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

var (
	ErrInvalidKey      = errors.New("invalid_key")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrDuplicateKey    = errors.New("duplicate_key")
	ErrNotFound        = errors.New("not_found")
)
