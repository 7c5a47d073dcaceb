package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	AddEdge(ctx context.Context, req AddEdgeRequest) (*Response, error)
	RemoveEdge(ctx context.Context, moduleKey, dependsOnKey string) error
	List(ctx context.Context) ([]Response, error)
}

type AddEdgeRequest struct {
	ModuleKey    string `json:"module_key"`
	DependsOnKey string `json:"depends_on_key"`
}

type Response struct {
	ID           string    `json:"id"`
	ModuleKey    string    `json:"module_key"`
	DependsOnKey string    `json:"depends_on_key"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	ErrInvalidKey     = errors.New("invalid_key")
	ErrModuleNotFound = errors.New("module_not_found")
	ErrSelfDependency = errors.New("self_dependency")
	ErrDuplicateEdge  = errors.New("duplicate_edge")
	ErrCycleDetected  = errors.New("cycle_detected")
	ErrEdgeNotFound   = errors.New("edge_not_found")
)
