package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	"github.com/odontix/odontix/internal/graph/domain"
	"github.com/odontix/odontix/pkg/db"
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
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("graph.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
	}
}

// AddEdge inserts a dependency edge after validating that it keeps the graph
// acyclic. The reachability check and the insert run in one transaction so a
// concurrent insert cannot sneak a cycle past the check.
func (s *Service) AddEdge(ctx context.Context, req domain.AddEdgeRequest) (*domain.Response, error) {
	moduleKey := normalizeKey(req.ModuleKey)
	dependsOnKey := normalizeKey(req.DependsOnKey)
	if moduleKey == "" || dependsOnKey == "" {
		return nil, domain.ErrInvalidKey
	}
	if moduleKey == dependsOnKey {
		return nil, domain.ErrSelfDependency
	}

	var resp domain.Response
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.catalogRepo.FindByKey(ctx, tx, moduleKey)
		if err != nil {
			return err
		}
		if module == nil {
			return domain.ErrModuleNotFound
		}

		dependsOn, err := s.catalogRepo.FindByKey(ctx, tx, dependsOnKey)
		if err != nil {
			return err
		}
		if dependsOn == nil {
			return domain.ErrModuleNotFound
		}

		exists, err := s.repo.Exists(ctx, tx, module.ID, dependsOn.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateEdge
		}

		edges, err := s.repo.ListAll(ctx, tx)
		if err != nil {
			return err
		}
		if reaches(edges, dependsOn.ID, module.ID) {
			return domain.ErrCycleDetected
		}

		edge := &domain.DependencyEdge{
			ID:          s.genID.Generate(),
			ModuleID:    module.ID,
			DependsOnID: dependsOn.ID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, tx, edge); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateEdge
			}
			return err
		}

		resp = domain.Response{
			ID:           edge.ID.String(),
			ModuleKey:    module.Key,
			DependsOnKey: dependsOn.Key,
			CreatedAt:    edge.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("dependency edge added",
		zap.String("module", resp.ModuleKey),
		zap.String("depends_on", resp.DependsOnKey),
	)
	return &resp, nil
}

func (s *Service) RemoveEdge(ctx context.Context, moduleKey, dependsOnKey string) error {
	moduleKey = normalizeKey(moduleKey)
	dependsOnKey = normalizeKey(dependsOnKey)
	if moduleKey == "" || dependsOnKey == "" {
		return domain.ErrInvalidKey
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.catalogRepo.FindByKey(ctx, tx, moduleKey)
		if err != nil {
			return err
		}
		dependsOn, err := s.catalogRepo.FindByKey(ctx, tx, dependsOnKey)
		if err != nil {
			return err
		}
		if module == nil || dependsOn == nil {
			return domain.ErrModuleNotFound
		}

		removed, err := s.repo.Delete(ctx, tx, module.ID, dependsOn.ID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.ErrEdgeNotFound
		}
		return nil
	})
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	edges, err := s.repo.ListAll(ctx, s.db)
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

	resp := make([]domain.Response, 0, len(edges))
	for _, edge := range edges {
		resp = append(resp, domain.Response{
			ID:           edge.ID.String(),
			ModuleKey:    keys[edge.ModuleID],
			DependsOnKey: keys[edge.DependsOnID],
			CreatedAt:    edge.CreatedAt,
		})
	}
	return resp, nil
}

// reaches reports whether `from` transitively depends on `to` via the
// depends-on direction of the given edge set.
func reaches(edges []domain.DependencyEdge, from, to snowflake.ID) bool {
	adjacent := make(map[snowflake.ID][]snowflake.ID, len(edges))
	for _, edge := range edges {
		adjacent[edge.ModuleID] = append(adjacent[edge.ModuleID], edge.DependsOnID)
	}

	visited := map[snowflake.ID]bool{}
	queue := []snowflake.ID{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		queue = append(queue, adjacent[current]...)
	}
	return false
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
