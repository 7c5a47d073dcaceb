package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/activation/domain"
	"github.com/odontix/odontix/internal/activation/resolver"
	auditdomain "github.com/odontix/odontix/internal/audit/domain"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	"github.com/odontix/odontix/internal/config"
	"github.com/odontix/odontix/internal/event"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
	"github.com/odontix/odontix/internal/observability/metrics"
	subscriptiondomain "github.com/odontix/odontix/internal/subscription/domain"
	"github.com/odontix/odontix/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	CatalogRepo catalogdomain.Repository
	GraphRepo   graphdomain.Repository
	SubRepo     subscriptiondomain.Repository
	Audit       auditdomain.Service
	Events      event.Publisher
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	catalogRepo catalogdomain.Repository
	graphRepo   graphdomain.Repository
	subRepo     subscriptiondomain.Repository
	audit       auditdomain.Service
	events      event.Publisher
	metrics     *metrics.Metrics

	maxRetries   int
	retryBackoff time.Duration
}

func New(p Params) domain.Service {
	maxRetries := p.Cfg.ToggleMaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := p.Cfg.ToggleRetryBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}

	return &Service{
		db:           p.DB,
		log:          p.Log.Named("activation.service"),
		catalogRepo:  p.CatalogRepo,
		graphRepo:    p.GraphRepo,
		subRepo:      p.SubRepo,
		audit:        p.Audit,
		events:       p.Events,
		metrics:      p.Metrics,
		maxRetries:   maxRetries,
		retryBackoff: backoff,
	}
}

// Toggle flips one module's activation state for one tenant. The reads and
// the single write run in one transaction holding row locks on the tenant's
// subscription rows, so concurrent toggles for the same tenant serialize.
// Every rejection happens before the write; audit and event emission happen
// after commit and never roll it back.
func (s *Service) Toggle(ctx context.Context, req domain.ToggleRequest) (*domain.ToggleResult, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	moduleKey := strings.ToUpper(strings.TrimSpace(req.ModuleKey))
	if moduleKey == "" {
		return nil, domain.ErrInvalidModuleKey
	}

	var result *domain.ToggleResult
	for attempt := 0; ; attempt++ {
		result, err = s.toggleOnce(ctx, tenantID, moduleKey)
		if err == nil || !db.IsConflictErr(err) {
			break
		}
		if attempt+1 >= s.maxRetries {
			s.observe("unknown", "conflict")
			return nil, fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}

		s.log.Debug("toggle conflict, retrying",
			zap.String("tenant_id", tenantID.String()),
			zap.String("module", moduleKey),
			zap.Int("attempt", attempt+1),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryBackoff + time.Duration(rand.Int63n(int64(s.retryBackoff)))):
		}
	}
	if err != nil {
		return nil, err
	}

	action := auditdomain.ActionDeactivated
	if result.NewState {
		action = auditdomain.ActionActivated
	}
	s.observe(string(action), "ok")

	if auditErr := s.audit.Record(ctx, auditdomain.RecordRequest{
		TenantID:      tenantID.String(),
		ActorID:       req.ActorID,
		Action:        action,
		ModuleID:      result.ModuleID,
		ModuleKey:     result.ModuleKey,
		PreviousState: result.PreviousState,
		NewState:      result.NewState,
	}); auditErr != nil {
		s.log.Warn("audit record failed after toggle",
			zap.String("module", result.ModuleKey),
			zap.Error(auditErr),
		)
	}

	if evtErr := s.events.PublishModuleToggled(ctx, event.ModuleToggledEvent{
		TenantID:   tenantID.String(),
		ModuleID:   result.ModuleID,
		ModuleKey:  result.ModuleKey,
		ModuleName: result.ModuleName,
		Active:     result.NewState,
		OccurredAt: result.ToggledAt,
	}); evtErr != nil {
		s.log.Warn("event publish failed after toggle",
			zap.String("module", result.ModuleKey),
			zap.Error(evtErr),
		)
	}

	return result, nil
}

func (s *Service) toggleOnce(ctx context.Context, tenantID snowflake.ID, moduleKey string) (*domain.ToggleResult, error) {
	var result domain.ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.catalogRepo.FindByKey(ctx, tx, moduleKey)
		if err != nil {
			return storeErr(err)
		}
		if module == nil || !module.Enabled {
			return domain.ErrModuleNotFound
		}

		rows, err := s.subRepo.ListByTenantForUpdate(ctx, tx, tenantID)
		if err != nil {
			return storeErr(err)
		}

		var target *subscriptiondomain.TenantModule
		state := make(map[snowflake.ID]bool, len(rows))
		for i := range rows {
			row := &rows[i]
			if !row.Subscribed() {
				continue
			}
			state[row.ModuleID] = row.IsActive
			if row.ModuleID == module.ID {
				target = row
			}
		}
		if target == nil {
			return domain.ErrNotSubscribed
		}

		modules, err := s.catalogRepo.List(ctx, tx, catalogdomain.ListRequest{})
		if err != nil {
			return storeErr(err)
		}
		edges, err := s.graphRepo.ListAll(ctx, tx)
		if err != nil {
			return storeErr(err)
		}

		snap := resolver.New(modules, edges, state)
		newState := !target.IsActive

		if newState {
			ok, missing := snap.CanActivate(module.ID)
			if !ok {
				return &domain.UnmetDependenciesError{
					Module:  toRef(module),
					Missing: toRefs(snap, missing),
				}
			}
		} else {
			ok, blocking := snap.CanDeactivate(module.ID)
			if !ok {
				return &domain.BlockingDependentsError{
					Module:   toRef(module),
					Blocking: toRefs(snap, blocking),
				}
			}
		}

		now := time.Now().UTC()
		if err := s.subRepo.UpdateActive(ctx, tx, target.ID, newState, now); err != nil {
			return storeErr(err)
		}

		result = domain.ToggleResult{
			ModuleID:      module.ID.String(),
			ModuleKey:     module.Key,
			ModuleName:    module.Name,
			PreviousState: target.IsActive,
			NewState:      newState,
			ToggledAt:     now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListModules assembles the presentation-ready module list for one tenant.
// Read-only; a stale read against a concurrent toggle reflects the pre-toggle
// state, which callers handle by refreshing after toggle responses.
func (s *Service) ListModules(ctx context.Context, tenantIDRaw string) ([]domain.ModuleView, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(tenantIDRaw))
	if err != nil || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	modules, err := s.catalogRepo.List(ctx, s.db, catalogdomain.ListRequest{})
	if err != nil {
		return nil, storeErr(err)
	}
	edges, err := s.graphRepo.ListAll(ctx, s.db)
	if err != nil {
		return nil, storeErr(err)
	}
	rows, err := s.subRepo.ListByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, storeErr(err)
	}

	state := make(map[snowflake.ID]bool, len(rows))
	for _, row := range rows {
		if row.Subscribed() {
			state[row.ModuleID] = row.IsActive
		}
	}

	snap := resolver.New(modules, edges, state)

	views := make([]domain.ModuleView, 0, len(modules))
	for i := range modules {
		m := &modules[i]
		subscribed := snap.Subscribed(m.ID)

		// Disabled modules stay visible to subscribed tenants but are never
		// offered to the rest of the catalog browser.
		if !m.Enabled && !subscribed {
			continue
		}

		view := domain.ModuleView{
			ID:                 m.ID.String(),
			Key:                m.Key,
			Name:               m.Name,
			Description:        m.Description,
			Category:           m.Category,
			DisplayOrder:       m.DisplayOrder,
			Enabled:            m.Enabled,
			Subscribed:         subscribed,
			IsActive:           snap.Active(m.ID),
			UnmetDependencies:  []string{},
			BlockingDependents: []string{},
		}

		if subscribed && m.Enabled {
			canActivate, missing := snap.CanActivate(m.ID)
			view.CanActivate = canActivate
			view.UnmetDependencies = domain.Names(toRefs(snap, missing))

			canDeactivate, blocking := snap.CanDeactivate(m.ID)
			view.CanDeactivate = canDeactivate
			view.BlockingDependents = domain.Names(toRefs(snap, blocking))
		}

		views = append(views, view)
	}
	return views, nil
}

func (s *Service) observe(action, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveToggle(action, outcome)
	}
}

func toRef(m *catalogdomain.Module) domain.ModuleRef {
	return domain.ModuleRef{
		ID:   m.ID.String(),
		Key:  m.Key,
		Name: m.Name,
	}
}

func toRefs(snap *resolver.Snapshot, ids []snowflake.ID) []domain.ModuleRef {
	refs := make([]domain.ModuleRef, 0, len(ids))
	for _, id := range ids {
		if m, ok := snap.Module(id); ok {
			refs = append(refs, toRef(&m))
			continue
		}
		refs = append(refs, domain.ModuleRef{ID: id.String()})
	}
	return refs
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if db.IsConflictErr(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
