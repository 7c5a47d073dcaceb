package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontix/odontix/internal/activation/domain"
	auditdomain "github.com/odontix/odontix/internal/audit/domain"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	catalogrepository "github.com/odontix/odontix/internal/catalog/repository"
	"github.com/odontix/odontix/internal/config"
	"github.com/odontix/odontix/internal/event"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
	graphrepository "github.com/odontix/odontix/internal/graph/repository"
	subscriptiondomain "github.com/odontix/odontix/internal/subscription/domain"
	subscriptionrepository "github.com/odontix/odontix/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditStub struct {
	mu      sync.Mutex
	records []auditdomain.RecordRequest
}

func (a *auditStub) Record(ctx context.Context, req auditdomain.RecordRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, req)
	return nil
}

func (a *auditStub) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	return auditdomain.ListResponse{}, nil
}

func (a *auditStub) Records() []auditdomain.RecordRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]auditdomain.RecordRequest, len(a.records))
	copy(out, a.records)
	return out
}

type publisherStub struct {
	mu     sync.Mutex
	events []event.ModuleToggledEvent
}

func (p *publisherStub) PublishModuleToggled(ctx context.Context, evt event.ModuleToggledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *publisherStub) Events() []event.ModuleToggledEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.ModuleToggledEvent, len(p.events))
	copy(out, p.events)
	return out
}

type toggleFixture struct {
	db        *gorm.DB
	svc       domain.Service
	node      *snowflake.Node
	audit     *auditStub
	publisher *publisherStub
	tenantID  snowflake.ID
	modules   map[string]catalogdomain.Module
}

func setupToggleTest(t *testing.T) *toggleFixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps every transaction on the same in-memory database.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&catalogdomain.Module{},
		&graphdomain.DependencyEdge{},
		&subscriptiondomain.TenantModule{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	audit := &auditStub{}
	publisher := &publisherStub{}

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Cfg:         config.Config{ToggleMaxRetries: 3, ToggleRetryBackoff: 5 * time.Millisecond},
		CatalogRepo: catalogrepository.Provide(),
		GraphRepo:   graphrepository.Provide(),
		SubRepo:     subscriptionrepository.Provide(),
		Audit:       audit,
		Events:      publisher,
	})

	return &toggleFixture{
		db:        conn,
		svc:       svc,
		node:      node,
		audit:     audit,
		publisher: publisher,
		tenantID:  node.Generate(),
		modules:   map[string]catalogdomain.Module{},
	}
}

func (f *toggleFixture) addModule(t *testing.T, key string, enabled bool) catalogdomain.Module {
	t.Helper()
	m := catalogdomain.Module{
		ID:           f.node.Generate(),
		Key:          key,
		Name:         key,
		Category:     "finance",
		DisplayOrder: len(f.modules) * 10,
		Enabled:      enabled,
	}
	require.NoError(t, f.db.Create(&m).Error)
	f.modules[key] = m
	return m
}

func (f *toggleFixture) addEdge(t *testing.T, moduleKey, dependsOnKey string) {
	t.Helper()
	edge := graphdomain.DependencyEdge{
		ID:          f.node.Generate(),
		ModuleID:    f.modules[moduleKey].ID,
		DependsOnID: f.modules[dependsOnKey].ID,
	}
	require.NoError(t, f.db.Create(&edge).Error)
}

func (f *toggleFixture) subscribe(t *testing.T, key string, active bool) {
	t.Helper()
	row := subscriptiondomain.TenantModule{
		ID:        f.node.Generate(),
		TenantID:  f.tenantID,
		ModuleID:  f.modules[key].ID,
		IsActive:  active,
		GrantedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&row).Error)
}

func (f *toggleFixture) toggle(key string) (*domain.ToggleResult, error) {
	return f.svc.Toggle(context.Background(), domain.ToggleRequest{
		TenantID:  f.tenantID.String(),
		ModuleKey: key,
		ActorID:   "dr.silva",
	})
}

func seedSplitScenario(t *testing.T, f *toggleFixture) {
	f.addModule(t, "FINANCEIRO", true)
	f.addModule(t, "SPLIT_PAGAMENTO", true)
	f.addEdge(t, "SPLIT_PAGAMENTO", "FINANCEIRO")
	f.subscribe(t, "FINANCEIRO", false)
	f.subscribe(t, "SPLIT_PAGAMENTO", false)
}

func TestToggleActivateRejectsInactiveDependency(t *testing.T) {
	f := setupToggleTest(t)
	seedSplitScenario(t, f)

	_, err := f.toggle("SPLIT_PAGAMENTO")
	var unmet *domain.UnmetDependenciesError
	require.ErrorAs(t, err, &unmet)
	assert.Equal(t, "SPLIT_PAGAMENTO", unmet.Module.Key)
	require.Len(t, unmet.Missing, 1)
	assert.Equal(t, "FINANCEIRO", unmet.Missing[0].Key)

	assert.Empty(t, f.audit.Records())
	assert.Empty(t, f.publisher.Events())
}

func TestToggleActivatesInDependencyOrder(t *testing.T) {
	f := setupToggleTest(t)
	seedSplitScenario(t, f)

	res, err := f.toggle("FINANCEIRO")
	require.NoError(t, err)
	assert.False(t, res.PreviousState)
	assert.True(t, res.NewState)

	res, err = f.toggle("SPLIT_PAGAMENTO")
	require.NoError(t, err)
	assert.True(t, res.NewState)

	records := f.audit.Records()
	require.Len(t, records, 2)
	assert.Equal(t, auditdomain.ActionActivated, records[0].Action)
	assert.Equal(t, "FINANCEIRO", records[0].ModuleKey)
	assert.Equal(t, "dr.silva", records[0].ActorID)

	events := f.publisher.Events()
	require.Len(t, events, 2)
	assert.True(t, events[1].Active)
	assert.Equal(t, "SPLIT_PAGAMENTO", events[1].ModuleKey)
}

func TestToggleDeactivateRejectsActiveDependent(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "FINANCEIRO", true)
	f.addModule(t, "SPLIT_PAGAMENTO", true)
	f.addEdge(t, "SPLIT_PAGAMENTO", "FINANCEIRO")
	f.subscribe(t, "FINANCEIRO", true)
	f.subscribe(t, "SPLIT_PAGAMENTO", true)

	_, err := f.toggle("FINANCEIRO")
	var blocked *domain.BlockingDependentsError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "FINANCEIRO", blocked.Module.Key)
	require.Len(t, blocked.Blocking, 1)
	assert.Equal(t, "SPLIT_PAGAMENTO", blocked.Blocking[0].Key)
}

func TestToggleDeactivatesInReverseOrder(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "FINANCEIRO", true)
	f.addModule(t, "SPLIT_PAGAMENTO", true)
	f.addEdge(t, "SPLIT_PAGAMENTO", "FINANCEIRO")
	f.subscribe(t, "FINANCEIRO", true)
	f.subscribe(t, "SPLIT_PAGAMENTO", true)

	res, err := f.toggle("SPLIT_PAGAMENTO")
	require.NoError(t, err)
	assert.False(t, res.NewState)

	res, err = f.toggle("FINANCEIRO")
	require.NoError(t, err)
	assert.False(t, res.NewState)

	records := f.audit.Records()
	require.Len(t, records, 2)
	assert.Equal(t, auditdomain.ActionDeactivated, records[0].Action)
	assert.Equal(t, auditdomain.ActionDeactivated, records[1].Action)
}

func TestToggleRequiresSubscription(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "MARKETING", true)

	_, err := f.toggle("MARKETING")
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestToggleUnknownModule(t *testing.T) {
	f := setupToggleTest(t)

	_, err := f.toggle("NOPE")
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestToggleDisabledModule(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "MARKETING", false)
	f.subscribe(t, "MARKETING", false)

	_, err := f.toggle("MARKETING")
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestToggleInvalidTenant(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "AGENDA", true)

	_, err := f.svc.Toggle(context.Background(), domain.ToggleRequest{
		TenantID:  "not-a-tenant",
		ModuleKey: "AGENDA",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestToggleFlipsFromCurrentState(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "AGENDA", true)
	f.subscribe(t, "AGENDA", false)

	res, err := f.toggle("AGENDA")
	require.NoError(t, err)
	assert.True(t, res.NewState)

	res, err = f.toggle("AGENDA")
	require.NoError(t, err)
	assert.True(t, res.PreviousState)
	assert.False(t, res.NewState)
}

func TestToggleNormalizesModuleKey(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "AGENDA", true)
	f.subscribe(t, "AGENDA", false)

	res, err := f.toggle("  agenda ")
	require.NoError(t, err)
	assert.Equal(t, "AGENDA", res.ModuleKey)
}

func TestListModulesComputesFlags(t *testing.T) {
	f := setupToggleTest(t)
	seedSplitScenario(t, f)
	f.addModule(t, "MARKETING", true)

	views, err := f.svc.ListModules(context.Background(), f.tenantID.String())
	require.NoError(t, err)
	require.Len(t, views, 3)

	byKey := map[string]domain.ModuleView{}
	for _, v := range views {
		byKey[v.Key] = v
	}

	fin := byKey["FINANCEIRO"]
	assert.True(t, fin.Subscribed)
	assert.False(t, fin.IsActive)
	assert.True(t, fin.CanActivate)
	assert.False(t, fin.CanDeactivate)

	split := byKey["SPLIT_PAGAMENTO"]
	assert.True(t, split.Subscribed)
	assert.False(t, split.CanActivate)
	assert.Equal(t, []string{"FINANCEIRO"}, split.UnmetDependencies)

	mkt := byKey["MARKETING"]
	assert.False(t, mkt.Subscribed)
	assert.False(t, mkt.CanActivate)
	assert.Empty(t, mkt.UnmetDependencies)
}

func TestListModulesHidesDisabledFromUnsubscribed(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "AGENDA", true)
	f.addModule(t, "LEGACY", false)

	views, err := f.svc.ListModules(context.Background(), f.tenantID.String())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "AGENDA", views[0].Key)
}

func TestListModulesKeepsDisabledVisibleForSubscriber(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "LEGACY", false)
	f.subscribe(t, "LEGACY", true)

	views, err := f.svc.ListModules(context.Background(), f.tenantID.String())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "LEGACY", views[0].Key)
	assert.True(t, views[0].IsActive)
	assert.False(t, views[0].CanActivate)
	assert.False(t, views[0].CanDeactivate)
}

// TestConcurrentTogglesKeepClosure fires concurrent toggles at one tenant and
// checks afterwards that every active module still has all of its
// dependencies active.
func TestConcurrentTogglesKeepClosure(t *testing.T) {
	f := setupToggleTest(t)
	f.addModule(t, "FINANCEIRO", true)
	f.addModule(t, "SPLIT_PAGAMENTO", true)
	f.addModule(t, "COBRANCA", true)
	f.addEdge(t, "SPLIT_PAGAMENTO", "FINANCEIRO")
	f.addEdge(t, "COBRANCA", "FINANCEIRO")
	f.subscribe(t, "FINANCEIRO", false)
	f.subscribe(t, "SPLIT_PAGAMENTO", false)
	f.subscribe(t, "COBRANCA", false)

	keys := []string{"FINANCEIRO", "SPLIT_PAGAMENTO", "COBRANCA", "FINANCEIRO", "SPLIT_PAGAMENTO"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for j := 0; j < len(keys); j++ {
				key := keys[(offset+j)%len(keys)]
				_, err := f.toggle(key)
				if err == nil {
					continue
				}
				var unmet *domain.UnmetDependenciesError
				var blocked *domain.BlockingDependentsError
				ok := errors.As(err, &unmet) || errors.As(err, &blocked) ||
					errors.Is(err, domain.ErrConcurrencyConflict) ||
					errors.Is(err, domain.ErrStoreUnavailable)
				assert.True(t, ok, "unexpected toggle error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var rows []subscriptiondomain.TenantModule
	require.NoError(t, f.db.Find(&rows).Error)
	active := map[snowflake.ID]bool{}
	for _, row := range rows {
		active[row.ModuleID] = row.IsActive
	}

	var edges []graphdomain.DependencyEdge
	require.NoError(t, f.db.Find(&edges).Error)
	for _, edge := range edges {
		if active[edge.ModuleID] {
			assert.True(t, active[edge.DependsOnID],
				"active module %d has inactive dependency %d", edge.ModuleID, edge.DependsOnID)
		}
	}
}
