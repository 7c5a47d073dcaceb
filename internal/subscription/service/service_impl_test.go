package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	activationdomain "github.com/odontix/odontix/internal/activation/domain"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	catalogrepository "github.com/odontix/odontix/internal/catalog/repository"
	"github.com/odontix/odontix/internal/subscription/domain"
	subscriptionrepository "github.com/odontix/odontix/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type togglerStub struct {
	calls []activationdomain.ToggleRequest
	err   error
}

func (s *togglerStub) Toggle(ctx context.Context, req activationdomain.ToggleRequest) (*activationdomain.ToggleResult, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &activationdomain.ToggleResult{
		ModuleKey: req.ModuleKey,
		NewState:  true,
		ToggledAt: time.Now().UTC(),
	}, nil
}

func (s *togglerStub) ListModules(ctx context.Context, tenantID string) ([]activationdomain.ModuleView, error) {
	return nil, nil
}

func setupSubscriptionTest(t *testing.T) (*gorm.DB, domain.Service, *snowflake.Node, *togglerStub) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&catalogdomain.Module{}, &domain.TenantModule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	toggler := &togglerStub{}
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        subscriptionrepository.Provide(),
		CatalogRepo: catalogrepository.Provide(),
		Toggler:     toggler,
	})
	return conn, svc, node, toggler
}

func seedCatalogModule(t *testing.T, conn *gorm.DB, node *snowflake.Node, key string) catalogdomain.Module {
	t.Helper()
	m := catalogdomain.Module{
		ID:       node.Generate(),
		Key:      key,
		Name:     key,
		Category: "clinical",
		Enabled:  true,
	}
	require.NoError(t, conn.Create(&m).Error)
	return m
}

func TestGrant(t *testing.T) {
	conn, svc, node, _ := setupSubscriptionTest(t)
	seedCatalogModule(t, conn, node, "AGENDA")
	tenantID := node.Generate().String()

	resp, err := svc.Grant(context.Background(), domain.GrantRequest{
		TenantID:  tenantID,
		ModuleKey: "agenda",
	})
	require.NoError(t, err)
	assert.Equal(t, "AGENDA", resp.ModuleKey)
	assert.False(t, resp.IsActive)
	assert.Nil(t, resp.RevokedAt)
}

func TestGrantRejectsDuplicate(t *testing.T) {
	conn, svc, node, _ := setupSubscriptionTest(t)
	seedCatalogModule(t, conn, node, "AGENDA")
	tenantID := node.Generate().String()

	ctx := context.Background()
	_, err := svc.Grant(ctx, domain.GrantRequest{TenantID: tenantID, ModuleKey: "AGENDA"})
	require.NoError(t, err)

	_, err = svc.Grant(ctx, domain.GrantRequest{TenantID: tenantID, ModuleKey: "AGENDA"})
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestGrantUnknownModule(t *testing.T) {
	_, svc, node, _ := setupSubscriptionTest(t)
	tenantID := node.Generate().String()

	_, err := svc.Grant(context.Background(), domain.GrantRequest{TenantID: tenantID, ModuleKey: "NOPE"})
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestGrantWithActivateDelegatesToToggle(t *testing.T) {
	conn, svc, node, toggler := setupSubscriptionTest(t)
	seedCatalogModule(t, conn, node, "AGENDA")
	tenantID := node.Generate().String()

	resp, err := svc.Grant(context.Background(), domain.GrantRequest{
		TenantID:  tenantID,
		ModuleKey: "AGENDA",
		Activate:  true,
		ActorID:   "admin",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	require.Len(t, toggler.calls, 1)
	assert.Equal(t, "AGENDA", toggler.calls[0].ModuleKey)
	assert.Equal(t, "admin", toggler.calls[0].ActorID)
}

func TestGrantWithActivateSurfacesToggleError(t *testing.T) {
	conn, svc, node, toggler := setupSubscriptionTest(t)
	seedCatalogModule(t, conn, node, "SPLIT_PAGAMENTO")
	toggler.err = &activationdomain.UnmetDependenciesError{
		Module:  activationdomain.ModuleRef{Key: "SPLIT_PAGAMENTO"},
		Missing: []activationdomain.ModuleRef{{Key: "FINANCEIRO", Name: "Financeiro"}},
	}
	tenantID := node.Generate().String()

	resp, err := svc.Grant(context.Background(), domain.GrantRequest{
		TenantID:  tenantID,
		ModuleKey: "SPLIT_PAGAMENTO",
		Activate:  true,
	})
	var unmet *activationdomain.UnmetDependenciesError
	require.ErrorAs(t, err, &unmet)

	// The grant itself stands even though the activation was rejected, and
	// the committed entitlement comes back alongside the error.
	require.NotNil(t, resp)
	assert.Equal(t, "SPLIT_PAGAMENTO", resp.ModuleKey)
	assert.False(t, resp.IsActive)

	rows, listErr := svc.ListForTenant(context.Background(), tenantID)
	require.NoError(t, listErr)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsActive)
}

func TestRevoke(t *testing.T) {
	conn, svc, node, _ := setupSubscriptionTest(t)
	seedCatalogModule(t, conn, node, "AGENDA")
	tenantID := node.Generate().String()

	ctx := context.Background()
	_, err := svc.Grant(ctx, domain.GrantRequest{TenantID: tenantID, ModuleKey: "AGENDA"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, tenantID, "AGENDA"))

	rows, err := svc.ListForTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].RevokedAt)
}

func TestRevokeRejectsActiveModule(t *testing.T) {
	conn, svc, node, _ := setupSubscriptionTest(t)
	m := seedCatalogModule(t, conn, node, "AGENDA")
	tenantID := node.Generate()

	row := domain.TenantModule{
		ID:        node.Generate(),
		TenantID:  tenantID,
		ModuleID:  m.ID,
		IsActive:  true,
		GrantedAt: time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&row).Error)

	err := svc.Revoke(context.Background(), tenantID.String(), "AGENDA")
	assert.ErrorIs(t, err, domain.ErrModuleStillActive)
}

func TestRevokeNotSubscribed(t *testing.T) {
	conn, svc, node, _ := setupSubscriptionTest(t)
	seedCatalogModule(t, conn, node, "AGENDA")

	err := svc.Revoke(context.Background(), node.Generate().String(), "AGENDA")
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestRegrantReusesRevokedRow(t *testing.T) {
	conn, svc, node, _ := setupSubscriptionTest(t)
	seedCatalogModule(t, conn, node, "AGENDA")
	tenantID := node.Generate().String()

	ctx := context.Background()
	first, err := svc.Grant(ctx, domain.GrantRequest{TenantID: tenantID, ModuleKey: "AGENDA"})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, tenantID, "AGENDA"))

	second, err := svc.Grant(ctx, domain.GrantRequest{TenantID: tenantID, ModuleKey: "AGENDA"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.RevokedAt)
	assert.False(t, second.IsActive)
}

func TestGrantInvalidTenant(t *testing.T) {
	_, svc, _, _ := setupSubscriptionTest(t)

	_, err := svc.Grant(context.Background(), domain.GrantRequest{TenantID: "abc", ModuleKey: "AGENDA"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}
