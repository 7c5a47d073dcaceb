package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontix/odontix/internal/catalog/domain"
	catalogrepository "github.com/odontix/odontix/internal/catalog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogTest(t *testing.T) domain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Module{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  catalogrepository.Provide(),
	})
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreateModule(t *testing.T) {
	svc := setupCatalogTest(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Key:          " financeiro ",
		Name:         "Financeiro",
		Description:  strPtr("Cash flow and receivables"),
		Category:     "finance",
		DisplayOrder: 40,
		Metadata:     map[string]any{"icon": "wallet"},
	})
	require.NoError(t, err)
	assert.Equal(t, "FINANCEIRO", resp.Key)
	assert.True(t, resp.Enabled)
	assert.Equal(t, "wallet", resp.Metadata["icon"])
}

func TestCreateModuleDisabledAtCreation(t *testing.T) {
	svc := setupCatalogTest(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		Key:      "LEGACY",
		Name:     "Legacy",
		Category: "operations",
		Enabled:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, resp.Enabled)

	// The kill switch must survive the round trip through the store, not
	// just the in-memory response.
	stored, err := svc.GetByKey(ctx, "LEGACY")
	require.NoError(t, err)
	assert.False(t, stored.Enabled)

	disabled, err := svc.List(ctx, domain.ListRequest{Enabled: boolPtr(false)})
	require.NoError(t, err)
	require.Len(t, disabled, 1)
	assert.Equal(t, "LEGACY", disabled[0].Key)
}

func TestCreateModuleValidation(t *testing.T) {
	svc := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "x", Category: "y"})
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = svc.Create(ctx, domain.CreateRequest{Key: "A", Category: "y"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Key: "A", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestCreateModuleRejectsDuplicateKey(t *testing.T) {
	svc := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Key: "AGENDA", Name: "Agenda", Category: "clinical"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Key: "agenda", Name: "Other", Category: "clinical"})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestUpdateModule(t *testing.T) {
	svc := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Key: "AGENDA", Name: "Agenda", Category: "clinical"})
	require.NoError(t, err)

	resp, err := svc.Update(ctx, domain.UpdateRequest{
		Key:     "AGENDA",
		Name:    strPtr("Agenda Pro"),
		Enabled: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Agenda Pro", resp.Name)
	assert.False(t, resp.Enabled)

	_, err = svc.Update(ctx, domain.UpdateRequest{Key: "MISSING", Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrdersByCategoryAndDisplayOrder(t *testing.T) {
	svc := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Key: "MARKETING", Name: "Marketing", Category: "growth", DisplayOrder: 80})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Key: "COBRANCA", Name: "Cobrança", Category: "finance", DisplayOrder: 60})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Key: "FINANCEIRO", Name: "Financeiro", Category: "finance", DisplayOrder: 40})
	require.NoError(t, err)

	items, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "FINANCEIRO", items[0].Key)
	assert.Equal(t, "COBRANCA", items[1].Key)
	assert.Equal(t, "MARKETING", items[2].Key)

	finance, err := svc.List(ctx, domain.ListRequest{Category: "finance"})
	require.NoError(t, err)
	assert.Len(t, finance, 2)
}

func TestDisableModule(t *testing.T) {
	svc := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Key: "FISCAL", Name: "Fiscal", Category: "finance"})
	require.NoError(t, err)

	resp, err := svc.Disable(ctx, "fiscal")
	require.NoError(t, err)
	assert.False(t, resp.Enabled)

	enabled, err := svc.List(ctx, domain.ListRequest{Enabled: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, enabled)
}

func TestGetByKey(t *testing.T) {
	svc := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Key: "ESTOQUE", Name: "Estoque", Category: "operations"})
	require.NoError(t, err)

	resp, err := svc.GetByKey(ctx, "estoque")
	require.NoError(t, err)
	assert.Equal(t, "ESTOQUE", resp.Key)

	_, err = svc.GetByKey(ctx, "MISSING")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
