package service

import (
	"context"
	"testing"
	"time"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	categoryrepo "github.com/atelierlabs/fotura/internal/category/repository"
	"github.com/atelierlabs/fotura/internal/clock"
	"github.com/atelierlabs/fotura/internal/config"
	"github.com/atelierlabs/fotura/internal/pricing"
	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
	settingsrepo "github.com/atelierlabs/fotura/internal/pricingsettings/repository"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	tablerepo "github.com/atelierlabs/fotura/internal/pricingtable/repository"
	tableservice "github.com/atelierlabs/fotura/internal/pricingtable/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSettingsTest(t *testing.T) (*gorm.DB, *snowflake.Node, settingsdomain.Service, tabledomain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&tabledomain.Table{},
		&categorydomain.Category{},
		&settingsdomain.Settings{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	defaults, err := config.NewDefaultsHolder()
	require.NoError(t, err)

	tableRepo := tablerepo.Provide()
	tableSvc := tableservice.New(tableservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    fakeClock,
		Defaults: defaults,
		Repo:     tableRepo,
	})

	svc := New(Params{
		DB:           db,
		Log:          log,
		Clock:        fakeClock,
		Repo:         settingsrepo.Provide(),
		TableRepo:    tableRepo,
		TableSvc:     tableSvc,
		CategoryRepo: categoryrepo.Provide(),
	})

	return db, node, svc, tableSvc
}

func TestGet_DefaultsToFixedAtZero(t *testing.T) {
	_, _, svc, _ := setupSettingsTest(t)

	resp, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.Mode)
	assert.Equal(t, "0.00", resp.FixedValue)
	assert.Empty(t, resp.GlobalTableID)
}

func TestUpdate_SwitchToGlobalTableAutoCreatesExample(t *testing.T) {
	_, _, svc, tableSvc := setupSettingsTest(t)
	ctx := context.Background()

	resp, err := svc.Update(ctx, settingsdomain.UpdateRequest{Mode: "global-table"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.GlobalTableID)
	require.NotNil(t, resp.GlobalTable)
	assert.Equal(t, "Tabela Exemplo", resp.GlobalTable.Name)

	tables, err := tableSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Ranges, 4)
	assert.True(t, tables[0].Ranges[0].UnitPrice.Equal(decimal.NewFromInt(35)))
	assert.Nil(t, tables[0].Ranges[3].Max)
}

func TestUpdate_SwitchToGlobalTableKeepsExistingLink(t *testing.T) {
	_, _, svc, tableSvc := setupSettingsTest(t)
	ctx := context.Background()

	table, err := tableSvc.Create(ctx, tabledomain.CreateRequest{
		Name:   "Minha Tabela",
		Ranges: []tabledomain.Range{{Min: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	resp, err := svc.Update(ctx, settingsdomain.UpdateRequest{
		Mode:          "global-table",
		GlobalTableID: &table.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, table.ID, resp.GlobalTableID)

	tables, err := tableSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestUpdate_RejectsBadInput(t *testing.T) {
	_, _, svc, _ := setupSettingsTest(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, settingsdomain.UpdateRequest{Mode: "percentual"})
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidMode)

	negative := -5.0
	_, err = svc.Update(ctx, settingsdomain.UpdateRequest{Mode: "fixed", FixedValue: &negative})
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidFixedValue)

	missing := snowflake.ID(12345).String()
	_, err = svc.Update(ctx, settingsdomain.UpdateRequest{Mode: "global-table", GlobalTableID: &missing})
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidTable)
}

func TestLiveContext_PerCategoryResolvesLinkedTable(t *testing.T) {
	db, node, svc, tableSvc := setupSettingsTest(t)
	ctx := context.Background()

	table, err := tableSvc.Create(ctx, tabledomain.CreateRequest{
		Name:   "Newborn",
		Ranges: []tabledomain.Range{{Min: 1, UnitPrice: decimal.NewFromInt(50)}},
	})
	require.NoError(t, err)
	tableID, err := snowflake.ParseString(table.ID)
	require.NoError(t, err)

	category := categorydomain.Category{
		ID:             node.Generate(),
		Name:           "Newborn",
		Slug:           "newborn",
		PricingTableID: &tableID,
		Position:       0,
	}
	require.NoError(t, db.Create(&category).Error)

	_, err = svc.Update(ctx, settingsdomain.UpdateRequest{Mode: "per-category-table"})
	require.NoError(t, err)

	live, err := svc.LiveContext(ctx, categorydomain.Hints{Name: "newborn", Position: categorydomain.NoPosition})
	require.NoError(t, err)
	assert.Equal(t, pricing.ModeCategoryTable, live.Mode)
	assert.Equal(t, "Newborn", live.TableName)
	require.Len(t, live.Ranges, 1)
	assert.True(t, live.Ranges[0].UnitPrice.Equal(decimal.NewFromInt(50)))
}

func TestLiveContext_PerCategoryWithoutLinkPricesZero(t *testing.T) {
	_, _, svc, _ := setupSettingsTest(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, settingsdomain.UpdateRequest{Mode: "per-category-table"})
	require.NoError(t, err)

	live, err := svc.LiveContext(ctx, categorydomain.Hints{Name: "Inexistente", Position: categorydomain.NoPosition})
	require.NoError(t, err)
	assert.Equal(t, pricing.ModeCategoryTable, live.Mode)
	assert.Empty(t, live.Ranges)
}
