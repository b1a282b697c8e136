package service

import (
	"context"
	"testing"
	"time"

	"github.com/atelierlabs/fotura/internal/clock"
	"github.com/atelierlabs/fotura/internal/config"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	tablerepo "github.com/atelierlabs/fotura/internal/pricingtable/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTableTest(t *testing.T) tabledomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tabledomain.Table{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	defaults, err := config.NewDefaultsHolder()
	require.NoError(t, err)

	return New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)),
		Defaults: defaults,
		Repo:     tablerepo.Provide(),
	})
}

func TestCreate_SortsRangesByMin(t *testing.T) {
	svc := setupTableTest(t)
	ctx := context.Background()

	five := 5
	resp, err := svc.Create(ctx, tabledomain.CreateRequest{
		Name: "Desordenada",
		Ranges: []tabledomain.Range{
			{Min: 6, Max: nil, UnitPrice: decimal.NewFromInt(30)},
			{Min: 1, Max: &five, UnitPrice: decimal.NewFromInt(35)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Ranges, 2)
	assert.Equal(t, 1, resp.Ranges[0].Min)
	assert.Equal(t, 6, resp.Ranges[1].Min)
}

func TestCreate_Validation(t *testing.T) {
	svc := setupTableTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, tabledomain.CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, tabledomain.ErrInvalidName)

	_, err = svc.Create(ctx, tabledomain.CreateRequest{
		Name:   "x",
		Ranges: []tabledomain.Range{{Min: 0, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, tabledomain.ErrInvalidRangeMin)

	three := 3
	_, err = svc.Create(ctx, tabledomain.CreateRequest{
		Name:   "x",
		Ranges: []tabledomain.Range{{Min: 5, Max: &three, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, tabledomain.ErrInvalidRangeMax)

	_, err = svc.Create(ctx, tabledomain.CreateRequest{
		Name:   "x",
		Ranges: []tabledomain.Range{{Min: 1, UnitPrice: decimal.NewFromInt(-1)}},
	})
	assert.ErrorIs(t, err, tabledomain.ErrInvalidUnit)
}

func TestCreate_GapsAreAllowed(t *testing.T) {
	svc := setupTableTest(t)

	five := 5
	_, err := svc.Create(context.Background(), tabledomain.CreateRequest{
		Name: "Com Lacuna",
		Ranges: []tabledomain.Range{
			{Min: 1, Max: &five, UnitPrice: decimal.NewFromInt(35)},
			{Min: 11, Max: nil, UnitPrice: decimal.NewFromInt(25)},
		},
	})
	assert.NoError(t, err)
}

func TestCreateExample_UsesConfiguredDefaults(t *testing.T) {
	svc := setupTableTest(t)

	resp, err := svc.CreateExample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tabela Exemplo", resp.Name)
	require.Len(t, resp.Ranges, 4)
	assert.Equal(t, 1, resp.Ranges[0].Min)
	assert.True(t, resp.Ranges[0].UnitPrice.Equal(decimal.NewFromInt(35)))
	assert.Nil(t, resp.Ranges[3].Max)
	assert.True(t, resp.Ranges[3].UnitPrice.Equal(decimal.NewFromInt(20)))
}

func TestGetUpdateDelete_Lifecycle(t *testing.T) {
	svc := setupTableTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, tabledomain.CreateRequest{
		Name:   "Original",
		Ranges: []tabledomain.Range{{Min: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, tabledomain.UpdateRequest{
		Name:   "Renomeada",
		Ranges: []tabledomain.Range{{Min: 1, UnitPrice: decimal.NewFromInt(12)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renomeada", updated.Name)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renomeada", got.Name)
	assert.True(t, got.Ranges[0].UnitPrice.Equal(decimal.NewFromInt(12)))

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, tabledomain.ErrNotFound)

	_, err = svc.Get(ctx, "abc")
	assert.ErrorIs(t, err, tabledomain.ErrInvalidID)
}
