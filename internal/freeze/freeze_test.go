package freeze

import (
	"testing"
	"time"

	"github.com/atelierlabs/fotura/internal/pricing"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNormalize_CurrentShape(t *testing.T) {
	raw := []byte(`{
		"mode": "global-table",
		"globalTable": {
			"name": "Tabela Exemplo",
			"ranges": [
				{"min": 1, "max": 5, "unitPrice": 35},
				{"min": 6, "max": null, "unitPrice": 30}
			]
		},
		"capturedAt": "2024-03-10T12:00:00Z"
	}`)

	snap, ok := Normalize(raw)
	require.True(t, ok)
	require.True(t, snap.Valid())

	assert.Equal(t, pricing.ModeGlobalTable, snap.Mode)
	require.NotNil(t, snap.GlobalTable)
	assert.Equal(t, "Tabela Exemplo", snap.GlobalTable.Name)
	require.Len(t, snap.GlobalTable.Ranges, 2)
	assert.Equal(t, 1, snap.GlobalTable.Ranges[0].Min)
	assert.True(t, snap.GlobalTable.Ranges[0].UnitPrice.Equal(decimal.NewFromInt(35)))
	assert.Nil(t, snap.GlobalTable.Ranges[1].Max)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), snap.CapturedAt)
}

func TestNormalize_LegacyPortugueseShape(t *testing.T) {
	raw := []byte(`{
		"modelo": "tabela_global",
		"tabela": {
			"nome": "Padrao",
			"faixas": [
				{"minimo": 1, "maximo": 10, "valor": 20},
				{"minimo": 11, "valor": 15}
			]
		},
		"congeladoEm": "2022-08-01T09:30:00Z",
		"origem": "auto"
	}`)

	snap, ok := Normalize(raw)
	require.True(t, ok)
	require.True(t, snap.Valid())

	assert.Equal(t, pricing.ModeGlobalTable, snap.Mode)
	require.NotNil(t, snap.GlobalTable)
	assert.Equal(t, "Padrao", snap.GlobalTable.Name)
	require.Len(t, snap.GlobalTable.Ranges, 2)
	assert.Equal(t, intPtr(10), snap.GlobalTable.Ranges[0].Max)
	assert.True(t, snap.GlobalTable.Ranges[1].UnitPrice.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "auto", snap.Source)
}

func TestNormalize_LegacySingleTabelaAssignedByMode(t *testing.T) {
	raw := []byte(`{
		"modelo": "tabela_categoria",
		"tabela": {"nome": "Newborn", "faixas": [{"minimo": 1, "valor": 50}]}
	}`)

	snap, ok := Normalize(raw)
	require.True(t, ok)
	require.True(t, snap.Valid())
	assert.Nil(t, snap.GlobalTable)
	require.NotNil(t, snap.CategoryTable)
	assert.Equal(t, "Newborn", snap.CategoryTable.Name)
}

func TestNormalize_FixedValueAliases(t *testing.T) {
	snap, ok := Normalize([]byte(`{"modelo": "fixo", "valorFixo": 12.5}`))
	require.True(t, ok)
	require.True(t, snap.Valid())
	assert.Equal(t, pricing.ModeFixed, snap.Mode)
	require.NotNil(t, snap.FixedValue)
	assert.True(t, snap.FixedValue.Equal(decimal.NewFromFloat(12.5)))
}

func TestNormalize_ModeMismatchIsInvalid(t *testing.T) {
	// Declares fixed but only carries a table.
	snap, ok := Normalize([]byte(`{"mode": "fixed", "globalTable": {"name": "x", "ranges": []}}`))
	require.True(t, ok)
	assert.False(t, snap.Valid())
}

func TestNormalize_Garbage(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(``), []byte(`null`), []byte(`{}`), []byte(`[1,2]`), []byte(`{"mode": "percentual"}`)} {
		_, ok := Normalize(raw)
		assert.False(t, ok, string(raw))
	}
}

func TestNormalize_ClampsBadRanges(t *testing.T) {
	snap, ok := Normalize([]byte(`{
		"mode": "global-table",
		"globalTable": {"name": "x", "ranges": [{"min": 0, "unitPrice": -5}]}
	}`))
	require.True(t, ok)
	require.Len(t, snap.GlobalTable.Ranges, 1)
	assert.Equal(t, 1, snap.GlobalTable.Ranges[0].Min)
	assert.True(t, snap.GlobalTable.Ranges[0].UnitPrice.IsZero())
}

func TestIsManualHistorical(t *testing.T) {
	assert.True(t, IsManualHistorical([]byte(`{"mode": "fixed", "fixedValue": 10, "source": "manual-historical"}`)))
	assert.True(t, IsManualHistorical([]byte(`{"modelo": "fixo", "origem": "manual-historical"}`)))
	assert.False(t, IsManualHistorical([]byte(`{"mode": "fixed", "fixedValue": 10}`)))
	assert.False(t, IsManualHistorical(nil))
}

func TestCapture_DeepCopiesRanges(t *testing.T) {
	live := pricing.Context{
		Mode:      pricing.ModeGlobalTable,
		TableName: "Tabela Exemplo",
		Ranges: []tabledomain.Range{
			{Min: 1, Max: intPtr(5), UnitPrice: decimal.NewFromInt(35)},
		},
	}

	snap := Capture(live, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	// Mutating the live slice after capture must not reach the snapshot.
	live.Ranges[0].UnitPrice = decimal.NewFromInt(999)
	*live.Ranges[0].Max = 99

	require.NotNil(t, snap.GlobalTable)
	assert.True(t, snap.GlobalTable.Ranges[0].UnitPrice.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, 5, *snap.GlobalTable.Ranges[0].Max)
}

func TestSnapshotContext_ClonesRanges(t *testing.T) {
	snap := &Snapshot{
		Mode: pricing.ModeCategoryTable,
		CategoryTable: &Table{
			Name:   "Newborn",
			Ranges: []tabledomain.Range{{Min: 1, UnitPrice: decimal.NewFromInt(50)}},
		},
	}

	ctx := snap.Context()
	ctx.Ranges[0].UnitPrice = decimal.NewFromInt(1)

	assert.True(t, snap.CategoryTable.Ranges[0].UnitPrice.Equal(decimal.NewFromInt(50)))
}

func TestHash_StableAndContentSensitive(t *testing.T) {
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	ctx := pricing.Context{Mode: pricing.ModeFixed, FixedValue: decimal.NewFromInt(10)}

	a := Capture(ctx, at)
	b := Capture(ctx, at)
	assert.Equal(t, a.Hash(), b.Hash())

	ctx.FixedValue = decimal.NewFromInt(11)
	c := Capture(ctx, at)
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestMarshalRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tiers := []tabledomain.Range{
		{Min: 1, Max: intPtr(5), UnitPrice: decimal.NewFromInt(35)},
		{Min: 6, UnitPrice: decimal.RequireFromString("27.50")},
	}

	cases := []struct {
		name string
		live pricing.Context
	}{
		{"fixed", pricing.Context{Mode: pricing.ModeFixed, FixedValue: decimal.RequireFromString("12.50")}},
		{"global table", pricing.Context{Mode: pricing.ModeGlobalTable, TableName: "Tabela Exemplo", Ranges: tiers}},
		{"category table", pricing.Context{Mode: pricing.ModeCategoryTable, TableName: "Newborn", Ranges: tiers}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := Capture(tc.live, at)

			payload, err := snap.Marshal()
			require.NoError(t, err)

			back, ok := Normalize(payload)
			require.True(t, ok)
			require.True(t, back.Valid())
			assert.Equal(t, tc.live.Mode, back.Mode)
			assert.Equal(t, snap.Hash(), back.Hash())

			ctx := back.Context()
			if tc.live.Mode == pricing.ModeFixed {
				assert.True(t, ctx.FixedValue.Equal(tc.live.FixedValue))
				return
			}
			assert.Equal(t, tc.live.TableName, ctx.TableName)
			require.Len(t, ctx.Ranges, 2)
			assert.True(t, ctx.Ranges[0].UnitPrice.Equal(decimal.NewFromInt(35)))
			assert.Equal(t, intPtr(5), ctx.Ranges[0].Max)
			assert.True(t, ctx.Ranges[1].UnitPrice.Equal(decimal.RequireFromString("27.50")))
			assert.Nil(t, ctx.Ranges[1].Max)
		})
	}
}

func TestMarshalRoundTrip_ManualHistorical(t *testing.T) {
	snap := Capture(pricing.Context{Mode: pricing.ModeFixed, FixedValue: decimal.NewFromInt(10)}, time.Now())
	snap.Source = SourceManualHistorical

	payload, err := snap.Marshal()
	require.NoError(t, err)

	back, ok := Normalize(payload)
	require.True(t, ok)
	require.True(t, back.Valid())
	assert.Equal(t, SourceManualHistorical, back.Source)
	assert.True(t, IsManualHistorical(payload))
}
