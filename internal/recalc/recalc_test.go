package recalc

import (
	"context"
	"sync"
	"testing"
	"time"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	"github.com/atelierlabs/fotura/internal/config"
	"github.com/atelierlabs/fotura/internal/pricing"
	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSessionService struct {
	mu       sync.Mutex
	previews map[string]sessiondomain.Computation
	applied  []string
}

func newFakeSessionService() *fakeSessionService {
	return &fakeSessionService{previews: make(map[string]sessiondomain.Computation)}
}

func (f *fakeSessionService) setPreview(id string, comp sessiondomain.Computation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previews[id] = comp
}

func (f *fakeSessionService) applyCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.applied {
		if v == id {
			n++
		}
	}
	return n
}

func (f *fakeSessionService) Preview(ctx context.Context, id string, quantity int) (*sessiondomain.Computation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comp := f.previews[id]
	comp.SessionID = id
	comp.Quantity = quantity
	return &comp, nil
}

func (f *fakeSessionService) Apply(ctx context.Context, comp *sessiondomain.Computation, silent bool) (*sessiondomain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, comp.SessionID)
	return &sessiondomain.Response{ID: comp.SessionID}, nil
}

func (f *fakeSessionService) Create(ctx context.Context, req sessiondomain.CreateRequest) (*sessiondomain.Response, error) {
	return nil, nil
}

func (f *fakeSessionService) List(ctx context.Context) ([]sessiondomain.Response, error) {
	return nil, nil
}

func (f *fakeSessionService) Get(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return &sessiondomain.Response{ID: id}, nil
}

func (f *fakeSessionService) SetQuantity(ctx context.Context, id string, quantity int) (*sessiondomain.Response, error) {
	return &sessiondomain.Response{ID: id}, nil
}

func (f *fakeSessionService) SetManualPrice(ctx context.Context, id string, unitPrice, totalPrice float64) (*sessiondomain.Response, error) {
	return &sessiondomain.Response{ID: id}, nil
}

func (f *fakeSessionService) MigrateLegacy(ctx context.Context) (int, error) {
	return 0, nil
}

func setupRecalcTest(t *testing.T, debounceMillis int) (*Recalculator, *fakeSessionService, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&sessiondomain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := newFakeSessionService()
	r := New(Params{
		Log: zap.NewNop(),
		Cfg: config.Config{
			RecalcDebounceMillis: debounceMillis,
			RecalcToleranceCents: 1,
		},
		DB:       db,
		Sessions: fake,
		Metrics:  NewMetrics(),
	})
	t.Cleanup(r.Close)

	return r, fake, db, node
}

func changedComputation(hash string) sessiondomain.Computation {
	return sessiondomain.Computation{
		ContextHash: hash,
		Result: pricing.Result{
			UnitPrice:  decimal.NewFromInt(30),
			TotalPrice: decimal.NewFromInt(210),
		},
		CachedUnit:  decimal.Zero,
		CachedTotal: decimal.Zero,
	}
}

func TestRecomputeNow_AppliesAndMemoizes(t *testing.T) {
	r, fake, _, _ := setupRecalcTest(t, 300)
	ctx := context.Background()

	fake.setPreview("s1", changedComputation("h1"))

	changed, err := r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, fake.applyCount("s1"))

	// Same quantity and context hash: memo hit, no second apply.
	changed, err = r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, fake.applyCount("s1"))
}

func TestRecomputeNow_ContextChangeBustsMemo(t *testing.T) {
	r, fake, _, _ := setupRecalcTest(t, 300)
	ctx := context.Background()

	fake.setPreview("s1", changedComputation("h1"))
	_, err := r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)

	fake.setPreview("s1", changedComputation("h2"))
	changed, err := r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, fake.applyCount("s1"))
}

func TestRecomputeNow_WithinToleranceSkipsWrite(t *testing.T) {
	r, fake, _, _ := setupRecalcTest(t, 300)
	ctx := context.Background()

	comp := changedComputation("h1")
	// Candidate differs from cache by half a cent.
	comp.CachedUnit = decimal.NewFromInt(30)
	comp.CachedTotal = decimal.RequireFromString("209.995")
	fake.setPreview("s1", comp)

	changed, err := r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, fake.applyCount("s1"))
}

func TestRecomputeNow_MigrationWritesEvenWithinTolerance(t *testing.T) {
	r, fake, _, _ := setupRecalcTest(t, 300)
	ctx := context.Background()

	comp := changedComputation("h1")
	comp.CachedUnit = comp.Result.UnitPrice
	comp.CachedTotal = comp.Result.TotalPrice
	comp.NeedsMigration = true
	fake.setPreview("s1", comp)

	changed, err := r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, fake.applyCount("s1"))
}

func TestRecomputeNow_ManualHistoricalNeverApplies(t *testing.T) {
	r, fake, _, _ := setupRecalcTest(t, 300)
	ctx := context.Background()

	comp := changedComputation("h1")
	comp.ManualHistorical = true
	fake.setPreview("s1", comp)

	changed, err := r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, fake.applyCount("s1"))
}

func TestOnQuantityChange_DebouncesRapidEdits(t *testing.T) {
	r, fake, _, _ := setupRecalcTest(t, 30)

	fake.setPreview("s1", changedComputation("h1"))

	r.OnQuantityChange("s1", 5)
	r.OnQuantityChange("s1", 6)
	r.OnQuantityChange("s1", 7)

	assert.Eventually(t, func() bool {
		return fake.applyCount("s1") == 1
	}, time.Second, 5*time.Millisecond)

	// Settled: no further applies after the window.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, fake.applyCount("s1"))
}

func TestSubscribe_ReceivesValueUpdates(t *testing.T) {
	r, fake, _, _ := setupRecalcTest(t, 300)
	ctx := context.Background()

	var mu sync.Mutex
	var updates []ValueUpdate
	r.Subscribe(func(u ValueUpdate) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, u)
	})

	fake.setPreview("s1", changedComputation("h1"))
	_, err := r.RecomputeNow(ctx, "s1", 7, true)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 1)
	assert.Equal(t, "s1", updates[0].SessionID)
	assert.True(t, updates[0].TotalPrice.Equal(decimal.NewFromInt(210)))
	assert.True(t, updates[0].Silent)
}

func TestOnSettingsChange_SweepsPersistedSessions(t *testing.T) {
	r, fake, db, node := setupRecalcTest(t, 300)
	ctx := context.Background()

	ids := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		row := sessiondomain.Session{
			ID:                 node.Generate(),
			ClientName:         "Sweep",
			CategoryPosition:   categorydomain.NoPosition,
			ExtraPhotoQuantity: 5,
			UnitPrice:          decimal.Zero,
			TotalPrice:         decimal.Zero,
			CreatedAt:          time.Now().UTC(),
			UpdatedAt:          time.Now().UTC(),
		}
		require.NoError(t, db.Create(&row).Error)
		ids = append(ids, row.ID.String())
		fake.setPreview(row.ID.String(), changedComputation("h-"+row.ID.String()))
	}

	r.OnSettingsChange(ctx)

	for _, id := range ids {
		assert.Equal(t, 1, fake.applyCount(id))
	}
}
