package recalc

import (
	"context"
	"sync"
	"time"

	"github.com/atelierlabs/fotura/internal/config"
	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
	"github.com/atelierlabs/fotura/pkg/db/option"
	"github.com/atelierlabs/fotura/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ValueUpdate is published to subscribers whenever a session's cached values
// are rewritten by the recalculator.
type ValueUpdate struct {
	SessionID  string
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Silent     bool
}

type memoEntry struct {
	Quantity    int
	ContextHash string
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	DB       *gorm.DB
	Sessions sessiondomain.Service
	Metrics  *Metrics
}

// Recalculator keeps session values in sync with their (frozen or live)
// pricing context. Quantity edits are debounced per session; a settings edit
// sweeps every session, relying on the memo and the tolerance window to turn
// the sweep into a near no-op for frozen sessions.
type Recalculator struct {
	log          *zap.Logger
	sessions     sessiondomain.Service
	sessionStore repository.Repository[sessiondomain.Session]
	metrics      *Metrics
	debounce     time.Duration
	tolerance    decimal.Decimal

	mu          sync.Mutex
	memo        map[string]memoEntry
	timers      map[string]*time.Timer
	subscribers []func(ValueUpdate)
	closed      bool
}

func New(p Params) *Recalculator {
	return &Recalculator{
		log:          p.Log.Named("recalc"),
		sessions:     p.Sessions,
		sessionStore: repository.ProvideStore[sessiondomain.Session](p.DB),
		metrics:      p.Metrics,
		debounce:     time.Duration(p.Cfg.RecalcDebounceMillis) * time.Millisecond,
		tolerance:    decimal.New(int64(p.Cfg.RecalcToleranceCents), -2),
		memo:         make(map[string]memoEntry),
		timers:       make(map[string]*time.Timer),
	}
}

// Subscribe registers a callback invoked after every persisted value update.
// Callbacks run on the recalculator's goroutine and must not block.
func (r *Recalculator) Subscribe(fn func(ValueUpdate)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// OnQuantityChange schedules a silent recomputation for one session. Rapid
// successive edits collapse into a single run after the debounce window.
func (r *Recalculator) OnQuantityChange(sessionID string, quantity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if timer, ok := r.timers[sessionID]; ok {
		timer.Stop()
	}
	r.timers[sessionID] = time.AfterFunc(r.debounce, func() {
		r.mu.Lock()
		delete(r.timers, sessionID)
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := r.recompute(ctx, sessionID, quantity, true); err != nil {
			r.log.Warn("debounced recompute failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	})
}

// OnSettingsChange recomputes every session against the current
// configuration. Frozen and manual-historical sessions come out untouched.
func (r *Recalculator) OnSettingsChange(ctx context.Context) {
	items, err := r.sessionStore.Find(ctx, &sessiondomain.Session{}, option.OrderBy("created_at ASC"))
	if err != nil {
		r.log.Warn("settings sweep aborted", zap.Error(err))
		return
	}

	for _, item := range items {
		if _, err := r.recompute(ctx, item.ID.String(), item.ExtraPhotoQuantity, true); err != nil {
			r.log.Warn("settings sweep recompute failed",
				zap.String("session_id", item.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// RecomputeNow runs a recomputation synchronously, bypassing the debounce.
func (r *Recalculator) RecomputeNow(ctx context.Context, sessionID string, quantity int, silent bool) (bool, error) {
	return r.recompute(ctx, sessionID, quantity, silent)
}

// Forget drops the memo entry for a session, forcing the next recomputation
// to run. Called after manual price edits.
func (r *Recalculator) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memo, sessionID)
}

func (r *Recalculator) recompute(ctx context.Context, sessionID string, quantity int, silent bool) (bool, error) {
	comp, err := r.sessions.Preview(ctx, sessionID, quantity)
	if err != nil {
		return false, err
	}

	if comp.ManualHistorical {
		r.metrics.recomputesSkipped.WithLabelValues("manual_historical").Inc()
		return false, nil
	}

	r.mu.Lock()
	entry, hit := r.memo[sessionID]
	r.mu.Unlock()
	if hit && entry.Quantity == quantity && entry.ContextHash == comp.ContextHash {
		r.metrics.recomputesSkipped.WithLabelValues("memo").Inc()
		return false, nil
	}

	if !comp.NeedsMigration && !comp.Changed(r.tolerance) {
		r.metrics.recomputesSkipped.WithLabelValues("tolerance").Inc()
		r.remember(sessionID, quantity, comp)
		return false, nil
	}

	if _, err := r.sessions.Apply(ctx, comp, silent); err != nil {
		return false, err
	}
	r.metrics.recomputesRun.Inc()
	r.remember(sessionID, quantity, comp)

	r.publish(ValueUpdate{
		SessionID:  sessionID,
		UnitPrice:  comp.Result.UnitPrice,
		TotalPrice: comp.Result.TotalPrice,
		Silent:     silent,
	})
	return true, nil
}

func (r *Recalculator) remember(sessionID string, quantity int, comp *sessiondomain.Computation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo[sessionID] = memoEntry{
		Quantity:    quantity,
		ContextHash: comp.ContextHash,
		UnitPrice:   comp.Result.UnitPrice,
		TotalPrice:  comp.Result.TotalPrice,
	}
}

func (r *Recalculator) publish(update ValueUpdate) {
	r.mu.Lock()
	subscribers := make([]func(ValueUpdate), len(r.subscribers))
	copy(subscribers, r.subscribers)
	r.mu.Unlock()

	for _, fn := range subscribers {
		fn(update)
	}
	r.metrics.valuesPublished.Inc()
}

// Close stops pending debounce timers. Runs on fx shutdown.
func (r *Recalculator) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
}
