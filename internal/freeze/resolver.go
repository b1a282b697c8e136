package freeze

import (
	"context"
	"time"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	"github.com/atelierlabs/fotura/internal/pricing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// LiveSource yields the pricing context currently configured by the studio.
// Implemented by the pricing settings service.
type LiveSource interface {
	LiveContext(ctx context.Context, hints categorydomain.Hints) (pricing.Context, error)
}

// Resolution is the outcome of deciding how a session should be priced.
type Resolution struct {
	Context          pricing.Context
	Snapshot         *Snapshot
	NeedsMigration   bool
	ManualHistorical bool
}

// Resolver picks between a session's frozen snapshot and the live
// configuration, flagging legacy sessions for one-time migration.
type Resolver struct {
	log  *zap.Logger
	live LiveSource
}

type ResolverParams struct {
	fx.In

	Log  *zap.Logger
	Live LiveSource
}

func NewResolver(p ResolverParams) *Resolver {
	return &Resolver{
		log:  p.Log.Named("freeze.resolver"),
		live: p.Live,
	}
}

// Resolve decides the pricing context for one session.
//
// Frozen: the raw payload normalizes into a structurally valid snapshot.
// Live configuration has zero influence from then on.
//
// Legacy: the payload is absent, unreadable, or its declared mode does not
// match the populated field. The session prices from live configuration and
// is flagged for migration.
func (r *Resolver) Resolve(ctx context.Context, rawSnapshot []byte, hints categorydomain.Hints) (*Resolution, error) {
	snap, ok := Normalize(rawSnapshot)
	if ok {
		if snap.Valid() {
			return &Resolution{
				Context:          snap.Context(),
				Snapshot:         snap,
				ManualHistorical: snap.Source == SourceManualHistorical,
			}, nil
		}
		r.log.Warn("frozen rules mismatch declared mode, treating session as legacy",
			zap.String("mode", string(snap.Mode)),
		)
	}

	liveCtx, err := r.live.LiveContext(ctx, hints)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Context:        liveCtx,
		NeedsMigration: true,
	}, nil
}

// CaptureLive snapshots the current live configuration for a session about
// to be created or migrated.
func (r *Resolver) CaptureLive(ctx context.Context, hints categorydomain.Hints, capturedAt time.Time) (*Snapshot, error) {
	liveCtx, err := r.live.LiveContext(ctx, hints)
	if err != nil {
		return nil, err
	}
	return Capture(liveCtx, capturedAt), nil
}

var Module = fx.Module("freeze.resolver",
	fx.Provide(NewResolver),
)
