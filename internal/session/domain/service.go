package domain

import (
	"context"
	"errors"
	"time"

	"github.com/atelierlabs/fotura/internal/freeze"
	"github.com/atelierlabs/fotura/internal/pricing"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)

	// Preview resolves the session's pricing context and computes candidate
	// values without writing anything.
	Preview(ctx context.Context, id string, quantity int) (*Computation, error)

	// Apply persists a previewed computation. When the preview flagged the
	// session for migration, the captured snapshot is persisted before the
	// recomputed values.
	Apply(ctx context.Context, comp *Computation, silent bool) (*Response, error)

	// SetQuantity persists a new extra-photo quantity. It does not touch the
	// cached prices; recalculation is the recalculator's job so rapid edits
	// can be debounced.
	SetQuantity(ctx context.Context, id string, quantity int) (*Response, error)

	// SetManualPrice overwrites the cached values from a direct user edit
	// of the price fields (a "loud" update).
	SetManualPrice(ctx context.Context, id string, unitPrice, totalPrice float64) (*Response, error)

	// MigrateLegacy captures snapshots for every legacy session. Running it
	// twice is a no-op for sessions already frozen.
	MigrateLegacy(ctx context.Context) (int, error)
}

type CreateRequest struct {
	ClientName         string  `json:"client_name"`
	CategoryID         string  `json:"category_id"`
	ExtraPhotoQuantity float64 `json:"extra_photo_quantity"`

	// ManualHistorical imports a hand-entered historical record: prices come
	// from the request and the session is permanently exempt from automatic
	// recalculation.
	ManualHistorical bool     `json:"manual_historical"`
	UnitPrice        *float64 `json:"unit_price"`
	TotalPrice       *float64 `json:"total_price"`
}

// Computation is the outcome of one pricing resolution + calculation pass.
type Computation struct {
	SessionID        string
	Quantity         int
	Result           pricing.Result
	ContextHash      string
	NeedsMigration   bool
	ManualHistorical bool
	Snapshot         *freeze.Snapshot
	CachedUnit       decimal.Decimal
	CachedTotal      decimal.Decimal
}

// Changed reports whether the candidate values differ from the cached ones
// beyond tolerance (in currency units).
func (c *Computation) Changed(tolerance decimal.Decimal) bool {
	if c.Result.UnitPrice.Sub(c.CachedUnit).Abs().GreaterThan(tolerance) {
		return true
	}
	return c.Result.TotalPrice.Sub(c.CachedTotal).Abs().GreaterThan(tolerance)
}

type Response struct {
	ID                 string    `json:"id"`
	ClientName         string    `json:"client_name"`
	CategoryID         string    `json:"category_id,omitempty"`
	CategoryName       string    `json:"category_name,omitempty"`
	ExtraPhotoQuantity int       `json:"extra_photo_quantity"`
	UnitPrice          string    `json:"unit_price"`
	TotalPrice         string    `json:"total_price"`
	Frozen             bool      `json:"frozen"`
	FrozenMode         string    `json:"frozen_mode,omitempty"`
	ManualHistorical   bool      `json:"manual_historical"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

var (
	ErrInvalidClient     = errors.New("invalid_client_name")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrManualHistorical  = errors.New("manual_historical_session")
	ErrMissingManualData = errors.New("missing_manual_price")
)
