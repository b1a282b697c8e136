package domain

import (
	"context"
	"errors"
	"time"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	"github.com/atelierlabs/fotura/internal/pricing"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
)

type Service interface {
	Get(ctx context.Context) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	// LiveContext resolves the pricing context currently in effect for a
	// session with the given category hints. Missing tables degrade to a
	// zero-price context, never an error.
	LiveContext(ctx context.Context, hints categorydomain.Hints) (pricing.Context, error)
}

type UpdateRequest struct {
	Mode          string   `json:"mode"`
	FixedValue    *float64 `json:"fixed_value"`
	GlobalTableID *string  `json:"global_table_id"`
}

type Response struct {
	Mode          string                `json:"mode"`
	FixedValue    string                `json:"fixed_value"`
	GlobalTableID string                `json:"global_table_id,omitempty"`
	GlobalTable   *tabledomain.Response `json:"global_table,omitempty"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

var (
	ErrInvalidMode       = errors.New("invalid_mode")
	ErrInvalidFixedValue = errors.New("invalid_fixed_value")
	ErrInvalidTable      = errors.New("invalid_pricing_table")
)
