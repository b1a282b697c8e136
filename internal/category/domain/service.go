package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	// ResolveForHints runs the legacy resolver chain over the current
	// category list and returns the matched category, or nil.
	ResolveForHints(ctx context.Context, hints Hints) (*Category, error)
}

type CreateRequest struct {
	Name           string `json:"name"`
	PricingTableID string `json:"pricing_table_id"`
}

type UpdateRequest struct {
	Name           string  `json:"name"`
	PricingTableID *string `json:"pricing_table_id"`
}

type Response struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	PricingTableID string    `json:"pricing_table_id,omitempty"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidTable = errors.New("invalid_pricing_table")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
	ErrDuplicate    = errors.New("duplicate_category")
)
