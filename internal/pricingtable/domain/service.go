package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	CreateExample(ctx context.Context) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name   string  `json:"name"`
	Ranges []Range `json:"ranges"`
}

type UpdateRequest struct {
	Name   string  `json:"name"`
	Ranges []Range `json:"ranges"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Ranges    []Range   `json:"ranges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidRangeMin = errors.New("invalid_range_min")
	ErrInvalidRangeMax = errors.New("invalid_range_max")
	ErrInvalidUnit     = errors.New("invalid_unit_price")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
