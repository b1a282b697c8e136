package repository

import (
	"context"
	"errors"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() categorydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, category *categorydomain.Category) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*categorydomain.Category, error) {
	var category categorydomain.Category
	err := db.WithContext(ctx).Model(&categorydomain.Category{}).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// List returns categories in stable position order. The legacy positional
// fallback depends on this ordering.
func (r *repo) List(ctx context.Context, db *gorm.DB) ([]categorydomain.Category, error) {
	var items []categorydomain.Category
	err := db.WithContext(ctx).Model(&categorydomain.Category{}).
		Order("position ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, category *categorydomain.Category) error {
	return db.WithContext(ctx).Model(&categorydomain.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":             category.Name,
			"slug":             category.Slug,
			"pricing_table_id": category.PricingTableID,
			"updated_at":       category.UpdatedAt,
		}).Error
}

func (r *repo) NextPosition(ctx context.Context, db *gorm.DB) (int, error) {
	var max *int
	err := db.WithContext(ctx).Model(&categorydomain.Category{}).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}
