package repository

import (
	"context"
	"errors"

	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tabledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, table *tabledomain.Table) error {
	return db.WithContext(ctx).Create(table).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tabledomain.Table, error) {
	var table tabledomain.Table
	err := db.WithContext(ctx).Model(&tabledomain.Table{}).
		Where("id = ?", id).
		First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &table, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]tabledomain.Table, error) {
	var items []tabledomain.Table
	err := db.WithContext(ctx).Model(&tabledomain.Table{}).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, table *tabledomain.Table) error {
	return db.WithContext(ctx).Model(&tabledomain.Table{}).
		Where("id = ?", table.ID).
		Updates(map[string]any{
			"name":       table.Name,
			"ranges":     table.Ranges,
			"updated_at": table.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&tabledomain.Table{}).Error
}
