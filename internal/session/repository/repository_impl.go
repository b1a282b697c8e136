package repository

import (
	"context"
	"errors"
	"time"

	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sessiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *sessiondomain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*sessiondomain.Session, error) {
	var session sessiondomain.Session
	err := db.WithContext(ctx).Model(&sessiondomain.Session{}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]sessiondomain.Session, error) {
	var items []sessiondomain.Session
	err := db.WithContext(ctx).Model(&sessiondomain.Session{}).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateQuantity(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int, updatedAt time.Time) error {
	return db.WithContext(ctx).Model(&sessiondomain.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"extra_photo_quantity": quantity,
			"updated_at":           updatedAt,
		}).Error
}

func (r *repo) UpdateValues(ctx context.Context, db *gorm.DB, id snowflake.ID, unit, total decimal.Decimal, updatedAt time.Time) error {
	return db.WithContext(ctx).Model(&sessiondomain.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"unit_price":  unit,
			"total_price": total,
			"updated_at":  updatedAt,
		}).Error
}

func (r *repo) SetFrozenRules(ctx context.Context, db *gorm.DB, id snowflake.ID, rules datatypes.JSON, updatedAt time.Time) error {
	return db.WithContext(ctx).Model(&sessiondomain.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"frozen_rules": rules,
			"updated_at":   updatedAt,
		}).Error
}
