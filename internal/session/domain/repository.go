package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Session, error)
	List(ctx context.Context, db *gorm.DB) ([]Session, error)
	UpdateQuantity(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int, updatedAt time.Time) error
	UpdateValues(ctx context.Context, db *gorm.DB, id snowflake.ID, unit, total decimal.Decimal, updatedAt time.Time) error
	SetFrozenRules(ctx context.Context, db *gorm.DB, id snowflake.ID, rules datatypes.JSON, updatedAt time.Time) error
}
