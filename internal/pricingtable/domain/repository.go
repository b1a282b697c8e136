package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, table *Table) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Table, error)
	List(ctx context.Context, db *gorm.DB) ([]Table, error)
	Update(ctx context.Context, db *gorm.DB, table *Table) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
