package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category groups sessions (newborn, wedding, corporate, ...). A category
// may carry its own tiered table for per-category pricing.
type Category struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	Name           string        `json:"name" gorm:"type:text;not null"`
	Slug           string        `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	PricingTableID *snowflake.ID `json:"pricing_table_id,omitempty" gorm:"index"`
	Position       int           `json:"position" gorm:"not null;default:0"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "categories" }
