package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Session is one photo-shoot workflow record. UnitPrice and TotalPrice are
// derived caches of the extra-photo calculation; FrozenRules holds the
// pricing snapshot captured when the session was created. Sessions written
// before the freezing mechanism existed have no snapshot ("legacy") and may
// carry only denormalized category hints.
type Session struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	ClientName         string          `json:"client_name" gorm:"type:text;not null"`
	CategoryID         *snowflake.ID   `json:"category_id,omitempty" gorm:"index"`
	CategoryName       string          `json:"category_name" gorm:"type:text;not null;default:''"`
	CategoryPosition   int             `json:"category_position" gorm:"not null;default:-1"`
	ExtraPhotoQuantity int             `json:"extra_photo_quantity" gorm:"not null;default:0"`
	UnitPrice          decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null;default:0"`
	TotalPrice         decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null;default:0"`
	FrozenRules        datatypes.JSON  `json:"frozen_rules,omitempty" gorm:"type:jsonb"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string { return "studio_sessions" }
