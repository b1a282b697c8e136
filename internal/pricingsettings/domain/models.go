package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SettingsRowID pins the singleton row. There is exactly one pricing
// configuration per studio deployment.
const SettingsRowID int64 = 1

// Settings is the process-wide pricing configuration. Only the admin
// configuration surface writes it; calculation paths treat it as read-only.
type Settings struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	Mode          string          `json:"mode" gorm:"type:text;not null"`
	FixedValue    decimal.Decimal `json:"fixed_value" gorm:"type:decimal(12,2);not null;default:0"`
	GlobalTableID *snowflake.ID   `json:"global_table_id,omitempty" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Settings) TableName() string { return "pricing_settings" }
