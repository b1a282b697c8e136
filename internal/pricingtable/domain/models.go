package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Range is one tier ("faixa") of a tiered table: a photo-count interval
// mapped to the unit price charged for every photo when the quantity lands
// in that interval. Max nil means the interval is unbounded above.
type Range struct {
	Min       int             `json:"min"`
	Max       *int            `json:"max"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Clone returns a structural copy sharing no pointers with the receiver.
func (r Range) Clone() Range {
	out := Range{Min: r.Min, UnitPrice: r.UnitPrice}
	if r.Max != nil {
		max := *r.Max
		out.Max = &max
	}
	return out
}

// CloneRanges deep-copies a range list. Frozen snapshots rely on this to
// never alias live table data.
func CloneRanges(ranges []Range) []Range {
	if ranges == nil {
		return nil
	}
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.Clone())
	}
	return out
}

// Table is a tiered pricing table ("tabela progressiva").
type Table struct {
	ID        snowflake.ID               `json:"id" gorm:"primaryKey"`
	Name      string                     `json:"name" gorm:"type:text;not null"`
	Ranges    datatypes.JSONSlice[Range] `json:"ranges" gorm:"type:jsonb"`
	CreatedAt time.Time                  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time                  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Table) TableName() string { return "pricing_tables" }
