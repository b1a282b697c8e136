package freeze

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/atelierlabs/fotura/internal/pricing"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/shopspring/decimal"
)

// SourceManualHistorical marks sessions entered by hand from paper records.
// They are permanently exempt from every automatic recompute path.
const SourceManualHistorical = "manual-historical"

// Table is an embedded copy of a tiered table inside a snapshot. It is owned
// exclusively by the session that froze it and never references live
// configuration.
type Table struct {
	Name   string              `json:"name"`
	Ranges []tabledomain.Range `json:"ranges"`
}

// Snapshot is the immutable capture of the pricing rule in effect when a
// session was created ("regras congeladas"). Exactly one of FixedValue,
// GlobalTable or CategoryTable is populated, matching Mode.
type Snapshot struct {
	Mode          pricing.Mode     `json:"mode"`
	FixedValue    *decimal.Decimal `json:"fixedValue,omitempty"`
	GlobalTable   *Table           `json:"globalTable,omitempty"`
	CategoryTable *Table           `json:"categoryTable,omitempty"`
	CapturedAt    time.Time        `json:"capturedAt"`
	Source        string           `json:"source,omitempty"`
}

// Capture deep-copies a live pricing context into a snapshot. Nothing in the
// returned value aliases live; later edits to the live tables cannot reach
// any session that froze before the edit.
func Capture(live pricing.Context, capturedAt time.Time) *Snapshot {
	snap := &Snapshot{
		Mode:       live.Mode,
		CapturedAt: capturedAt.UTC(),
	}

	switch live.Mode {
	case pricing.ModeFixed:
		v := live.FixedValue
		snap.FixedValue = &v
	case pricing.ModeGlobalTable:
		snap.GlobalTable = &Table{
			Name:   live.TableName,
			Ranges: tabledomain.CloneRanges(live.Ranges),
		}
	case pricing.ModeCategoryTable:
		snap.CategoryTable = &Table{
			Name:   live.TableName,
			Ranges: tabledomain.CloneRanges(live.Ranges),
		}
	}

	return snap
}

// Valid reports whether the declared mode matches the populated field.
// A mismatched snapshot is treated as absent (the session stays legacy).
func (s *Snapshot) Valid() bool {
	if s == nil || !s.Mode.Valid() {
		return false
	}
	switch s.Mode {
	case pricing.ModeFixed:
		return s.FixedValue != nil
	case pricing.ModeGlobalTable:
		return s.GlobalTable != nil
	case pricing.ModeCategoryTable:
		return s.CategoryTable != nil
	}
	return false
}

// Context converts the snapshot into a calculation input. Ranges are cloned
// so the engine can never mutate frozen data through the context.
func (s *Snapshot) Context() pricing.Context {
	ctx := pricing.Context{Mode: s.Mode}
	switch s.Mode {
	case pricing.ModeFixed:
		if s.FixedValue != nil {
			ctx.FixedValue = *s.FixedValue
		}
	case pricing.ModeGlobalTable:
		if s.GlobalTable != nil {
			ctx.TableName = s.GlobalTable.Name
			ctx.Ranges = tabledomain.CloneRanges(s.GlobalTable.Ranges)
		}
	case pricing.ModeCategoryTable:
		if s.CategoryTable != nil {
			ctx.TableName = s.CategoryTable.Name
			ctx.Ranges = tabledomain.CloneRanges(s.CategoryTable.Ranges)
		}
	}
	return ctx
}

// Hash fingerprints the snapshot content. The recalculator memo uses it to
// detect context changes without structural comparison.
func (s *Snapshot) Hash() string {
	if s == nil {
		return ""
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// HashContext fingerprints a live context the same way Hash fingerprints a
// snapshot, so legacy sessions get comparable memo keys.
func HashContext(ctx pricing.Context) string {
	snap := Capture(ctx, time.Time{})
	return snap.Hash()
}

// Marshal serializes the snapshot in the canonical persisted shape.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}
