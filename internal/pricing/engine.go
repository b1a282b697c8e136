package pricing

import (
	"math"
	"sort"

	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Context is a fully resolved pricing input: the mode plus either the fixed
// value or the range set of the selected table. It carries no references to
// live configuration, so callers may build it from a frozen snapshot or from
// the current settings interchangeably.
type Context struct {
	Mode       Mode
	FixedValue decimal.Decimal
	TableName  string
	Ranges     []tabledomain.Range
}

// Result is the priced output for one session.
type Result struct {
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func zeroResult() Result {
	return Result{UnitPrice: decimal.Zero, TotalPrice: decimal.Zero}
}

// Engine computes extra-photo prices. It never returns an error from the
// arithmetic path: malformed inputs degrade to zero with a warning so the
// UI always has a number to render.
type Engine struct {
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	return &Engine{log: log.Named("pricing.engine")}
}

// SanitizeQuantity coerces raw quantity input to a usable photo count.
// Negative, NaN and infinite values count as zero; values beyond any
// plausible photo count cap at MaxInt32 so the float conversion stays
// in range.
func SanitizeQuantity(raw float64) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return 0
	}
	if raw > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(raw)
}

// DecimalFromFloat converts a float into a decimal, clamping non-finite
// input to zero. The second return reports whether clamping happened.
func DecimalFromFloat(raw float64) (decimal.Decimal, bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return decimal.Zero, true
	}
	return decimal.NewFromFloat(raw), false
}

// ResolveUnitPrice scans ranges sorted by Min ascending and returns the unit
// price of the first range containing quantity. A quantity that falls in a
// gap, or below the smallest Min, resolves to the last sorted range. An
// empty table resolves to zero.
func ResolveUnitPrice(ranges []tabledomain.Range, quantity int) decimal.Decimal {
	if len(ranges) == 0 {
		return decimal.Zero
	}
	if quantity < 0 {
		quantity = 0
	}

	sorted := tabledomain.CloneRanges(ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for _, r := range sorted {
		if quantity >= r.Min && (r.Max == nil || quantity <= *r.Max) {
			return r.UnitPrice
		}
	}
	return sorted[len(sorted)-1].UnitPrice
}

// Compute prices quantity extra photos under ctx. The resolved unit price
// applies to every unit ("tiered-flat"); this is a deliberate business rule,
// not a marginal bracket calculation.
func (e *Engine) Compute(quantity int, ctx Context) Result {
	if quantity <= 0 {
		return zeroResult()
	}

	var unit decimal.Decimal
	switch ctx.Mode {
	case ModeFixed:
		unit = ctx.FixedValue
	case ModeGlobalTable, ModeCategoryTable:
		unit = ResolveUnitPrice(ctx.Ranges, quantity)
	default:
		e.log.Warn("unknown pricing mode, clamping to zero", zap.String("mode", string(ctx.Mode)))
		return zeroResult()
	}

	if unit.IsNegative() {
		e.log.Warn("negative unit price clamped to zero",
			zap.String("mode", string(ctx.Mode)),
			zap.String("table", ctx.TableName),
			zap.String("unit_price", unit.String()),
		)
		return zeroResult()
	}

	total := unit.Mul(decimal.NewFromInt(int64(quantity)))
	return Result{UnitPrice: unit, TotalPrice: total}
}

var Module = fx.Module("pricing.engine",
	fx.Provide(NewEngine),
)
