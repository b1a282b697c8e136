package freeze

import (
	"encoding/json"
	"time"

	"github.com/atelierlabs/fotura/internal/pricing"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/shopspring/decimal"
)

// IsManualHistorical reports whether a persisted payload carries the
// manual-historical marker, regardless of whether the rest of the snapshot
// is usable.
func IsManualHistorical(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	source, ok := stringField(fields, "source", "origem")
	return ok && source == SourceManualHistorical
}

// Normalize parses a persisted frozen-rules payload into the canonical
// snapshot, accepting both the current shape and the shapes written by the
// pre-migration app (Portuguese keys, partial snapshots, a single "tabela"
// field reused for whichever table mode was active).
//
// This is the only place that understands legacy shapes; everything else
// works with *Snapshot. A payload that cannot be normalized returns ok=false
// and the session is treated as legacy.
func Normalize(raw []byte) (*Snapshot, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}

	modeRaw, ok := stringField(fields, "mode", "modelo", "modeloCobranca", "modelo_cobranca")
	if !ok {
		return nil, false
	}
	mode, ok := pricing.ParseMode(modeRaw)
	if !ok {
		return nil, false
	}

	snap := &Snapshot{Mode: mode}

	if v, ok := decimalField(fields, "fixedValue", "fixed_value", "valorFixo", "valor_fixo"); ok {
		snap.FixedValue = &v
	}
	if t, ok := tableField(fields, "globalTable", "global_table", "tabelaGlobal", "tabela_global"); ok {
		snap.GlobalTable = t
	}
	if t, ok := tableField(fields, "categoryTable", "category_table", "tabelaCategoria", "tabela_categoria"); ok {
		snap.CategoryTable = t
	}

	// Oldest records stored one "tabela" regardless of mode.
	if snap.GlobalTable == nil && snap.CategoryTable == nil {
		if t, ok := tableField(fields, "tabela"); ok {
			switch mode {
			case pricing.ModeGlobalTable:
				snap.GlobalTable = t
			case pricing.ModeCategoryTable:
				snap.CategoryTable = t
			}
		}
	}

	if ts, ok := stringField(fields, "capturedAt", "captured_at", "congeladoEm", "congelado_em"); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			snap.CapturedAt = parsed.UTC()
		}
	}
	if src, ok := stringField(fields, "source", "origem"); ok {
		snap.Source = src
	}

	return snap, true
}

type rawTable struct {
	Name   string          `json:"name"`
	Nome   string          `json:"nome"`
	Ranges json.RawMessage `json:"ranges"`
	Faixas json.RawMessage `json:"faixas"`
}

type rawRange struct {
	Min    *int             `json:"min"`
	Minimo *int             `json:"minimo"`
	Max    *int             `json:"max"`
	Maximo *int             `json:"maximo"`
	Unit   *decimal.Decimal `json:"unitPrice"`
	UnitSn *decimal.Decimal `json:"unit_price"`
	Valor  *decimal.Decimal `json:"valor"`
}

func tableField(fields map[string]json.RawMessage, keys ...string) (*Table, bool) {
	payload, ok := firstField(fields, keys...)
	if !ok {
		return nil, false
	}

	var rt rawTable
	if err := json.Unmarshal(payload, &rt); err != nil {
		return nil, false
	}

	name := rt.Name
	if name == "" {
		name = rt.Nome
	}
	rangesPayload := rt.Ranges
	if rangesPayload == nil {
		rangesPayload = rt.Faixas
	}

	table := &Table{Name: name}
	if rangesPayload != nil {
		var rawRanges []rawRange
		if err := json.Unmarshal(rangesPayload, &rawRanges); err != nil {
			return nil, false
		}
		for _, rr := range rawRanges {
			table.Ranges = append(table.Ranges, normalizeRange(rr))
		}
	}
	return table, true
}

func normalizeRange(rr rawRange) tabledomain.Range {
	out := tabledomain.Range{Min: 1, UnitPrice: decimal.Zero}

	if rr.Min != nil {
		out.Min = *rr.Min
	} else if rr.Minimo != nil {
		out.Min = *rr.Minimo
	}
	if out.Min < 1 {
		out.Min = 1
	}

	if rr.Max != nil {
		out.Max = copyIntPtr(rr.Max)
	} else if rr.Maximo != nil {
		out.Max = copyIntPtr(rr.Maximo)
	}

	// decimal accepts both quoted and bare JSON numbers, so the same field
	// reads snapshots we wrote ("35") and legacy float payloads (35.0).
	var unit *decimal.Decimal
	switch {
	case rr.Unit != nil:
		unit = rr.Unit
	case rr.UnitSn != nil:
		unit = rr.UnitSn
	case rr.Valor != nil:
		unit = rr.Valor
	}
	if unit != nil {
		out.UnitPrice = *unit
		if out.UnitPrice.IsNegative() {
			out.UnitPrice = decimal.Zero
		}
	}

	return out
}

func firstField(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if payload, ok := fields[key]; ok && len(payload) > 0 && string(payload) != "null" {
			return payload, true
		}
	}
	return nil, false
}

func stringField(fields map[string]json.RawMessage, keys ...string) (string, bool) {
	payload, ok := firstField(fields, keys...)
	if !ok {
		return "", false
	}
	var out string
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", false
	}
	return out, true
}

func decimalField(fields map[string]json.RawMessage, keys ...string) (decimal.Decimal, bool) {
	payload, ok := firstField(fields, keys...)
	if !ok {
		return decimal.Zero, false
	}
	var out decimal.Decimal
	if err := json.Unmarshal(payload, &out); err != nil {
		return decimal.Zero, false
	}
	return out, true
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
