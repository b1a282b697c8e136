package pricing

import "strings"

// Mode selects how extra-photo prices are computed ("modelo de precificação").
type Mode string

const (
	ModeFixed         Mode = "fixed"
	ModeGlobalTable   Mode = "global-table"
	ModeCategoryTable Mode = "per-category-table"
)

// ParseMode normalizes a stored or user-supplied mode string. Legacy records
// used underscore spellings, which remain accepted on read.
func ParseMode(raw string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "fixed", "fixo":
		return ModeFixed, true
	case "global-table", "global_table", "tabela-global", "tabela_global":
		return ModeGlobalTable, true
	case "per-category-table", "per_category_table", "category-table", "category_table", "tabela-categoria", "tabela_categoria":
		return ModeCategoryTable, true
	default:
		return "", false
	}
}

func (m Mode) Valid() bool {
	switch m {
	case ModeFixed, ModeGlobalTable, ModeCategoryTable:
		return true
	default:
		return false
	}
}
