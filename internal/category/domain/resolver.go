package domain

import "strings"

// Hints carries whatever category identification a session record still has.
// Old records may hold only a denormalized name, or only a position.
type Hints struct {
	ID       int64
	Name     string
	Position int
}

// NoPosition marks an absent positional hint.
const NoPosition = -1

// Resolve reproduces the legacy category lookup chain: match by id, then by
// name equality, then by positional index into the category list.
//
// The positional fallback is fragile (reordering categories silently changes
// which table old sessions resolve to) but is preserved for compatibility
// with records written before ids were stored. Deprecating it only requires
// touching this function; calculation logic never inspects hint precedence.
func Resolve(categories []Category, h Hints) *Category {
	if len(categories) == 0 {
		return nil
	}

	if h.ID != 0 {
		for i := range categories {
			if int64(categories[i].ID) == h.ID {
				return &categories[i]
			}
		}
	}

	if name := strings.TrimSpace(h.Name); name != "" {
		for i := range categories {
			if strings.EqualFold(categories[i].Name, name) {
				return &categories[i]
			}
		}
	}

	if h.Position != NoPosition && h.Position >= 0 && h.Position < len(categories) {
		return &categories[h.Position]
	}

	return nil
}
