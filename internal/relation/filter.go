package relation

import (
	"strings"

	"gagebu/internal/core"
)

// Predicate decides whether a row belongs to a filtered view. Predicates
// compose with logical AND through Relation.Filter.
type Predicate func(Row) bool

// DateBetween matches rows within [from, to] inclusive. A zero bound is
// open on that side.
func DateBetween(from, to core.Date) Predicate {
	return func(r Row) bool {
		if !from.IsZero() && r.Date.Before(from.Time) {
			return false
		}
		if !to.IsZero() && r.Date.After(to.Time) {
			return false
		}
		return true
	}
}

// FlowIn matches rows whose flow is one of the given values.
func FlowIn(flows ...core.FlowType) Predicate {
	set := make(map[core.FlowType]struct{}, len(flows))
	for _, f := range flows {
		set[f] = struct{}{}
	}
	return func(r Row) bool {
		_, ok := set[r.Flow]
		return ok
	}
}

// CategoryIn matches rows whose category is one of the given values. The
// unclassified placeholder matches rows with an empty category.
func CategoryIn(cats ...string) Predicate {
	set := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return func(r Row) bool {
		cat := r.Category
		if cat == "" {
			cat = core.Unclassified
		}
		_, ok := set[cat]
		return ok
	}
}

// Search matches rows containing the term (case-insensitive substring) in
// description, memo, category or subcategory.
func Search(term string) Predicate {
	term = strings.ToLower(strings.TrimSpace(term))
	return func(r Row) bool {
		if term == "" {
			return true
		}
		for _, field := range []string{r.Description, r.Memo, r.Category, r.Subcategory} {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	}
}
