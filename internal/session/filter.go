package session

import (
	"gagebu/internal/core"
	"gagebu/internal/relation"
)

// Filter is the view specification the UI sends. The same filter is used
// to display rows and, at save time, to recompute the shown subset the
// edits are reconciled against.
type Filter struct {
	From       core.Date
	To         core.Date
	Flows      []core.FlowType
	Categories []string
	Search     string
}

func (f Filter) predicates() []relation.Predicate {
	var preds []relation.Predicate
	if !f.From.IsZero() || !f.To.IsZero() {
		preds = append(preds, relation.DateBetween(f.From, f.To))
	}
	if len(f.Flows) > 0 {
		preds = append(preds, relation.FlowIn(f.Flows...))
	}
	if len(f.Categories) > 0 {
		preds = append(preds, relation.CategoryIn(f.Categories...))
	}
	if f.Search != "" {
		preds = append(preds, relation.Search(f.Search))
	}
	return preds
}
