// Package relation holds the in-memory working copy of the ledger: typed
// rows with a stable per-session identity, plus the normalizer that builds
// it from raw table cells.
package relation

import (
	"sync"

	"gagebu/internal/core"
)

// Row is a ledger row plus its session identity. Identity is the row's
// position in the relation at load time; appended rows get negative
// identities so they can never collide with a loaded one. Identities are
// not stable across save cycles.
type Row struct {
	ID int
	core.Row
}

// Relation is an ordered, identity-keyed working copy. Filtering never
// mutates it; the only mutation is Append. Bulk edits go through the
// reconciler so flag derivation stays in one place.
type Relation struct {
	mu     sync.Mutex
	rows   []Row
	nextID int
}

// New builds a relation assigning each row its position as identity.
func New(rows []core.Row) *Relation {
	r := &Relation{rows: make([]Row, len(rows)), nextID: -1}
	for i, row := range rows {
		r.rows[i] = Row{ID: i, Row: row}
	}
	return r
}

// Len returns the number of rows.
func (r *Relation) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Rows returns a copy of all rows in order.
func (r *Relation) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// Append adds a quick-add row with a fresh negative identity and returns it.
func (r *Relation) Append(row core.Row) Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := Row{ID: r.nextID, Row: row}
	r.nextID--
	r.rows = append(r.rows, added)
	return added
}

// Filter returns the rows matching every predicate, in relation order.
// An empty predicate list matches everything.
func (r *Relation) Filter(preds ...Predicate) []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Row
	for _, row := range r.rows {
		if matchesAll(row, preds) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAll(row Row, preds []Predicate) bool {
	for _, p := range preds {
		if p != nil && !p(row) {
			return false
		}
	}
	return true
}

// Categories returns the distinct categories in first-seen order, for
// filter pickers. Empty categories are reported as the unclassified
// placeholder.
func (r *Relation) Categories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, row := range r.rows {
		cat := row.Category
		if cat == "" {
			cat = core.Unclassified
		}
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out
}
