// Package reconcile computes the three-way diff between the loaded
// relation, the filtered subset the user saw, and the user's edited version
// of that subset. The save path is an explicit identity-keyed merge, never
// "overwrite whatever the UI shows": a filtered edit session must not be
// able to touch rows outside its view.
package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"gagebu/internal/relation"
)

// ErrInconsistentView reports that the shown/original identity relationship
// is violated. Reconciliation aborts rather than guess which side is
// authoritative.
var ErrInconsistentView = errors.New("reconcile: edited view is inconsistent with the loaded relation")

// Result is the reconciled full relation plus diff counts for diagnostics.
// Rows are ordered by date descending (time descending within a day), so
// re-loads are deterministic.
type Result struct {
	Rows     []relation.Row
	Deleted  int
	Updated  int
	Inserted int
}

// Apply merges the edited subset back into the full relation:
//
//	deleted  = identities(shown) − identities(edited)
//	updated  = identities(shown) ∩ identities(edited), whole-row overwrite
//	inserted = edited rows with no identity in original, appended
//
// Rows of original outside shown pass through untouched. An edited identity
// that exists in original but was never shown is a view inconsistency, not
// an insert; so is a shown identity missing from original.
func Apply(original, shown, edited []relation.Row) (Result, error) {
	originalIDs := make(map[int]struct{}, len(original))
	for _, row := range original {
		originalIDs[row.ID] = struct{}{}
	}

	shownIDs := make(map[int]struct{}, len(shown))
	for _, row := range shown {
		if _, ok := originalIDs[row.ID]; !ok {
			return Result{}, fmt.Errorf("%w: shown row %d not in loaded relation", ErrInconsistentView, row.ID)
		}
		shownIDs[row.ID] = struct{}{}
	}

	updates := make(map[int]relation.Row)
	var inserts []relation.Row
	editedIDs := make(map[int]struct{}, len(edited))
	for _, row := range edited {
		editedIDs[row.ID] = struct{}{}
		if _, wasShown := shownIDs[row.ID]; wasShown {
			// Whole-row overwrite: cleared fields are edits, not "no change".
			updates[row.ID] = row
			continue
		}
		if _, exists := originalIDs[row.ID]; exists {
			return Result{}, fmt.Errorf("%w: edited row %d exists outside the shown view", ErrInconsistentView, row.ID)
		}
		inserts = append(inserts, row)
	}

	deleted := make(map[int]struct{})
	for id := range shownIDs {
		if _, kept := editedIDs[id]; !kept {
			deleted[id] = struct{}{}
		}
	}

	res := Result{
		Rows:     make([]relation.Row, 0, len(original)-len(deleted)+len(inserts)),
		Deleted:  len(deleted),
		Updated:  len(updates),
		Inserted: len(inserts),
	}
	for _, row := range original {
		if _, gone := deleted[row.ID]; gone {
			continue
		}
		if upd, ok := updates[row.ID]; ok {
			row = upd
		}
		res.Rows = append(res.Rows, row)
	}
	res.Rows = append(res.Rows, inserts...)

	sortRows(res.Rows)
	return res, nil
}

// sortRows orders newest first; the stable sort preserves relative order
// for rows sharing the same instant.
func sortRows(rows []relation.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return a.Time.Seconds() > b.Time.Seconds()
	})
}
