package relation

import (
	"strings"

	"gagebu/internal/core"
	"gagebu/internal/schema"
)

// Diagnostics reports what normalization did to the raw rows. Dropped rows
// are excluded from the relation but must stay observable to the caller.
type Diagnostics struct {
	RowsSeen        int `json:"rows_seen"`
	Dropped         int `json:"dropped"`
	AmountCoercions int `json:"amount_coercions"`
}

// Normalize converts the raw data rows below the header into a relation of
// typed rows. Policy, matching the store's lenient posture:
//
//   - blank rows are skipped without counting as dropped
//   - unparseable date: the row is invalid and dropped (never repaired)
//   - unparseable time: absent time, row stays valid
//   - unparseable amount: coerced to zero and counted, row stays valid
//
// Flag duality takes exactly one branch per table: when the numeric
// Flow_Filter column exists it is authoritative and IsActive derives from
// it; otherwise a boolean Is_Active column is used; with neither, every row
// defaults to active.
func Normalize(dataRows [][]string, cols schema.Columns) (*Relation, Diagnostics) {
	var diag Diagnostics
	rows := make([]core.Row, 0, len(dataRows))
	for _, raw := range dataRows {
		if blankRow(raw) {
			continue
		}
		diag.RowsSeen++

		date, err := core.ParseDate(schema.Cell(raw, cols.Date))
		if err != nil {
			diag.Dropped++
			continue
		}

		amountText := schema.Cell(raw, cols.Amount)
		amount, ok := core.ParseAmount(amountText)
		if !ok && amountText != "" {
			diag.AmountCoercions++
		}

		rows = append(rows, core.Row{
			Date:        date,
			Time:        core.ParseTimeOfDay(schema.Cell(raw, cols.Time)),
			Flow:        core.FlowType(schema.Cell(raw, cols.Flow)),
			Category:    schema.Cell(raw, cols.Category),
			Subcategory: schema.Cell(raw, cols.Subcategory),
			Description: schema.Cell(raw, cols.Description),
			Memo:        schema.Cell(raw, cols.Memo),
			Amount:      amount,
			Method:      schema.Cell(raw, cols.Method),
			IsActive:    activeFor(raw, cols),
		})
	}
	return New(rows), diag
}

// activeFor derives the in-memory boolean from whichever flag the table
// carries. Never both: deriving from two stale encodings at once would
// silently prefer one of them.
func activeFor(raw []string, cols schema.Columns) bool {
	if cols.FlowFilter >= 0 {
		return flagIsOne(schema.Cell(raw, cols.FlowFilter))
	}
	if cols.IsActive >= 0 {
		v := strings.ToLower(schema.Cell(raw, cols.IsActive))
		return v == "true" || v == "1"
	}
	return true
}

// flagIsOne accepts the numeric flag in the shapes spreadsheets store it:
// "1", "1.0", " 1 ".
func flagIsOne(s string) bool {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s) == "1"
}

func blankRow(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
