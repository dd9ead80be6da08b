package relation

import (
	"testing"

	"gagebu/internal/core"
	"gagebu/internal/schema"
)

func TestNormalizeTypicalRows(t *testing.T) {
	cols := schema.CanonicalColumns()
	raw := [][]string{
		{"2025-03-14", "12:30:00", "지출", "식비", "외식", "점심", "-9,000", "카드", "", "1"},
		{"2025-03-15", "", "수입", "급여", "", "월급", "3000000", "이체", "정기", "1"},
		{"2025-03-16", "", "지출", "교통", "", "버스", "-1500", "카드", "", "0"},
	}
	rel, diag := Normalize(raw, cols)

	if diag.RowsSeen != 3 || diag.Dropped != 0 || diag.AmountCoercions != 0 {
		t.Fatalf("diagnostics = %+v", diag)
	}
	rows := rel.Rows()
	if len(rows) != 3 {
		t.Fatalf("relation has %d rows", len(rows))
	}
	first := rows[0]
	if first.ID != 0 {
		t.Errorf("first row identity = %d", first.ID)
	}
	if first.Date.String() != "2025-03-14" || !first.Time.Valid || first.Time.Hour != 12 {
		t.Errorf("date/time not normalized: %+v", first)
	}
	if first.Flow != core.FlowExpense || first.Amount != -9000 {
		t.Errorf("flow/amount not normalized: %+v", first)
	}
	if !first.IsActive || rows[2].IsActive {
		t.Errorf("flag derivation wrong: active=%v inactive=%v", first.IsActive, rows[2].IsActive)
	}
}

func TestNormalizeDropsUnparseableDates(t *testing.T) {
	cols := schema.CanonicalColumns()
	raw := [][]string{
		{"2025-03-14", "", "지출", "", "", "ok", "100", "", "", "1"},
		{"언젠가", "", "지출", "", "", "bad date", "100", "", "", "1"},
		{"", "", "", "", "", "", "", "", "", ""},
	}
	rel, diag := Normalize(raw, cols)
	if rel.Len() != 1 {
		t.Errorf("relation has %d rows, want 1", rel.Len())
	}
	// Blank row is skipped silently; only the bad date counts as dropped.
	if diag.RowsSeen != 2 || diag.Dropped != 1 {
		t.Errorf("diagnostics = %+v", diag)
	}
}

func TestNormalizeAmountPolicy(t *testing.T) {
	cols := schema.CanonicalColumns()
	raw := [][]string{
		{"2025-01-01", "", "지출", "", "", "grouped", "12,345", "", "", "1"},
		{"2025-01-02", "", "지출", "", "", "garbage", "abc", "", "", "1"},
		{"2025-01-03", "", "지출", "", "", "empty", "", "", "", "1"},
	}
	rel, diag := Normalize(raw, cols)
	rows := rel.Rows()
	if rows[0].Amount != 12345 {
		t.Errorf("grouped amount = %d", rows[0].Amount)
	}
	// Lenient policy: unparseable text coerces to zero and the row survives.
	if rows[1].Amount != 0 || rows[2].Amount != 0 {
		t.Errorf("coerced amounts = %d, %d", rows[1].Amount, rows[2].Amount)
	}
	if diag.AmountCoercions != 1 {
		t.Errorf("coercions = %d, want 1 (empty cell is not a coercion)", diag.AmountCoercions)
	}
	if diag.Dropped != 0 {
		t.Errorf("no row should drop for a bad amount, dropped = %d", diag.Dropped)
	}
}

func TestNormalizeFlagDualityBranches(t *testing.T) {
	base := []string{"2025-01-01", "", "지출", "", "", "x", "10", "", ""}

	t.Run("numeric flag authoritative", func(t *testing.T) {
		cols := schema.CanonicalColumns()
		rel, _ := Normalize([][]string{
			append(append([]string{}, base...), "1.0"),
			append(append([]string{}, base...), "0"),
			append(append([]string{}, base...), ""),
		}, cols)
		rows := rel.Rows()
		if !rows[0].IsActive || rows[1].IsActive || rows[2].IsActive {
			t.Errorf("numeric flag derivation: %v %v %v", rows[0].IsActive, rows[1].IsActive, rows[2].IsActive)
		}
	})

	t.Run("boolean column when numeric flag absent", func(t *testing.T) {
		cols := schema.CanonicalColumns()
		cols.FlowFilter = -1
		cols.IsActive = 9
		rel, _ := Normalize([][]string{
			append(append([]string{}, base...), "TRUE"),
			append(append([]string{}, base...), "false"),
		}, cols)
		rows := rel.Rows()
		if !rows[0].IsActive || rows[1].IsActive {
			t.Errorf("boolean derivation: %v %v", rows[0].IsActive, rows[1].IsActive)
		}
	})

	t.Run("neither flag defaults to active", func(t *testing.T) {
		cols := schema.CanonicalColumns()
		cols.FlowFilter = -1
		rel, _ := Normalize([][]string{base}, cols)
		if !rel.Rows()[0].IsActive {
			t.Error("row without any flag should default to active")
		}
	})
}

func TestNormalizeRaggedRows(t *testing.T) {
	cols := schema.CanonicalColumns()
	rel, diag := Normalize([][]string{{"2025-01-01"}}, cols)
	if rel.Len() != 1 || diag.Dropped != 0 {
		t.Fatalf("short row should normalize: len=%d diag=%+v", rel.Len(), diag)
	}
	row := rel.Rows()[0]
	if row.Amount != 0 || row.Description != "" {
		t.Errorf("short row fields: %+v", row)
	}
	// The numeric flag column exists in this layout, so a missing cell
	// reads as empty and the row is inactive, same as an explicit "0".
	if row.IsActive {
		t.Error("missing flag cell under a Flow_Filter column should read inactive")
	}
	if diag.AmountCoercions != 0 {
		t.Errorf("missing cells are not coercions: %+v", diag)
	}
}
