package table

import (
	"testing"

	"gagebu/internal/core"
	"gagebu/internal/schema"
)

func TestSerializeDerivesFlagFromIsActive(t *testing.T) {
	rows := []core.Row{
		{Date: core.NewDate(2025, 3, 14), Flow: core.FlowExpense, Description: "점심", Amount: -9000, IsActive: true},
		{Date: core.NewDate(2025, 3, 15), Flow: core.FlowTransfer, Description: "적금", Amount: -500000, IsActive: false},
	}
	cells := Serialize(rows)
	if len(cells) != 2 || len(cells[0]) != len(schema.Header()) {
		t.Fatalf("unexpected shape: %v", cells)
	}
	if cells[0][9] != "1" || cells[1][9] != "0" {
		t.Errorf("flag cells = %q, %q", cells[0][9], cells[1][9])
	}
	if cells[0][0] != "2025-03-14" || cells[0][6] != "-9000" {
		t.Errorf("date/amount cells = %q, %q", cells[0][0], cells[0][6])
	}
	if cells[0][1] != "" {
		t.Errorf("absent time should serialize empty, got %q", cells[0][1])
	}
}

func TestSerializedRowsReloadCleanly(t *testing.T) {
	// What the writer persists must satisfy the detector and normalizer.
	rows := []core.Row{
		{Date: core.NewDate(2025, 3, 14), Time: core.TimeOfDay{Hour: 8, Minute: 30, Valid: true},
			Flow: core.FlowIncome, Category: "급여", Description: "월급", Amount: 3000000, IsActive: true},
	}
	grid := append(HeaderRows(), Serialize(rows)...)
	headerRow, cols, err := schema.Detect(grid)
	if err != nil {
		t.Fatalf("persisted grid failed detection: %v", err)
	}
	if headerRow != 1 {
		t.Errorf("header row = %d, want 1", headerRow)
	}
	if cols != schema.CanonicalColumns() {
		t.Errorf("persisted header resolves to %+v", cols)
	}
}
