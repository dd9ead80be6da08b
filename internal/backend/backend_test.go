package backend

import (
	"context"
	"path/filepath"
	"testing"

	"gagebu/internal/config"
)

func TestTypeIsValid(t *testing.T) {
	for _, valid := range []Type{Memory, SQLite, Sheets} {
		if !valid.IsValid() {
			t.Errorf("%s should be valid", valid)
		}
	}
	for _, invalid := range []Type{"", "redis", "postgres"} {
		if invalid.IsValid() {
			t.Errorf("%q should be invalid", invalid)
		}
	}
}

func TestCreateMemory(t *testing.T) {
	res, err := Create(context.Background(), &config.Config{Backend: "memory"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Store.Name() != "memory" {
		t.Errorf("store name = %s", res.Store.Name())
	}
	if res.Cleanup != nil {
		t.Error("memory backend needs no cleanup")
	}
}

func TestCreateSQLite(t *testing.T) {
	cfg := &config.Config{
		Backend:      "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
	}
	res, err := Create(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()

	if res.Store.Name() != "sqlite" {
		t.Errorf("store name = %s", res.Store.Name())
	}
	if res.Cleanup == nil {
		t.Error("sqlite backend must expose cleanup")
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create(context.Background(), &config.Config{Backend: "redis"}, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}
