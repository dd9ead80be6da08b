// Package backend creates the configured table store.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"gagebu/internal/config"
	"gagebu/internal/table"
	"gagebu/internal/table/google"
	"gagebu/internal/table/memory"
	"gagebu/internal/table/sqlite"
)

// Type selects the persistence layer behind a session.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Sheets:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the created store and its optional cleanup.
type Result struct {
	Store   table.Store
	Cleanup CleanupFunc
}

// Create builds the store named by the config. The caller owns the
// cleanup function; a nil Cleanup means nothing to release.
func Create(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.Backend)
	switch t {
	case Memory:
		store := memory.New()
		logger.Info("Initialized memory backend")
		return &Result{Store: store}, nil

	case SQLite:
		store, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case Sheets:
		store, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.SpreadsheetID,
			SheetName:       cfg.SheetName,
			CredentialsJSON: cfg.CredentialsJSON,
			CredentialsFile: cfg.CredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		logger.Info("Initialized sheets backend",
			"spreadsheet_id", cfg.SpreadsheetID, "sheet", cfg.SheetName)
		return &Result{Store: store}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend)
	}
}
