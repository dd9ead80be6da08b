// Package sqlite stores the ledger grid in a local database file, the
// "local file" flavor of the backing store. Cells are persisted as
// (row, column, text) so the same schema detection and normalization path
// applies to both backends.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gagebu/internal/core"
	"gagebu/internal/table"

	_ "modernc.org/sqlite"
)

// Data rows start below the title and header rows (0-based).
const dataStartIdx = 2

type Store struct {
	db   *sql.DB
	path string
}

var _ table.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Name implements table.Store.
func (s *Store) Name() string {
	return "sqlite:" + s.path
}

// Load reads the full grid in row/column order.
func (s *Store) Load(ctx context.Context) (table.RawTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_idx, col_idx, value FROM cells ORDER BY row_idx, col_idx`)
	if err != nil {
		return table.RawTable{}, fmt.Errorf("%w: query cells: %v", table.ErrPersistence, err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var rowIdx, colIdx int
		var value string
		if err := rows.Scan(&rowIdx, &colIdx, &value); err != nil {
			return table.RawTable{}, fmt.Errorf("%w: scan cell: %v", table.ErrPersistence, err)
		}
		for len(grid) <= rowIdx {
			grid = append(grid, nil)
		}
		for len(grid[rowIdx]) <= colIdx {
			grid[rowIdx] = append(grid[rowIdx], "")
		}
		grid[rowIdx][colIdx] = value
	}
	if err := rows.Err(); err != nil {
		return table.RawTable{}, fmt.Errorf("%w: iterate cells: %v", table.ErrPersistence, err)
	}
	return table.RawTable{Rows: grid, HeaderRow: -1}, nil
}

// Write replaces the data region inside one transaction: clear below the
// header, restore title and header rows, insert the serialized rows. The
// transaction makes the rewrite atomic relative to the write call; a failed
// save leaves the previous contents intact.
func (s *Store) Write(ctx context.Context, ledgerRows []core.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin write: %v", table.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cells WHERE row_idx >= ?`, dataStartIdx); err != nil {
		return fmt.Errorf("%w: clear data region: %v", table.ErrPersistence, err)
	}

	// Self-healing: the title/header rows are rewritten on every save in
	// case an earlier clear took them with it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM cells WHERE row_idx < ?`, dataStartIdx); err != nil {
		return fmt.Errorf("%w: clear header region: %v", table.ErrPersistence, err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO cells (row_idx, col_idx, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", table.ErrPersistence, err)
	}
	defer insert.Close()

	grid := append(table.HeaderRows(), table.Serialize(ledgerRows)...)
	for rowIdx, row := range grid {
		for colIdx, value := range row {
			if _, err := insert.ExecContext(ctx, rowIdx, colIdx, value); err != nil {
				return fmt.Errorf("%w: insert cell (%d,%d): %v", table.ErrPersistence, rowIdx, colIdx, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit write: %v", table.ErrPersistence, err)
	}
	slog.InfoContext(ctx, "Ledger grid rewritten", "path", s.path, "rows", len(ledgerRows))
	return nil
}
