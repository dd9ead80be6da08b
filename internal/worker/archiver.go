// Package worker archives committed save events into a local history
// database, giving the ledger an audit trail of every persisted change.
package worker

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"gagebu/internal/session"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ArchivedEvent is one row of the save history.
type ArchivedEvent struct {
	ID         int64
	SessionID  string
	Store      string
	Deleted    int
	Updated    int
	Inserted   int
	Rows       int
	SavedAt    time.Time
	ArchivedAt time.Time
}

// Archiver persists save events. It owns its database file; the ledger
// store and the archive never share a connection.
type Archiver struct {
	db   *sql.DB
	path string
}

func NewArchiver(dbPath string) (*Archiver, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run archive migrations: %w", err)
	}

	return &Archiver{db: db, path: dbPath}, nil
}

func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (a *Archiver) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// HandleSaveEvent records one save event. Errors propagate so the
// delivery is requeued.
func (a *Archiver) HandleSaveEvent(ev session.SaveEvent) error {
	_, err := a.db.Exec(`
		INSERT INTO save_events (session_id, store, deleted, updated, inserted, row_count, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.SessionID, ev.Store, ev.Deleted, ev.Updated, ev.Inserted, ev.Rows, ev.SavedAt)
	if err != nil {
		return fmt.Errorf("insert save event: %w", err)
	}

	slog.Info("Archived save event",
		"session_id", ev.SessionID,
		"store", ev.Store,
		"rows", ev.Rows)
	return nil
}

// Recent returns the newest archived events, most recent first.
func (a *Archiver) Recent(ctx context.Context, limit int) ([]ArchivedEvent, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, session_id, store, deleted, updated, inserted, row_count, saved_at, archived_at
		FROM save_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query save events: %w", err)
	}
	defer rows.Close()

	var events []ArchivedEvent
	for rows.Next() {
		var ev ArchivedEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Store, &ev.Deleted,
			&ev.Updated, &ev.Inserted, &ev.Rows, &ev.SavedAt, &ev.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scan save event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
