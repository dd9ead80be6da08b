// Package session owns one interactive load→filter→edit→save cycle against
// a backing store. Each session holds its own working relation; there is no
// cross-session coordination, and a failed save leaves the working copy
// untouched so the user can retry.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gagebu/internal/core"
	"gagebu/internal/reconcile"
	"gagebu/internal/relation"
	"gagebu/internal/schema"
	"gagebu/internal/table"
)

// SaveEvent describes a committed save for downstream consumers.
type SaveEvent struct {
	SessionID string    `json:"session_id"`
	Store     string    `json:"store"`
	Deleted   int       `json:"deleted"`
	Updated   int       `json:"updated"`
	Inserted  int       `json:"inserted"`
	Rows      int       `json:"rows"`
	SavedAt   time.Time `json:"saved_at"`
}

// Publisher notifies downstream consumers after a successful save. A nil
// publisher is valid; publish failures are logged, never surfaced, since
// the save already happened.
type Publisher interface {
	PublishSave(ctx context.Context, ev SaveEvent) error
}

// SaveReport is what a save returns to the caller.
type SaveReport struct {
	Deleted  int
	Updated  int
	Inserted int
	Rows     int
}

type Session struct {
	ID    string
	store table.Store
	pub   Publisher

	mu       sync.Mutex
	rel      *relation.Relation
	diag     relation.Diagnostics
	loadedAt time.Time
}

// load performs the full read path: raw grid → header detection →
// normalization → fresh relation.
func (s *Session) load(ctx context.Context) error {
	raw, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}

	headerRow, cols, err := schema.Detect(raw.Rows)
	if errors.Is(err, schema.ErrSchemaNotFound) {
		// Documented single-level fallback: the store's own hint if it has
		// one, else the default position. Never guess further.
		headerRow = raw.HeaderRow
		if headerRow < 0 {
			headerRow = schema.DefaultHeaderRow
		}
		cols = schema.CanonicalColumns()
		slog.WarnContext(ctx, "Header row not detected, using fallback",
			"session_id", s.ID, "header_row", headerRow)
	} else if err != nil {
		return fmt.Errorf("detect schema: %w", err)
	}

	var dataRows [][]string
	if headerRow+1 < len(raw.Rows) {
		dataRows = raw.Rows[headerRow+1:]
	}
	rel, diag := relation.Normalize(dataRows, cols)

	s.mu.Lock()
	s.rel = rel
	s.diag = diag
	s.loadedAt = time.Now()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Session loaded",
		"session_id", s.ID,
		"store", s.store.Name(),
		"rows", rel.Len(),
		"dropped", diag.Dropped,
		"amount_coercions", diag.AmountCoercions)
	return nil
}

// Diagnostics returns the normalization counters from the last load.
func (s *Session) Diagnostics() relation.Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diag
}

// Len returns the size of the working relation.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rel.Len()
}

// Rows returns the filtered view of the working relation.
func (s *Session) Rows(f Filter) []relation.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rel.Filter(f.predicates()...)
}

// Categories lists the distinct categories for filter pickers.
func (s *Session) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rel.Categories()
}

// Summary computes the headline figures over the filtered view.
func (s *Session) Summary(f Filter) core.Summary {
	rows := s.Rows(f)
	coreRows := make([]core.Row, len(rows))
	for i, r := range rows {
		coreRows[i] = r.Row
	}
	return core.Summarize(coreRows)
}

// QuickAdd appends a new row to the working relation without saving.
// Missing category defaults to the unclassified placeholder; new rows are
// always active.
func (s *Session) QuickAdd(ctx context.Context, row core.Row) (relation.Row, error) {
	if strings.TrimSpace(row.Category) == "" {
		row.Category = core.Unclassified
	}
	row.IsActive = true
	if err := row.Validate(); err != nil {
		return relation.Row{}, err
	}

	s.mu.Lock()
	added := s.rel.Append(row)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Row added to working copy",
		"session_id", s.ID, "row_id", added.ID, "amount", row.Amount)
	return added, nil
}

// Save reconciles the edited subset against the working relation and writes
// the result back. The shown subset is recomputed from the filter the user
// was viewing; rows outside it cannot be touched. On any failure the
// working relation is preserved unchanged.
func (s *Session) Save(ctx context.Context, f Filter, edited []relation.Row) (SaveReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original := s.rel.Rows()
	shown := s.rel.Filter(f.predicates()...)

	res, err := reconcile.Apply(original, shown, edited)
	if err != nil {
		return SaveReport{}, err
	}

	coreRows := make([]core.Row, len(res.Rows))
	for i, r := range res.Rows {
		coreRows[i] = r.Row
	}
	if err := s.store.Write(ctx, coreRows); err != nil {
		return SaveReport{}, fmt.Errorf("write table: %w", err)
	}

	// The persisted order is now the load order; rebuild identities so the
	// next cycle reconciles against what it would reload.
	s.rel = relation.New(coreRows)

	report := SaveReport{
		Deleted:  res.Deleted,
		Updated:  res.Updated,
		Inserted: res.Inserted,
		Rows:     len(coreRows),
	}
	slog.InfoContext(ctx, "Session saved",
		"session_id", s.ID,
		"store", s.store.Name(),
		"deleted", report.Deleted,
		"updated", report.Updated,
		"inserted", report.Inserted,
		"rows", report.Rows)

	if s.pub != nil {
		ev := SaveEvent{
			SessionID: s.ID,
			Store:     s.store.Name(),
			Deleted:   report.Deleted,
			Updated:   report.Updated,
			Inserted:  report.Inserted,
			Rows:      report.Rows,
			SavedAt:   time.Now(),
		}
		if err := s.pub.PublishSave(ctx, ev); err != nil {
			slog.WarnContext(ctx, "Failed to publish save event",
				"session_id", s.ID, "error", err)
		}
	}
	return report, nil
}
