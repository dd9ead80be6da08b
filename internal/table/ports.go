// Package table defines the ports for the spreadsheet-backed store and the
// serialization of ledger rows into persisted cells. Adapters live in the
// subpackages (google, sqlite, memory).
package table

import (
	"context"
	"errors"
	"strconv"

	"gagebu/internal/core"
	"gagebu/internal/schema"
)

// ErrPersistence reports that the backing store rejected a read or write
// (locked, unreachable, permission denied). It is surfaced to the caller;
// the in-memory working copy stays intact so the user can retry.
var ErrPersistence = errors.New("table: backing store failure")

// RawTable is the store's contents as loaded: a grid of cell text, ragged
// rows allowed. HeaderRow is the store's own claim of the header position
// (0-based), or -1 when it has none; the schema detector decides either way.
type RawTable struct {
	Rows      [][]string
	HeaderRow int
}

type (
	// Loader reads the full persisted table.
	Loader interface {
		Load(ctx context.Context) (RawTable, error)
	}

	// Writer replaces the data region with the given rows. Implementations
	// must clear only the data region, restore the title and header rows
	// afterward, and write plain values. A failed write must leave the
	// previous persisted state intact.
	Writer interface {
		Write(ctx context.Context, rows []core.Row) error
	}

	// Store is a complete backing store. Name identifies it in logs and
	// save events.
	Store interface {
		Loader
		Writer
		Name() string
	}
)

// Serialize renders rows as persisted cells in canonical column order. The
// numeric Flow_Filter is derived from IsActive here, at the persistence
// boundary, so the two encodings cannot disagree on disk.
func Serialize(rows []core.Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		flag := "0"
		if r.IsActive {
			flag = "1"
		}
		out[i] = []string{
			r.Date.String(),
			r.Time.String(),
			string(r.Flow),
			r.Category,
			r.Subcategory,
			r.Description,
			strconv.FormatInt(r.Amount, 10),
			r.Method,
			r.Memo,
			flag,
		}
	}
	return out
}

// HeaderRows returns the title and header rows a writer restores above the
// data region after clearing it. Clearing has historically over-reached;
// rewriting these is the self-healing guard against that.
func HeaderRows() [][]string {
	return [][]string{
		{schema.Title},
		schema.Header(),
	}
}
