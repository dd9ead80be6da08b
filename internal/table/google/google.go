// Package google adapts a Google Sheets worksheet as the ledger's backing
// store, using a service account for auth.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gagebu/internal/core"
	"gagebu/internal/table"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// dataStartRow is the first data row (1-based): title, header, then data.
// The loader never trusts this for reading (header detection does), but
// the writer anchors the data region here.
const dataStartRow = 3

// clearRange is the data region cleared before every rewrite. Only the
// data region: a full-sheet clear would destroy presentation metadata this
// layer does not own.
const clearRange = "A%d:K50000"

type Config struct {
	SpreadsheetID string
	SheetName     string

	// Service account credentials, inline JSON or a file path. When both
	// are empty, GOOGLE_APPLICATION_CREDENTIALS is used.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ table.Store = (*Client)(nil)

// New creates a Sheets-backed store.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "T_RawData"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(cfg.CredentialsJSON))
	if len(credentialsJSON) == 0 {
		file := strings.TrimSpace(cfg.CredentialsFile)
		if file == "" {
			file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		}
		if file == "" {
			return nil, errors.New("missing service account credentials")
		}
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Name implements table.Store.
func (c *Client) Name() string {
	return "sheets:" + c.spreadsheetID
}

// Load reads the whole worksheet as cell text. The header position is
// reported as unknown; name-based detection is the only safe way to find
// it, since earlier write-backs may have shifted it.
func (c *Client) Load(ctx context.Context) (table.RawTable, error) {
	rng := fmt.Sprintf("%s!A:K", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return table.RawTable{}, fmt.Errorf("%w: read %s: %v", table.ErrPersistence, rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		rows[i] = toStrings(raw)
	}
	slog.DebugContext(ctx, "Loaded worksheet", "sheet", c.sheetName, "rows", len(rows))
	return table.RawTable{Rows: rows, HeaderRow: -1}, nil
}

// Write clears the data region, restores the title and header rows, then
// writes the serialized rows as plain values. The title/header rewrite is
// unconditional: clearing has over-reached before, and restoring two rows
// on every save is what keeps the sheet self-healing.
func (c *Client) Write(ctx context.Context, rows []core.Row) error {
	clear := fmt.Sprintf("%s!"+clearRange, c.sheetName, dataStartRow)
	_, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{
		Ranges: []string{clear},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: clear %s: %v", table.ErrPersistence, clear, err)
	}

	head := table.HeaderRows()
	if err := c.update(ctx, fmt.Sprintf("%s!A1", c.sheetName), head); err != nil {
		return err
	}

	cells := table.Serialize(rows)
	if len(cells) == 0 {
		return nil
	}
	if err := c.update(ctx, fmt.Sprintf("%s!A%d", c.sheetName, dataStartRow), cells); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Worksheet rewritten", "sheet", c.sheetName, "rows", len(cells))
	return nil
}

func (c *Client) update(ctx context.Context, anchor string, cells [][]string) error {
	values := make([][]any, len(cells))
	for i, row := range cells {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, anchor, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", table.ErrPersistence, anchor, err)
	}
	return nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
