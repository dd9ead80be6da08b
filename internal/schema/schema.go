// Package schema locates the header row inside a loosely structured ledger
// table and resolves columns by name. Prior write-backs may have inserted
// title rows above the header, so position-based access is unsafe; every
// load resolves column indices from the detected header and uses them
// downstream instead of hard-coded positions.
package schema

import (
	"errors"
	"strings"
)

const (
	// MaxScanRows bounds the header search window.
	MaxScanRows = 10

	// DefaultHeaderRow is the documented fallback position (0-based) used
	// when no header can be detected: one title row, then the header.
	DefaultHeaderRow = 1

	// Title is the label row the writer restores above the header.
	Title = "가계부 데이터 엔진 (T_RawData)"
)

// Canonical column names as stored in the sheet.
const (
	ColDate        = "날짜"
	ColTime        = "시간"
	ColFlow        = "구분"
	ColCategory    = "대분류"
	ColSubcategory = "소분류"
	ColDescription = "내용"
	ColAmount      = "금액"
	ColMethod      = "결제수단"
	ColMemo        = "메모"
	ColFlowFilter  = "Flow_Filter"
	ColIsActive    = "Is_Active"
)

// ErrSchemaNotFound reports that no row in the scan window carried the
// required column names. Callers recover with DefaultHeaderRow and
// CanonicalColumns, or fail the load.
var ErrSchemaNotFound = errors.New("schema: header row not found")

// aliases maps legacy English header names onto the canonical ones; some
// exports of the sheet carried English headers.
var aliases = map[string]string{
	"date":           ColDate,
	"time":           ColTime,
	"type":           ColFlow,
	"main_category":  ColCategory,
	"sub_category":   ColSubcategory,
	"content":        ColDescription,
	"amount":         ColAmount,
	"payment_method": ColMethod,
	"memo":           ColMemo,
	"flow_filter":    ColFlowFilter,
	"is_active":      ColIsActive,
}

// Columns holds the resolved 0-based index of each column, -1 when absent.
type Columns struct {
	Date        int
	Time        int
	Flow        int
	Category    int
	Subcategory int
	Description int
	Amount      int
	Method      int
	Memo        int
	FlowFilter  int
	IsActive    int
}

// CanonicalColumns returns the fixed layout used when detection falls back:
// 날짜 시간 구분 대분류 소분류 내용 금액 결제수단 메모 Flow_Filter.
func CanonicalColumns() Columns {
	return Columns{
		Date: 0, Time: 1, Flow: 2, Category: 3, Subcategory: 4,
		Description: 5, Amount: 6, Method: 7, Memo: 8, FlowFilter: 9,
		IsActive: -1,
	}
}

// Header returns the canonical header row in persisted order. Is_Active is
// deliberately not persisted; the numeric flag is its only on-disk form.
func Header() []string {
	return []string{
		ColDate, ColTime, ColFlow, ColCategory, ColSubcategory,
		ColDescription, ColAmount, ColMethod, ColMemo, ColFlowFilter,
	}
}

// Detect scans at most MaxScanRows rows for the first one whose values
// contain the required column names {날짜, 구분, 금액} (or their English
// aliases) and resolves the full column map from it.
func Detect(rows [][]string) (headerRow int, cols Columns, err error) {
	limit := len(rows)
	if limit > MaxScanRows {
		limit = MaxScanRows
	}
	for i := 0; i < limit; i++ {
		names := canonicalNames(rows[i])
		if names[ColDate] < 0 || names[ColFlow] < 0 || names[ColAmount] < 0 {
			continue
		}
		return i, columnsFrom(names), nil
	}
	return 0, Columns{}, ErrSchemaNotFound
}

// canonicalNames maps each canonical column name to its index in the row,
// -1 when missing. The first occurrence wins so a duplicated header cell
// cannot shift resolution.
func canonicalNames(row []string) map[string]int {
	names := map[string]int{
		ColDate: -1, ColTime: -1, ColFlow: -1, ColCategory: -1,
		ColSubcategory: -1, ColDescription: -1, ColAmount: -1,
		ColMethod: -1, ColMemo: -1, ColFlowFilter: -1, ColIsActive: -1,
	}
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if canon, ok := aliases[strings.ToLower(name)]; ok {
			name = canon
		}
		if idx, known := names[name]; known && idx < 0 {
			names[name] = i
		}
	}
	return names
}

func columnsFrom(names map[string]int) Columns {
	return Columns{
		Date:        names[ColDate],
		Time:        names[ColTime],
		Flow:        names[ColFlow],
		Category:    names[ColCategory],
		Subcategory: names[ColSubcategory],
		Description: names[ColDescription],
		Amount:      names[ColAmount],
		Method:      names[ColMethod],
		Memo:        names[ColMemo],
		FlowFilter:  names[ColFlowFilter],
		IsActive:    names[ColIsActive],
	}
}

// Cell returns row[idx] trimmed, or "" when the column is absent or the row
// is short. Loaded rows are frequently ragged.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
