package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	FlowIncome   FlowType = "수입"
	FlowExpense  FlowType = "지출"
	FlowTransfer FlowType = "이체"

	// Unclassified is the placeholder category for rows added without one.
	Unclassified = "미분류"
)

type (
	// FlowType is the transaction direction as stored in the sheet.
	// The persisted value is free text; only the three canonical values
	// participate in aggregation.
	FlowType string

	Date struct {
		time.Time
	}

	// TimeOfDay is an optional time component. Valid is false when the
	// source cell was empty or unparseable; the row stays usable either way.
	TimeOfDay struct {
		Hour   int
		Minute int
		Second int
		Valid  bool
	}

	// Row is one ledger transaction. IsActive is the single in-memory
	// encoding of the persisted numeric flow filter flag; the numeric form
	// exists only at the persistence boundary.
	Row struct {
		Date        Date
		Time        TimeOfDay
		Flow        FlowType
		Category    string
		Subcategory string
		Description string
		Memo        string
		Amount      int64
		Method      string
		IsActive    bool
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
)

// KnownFlows lists the canonical flow vocabulary in display order.
func KnownFlows() []FlowType {
	return []FlowType{FlowExpense, FlowIncome, FlowTransfer}
}

// IsKnown reports whether the flow matches the canonical vocabulary.
func (f FlowType) IsKnown() bool {
	switch f {
	case FlowIncome, FlowExpense, FlowTransfer:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// dateLayouts are tried in order when parsing a raw date cell.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01-02-06",
}

// ParseDate parses a raw date cell. The time portion, if any, is discarded;
// callers that care about time-of-day parse it separately from its own cell.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return NewDate(y, int(m), d), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// String formats the date in the sheet's canonical yyyy-mm-dd form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimeOfDay parses a raw time cell. Unparseable input yields an
// invalid (absent) TimeOfDay, never an error: time is not identity-bearing.
func ParseTimeOfDay(s string) TimeOfDay {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeOfDay{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Valid: true}
		}
	}
	return TimeOfDay{}
}

// String formats the time as HH:MM:SS, or "" when absent.
func (t TimeOfDay) String() string {
	if !t.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Seconds returns the time as seconds since midnight; absent times sort first.
func (t TimeOfDay) Seconds() int {
	if !t.Valid {
		return -1
	}
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Validate checks the minimum a quick-added row must carry.
func (r Row) Validate() error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
