// Package core holds the ledger's value types: rows, dates, flow types and
// amount parsing. Everything here is pure; I/O lives in the table adapters.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts raw amount text to a signed whole-unit value.
//
// The UI layer formats amounts with grouping commas ("12,345"), and the
// sheet may carry spreadsheet-formatted numbers ("3500.0"), so both are
// accepted. Returns ok=false when the text is not numeric; callers decide
// the policy for that case (the normalizer coerces to zero and counts it).
func ParseAmount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	// Spreadsheet numerics come back as floats ("3500.0", "-1.25e3").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return int64(f - 0.5), true
		}
		return int64(f + 0.5), true
	}
	return 0, false
}

// FormatAmount renders a value with grouping commas for display ("-12,345").
func FormatAmount(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
