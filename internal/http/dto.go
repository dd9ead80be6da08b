package http

import (
	"fmt"
	"net/url"
	"strings"

	"gagebu/internal/core"
	"gagebu/internal/relation"
	"gagebu/internal/session"
)

// rowDTO is the wire form of one ledger row.
type rowDTO struct {
	ID          int    `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Flow        string `json:"flow"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Description string `json:"description"`
	Memo        string `json:"memo,omitempty"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method,omitempty"`
	Active      bool   `json:"active"`
}

func toRowDTO(r relation.Row) rowDTO {
	return rowDTO{
		ID:          r.ID,
		Date:        r.Date.String(),
		Time:        r.Time.String(),
		Flow:        string(r.Flow),
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Description: r.Description,
		Memo:        r.Memo,
		Amount:      r.Amount,
		Method:      r.Method,
		Active:      r.IsActive,
	}
}

func toRowDTOs(rows []relation.Row) []rowDTO {
	out := make([]rowDTO, len(rows))
	for i, r := range rows {
		out[i] = toRowDTO(r)
	}
	return out
}

func (d rowDTO) toRow() (relation.Row, error) {
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return relation.Row{}, fmt.Errorf("row %d: %w", d.ID, err)
	}
	return relation.Row{
		ID: d.ID,
		Row: core.Row{
			Date:        date,
			Time:        core.ParseTimeOfDay(d.Time),
			Flow:        core.FlowType(d.Flow),
			Category:    d.Category,
			Subcategory: d.Subcategory,
			Description: d.Description,
			Memo:        d.Memo,
			Amount:      d.Amount,
			Method:      d.Method,
			IsActive:    d.Active,
		},
	}, nil
}

// filterDTO is the wire form of a view filter, shared by query parameters
// and save request bodies.
type filterDTO struct {
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Flows      []string `json:"flows,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Search     string   `json:"search,omitempty"`
}

func filterFromQuery(q url.Values) filterDTO {
	return filterDTO{
		From:       q.Get("from"),
		To:         q.Get("to"),
		Flows:      q["flow"],
		Categories: q["category"],
		Search:     q.Get("q"),
	}
}

func (d filterDTO) toFilter() (session.Filter, error) {
	var f session.Filter
	if d.From != "" {
		from, err := core.ParseDate(d.From)
		if err != nil {
			return session.Filter{}, fmt.Errorf("from: %w", err)
		}
		f.From = from
	}
	if d.To != "" {
		to, err := core.ParseDate(d.To)
		if err != nil {
			return session.Filter{}, fmt.Errorf("to: %w", err)
		}
		f.To = to
	}
	for _, flow := range d.Flows {
		f.Flows = append(f.Flows, core.FlowType(flow))
	}
	f.Categories = d.Categories
	f.Search = d.Search
	return f, nil
}

// filterKey renders a filter into a stable cache key fragment.
func filterKey(f session.Filter) string {
	var b strings.Builder
	b.WriteString(f.From.String())
	b.WriteByte('~')
	b.WriteString(f.To.String())
	b.WriteByte('~')
	for _, flow := range f.Flows {
		b.WriteString(string(flow))
		b.WriteByte(',')
	}
	b.WriteByte('~')
	for _, cat := range f.Categories {
		b.WriteString(cat)
		b.WriteByte(',')
	}
	b.WriteByte('~')
	b.WriteString(strings.ToLower(f.Search))
	return b.String()
}
