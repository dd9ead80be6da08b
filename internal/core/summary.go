package core

// Summary holds the headline figures for a set of rows. Expenses are stored
// as negative amounts, so Net is a plain sum of the two.
type Summary struct {
	Income   int64
	Expense  int64
	Net      int64
	Other    int64
	Active   int
	Inactive int
}

// Summarize computes totals over active rows, split by flow. Inactive rows
// are excluded from the headline figures and accumulated into Other so the
// caller can show what the filter flag is hiding.
func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		if !r.IsActive {
			s.Inactive++
			s.Other += r.Amount
			continue
		}
		s.Active++
		switch r.Flow {
		case FlowIncome:
			s.Income += r.Amount
		case FlowExpense:
			s.Expense += r.Amount
		}
	}
	s.Net = s.Income + s.Expense
	return s
}
