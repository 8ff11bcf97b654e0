package models

// SummaryNumbers holds the period totals in major currency units.
type SummaryNumbers struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Balance      float64 `json:"balance"`
}

// CategorySummary is one slice of the period's expense breakdown.
// PercentOfExpenses is a ratio in [0, 1]; it is 0 for every category when
// the period has no expenses.
type CategorySummary struct {
	Category          string  `json:"category"`
	Amount            float64 `json:"amount"`
	PercentOfExpenses float64 `json:"percent_of_expenses"`
}

// Summary is the derived monthly view. It is recomputed wholesale from the
// current transaction mirror and selected period; it is never persisted and
// never partially updated.
type Summary struct {
	PeriodLabel string            `json:"period_label"`
	Numbers     SummaryNumbers    `json:"numbers"`
	Categories  []CategorySummary `json:"categories"`
}
