package services

import (
	"fmt"
	"sort"
	"time"

	"dindin/internal/models"
)

// periodFormat is the YYYY-MM aggregation granularity.
const periodFormat = "2006-01"

// ptBRMonths are the period label month names.
var ptBRMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// BuildSummary computes the monthly summary for a period from the full
// transaction set. It is pure and side-effect-free: callers re-run it
// wholesale on every change to the transaction mirror or the selected
// period, never patching a previous result.
//
// Income transactions feed total income; expense and loan_payment both feed
// total expense — loan payments are counted as expenses on purpose.
// Amounts accumulate in integer cents and convert to major units only at
// the end.
func BuildSummary(transactions []models.Transaction, period string) models.Summary {
	var incomeCents, expenseCents int64
	categoryCents := make(map[string]int64)

	for _, t := range transactions {
		if t.MonthReference != period {
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			incomeCents += t.AmountCents
		case models.TransactionTypeExpense, models.TransactionTypeLoanPayment:
			expenseCents += t.AmountCents
			category := t.Category
			if category == "" {
				category = models.FallbackCategory
			}
			categoryCents[category] += t.AmountCents
		}
	}

	categories := make([]models.CategorySummary, 0, len(categoryCents))
	for category, cents := range categoryCents {
		percent := 0.0
		if expenseCents > 0 {
			percent = float64(cents) / float64(expenseCents)
		}
		categories = append(categories, models.CategorySummary{
			Category:          category,
			Amount:            float64(cents) / 100,
			PercentOfExpenses: percent,
		})
	}
	// Largest slice first; name breaks ties so output is deterministic.
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Amount != categories[j].Amount {
			return categories[i].Amount > categories[j].Amount
		}
		return categories[i].Category < categories[j].Category
	})

	return models.Summary{
		PeriodLabel: PeriodLabel(period),
		Numbers: models.SummaryNumbers{
			TotalIncome:  float64(incomeCents) / 100,
			TotalExpense: float64(expenseCents) / 100,
			Balance:      float64(incomeCents-expenseCents) / 100,
		},
		Categories: categories,
	}
}

// PeriodLabel renders a period as a human-readable pt-BR label, e.g.
// "março de 2024". Unparseable periods fall back to the raw string.
func PeriodLabel(period string) string {
	t, err := time.Parse(periodFormat, period)
	if err != nil {
		return period
	}
	return fmt.Sprintf("%s de %d", ptBRMonths[t.Month()-1], t.Year())
}

// CurrentPeriod returns the current calendar month in YYYY-MM.
func CurrentPeriod() string {
	return time.Now().UTC().Format(periodFormat)
}

// IsValidPeriod reports whether s is a YYYY-MM period.
func IsValidPeriod(s string) bool {
	_, err := time.Parse(periodFormat, s)
	return err == nil
}

// ShiftPeriod moves a period forward or backward by whole months.
func ShiftPeriod(period string, offset int) (string, error) {
	t, err := time.Parse(periodFormat, period)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, offset, 0).Format(periodFormat), nil
}
