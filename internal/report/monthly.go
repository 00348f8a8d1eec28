package report

import (
	"sort"

	"boutique/internal/core"
)

// FinanceDay carries the daily sums of the ledger's sibling tables: cash
// collected at the till, credits granted and overhead expenses paid.
type FinanceDay struct {
	Date    core.Date
	Cash    core.Money
	Credit  core.Money
	Expense core.Money
}

// MonthSummary reconciles the sales ledger against the till for one month.
// GrossGain comes from the purchase/sale ledger; NetGain is what actually
// landed in the drawer: cash collected + credits - overhead expenses.
type MonthSummary struct {
	Month         string // YYYY-MM
	TotalPurchase core.Money
	TotalSale     core.Money
	GrossGain     core.Money
	Cash          core.Money
	Credits       core.Money
	Expenses      core.Money
	NetGain       core.Money
	// Evolution vs the previous month in the series. The first month has
	// no predecessor, so its percentages are not applicable.
	GrossEvolution Change
	NetEvolution   Change
}

// MonthlySummaries buckets records and finance days by month and computes
// month-over-month evolution. Months are ordered ascending; empty input
// yields an empty slice.
func MonthlySummaries(records []core.PurchaseRecord, finance []FinanceDay) []MonthSummary {
	byMonth := make(map[string]*MonthSummary)

	get := func(month string) *MonthSummary {
		s, ok := byMonth[month]
		if !ok {
			s = &MonthSummary{Month: month}
			byMonth[month] = s
		}
		return s
	}

	for _, r := range records {
		s := get(r.Date.MonthKey())
		s.TotalPurchase.Cents += r.TotalPurchase().Cents
		s.TotalSale.Cents += r.TotalSale().Cents
	}
	for _, f := range finance {
		s := get(f.Date.MonthKey())
		s.Cash.Cents += f.Cash.Cents
		s.Credits.Cents += f.Credit.Cents
		s.Expenses.Cents += f.Expense.Cents
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthSummary, 0, len(months))
	for i, m := range months {
		s := byMonth[m]
		s.GrossGain.Cents = s.TotalSale.Cents - s.TotalPurchase.Cents
		s.NetGain.Cents = s.Cash.Cents + s.Credits.Cents - s.Expenses.Cents
		if i > 0 {
			prev := byMonth[months[i-1]]
			s.GrossEvolution = WeekOverWeek(s.GrossGain, prev.GrossGain)
			s.NetEvolution = WeekOverWeek(s.NetGain, prev.NetGain)
		}
		out = append(out, *s)
	}
	return out
}
