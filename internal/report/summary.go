package report

import (
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/shopspring/decimal"
)

// SpendingSummary backs the today/week/month/year cards of the dashboard.
type SpendingSummary struct {
	Today          decimal.Decimal `json:"today_total"`
	Week           decimal.Decimal `json:"week_total"`
	Month          decimal.Decimal `json:"month_total"`
	Year           decimal.Decimal `json:"year_total"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
}

// Spending summarises entries relative to today. The category breakdown
// covers the current month.
func Spending(entries []obligation.Entry, names map[string]string, today calendar.Date) SpendingSummary {
	monthStart := calendar.StartOfMonth(today)

	var thisMonth []obligation.Entry
	for _, e := range entries {
		if e.OccurredOn.Between(monthStart, today) {
			thisMonth = append(thisMonth, e)
		}
	}

	return SpendingSummary{
		Today:          SumByPeriod(entries, today, today),
		Week:           SumByPeriod(entries, calendar.StartOfWeek(today), today),
		Month:          SumByPeriod(entries, monthStart, today),
		Year:           SumByPeriod(entries, calendar.StartOfYear(today), today),
		CategoryTotals: SortedCategoryTotals(SumByCategory(thisMonth, names)),
	}
}

type Comparison struct {
	ThisMonth decimal.Decimal `json:"this_month_total"`
	LastMonth decimal.Decimal `json:"last_month_total"`
	// DeltaPercent is nil when last month had no spending.
	DeltaPercent *int64 `json:"delta_percent"`
}

// MonthComparison compares the current month to date with the whole of the
// previous month.
func MonthComparison(entries []obligation.Entry, today calendar.Date) Comparison {
	lastMonth := calendar.MonthRange(calendar.StartOfMonth(today).AddMonths(-1))

	c := Comparison{
		ThisMonth: SumByPeriod(entries, calendar.StartOfMonth(today), today),
		LastMonth: SumByPeriod(entries, lastMonth.Start, lastMonth.End),
	}
	if pct, ok := MonthOverMonthDelta(c.ThisMonth, c.LastMonth); ok {
		c.DeltaPercent = &pct
	}
	return c
}

type LoanSummary struct {
	TotalDebt          decimal.Decimal `json:"total_debt"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	ActiveCount        int             `json:"active_loans_count"`
	Progress           DebtProgress    `json:"progress"`
}

// Loans summarises the active loans; closed loans are ignored.
func Loans(loans []obligation.Obligation, payments []obligation.Entry) LoanSummary {
	var active []obligation.Obligation
	for _, l := range loans {
		if !l.IsClosed() {
			active = append(active, l)
		}
	}

	var s LoanSummary
	for _, l := range active {
		s.TotalDebt = s.TotalDebt.Add(l.RunningTotal)
		if l.Amount != nil {
			s.MonthlyInstallment = s.MonthlyInstallment.Add(*l.Amount)
		}
	}
	s.ActiveCount = len(active)
	s.Progress = DebtReductionProgress(active, payments)
	return s
}

type SavingsSummary struct {
	TotalSavings        decimal.Decimal `json:"total_savings"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	Count               int             `json:"savings_count"`
}

func Savings(goals []obligation.Obligation) SavingsSummary {
	var s SavingsSummary
	for _, g := range goals {
		s.TotalSavings = s.TotalSavings.Add(g.RunningTotal)
		if g.Amount != nil {
			s.MonthlyContribution = s.MonthlyContribution.Add(*g.Amount)
		}
	}
	s.Count = len(goals)
	return s
}
