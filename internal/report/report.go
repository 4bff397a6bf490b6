// Package report folds ledger entries and obligations into the summaries
// shown on dashboards. Every function here is pure.
package report

import (
	"sort"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/shopspring/decimal"
)

const (
	// UncategorizedLabel names entries whose category no longer resolves.
	UncategorizedLabel = "Uncategorized"
	// DeletedLabel names entries whose loan or savings goal was deleted.
	DeletedLabel = "Deleted"
)

var hundred = decimal.NewFromInt(100)

// Label resolves an optional weak reference, falling back when it is unset
// or points at a record that no longer exists.
func Label(ref *string, names map[string]string, fallback string) string {
	if ref == nil {
		return fallback
	}
	if name, ok := names[*ref]; ok && name != "" {
		return name
	}
	return fallback
}

// SumByPeriod totals entries with start <= occurred_on <= end.
func SumByPeriod(entries []obligation.Entry, start, end calendar.Date) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.OccurredOn.Between(start, end) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// DayTotal is one point of a daily spending series.
type DayTotal struct {
	Date  calendar.Date   `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// Daily totals entries per day from start to end inclusive. Days without
// entries are present with a zero total.
func Daily(entries []obligation.Entry, start, end calendar.Date) []DayTotal {
	if end.Before(start) {
		return []DayTotal{}
	}
	byDay := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.OccurredOn.Between(start, end) {
			key := e.OccurredOn.String()
			byDay[key] = byDay[key].Add(e.Amount)
		}
	}

	var out []DayTotal
	for d := start; !d.After(end); d = d.AddDays(1) {
		out = append(out, DayTotal{Date: d, Total: byDay[d.String()]})
	}
	return out
}

// SumByCategory totals entries per resolved category name.
func SumByCategory(entries []obligation.Entry, names map[string]string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		label := Label(e.CategoryID, names, UncategorizedLabel)
		totals[label] = totals[label].Add(e.Amount)
	}
	return totals
}

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// SortedCategoryTotals orders a breakdown by total descending, then name.
func SortedCategoryTotals(totals map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type BudgetStatus struct {
	Spent      decimal.Decimal `json:"spent"`
	Percentage int64           `json:"percentage"`
	IsOver     bool            `json:"is_over"`
}

// BudgetProgress compares a category's spend with its budget. The percentage
// is capped at 100; a zero budget reads as 100% once anything is spent.
func BudgetProgress(budget, spent decimal.Decimal) BudgetStatus {
	status := BudgetStatus{Spent: spent, IsOver: spent.GreaterThan(budget)}
	if pct, ok := money.Percent(spent, budget); ok {
		status.Percentage = min(100, pct)
	} else if spent.IsPositive() {
		status.Percentage = 100
	}
	return status
}

type DebtProgress struct {
	TotalInitial decimal.Decimal `json:"total_initial"`
	TotalCurrent decimal.Decimal `json:"total_current"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	// Percent is nil when there is no initial debt to measure against.
	Percent *int64 `json:"percent"`
}

// DebtReductionProgress measures how much of the original principal has been
// repaid. A loan without a recorded initial amount is reconstructed as its
// current balance plus all payments made against it.
func DebtReductionProgress(loans []obligation.Obligation, payments []obligation.Entry) DebtProgress {
	paidByLoan := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if p.ObligationID == nil {
			continue
		}
		paidByLoan[*p.ObligationID] = paidByLoan[*p.ObligationID].Add(p.Amount)
	}

	var progress DebtProgress
	for _, loan := range loans {
		initial := loan.RunningTotal.Add(paidByLoan[loan.ID])
		if loan.InitialAmount != nil {
			initial = *loan.InitialAmount
		}
		progress.TotalInitial = progress.TotalInitial.Add(initial)
		progress.TotalCurrent = progress.TotalCurrent.Add(loan.RunningTotal)
	}

	progress.TotalPaid = money.ClampZero(progress.TotalInitial.Sub(progress.TotalCurrent))
	if pct, ok := money.Percent(progress.TotalPaid, progress.TotalInitial); ok {
		progress.Percent = &pct
	}
	return progress
}

// SavingsProgress returns min(100, round(current/target*100)). ok is false
// when the goal has no positive target.
func SavingsProgress(goal obligation.Obligation) (pct int64, ok bool) {
	if goal.Target == nil {
		return 0, false
	}
	pct, ok = money.Percent(goal.RunningTotal, *goal.Target)
	if !ok {
		return 0, false
	}
	return min(100, pct), true
}

// MonthOverMonthDelta returns round((thisMonth/lastMonth - 1) * 100). ok is
// false when last month has nothing to compare against.
func MonthOverMonthDelta(thisMonth, lastMonth decimal.Decimal) (pct int64, ok bool) {
	if !lastMonth.IsPositive() {
		return 0, false
	}
	ratio := thisMonth.Div(lastMonth).Sub(decimal.NewFromInt(1)).Mul(hundred)
	return money.RoundHalfUp(ratio), true
}
