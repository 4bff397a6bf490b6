package report_test

import (
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ref(s string) *string {
	return &s
}

func entry(amount, on string, category *string) obligation.Entry {
	return obligation.Entry{Amount: dec(amount), OccurredOn: calendar.MustParse(on), CategoryID: category}
}

var _ = Describe("aggregation", func() {
	Describe("SumByPeriod", func() {
		It("includes both bounds", func() {
			entries := []obligation.Entry{
				entry("10", "2024-03-01", nil),
				entry("20", "2024-03-15", nil),
				entry("30", "2024-03-31", nil),
				entry("40", "2024-04-01", nil),
			}
			total := report.SumByPeriod(entries, calendar.MustParse("2024-03-01"), calendar.MustParse("2024-03-31"))
			Expect(total.Equal(dec("60"))).To(BeTrue())
		})

		It("is zero for no entries", func() {
			Expect(report.SumByPeriod(nil, calendar.MustParse("2024-01-01"), calendar.MustParse("2024-12-31")).IsZero()).To(BeTrue())
		})
	})

	Describe("Daily", func() {
		It("fills every day in the span and drops entries outside it", func() {
			entries := []obligation.Entry{
				entry("5", "2024-02-28", nil),
				entry("10", "2024-03-01", ref("food")),
				entry("2.50", "2024-03-01", nil),
				entry("7", "2024-03-03", nil),
				entry("99", "2024-03-04", nil),
			}

			series := report.Daily(entries, calendar.MustParse("2024-03-01"), calendar.MustParse("2024-03-03"))
			Expect(series).To(HaveLen(3))
			Expect(series[0].Date.String()).To(Equal("2024-03-01"))
			Expect(series[0].Total.Equal(dec("12.50"))).To(BeTrue())
			Expect(series[1].Date.String()).To(Equal("2024-03-02"))
			Expect(series[1].Total.IsZero()).To(BeTrue())
			Expect(series[2].Total.Equal(dec("7"))).To(BeTrue())
		})

		It("crosses a leap day", func() {
			series := report.Daily(nil, calendar.MustParse("2024-02-28"), calendar.MustParse("2024-03-01"))
			Expect(series).To(HaveLen(3))
			Expect(series[1].Date.String()).To(Equal("2024-02-29"))
		})

		It("is empty when the span is inverted", func() {
			Expect(report.Daily(nil, calendar.MustParse("2024-03-02"), calendar.MustParse("2024-03-01"))).To(BeEmpty())
		})
	})

	Describe("SumByCategory", func() {
		It("groups by name and falls back for dangling references", func() {
			names := map[string]string{"food": "Food", "rent": "Rent"}
			entries := []obligation.Entry{
				entry("12.50", "2024-03-01", ref("food")),
				entry("7.50", "2024-03-02", ref("food")),
				entry("900", "2024-03-03", ref("rent")),
				entry("5", "2024-03-04", ref("deleted-category")),
				entry("3", "2024-03-05", nil),
			}

			totals := report.SumByCategory(entries, names)
			Expect(totals).To(HaveLen(3))
			Expect(totals["Food"].Equal(dec("20"))).To(BeTrue())
			Expect(totals["Rent"].Equal(dec("900"))).To(BeTrue())
			Expect(totals[report.UncategorizedLabel].Equal(dec("8"))).To(BeTrue())

			sorted := report.SortedCategoryTotals(totals)
			Expect(sorted[0].Category).To(Equal("Rent"))
			Expect(sorted[2].Category).To(Equal(report.UncategorizedLabel))
		})
	})

	Describe("BudgetProgress", func() {
		It("caps at 100 and flags overspending", func() {
			status := report.BudgetProgress(dec("5000"), dec("5500"))
			Expect(status.Percentage).To(Equal(int64(100)))
			Expect(status.IsOver).To(BeTrue())
		})

		It("rounds half up", func() {
			status := report.BudgetProgress(dec("200"), dec("25"))
			Expect(status.Percentage).To(Equal(int64(13)))
			Expect(status.IsOver).To(BeFalse())
		})

		It("is not over when spend equals the budget", func() {
			status := report.BudgetProgress(dec("100"), dec("100"))
			Expect(status.Percentage).To(Equal(int64(100)))
			Expect(status.IsOver).To(BeFalse())
		})

		It("handles a zero budget", func() {
			Expect(report.BudgetProgress(decimal.Zero, decimal.Zero).Percentage).To(Equal(int64(0)))
			status := report.BudgetProgress(decimal.Zero, dec("1"))
			Expect(status.Percentage).To(Equal(int64(100)))
			Expect(status.IsOver).To(BeTrue())
		})
	})

	Describe("DebtReductionProgress", func() {
		It("is not applicable without loans", func() {
			progress := report.DebtReductionProgress(nil, nil)
			Expect(progress.Percent).To(BeNil())
			Expect(progress.TotalPaid.IsZero()).To(BeTrue())
		})

		It("uses the recorded initial amount", func() {
			initial := dec("1000")
			loans := []obligation.Obligation{{ID: "a", RunningTotal: dec("750"), InitialAmount: &initial}}
			progress := report.DebtReductionProgress(loans, nil)
			Expect(progress.TotalPaid.Equal(dec("250"))).To(BeTrue())
			Expect(*progress.Percent).To(Equal(int64(25)))
		})

		It("reconstructs the initial amount from payments", func() {
			loans := []obligation.Obligation{{ID: "a", RunningTotal: dec("600")}}
			payments := []obligation.Entry{
				{ObligationID: ref("a"), Amount: dec("200")},
				{ObligationID: ref("a"), Amount: dec("200")},
				{ObligationID: ref("gone"), Amount: dec("999")},
				{Amount: dec("1")},
			}
			progress := report.DebtReductionProgress(loans, payments)
			Expect(progress.TotalInitial.Equal(dec("1000"))).To(BeTrue())
			Expect(progress.TotalPaid.Equal(dec("400"))).To(BeTrue())
			Expect(*progress.Percent).To(Equal(int64(40)))
		})

		It("never reports negative repayment", func() {
			initial := dec("100")
			loans := []obligation.Obligation{{ID: "a", RunningTotal: dec("150"), InitialAmount: &initial}}
			progress := report.DebtReductionProgress(loans, nil)
			Expect(progress.TotalPaid.IsZero()).To(BeTrue())
			Expect(*progress.Percent).To(Equal(int64(0)))
		})
	})

	Describe("SavingsProgress", func() {
		It("caps at 100", func() {
			target := dec("1000")
			pct, ok := report.SavingsProgress(obligation.Obligation{RunningTotal: dec("1500"), Target: &target})
			Expect(ok).To(BeTrue())
			Expect(pct).To(Equal(int64(100)))
		})

		It("is not applicable without a positive target", func() {
			_, ok := report.SavingsProgress(obligation.Obligation{RunningTotal: dec("10")})
			Expect(ok).To(BeFalse())

			zero := decimal.Zero
			_, ok = report.SavingsProgress(obligation.Obligation{RunningTotal: dec("10"), Target: &zero})
			Expect(ok).To(BeFalse())
		})
	})

	Describe("MonthOverMonthDelta", func() {
		It("is not applicable when last month is zero", func() {
			_, ok := report.MonthOverMonthDelta(dec("800"), decimal.Zero)
			Expect(ok).To(BeFalse())
		})

		It("reports increases and decreases", func() {
			pct, ok := report.MonthOverMonthDelta(dec("1200"), dec("1000"))
			Expect(ok).To(BeTrue())
			Expect(pct).To(Equal(int64(20)))

			pct, _ = report.MonthOverMonthDelta(dec("750"), dec("1000"))
			Expect(pct).To(Equal(int64(-25)))
		})
	})

	Describe("Label", func() {
		It("falls back for unset and unknown references", func() {
			names := map[string]string{"l1": "Car loan"}
			Expect(report.Label(ref("l1"), names, report.DeletedLabel)).To(Equal("Car loan"))
			Expect(report.Label(ref("l2"), names, report.DeletedLabel)).To(Equal(report.DeletedLabel))
			Expect(report.Label(nil, names, report.DeletedLabel)).To(Equal(report.DeletedLabel))
		})
	})
})
