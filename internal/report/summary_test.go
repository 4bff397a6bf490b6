package report_test

import (
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("summaries", func() {
	today := calendar.MustParse("2024-05-15") // Wednesday

	entries := []obligation.Entry{
		entry("5", "2024-05-15", ref("food")),
		entry("10", "2024-05-13", ref("food")),
		entry("20", "2024-05-02", ref("fun")),
		entry("40", "2024-04-20", ref("fun")),
		entry("80", "2024-01-03", nil),
		entry("160", "2023-12-31", nil),
	}
	names := map[string]string{"food": "Food", "fun": "Fun"}

	It("computes the dashboard cards", func() {
		s := report.Spending(entries, names, today)
		Expect(s.Today.Equal(dec("5"))).To(BeTrue())
		Expect(s.Week.Equal(dec("15"))).To(BeTrue())
		Expect(s.Month.Equal(dec("35"))).To(BeTrue())
		Expect(s.Year.Equal(dec("155"))).To(BeTrue())
		Expect(s.CategoryTotals).To(HaveLen(2))
		Expect(s.CategoryTotals[0].Category).To(Equal("Fun"))
	})

	It("compares with the whole previous month", func() {
		c := report.MonthComparison(entries, today)
		Expect(c.ThisMonth.Equal(dec("35"))).To(BeTrue())
		Expect(c.LastMonth.Equal(dec("40"))).To(BeTrue())
		Expect(*c.DeltaPercent).To(Equal(int64(-12)))
	})

	It("leaves the delta empty without history", func() {
		c := report.MonthComparison(entries[:1], today)
		Expect(c.DeltaPercent).To(BeNil())
	})

	It("summarises only active loans", func() {
		emi := dec("100")
		loans := []obligation.Obligation{
			{ID: "a", RunningTotal: dec("900"), Amount: &emi, Status: obligation.StatusActive},
			{ID: "b", RunningTotal: dec("0"), Amount: &emi, Status: obligation.StatusClosed},
		}
		payments := []obligation.Entry{{ObligationID: ref("a"), Amount: dec("100")}}

		s := report.Loans(loans, payments)
		Expect(s.ActiveCount).To(Equal(1))
		Expect(s.TotalDebt.Equal(dec("900"))).To(BeTrue())
		Expect(s.MonthlyInstallment.Equal(dec("100"))).To(BeTrue())
		Expect(*s.Progress.Percent).To(Equal(int64(10)))
	})

	It("summarises savings goals", func() {
		contribution := dec("50")
		s := report.Savings([]obligation.Obligation{
			{RunningTotal: dec("100"), Amount: &contribution},
			{RunningTotal: dec("25")},
		})
		Expect(s.Count).To(Equal(2))
		Expect(s.TotalSavings.Equal(dec("125"))).To(BeTrue())
		Expect(s.MonthlyContribution.Equal(dec("50"))).To(BeTrue())
	})
})
