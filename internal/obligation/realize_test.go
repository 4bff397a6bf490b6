package obligation_test

import (
	"errors"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func datePtr(s string) *calendar.Date {
	d := calendar.MustParse(s)
	return &d
}

var _ = Describe("Realize", func() {
	today := calendar.MustParse("2024-06-10")

	Context("recurring expense", func() {
		var ob obligation.Obligation

		BeforeEach(func() {
			categoryID := "cat-1"
			ob = obligation.Obligation{
				ID:             "rec-1",
				OwnerID:        "owner-1",
				Kind:           obligation.KindRecurringExpense,
				CategoryID:     &categoryID,
				Amount:         decPtr("500"),
				Period:         calendar.Monthly,
				NextOccurrence: datePtr("2024-01-31"),
				Note:           "Rent",
			}
		})

		It("creates an expense for today and clamps the next due date", func() {
			entry, next, err := obligation.Realize(ob, today)

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Amount.Equal(dec("500"))).To(BeTrue())
			Expect(entry.OccurredOn).To(Equal(today))
			Expect(entry.Note).To(Equal("Recurring: Rent"))
			Expect(*entry.CategoryID).To(Equal("cat-1"))
			Expect(*entry.ObligationID).To(Equal("rec-1"))
			Expect(next.NextOccurrence.String()).To(Equal("2024-02-29"))
			Expect(next.RunningTotal.IsZero()).To(BeTrue())
		})

		It("does not modify the input obligation", func() {
			_, _, err := obligation.Realize(ob, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(ob.NextOccurrence.String()).To(Equal("2024-01-31"))
		})

		It("advances from the stored due date regardless of today", func() {
			_, first, err := obligation.Realize(ob, today)
			Expect(err).NotTo(HaveOccurred())
			_, second, err := obligation.Realize(first, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.NextOccurrence.String()).To(Equal("2024-03-29"))
		})

		It("honours weekly periods", func() {
			ob.Period = calendar.Weekly
			_, next, err := obligation.Realize(ob, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.NextOccurrence.String()).To(Equal("2024-02-07"))
		})
	})

	Context("loan", func() {
		var loan obligation.Obligation

		BeforeEach(func() {
			loan = obligation.Obligation{
				ID:             "loan-1",
				OwnerID:        "owner-1",
				Kind:           obligation.KindLoan,
				Amount:         decPtr("100"),
				Period:         calendar.Monthly,
				NextOccurrence: datePtr("2024-01-15"),
				RunningTotal:   dec("1200"),
				Status:         obligation.StatusActive,
			}
		})

		It("reduces the balance by the installment", func() {
			entry, next, err := obligation.Realize(loan, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Note).To(BeEmpty())
			Expect(entry.CategoryID).To(BeNil())
			Expect(next.RunningTotal.Equal(dec("1100"))).To(BeTrue())
			Expect(next.Status).To(Equal(obligation.StatusActive))
			Expect(next.NextOccurrence.String()).To(Equal("2024-02-15"))
		})

		It("closes after the twelfth installment of 1200/100", func() {
			current := loan
			for i := 0; i < 12; i++ {
				_, next, err := obligation.Realize(current, today)
				Expect(err).NotTo(HaveOccurred())
				current = next
			}
			Expect(current.RunningTotal.IsZero()).To(BeTrue())
			Expect(current.Status).To(Equal(obligation.StatusClosed))
			Expect(current.NextOccurrence.String()).To(Equal("2025-01-15"))
		})

		It("never lets the balance go negative", func() {
			loan.RunningTotal = dec("40")
			_, next, err := obligation.Realize(loan, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.RunningTotal.IsZero()).To(BeTrue())
			Expect(next.IsClosed()).To(BeTrue())
		})

		It("leaves a missing due date unset", func() {
			loan.NextOccurrence = nil
			_, next, err := obligation.Realize(loan, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.NextOccurrence).To(BeNil())
		})

		It("treats an empty status as active", func() {
			loan.Status = ""
			_, next, err := obligation.Realize(loan, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.Status).To(Equal(obligation.StatusActive))
		})

		It("rejects a closed loan", func() {
			loan.Status = obligation.StatusClosed
			_, _, err := obligation.Realize(loan, today)
			Expect(errors.Is(err, obligation.ErrClosed)).To(BeTrue())
		})

		It("rejects a loan without installment", func() {
			loan.Amount = nil
			_, _, err := obligation.Realize(loan, today)
			Expect(errors.Is(err, obligation.ErrNoPeriodicAmount)).To(BeTrue())
			Expect(internal.IsType(err, internal.ErrorTypeInvalidOperation)).To(BeTrue())
		})
	})

	Context("savings goal", func() {
		It("adds the contribution to the balance", func() {
			goal := obligation.Obligation{
				ID:           "sav-1",
				OwnerID:      "owner-1",
				Kind:         obligation.KindSaving,
				Amount:       decPtr("250.50"),
				Period:       calendar.Monthly,
				RunningTotal: dec("1000"),
				Target:       decPtr("5000"),
			}

			entry, next, err := obligation.Realize(goal, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Amount.Equal(dec("250.50"))).To(BeTrue())
			Expect(next.RunningTotal.Equal(dec("1250.50"))).To(BeTrue())
			Expect(next.Status).To(BeEmpty())
		})

		It("rejects negative contributions", func() {
			goal := obligation.Obligation{Kind: obligation.KindSaving, Amount: decPtr("-1")}
			_, _, err := obligation.Realize(goal, today)
			Expect(errors.Is(err, obligation.ErrNegativeAmount)).To(BeTrue())
		})
	})

	It("rejects unknown kinds", func() {
		_, _, err := obligation.Realize(obligation.Obligation{Kind: "lease", Amount: decPtr("1")}, today)
		Expect(errors.Is(err, obligation.ErrUnsupportedKind)).To(BeTrue())
	})
})
