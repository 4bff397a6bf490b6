package obligation_test

import (
	"context"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("loan status", func() {
	today := calendar.MustParse("2024-03-05")

	newLoan := func() obligation.Obligation {
		return obligation.Obligation{
			ID:             "loan-1",
			OwnerID:        "owner-1",
			Kind:           obligation.KindLoan,
			Amount:         decPtr("100"),
			Period:         calendar.Monthly,
			NextOccurrence: datePtr("2024-01-31"),
			RunningTotal:   dec("1200"),
			Status:         obligation.StatusActive,
		}
	}

	It("closes once the twelfth installment pays off the balance", func() {
		ob := newLoan()
		for i := 0; i < 12; i++ {
			var err error
			_, ob, err = obligation.Realize(ob, today)
			Expect(err).NotTo(HaveOccurred())
			if i < 11 {
				Expect(ob.Status).To(Equal(obligation.StatusActive))
			}
		}

		Expect(ob.RunningTotal.IsZero()).To(BeTrue())
		Expect(ob.Status).To(Equal(obligation.StatusClosed))
	})

	It("refuses to realize a closed loan", func() {
		ob := newLoan()
		ob.RunningTotal = dec("0")
		ob.Status = obligation.StatusClosed

		_, _, err := obligation.Realize(ob, today)
		Expect(err).To(MatchError(obligation.ErrClosed))
	})

	It("treats a loan without a status as active", func() {
		ob := newLoan()
		ob.Status = ""
		ob.RunningTotal = dec("100")

		_, next, err := obligation.Realize(ob, today)
		Expect(err).NotTo(HaveOccurred())
		Expect(next.Status).To(Equal(obligation.StatusClosed))
	})
})

var _ = Describe("SyncStatus", func() {
	ctx := context.Background()

	It("closes a loan edited down to zero", func() {
		ob := &obligation.Obligation{Kind: obligation.KindLoan, Status: obligation.StatusActive}
		Expect(obligation.SyncStatus(ctx, ob)).To(Succeed())
		Expect(ob.Status).To(Equal(obligation.StatusClosed))
	})

	It("keeps a loan with a balance active", func() {
		ob := &obligation.Obligation{Kind: obligation.KindLoan, Status: obligation.StatusActive, RunningTotal: dec("10")}
		Expect(obligation.SyncStatus(ctx, ob)).To(Succeed())
		Expect(ob.Status).To(Equal(obligation.StatusActive))
	})

	It("refuses to give a closed loan a balance", func() {
		ob := &obligation.Obligation{Kind: obligation.KindLoan, Status: obligation.StatusClosed, RunningTotal: dec("10")}
		Expect(obligation.SyncStatus(ctx, ob)).To(MatchError(obligation.ErrReopen))
	})

	It("ignores kinds that never close", func() {
		ob := &obligation.Obligation{Kind: obligation.KindSaving}
		Expect(obligation.SyncStatus(ctx, ob)).To(Succeed())
		Expect(ob.Status).To(BeEmpty())
	})
})
