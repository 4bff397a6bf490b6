package postgres_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	savingDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/saving"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/sqlitetest"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/saving"
	savingPostgres "github.com/frahmantamala/vesta-ledger/internal/saving/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestSavingPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Saving Postgres Suite")
}

var _ = Describe("Saving PostgreSQL Repository", func() {
	var (
		db    *gorm.DB
		repo  *savingPostgres.SavingRepository
		ctx   context.Context
		row   *savingDatamodel.Saving
		today = calendar.MustParse("2024-03-05")
	)

	BeforeEach(func() {
		var err error
		db, err = sqlitetest.Open()
		Expect(err).NotTo(HaveOccurred())
		repo = savingPostgres.NewSavingRepository(db)
		ctx = context.Background()

		next := calendar.MustParse("2024-03-01").Time()
		row = &savingDatamodel.Saving{
			UserID:                "owner-1",
			Name:                  "House",
			Type:                  "savings_account",
			CurrentAmount:         decimal.RequireFromString("100"),
			TargetAmount:          money.ToNull(money.Ptr(decimal.RequireFromString("1000"))),
			RecurringContribution: money.ToNull(money.Ptr(decimal.RequireFromString("250"))),
			NextContributionDate:  &next,
			Version:               1,
		}
		Expect(repo.Create(ctx, row)).To(Succeed())
	})

	AfterEach(func() {
		Expect(sqlitetest.Close(db)).To(Succeed())
	})

	contribute := func(entryID string, prev *obligation.Obligation) error {
		entry, next, err := obligation.Realize(*prev, today)
		Expect(err).NotTo(HaveOccurred())
		entry.ID = entryID
		next.Version = prev.Version + 1
		return repo.Commit(ctx, &entry, prev, &next)
	}

	It("records a contribution and grows the balance", func() {
		prev, err := repo.FindObligation(ctx, "owner-1", row.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(contribute("11111111-1111-1111-1111-111111111111", prev)).To(Succeed())

		stored, err := repo.GetByID(ctx, "owner-1", row.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.CurrentAmount.String()).To(Equal("350"))
		Expect(calendar.FromTime(*stored.NextContributionDate).String()).To(Equal("2024-04-01"))
		Expect(stored.Version).To(Equal(int64(2)))

		contributions, err := repo.ListContributions(ctx, "owner-1", saving.ContributionFilter{SavingID: &row.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(contributions).To(HaveLen(1))
		Expect(contributions[0].Amount.String()).To(Equal("250"))
	})

	It("rolls back a contribution committed from a stale read", func() {
		prev, err := repo.FindObligation(ctx, "owner-1", row.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(contribute("11111111-1111-1111-1111-111111111111", prev)).To(Succeed())

		Expect(contribute("22222222-2222-2222-2222-222222222222", prev)).To(MatchError(internal.ErrConcurrentUpdate))

		contributions, err := repo.ListContributions(ctx, "owner-1", saving.ContributionFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(contributions).To(HaveLen(1))
	})

	It("hides goals of other owners", func() {
		_, err := repo.GetByID(ctx, "owner-2", row.ID)
		Expect(err).To(MatchError(saving.ErrNotFound))

		_, err = repo.FindObligation(ctx, "owner-2", row.ID)
		Expect(err).To(MatchError(obligation.ErrNotFound))

		Expect(repo.Delete(ctx, "owner-2", row.ID)).To(MatchError(saving.ErrNotFound))
	})

	It("keeps contributions after the goal is deleted", func() {
		prev, err := repo.FindObligation(ctx, "owner-1", row.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(contribute("11111111-1111-1111-1111-111111111111", prev)).To(Succeed())
		Expect(repo.Delete(ctx, "owner-1", row.ID)).To(Succeed())

		contributions, err := repo.ListContributions(ctx, "owner-1", saving.ContributionFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(contributions).To(HaveLen(1))
	})

	It("rejects a stale edit", func() {
		stale := *row
		row.Name = "Bigger house"
		Expect(repo.Update(ctx, row)).To(Succeed())
		Expect(repo.Update(ctx, &stale)).To(MatchError(internal.ErrConcurrentUpdate))
	})
})
