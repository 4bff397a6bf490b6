package loan_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	loanDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/loan"
	"github.com/frahmantamala/vesta-ledger/internal/export"
	"github.com/frahmantamala/vesta-ledger/internal/loan"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestLoan(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Loan Suite")
}

// memoryRepo backs both the service and the engine.
type memoryRepo struct {
	loans    []*loanDatamodel.Loan
	payments []*loanDatamodel.LoanPayment

	// failReadsAfterCommit makes every read after the next commit fail.
	failReadsAfterCommit bool
	readErr              error
}

func (m *memoryRepo) find(ownerID, id string) (*loanDatamodel.Loan, int) {
	for i, l := range m.loans {
		if l.ID == id && l.UserID == ownerID {
			return l, i
		}
	}
	return nil, -1
}

func (m *memoryRepo) Create(_ context.Context, row *loanDatamodel.Loan) error {
	row.ID = "loan-" + string(rune('a'+len(m.loans)))
	copied := *row
	m.loans = append(m.loans, &copied)
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, ownerID, id string) (*loanDatamodel.Loan, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	row, _ := m.find(ownerID, id)
	if row == nil {
		return nil, loan.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *memoryRepo) Update(_ context.Context, row *loanDatamodel.Loan) error {
	stored, i := m.find(row.UserID, row.ID)
	if stored == nil || stored.Version != row.Version {
		return internal.ErrConcurrentUpdate
	}
	row.Version++
	copied := *row
	m.loans[i] = &copied
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, ownerID, id string) error {
	_, i := m.find(ownerID, id)
	if i < 0 {
		return loan.ErrNotFound
	}
	m.loans = append(m.loans[:i], m.loans[i+1:]...)
	return nil
}

func (m *memoryRepo) List(_ context.Context, ownerID string, status *obligation.Status) ([]*loanDatamodel.Loan, error) {
	var out []*loanDatamodel.Loan
	for _, l := range m.loans {
		if l.UserID == ownerID && (status == nil || l.Status == string(*status)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListPayments(_ context.Context, ownerID string, f loan.PaymentFilter) ([]*loanDatamodel.LoanPayment, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []*loanDatamodel.LoanPayment
	for _, p := range m.payments {
		if p.UserID != ownerID || !f.Contains(calendar.FromTime(p.PaymentDate)) {
			continue
		}
		if f.LoanID != nil && (p.LoanID == nil || *p.LoanID != *f.LoanID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryRepo) FindObligation(_ context.Context, ownerID, id string) (*obligation.Obligation, error) {
	row, _ := m.find(ownerID, id)
	if row == nil {
		return nil, obligation.ErrNotFound
	}
	return loan.ToObligation(row), nil
}

func (m *memoryRepo) Commit(_ context.Context, entry *obligation.Entry, prev, next *obligation.Obligation) error {
	row, _ := m.find(prev.OwnerID, prev.ID)
	if row.Version != prev.Version {
		return internal.ErrConcurrentUpdate
	}
	m.payments = append(m.payments, loan.PaymentFromEntry(entry))
	row.TotalAmount = next.RunningTotal
	row.Status = string(next.Status)
	row.NextDueDate = calendar.TimePtr(next.NextOccurrence)
	row.Version = next.Version
	if m.failReadsAfterCommit {
		m.readErr = errors.New("connection reset")
	}
	return nil
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int { return &n }

func date(s string) *calendar.Date {
	d := calendar.MustParse(s)
	return &d
}

var _ = Describe("Loan Service", func() {
	var (
		repo    *memoryRepo
		service *loan.Service
		ctx     context.Context
		today   = calendar.MustParse("2024-03-05")
	)

	BeforeEach(func() {
		repo = &memoryRepo{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		clock := func() calendar.Date { return today }

		engine := obligation.NewEngine(nil, clock, logger)
		engine.Register(obligation.KindLoan, repo)

		service = loan.NewService(repo, engine, clock, logger)
		ctx = internal.ContextWithUserID(context.Background(), "owner-1")
	})

	create := func(dto loan.CreateLoanDTO) *loan.Loan {
		created, err := service.Create(ctx, dto)
		Expect(err).NotTo(HaveOccurred())
		return created
	}

	Describe("Create", func() {
		It("derives the total from EMI and duration", func() {
			created := create(loan.CreateLoanDTO{
				Name:             "Car",
				RecurringPayment: amount("100"),
				Duration:         intPtr(12),
			})

			Expect(created.TotalAmount.String()).To(Equal("1200"))
			Expect(created.Type).To(Equal(loan.TypeBank))
			Expect(created.Status).To(Equal(obligation.StatusActive))
		})

		It("keeps an explicit total", func() {
			created := create(loan.CreateLoanDTO{
				Name:             "Phone",
				TotalAmount:      amount("900"),
				RecurringPayment: amount("100"),
				Duration:         intPtr(12),
			})
			Expect(created.TotalAmount.String()).To(Equal("900"))
		})

		It("rejects an unknown type", func() {
			_, err := service.Create(ctx, loan.CreateLoanDTO{Name: "X", Type: "pawn", TotalAmount: amount("1")})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("closes a loan created with nothing left to pay", func() {
			created := create(loan.CreateLoanDTO{Name: "Settled", TotalAmount: amount("0"), RecurringPayment: amount("10")})
			Expect(created.Status).To(Equal(obligation.StatusClosed))

			_, err := service.Pay(ctx, created.ID, loan.PaymentDTO{})
			Expect(err).To(MatchError(obligation.ErrClosed))
			Expect(repo.payments).To(BeEmpty())
		})

		It("requires a total when it cannot be derived", func() {
			_, err := service.Create(ctx, loan.CreateLoanDTO{Name: "X", RecurringPayment: amount("10")})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Pay", func() {
		It("pays a 1200 loan off in twelve installments, closes it and keeps the clamped day", func() {
			created := create(loan.CreateLoanDTO{
				Name:             "Car",
				TotalAmount:      amount("1200"),
				RecurringPayment: amount("100"),
				Duration:         intPtr(12),
				NextDueDate:      date("2024-01-31"),
			})

			var result *loan.PaymentResult
			for i := 0; i < 12; i++ {
				var err error
				result, err = service.Pay(ctx, created.ID, loan.PaymentDTO{})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(result.Loan.TotalAmount.IsZero()).To(BeTrue())
			Expect(result.Loan.Status).To(Equal(obligation.StatusClosed))
			Expect(result.Loan.MonthsPaid).To(Equal(12))
			// Jan 31 clamps to Feb 29 and every later step starts from the 29th.
			Expect(result.Loan.NextDueDate.String()).To(Equal("2025-01-29"))
			Expect(result.Payment.PaymentDate).To(Equal(today))
			Expect(result.Payment.LoanName).To(Equal("Car"))

			_, err := service.Pay(ctx, created.ID, loan.PaymentDTO{})
			Expect(err).To(MatchError(obligation.ErrClosed))
			Expect(repo.payments).To(HaveLen(12))
		})

		It("reports a committed payment even when reads fail afterwards", func() {
			created := create(loan.CreateLoanDTO{Name: "Car", TotalAmount: amount("300"), RecurringPayment: amount("100")})
			repo.failReadsAfterCommit = true

			result, err := service.Pay(ctx, created.ID, loan.PaymentDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Loan.TotalAmount.String()).To(Equal("200"))
			Expect(result.Loan.Version).To(Equal(int64(2)))
			Expect(result.Loan.MonthsPaid).To(Equal(1))
			Expect(result.Payment.LoanName).To(Equal("Car"))
			Expect(repo.payments).To(HaveLen(1))
		})

		It("never drives the balance below zero", func() {
			created := create(loan.CreateLoanDTO{Name: "Card", TotalAmount: amount("50"), RecurringPayment: amount("80")})

			result, err := service.Pay(ctx, created.ID, loan.PaymentDTO{Note: " last "})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Loan.TotalAmount.IsZero()).To(BeTrue())
			Expect(result.Loan.Status).To(Equal(obligation.StatusClosed))
			Expect(result.Payment.Note).To(Equal("last"))
		})

		It("refuses a loan without an EMI", func() {
			created := create(loan.CreateLoanDTO{Name: "Family", TotalAmount: amount("500")})

			_, err := service.Pay(ctx, created.ID, loan.PaymentDTO{})
			Expect(err).To(MatchError(obligation.ErrNoPeriodicAmount))
			Expect(repo.payments).To(BeEmpty())
		})

		It("reports unknown loans as not found", func() {
			_, err := service.Pay(ctx, "missing", loan.PaymentDTO{})
			Expect(err).To(MatchError(loan.ErrNotFound))
		})
	})

	Describe("Update", func() {
		It("closes a loan whose balance is edited to zero", func() {
			created := create(loan.CreateLoanDTO{Name: "Car", TotalAmount: amount("100")})

			updated, err := service.Update(ctx, created.ID, loan.UpdateLoanDTO{TotalAmount: amount("0")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(obligation.StatusClosed))
			Expect(updated.Version).To(Equal(int64(2)))

			_, err = service.Update(ctx, created.ID, loan.UpdateLoanDTO{TotalAmount: amount("10")})
			Expect(err).To(MatchError(obligation.ErrReopen))
		})

		It("rejects a blank name", func() {
			created := create(loan.CreateLoanDTO{Name: "Car", TotalAmount: amount("100")})
			blank := " "
			_, err := service.Update(ctx, created.ID, loan.UpdateLoanDTO{Name: &blank})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Payments", func() {
		It("labels payments of deleted loans", func() {
			kept := create(loan.CreateLoanDTO{Name: "Kept", TotalAmount: amount("500"), RecurringPayment: amount("50")})
			gone := create(loan.CreateLoanDTO{Name: "Gone", TotalAmount: amount("500"), RecurringPayment: amount("25")})
			_, err := service.Pay(ctx, kept.ID, loan.PaymentDTO{})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Pay(ctx, gone.ID, loan.PaymentDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Delete(ctx, gone.ID)).To(Succeed())

			payments, err := service.Payments(ctx, loan.PaymentFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(payments).To(HaveLen(2))

			labels := []string{payments[0].LoanName, payments[1].LoanName}
			Expect(labels).To(ConsistOf("Kept", "Deleted"))
		})
	})

	Describe("Summary", func() {
		It("reconstructs the initial amount from payments and skips closed loans", func() {
			car := create(loan.CreateLoanDTO{Name: "Car", TotalAmount: amount("1000"), RecurringPayment: amount("250")})
			create(loan.CreateLoanDTO{Name: "Old", TotalAmount: amount("0")})
			_, err := service.Update(ctx, "loan-b", loan.UpdateLoanDTO{TotalAmount: amount("0")})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Pay(ctx, car.ID, loan.PaymentDTO{})
			Expect(err).NotTo(HaveOccurred())

			summary, err := service.Summary(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.ActiveCount).To(Equal(1))
			Expect(summary.TotalDebt.String()).To(Equal("750"))
			Expect(summary.MonthlyInstallment.String()).To(Equal("250"))
			Expect(summary.Progress.TotalInitial.String()).To(Equal("1000"))
			Expect(*summary.Progress.Percent).To(Equal(int64(25)))
		})

		It("has no progress without loans", func() {
			summary, err := service.Summary(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Progress.Percent).To(BeNil())
		})
	})

	Describe("Export", func() {
		It("renders active loans as a PDF", func() {
			create(loan.CreateLoanDTO{Name: "Car", TotalAmount: amount("100"), Duration: intPtr(10)})
			active := obligation.StatusActive

			data, filename, err := service.ExportLoans(ctx, &active, export.FormatPDF)
			Expect(err).NotTo(HaveOccurred())
			Expect(filename).To(Equal("active_debts_2024-03-05.pdf"))
			Expect(string(data[:5])).To(Equal("%PDF-"))
		})

		It("renders payment history as CSV", func() {
			created := create(loan.CreateLoanDTO{Name: "Car", TotalAmount: amount("100"), RecurringPayment: amount("10")})
			_, err := service.Pay(ctx, created.ID, loan.PaymentDTO{})
			Expect(err).NotTo(HaveOccurred())

			data, filename, err := service.ExportPayments(ctx, loan.PaymentFilter{}, export.FormatCSV)
			Expect(err).NotTo(HaveOccurred())
			Expect(filename).To(Equal("payment_history_2024-03-05.csv"))
			Expect(string(data)).To(ContainSubstring("2024-03-05,Car,10.00"))
		})
	})
})
