package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	loanDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/loan"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/export"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, row *loanDatamodel.Loan) error
	GetByID(ctx context.Context, ownerID, id string) (*loanDatamodel.Loan, error)
	// Update writes row when the stored version equals row.Version and bumps
	// it; a stale row yields internal.ErrConcurrentUpdate.
	Update(ctx context.Context, row *loanDatamodel.Loan) error
	// Delete keeps the loan's payments; their loan_id then dangles.
	Delete(ctx context.Context, ownerID, id string) error
	// List orders newest first. A nil status lists every loan.
	List(ctx context.Context, ownerID string, status *obligation.Status) ([]*loanDatamodel.Loan, error)
	// ListPayments orders by payment date, newest first.
	ListPayments(ctx context.Context, ownerID string, filter PaymentFilter) ([]*loanDatamodel.LoanPayment, error)
}

type Service struct {
	repo   Repository
	engine obligation.Realizer
	today  func() calendar.Date
	logger *slog.Logger
}

func NewService(repo Repository, engine obligation.Realizer, today func() calendar.Date, logger *slog.Logger) *Service {
	if today == nil {
		today = func() calendar.Date { return calendar.Today(nil) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		engine: engine,
		today:  today,
		logger: logger,
	}
}

func (s *Service) Today() calendar.Date {
	return s.today()
}

func (s *Service) Create(ctx context.Context, dto CreateLoanDTO) (*Loan, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &loanDatamodel.Loan{
		UserID:           ownerID,
		Name:             dto.Name,
		Type:             dto.Type,
		TotalAmount:      dto.TotalAmount.Round(money.Scale),
		InitialAmount:    money.ToNull(dto.InitialAmount),
		RecurringPayment: money.ToNull(dto.RecurringPayment),
		Duration:         dto.Duration,
		StartDate:        calendar.TimePtr(dto.StartDate),
		NextDueDate:      calendar.TimePtr(dto.NextDueDate),
		Status:           string(obligation.StatusActive),
		Version:          1,
	}
	ob := ToObligation(row)
	if err := obligation.SyncStatus(ctx, ob); err != nil {
		return nil, err
	}
	row.Status = string(ob.Status)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create loan", "error", err, "owner_id", ownerID)
		return nil, internal.NewStorageError("failed to create loan", err)
	}

	s.logger.Info("loan created", "loan_id", row.ID, "owner_id", ownerID, "total_amount", row.TotalAmount.String())
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Loan, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get loan")
	}

	l := FromDataModel(row)
	payments, err := s.repo.ListPayments(ctx, ownerID, PaymentFilter{LoanID: &l.ID})
	if err != nil {
		return nil, internal.NewStorageError("failed to list loan payments", err)
	}
	l.MonthsPaid = len(payments)
	return l, nil
}

// Update applies a manual edit. Editing the balance to zero closes the loan.
func (s *Service) Update(ctx context.Context, id string, dto UpdateLoanDTO) (*Loan, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get loan")
	}

	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Type != nil {
		row.Type = *dto.Type
	}
	if dto.TotalAmount != nil {
		row.TotalAmount = dto.TotalAmount.Round(money.Scale)
	}
	if dto.InitialAmount != nil {
		row.InitialAmount = money.ToNull(dto.InitialAmount)
	}
	if dto.RecurringPayment != nil {
		row.RecurringPayment = money.ToNull(dto.RecurringPayment)
	}
	if dto.Duration != nil {
		row.Duration = dto.Duration
	}
	if dto.StartDate != nil {
		row.StartDate = calendar.TimePtr(dto.StartDate)
	}
	if dto.NextDueDate != nil {
		row.NextDueDate = calendar.TimePtr(dto.NextDueDate)
	}

	ob := ToObligation(row)
	if err := obligation.SyncStatus(ctx, ob); err != nil {
		return nil, err
	}
	row.Status = string(ob.Status)

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, repoError(err, "failed to update loan")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return repoError(err, "failed to delete loan")
	}
	s.logger.Info("loan deleted", "loan_id", id, "owner_id", ownerID)
	return nil
}

// List returns loans with the number of installments paid on each.
func (s *Service) List(ctx context.Context, status *obligation.Status) ([]*Loan, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, ownerID, status)
	if err != nil {
		return nil, internal.NewStorageError("failed to list loans", err)
	}
	payments, err := s.repo.ListPayments(ctx, ownerID, PaymentFilter{})
	if err != nil {
		return nil, internal.NewStorageError("failed to list loan payments", err)
	}

	paid := make(map[string]int)
	for _, p := range payments {
		if p.LoanID != nil {
			paid[*p.LoanID]++
		}
	}

	loans := make([]*Loan, 0, len(rows))
	for _, row := range rows {
		l := FromDataModel(row)
		l.MonthsPaid = paid[l.ID]
		loans = append(loans, l)
	}
	return loans, nil
}

// Pay records one installment of the loan's EMI.
func (s *Service) Pay(ctx context.Context, id string, dto PaymentDTO) (*PaymentResult, error) {
	// Read before the payment so nothing after the commit can fail it.
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, next, err := s.engine.Realize(ctx, obligation.KindLoan, id, strings.TrimSpace(dto.Note))
	if err != nil {
		if errors.Is(err, obligation.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	current.ApplyRealization(next, time.Now())
	payment := PaymentFromDataModel(PaymentFromEntry(entry))
	payment.LoanName = current.Name
	payment.CreatedAt = current.UpdatedAt
	return &PaymentResult{Payment: payment, Loan: current}, nil
}

// Payments returns the filtered payment history with loan names resolved.
func (s *Service) Payments(ctx context.Context, filter PaymentFilter) ([]*Payment, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListPayments(ctx, ownerID, filter)
	if err != nil {
		return nil, internal.NewStorageError("failed to list loan payments", err)
	}
	names, err := s.names(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	payments := make([]*Payment, 0, len(rows))
	for _, row := range rows {
		p := PaymentFromDataModel(row)
		p.LoanName = report.Label(p.LoanID, names, report.DeletedLabel)
		payments = append(payments, p)
	}
	return payments, nil
}

func (s *Service) Summary(ctx context.Context) (report.LoanSummary, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return report.LoanSummary{}, err
	}

	rows, err := s.repo.List(ctx, ownerID, nil)
	if err != nil {
		return report.LoanSummary{}, internal.NewStorageError("failed to list loans", err)
	}
	payments, err := s.repo.ListPayments(ctx, ownerID, PaymentFilter{})
	if err != nil {
		return report.LoanSummary{}, internal.NewStorageError("failed to list loan payments", err)
	}

	loans := make([]obligation.Obligation, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, *ToObligation(row))
	}
	entries := make([]obligation.Entry, 0, len(payments))
	for _, row := range payments {
		entries = append(entries, PaymentFromDataModel(row).ToEntry())
	}
	return report.Loans(loans, entries), nil
}

// ExportLoans renders the loans with the given status.
func (s *Service) ExportLoans(ctx context.Context, status *obligation.Status, format export.Format) ([]byte, string, error) {
	loans, err := s.List(ctx, status)
	if err != nil {
		return nil, "", err
	}

	title, base := "Debts Report", "debts"
	if status != nil && *status == obligation.StatusClosed {
		title, base = "Paid Debts Report", "paid_debts"
	} else if status != nil {
		title, base = "Active Debts Report", "active_debts"
	}

	table := export.Table{
		Title:   "Loans",
		Headers: []string{"Loan Name", "Type", "Amount", "EMI", "Start Date", "Status", "Months Paid"},
		Rows:    make([][]string, 0, len(loans)),
	}
	for _, l := range loans {
		table.Rows = append(table.Rows, []string{
			l.Name,
			string(l.Type),
			money.Format(l.TotalAmount),
			money.FormatOptional(l.RecurringPayment),
			optionalDate(l.StartDate),
			string(l.Status),
			monthsPaid(l),
		})
	}

	doc := export.Document{
		Title:   title,
		Summary: []export.Field{{Label: "Generated on", Value: s.today().String()}},
		Tables:  []export.Table{table},
	}
	return s.render(format, doc, base, len(table.Rows))
}

// ExportPayments renders the filtered payment history.
func (s *Service) ExportPayments(ctx context.Context, filter PaymentFilter, format export.Format) ([]byte, string, error) {
	payments, err := s.Payments(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   "Payments",
		Headers: []string{"Date", "Loan Name", "Amount Paid"},
		Rows:    make([][]string, 0, len(payments)),
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
		table.Rows = append(table.Rows, []string{p.PaymentDate.String(), p.LoanName, money.Format(p.Amount)})
	}

	doc := export.Document{
		Title: "Debt Payment History Report",
		Summary: []export.Field{
			{Label: "Period", Value: periodLabel(filter.Bounds)},
			{Label: "Total paid", Value: money.Format(total)},
		},
		Tables: []export.Table{table},
	}
	return s.render(format, doc, "payment_history", len(table.Rows))
}

func (s *Service) render(format export.Format, doc export.Document, base string, rows int) ([]byte, string, error) {
	data, err := export.Render(format, doc)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to render export", err)
	}
	s.logger.Info("loans exported", "format", format, "report", base, "rows", rows)
	return data, format.Filename(base, s.today().String()), nil
}

// names maps every loan id of the owner to its name.
func (s *Service) names(ctx context.Context, ownerID string) (map[string]string, error) {
	rows, err := s.repo.List(ctx, ownerID, nil)
	if err != nil {
		return nil, internal.NewStorageError("failed to list loans", err)
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func optionalDate(d *calendar.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func monthsPaid(l *Loan) string {
	if l.Duration == nil {
		return strconv.Itoa(l.MonthsPaid)
	}
	return fmt.Sprintf("%d / %d", l.MonthsPaid, *l.Duration)
}

func periodLabel(b calendar.Bounds) string {
	from, to := "beginning", "today"
	if b.From != nil {
		from = b.From.String()
	}
	if b.To != nil {
		to = b.To.String()
	}
	return from + " to " + to
}

func repoError(err error, message string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewStorageError(message, err)
}
