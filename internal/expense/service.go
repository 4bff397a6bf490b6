package expense

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	expenseDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/export"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
)

// Repository interface defines the data access methods for expenses
type Repository interface {
	Create(ctx context.Context, expense *expenseDatamodel.Expense) error
	// GetByID returns ErrNotFound unless id belongs to ownerID.
	GetByID(ctx context.Context, ownerID, id string) (*expenseDatamodel.Expense, error)
	Update(ctx context.Context, expense *expenseDatamodel.Expense) error
	Delete(ctx context.Context, ownerID, id string) error
	// List orders by date, then creation time, newest first.
	List(ctx context.Context, ownerID string, filter Filter) ([]*expenseDatamodel.Expense, error)
}

// CategoryResolver is satisfied by *category.Service.
type CategoryResolver interface {
	Names(ctx context.Context) (map[string]string, error)
	EnsureVisible(ctx context.Context, id string) error
}

// Service handles expense business logic
type Service struct {
	repo       Repository
	categories CategoryResolver
	today      func() calendar.Date
	logger     *slog.Logger
}

func NewService(repo Repository, categories CategoryResolver, today func() calendar.Date, logger *slog.Logger) *Service {
	if today == nil {
		today = func() calendar.Date { return calendar.Today(nil) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		categories: categories,
		today:      today,
		logger:     logger,
	}
}

func (s *Service) Today() calendar.Date {
	return s.today()
}

func (s *Service) CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "owner_id", ownerID)
		return nil, err
	}
	if dto.CategoryID != nil {
		if err := s.categories.EnsureVisible(ctx, *dto.CategoryID); err != nil {
			return nil, err
		}
	}

	date := s.today()
	if dto.Date != nil && !dto.Date.IsZero() {
		date = *dto.Date
	}

	row := &expenseDatamodel.Expense{
		UserID:     ownerID,
		CategoryID: dto.CategoryID,
		Amount:     dto.Amount.Round(money.Scale),
		Note:       dto.Note,
		Date:       date.Time(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create expense", "error", err, "owner_id", ownerID)
		return nil, internal.NewStorageError("failed to create expense", err)
	}

	s.logger.Info("expense created",
		"expense_id", row.ID,
		"owner_id", ownerID,
		"amount", row.Amount.String())

	return s.withLabel(ctx, FromDataModel(row))
}

func (s *Service) GetExpense(ctx context.Context, id string) (*Expense, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get expense")
	}
	return s.withLabel(ctx, FromDataModel(row))
}

func (s *Service) UpdateExpense(ctx context.Context, id string, dto UpdateExpenseDTO) (*Expense, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get expense")
	}

	if dto.Amount != nil {
		row.Amount = dto.Amount.Round(money.Scale)
	}
	if dto.CategoryID != nil {
		row.CategoryID = blankToNil(dto.CategoryID)
		if row.CategoryID != nil {
			if err := s.categories.EnsureVisible(ctx, *row.CategoryID); err != nil {
				return nil, err
			}
		}
	}
	if dto.Date != nil && !dto.Date.IsZero() {
		row.Date = dto.Date.Time()
	}
	if dto.Note != nil {
		row.Note = *dto.Note
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, repoError(err, "failed to update expense")
	}
	return s.withLabel(ctx, FromDataModel(row))
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return repoError(err, "failed to delete expense")
	}
	s.logger.Info("expense deleted", "expense_id", id, "owner_id", ownerID)
	return nil
}

// ListExpenses returns the filtered expenses with their category labels.
func (s *Service) ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "owner_id", ownerID)
		return nil, internal.NewStorageError("failed to list expenses", err)
	}

	names, err := s.categories.Names(ctx)
	if err != nil {
		return nil, err
	}

	expenses := make([]*Expense, 0, len(rows))
	for _, row := range rows {
		e := FromDataModel(row)
		e.Category = report.Label(e.CategoryID, names, report.UncategorizedLabel)
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// Entries returns the owner's expenses on or after from as ledger entries.
func (s *Service) Entries(ctx context.Context, from calendar.Date) ([]obligation.Entry, error) {
	expenses, err := s.ListExpenses(ctx, Filter{Bounds: calendar.Bounds{From: &from}})
	if err != nil {
		return nil, err
	}
	entries := make([]obligation.Entry, 0, len(expenses))
	for _, e := range expenses {
		entries = append(entries, e.ToEntry())
	}
	return entries, nil
}

// Summary backs the dashboard totals. The week may start in the previous
// year, so loading starts at whichever boundary is earlier.
func (s *Service) Summary(ctx context.Context) (report.SpendingSummary, error) {
	today := s.today()
	from := calendar.StartOfYear(today)
	if week := calendar.StartOfWeek(today); week.Before(from) {
		from = week
	}

	entries, err := s.Entries(ctx, from)
	if err != nil {
		return report.SpendingSummary{}, err
	}
	names, err := s.categories.Names(ctx)
	if err != nil {
		return report.SpendingSummary{}, err
	}
	return report.Spending(entries, names, today), nil
}

// maxDailySpan bounds the daily series to roughly a year of points.
const maxDailySpan = 366

// Daily returns the per-day spending series for the filter. Open bounds
// default to the current month.
func (s *Service) Daily(ctx context.Context, filter Filter) ([]report.DayTotal, error) {
	month := calendar.MonthRange(s.today())
	if filter.From == nil {
		filter.From = &month.Start
	}
	if filter.To == nil {
		filter.To = &month.End
	}
	start, end := *filter.From, *filter.To
	if start.After(end) {
		return nil, internal.NewValidationFieldError("start", "start must not be after end", internal.ErrCodeInvalidDate)
	}
	if end.After(start.AddDays(maxDailySpan - 1)) {
		return nil, internal.NewValidationFieldError("end", "daily series cannot span more than 366 days", internal.ErrCodeInvalidDate)
	}

	expenses, err := s.ListExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	entries := make([]obligation.Entry, 0, len(expenses))
	for _, e := range expenses {
		entries = append(entries, e.ToEntry())
	}
	return report.Daily(entries, start, end), nil
}

func (s *Service) Comparison(ctx context.Context) (report.Comparison, error) {
	today := s.today()
	entries, err := s.Entries(ctx, calendar.StartOfMonth(today).AddMonths(-1))
	if err != nil {
		return report.Comparison{}, err
	}
	return report.MonthComparison(entries, today), nil
}

// Export renders the filtered list as CSV or XLSX.
func (s *Service) Export(ctx context.Context, filter Filter, format export.Format) ([]byte, string, error) {
	if format == export.FormatPDF {
		return nil, "", export.ErrUnsupportedFormat
	}

	expenses, err := s.ListExpenses(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   "Expenses",
		Headers: []string{"Date", "Category", "Note", "Amount"},
		Rows:    make([][]string, 0, len(expenses)),
	}
	for _, e := range expenses {
		table.Rows = append(table.Rows, []string{e.Date.String(), e.Category, e.Note, money.Format(e.Amount)})
	}

	data, err := export.Render(format, export.Document{Title: "Expenses", Tables: []export.Table{table}})
	if err != nil {
		return nil, "", internal.NewInternalError("failed to render export", err)
	}

	s.logger.Info("expenses exported", "format", format, "rows", len(table.Rows))
	return data, format.Filename("expenses", s.today().String()), nil
}

func (s *Service) withLabel(ctx context.Context, e *Expense) (*Expense, error) {
	names, err := s.categories.Names(ctx)
	if err != nil {
		return nil, err
	}
	e.Category = report.Label(e.CategoryID, names, report.UncategorizedLabel)
	return e, nil
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
