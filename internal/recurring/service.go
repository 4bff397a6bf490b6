package recurring

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	recurringDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/recurring"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/expense"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
)

type Repository interface {
	Create(ctx context.Context, row *recurringDatamodel.RecurringExpense) error
	GetByID(ctx context.Context, ownerID, id string) (*recurringDatamodel.RecurringExpense, error)
	// Update writes row when the stored version equals row.Version and bumps
	// it; a stale row yields internal.ErrConcurrentUpdate.
	Update(ctx context.Context, row *recurringDatamodel.RecurringExpense) error
	Delete(ctx context.Context, ownerID, id string) error
	// List orders by next due date, soonest first.
	List(ctx context.Context, ownerID string) ([]*recurringDatamodel.RecurringExpense, error)
}

type CategoryResolver interface {
	Names(ctx context.Context) (map[string]string, error)
	EnsureVisible(ctx context.Context, id string) error
}

type Service struct {
	repo       Repository
	categories CategoryResolver
	engine     obligation.Realizer
	today      func() calendar.Date
	logger     *slog.Logger
}

func NewService(repo Repository, categories CategoryResolver, engine obligation.Realizer, today func() calendar.Date, logger *slog.Logger) *Service {
	if today == nil {
		today = func() calendar.Date { return calendar.Today(nil) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		categories: categories,
		engine:     engine,
		today:      today,
		logger:     logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateRecurringDTO) (*RecurringExpense, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.CategoryID != nil {
		if err := s.categories.EnsureVisible(ctx, *dto.CategoryID); err != nil {
			return nil, err
		}
	}

	row := &recurringDatamodel.RecurringExpense{
		UserID:     ownerID,
		CategoryID: dto.CategoryID,
		Amount:     dto.Amount.Round(money.Scale),
		Frequency:  dto.Frequency,
		NextDue:    dto.NextDue.Time(),
		Note:       dto.Note,
		Version:    1,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create recurring expense", "error", err, "owner_id", ownerID)
		return nil, internal.NewStorageError("failed to create recurring expense", err)
	}

	s.logger.Info("recurring expense created",
		"recurring_expense_id", row.ID,
		"frequency", row.Frequency,
		"next_due", dto.NextDue.String())

	return s.withLabel(ctx, FromDataModel(row))
}

func (s *Service) Get(ctx context.Context, id string) (*RecurringExpense, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get recurring expense")
	}
	return s.withLabel(ctx, FromDataModel(row))
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateRecurringDTO) (*RecurringExpense, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get recurring expense")
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
	if dto.Frequency != nil {
		period, err := calendar.ParsePeriod(*dto.Frequency)
		if err != nil {
			return nil, internal.NewValidationFieldError("frequency", err.Error(), internal.ErrCodeInvalidPeriod)
		}
		row.Frequency = string(period)
	}
	if dto.NextDue != nil && !dto.NextDue.IsZero() {
		row.NextDue = dto.NextDue.Time()
	}
	if dto.Note != nil {
		row.Note = *dto.Note
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, repoError(err, "failed to update recurring expense")
	}
	return s.withLabel(ctx, FromDataModel(row))
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return repoError(err, "failed to delete recurring expense")
	}
	s.logger.Info("recurring expense deleted", "recurring_expense_id", id, "owner_id", ownerID)
	return nil
}

func (s *Service) List(ctx context.Context) (RecurringListResponse, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return RecurringListResponse{}, err
	}

	rows, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return RecurringListResponse{}, internal.NewStorageError("failed to list recurring expenses", err)
	}
	names, err := s.categories.Names(ctx)
	if err != nil {
		return RecurringListResponse{}, err
	}

	today := s.today()
	resp := RecurringListResponse{RecurringExpenses: make([]*RecurringExpense, 0, len(rows))}
	for _, row := range rows {
		r := FromDataModel(row)
		r.Category = report.Label(r.CategoryID, names, report.UncategorizedLabel)
		if r.IsDue(today) {
			resp.DueCount++
		}
		resp.RecurringExpenses = append(resp.RecurringExpenses, r)
	}
	return resp, nil
}

// Process books today's expense for the bill and moves its due date one
// period forward.
func (s *Service) Process(ctx context.Context, id string) (*ProcessResult, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get recurring expense")
	}
	current := FromDataModel(row)

	entry, next, err := s.engine.Realize(ctx, obligation.KindRecurringExpense, id, "")
	if err != nil {
		if errors.Is(err, obligation.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	if next.NextOccurrence != nil {
		current.NextDue = *next.NextOccurrence
	}
	current.Version = next.Version
	current.UpdatedAt = now

	created := expense.FromDataModel(expense.FromEntry(entry))
	created.CreatedAt = now
	created.UpdatedAt = now

	// The expense is already stored, so a failed lookup only costs the label.
	names, err := s.categories.Names(ctx)
	if err != nil {
		s.logger.Warn("Process: category names unavailable", "error", err, "recurring_id", id)
		names = nil
	}
	current.Category = report.Label(current.CategoryID, names, report.UncategorizedLabel)
	created.Category = report.Label(created.CategoryID, names, report.UncategorizedLabel)

	return &ProcessResult{Expense: created, RecurringExpense: current}, nil
}

func (s *Service) withLabel(ctx context.Context, r *RecurringExpense) (*RecurringExpense, error) {
	names, err := s.categories.Names(ctx)
	if err != nil {
		return nil, err
	}
	r.Category = report.Label(r.CategoryID, names, report.UncategorizedLabel)
	return r, nil
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
