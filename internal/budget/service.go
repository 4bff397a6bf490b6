package budget

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	budgetDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/budget"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
)

type Repository interface {
	// Upsert inserts or replaces the amount for (owner, category, month) and
	// returns the stored row.
	Upsert(ctx context.Context, budget *budgetDatamodel.Budget) (*budgetDatamodel.Budget, error)
	ListForMonth(ctx context.Context, ownerID string, month calendar.Date) ([]*budgetDatamodel.Budget, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type CategoryResolver interface {
	Names(ctx context.Context) (map[string]string, error)
	EnsureVisible(ctx context.Context, id string) error
}

// EntrySource yields the owner's expenses on or after a date.
type EntrySource interface {
	Entries(ctx context.Context, from calendar.Date) ([]obligation.Entry, error)
}

type Service struct {
	repo       Repository
	categories CategoryResolver
	expenses   EntrySource
	today      func() calendar.Date
	logger     *slog.Logger
}

func NewService(repo Repository, categories CategoryResolver, expenses EntrySource, today func() calendar.Date, logger *slog.Logger) *Service {
	if today == nil {
		today = func() calendar.Date { return calendar.Today(nil) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		categories: categories,
		expenses:   expenses,
		today:      today,
		logger:     logger,
	}
}

func (s *Service) Today() calendar.Date {
	return s.today()
}

func (s *Service) Upsert(ctx context.Context, dto UpsertBudgetDTO) (*Budget, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	month, err := ParseMonth(dto.Month, s.today())
	if err != nil {
		return nil, err
	}
	if err := s.categories.EnsureVisible(ctx, dto.CategoryID); err != nil {
		return nil, err
	}

	stored, err := s.repo.Upsert(ctx, &budgetDatamodel.Budget{
		UserID:     ownerID,
		CategoryID: dto.CategoryID,
		Amount:     dto.Amount.Round(money.Scale),
		Month:      month.Time(),
	})
	if err != nil {
		s.logger.Error("failed to upsert budget", "error", err, "owner_id", ownerID, "category_id", dto.CategoryID)
		return nil, internal.NewStorageError("failed to save budget", err)
	}

	s.logger.Info("budget saved",
		"budget_id", stored.ID,
		"category_id", stored.CategoryID,
		"month", month.String(),
		"amount", stored.Amount.String())

	b := FromDataModel(stored)
	names, err := s.categories.Names(ctx)
	if err != nil {
		return nil, err
	}
	b.Category = report.Label(&b.CategoryID, names, report.UncategorizedLabel)
	return b, nil
}

// List returns the month's budgets with the spend recorded against each.
func (s *Service) List(ctx context.Context, month calendar.Date) ([]*Progress, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListForMonth(ctx, ownerID, month)
	if err != nil {
		return nil, internal.NewStorageError("failed to list budgets", err)
	}

	names, err := s.categories.Names(ctx)
	if err != nil {
		return nil, err
	}

	span := calendar.MonthRange(month)
	entries, err := s.expenses.Entries(ctx, span.Start)
	if err != nil {
		return nil, err
	}

	spentByCategory := make(map[string][]obligation.Entry)
	for _, e := range entries {
		if e.CategoryID != nil {
			spentByCategory[*e.CategoryID] = append(spentByCategory[*e.CategoryID], e)
		}
	}

	out := make([]*Progress, 0, len(rows))
	for _, row := range rows {
		b := FromDataModel(row)
		b.Category = report.Label(&b.CategoryID, names, report.UncategorizedLabel)
		spent := report.SumByPeriod(spentByCategory[b.CategoryID], span.Start, span.End)
		out = append(out, &Progress{Budget: b, BudgetStatus: report.BudgetProgress(b.Amount, spent)})
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return repoError(err, "failed to delete budget")
	}
	s.logger.Info("budget deleted", "budget_id", id, "owner_id", ownerID)
	return nil
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
