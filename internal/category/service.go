package category

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vesta-ledger/internal"
	categoryDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/category"
	"github.com/frahmantamala/vesta-ledger/internal/core/events"
)

type RepositoryAPI interface {
	// ListVisible returns the defaults and the categories owned by ownerID,
	// defaults first, then by name.
	ListVisible(ctx context.Context, ownerID string) ([]*categoryDatamodel.Category, error)
	// GetVisible returns ErrNotFound unless id is a default or owned by ownerID.
	GetVisible(ctx context.Context, ownerID, id string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Usage(ctx context.Context, ownerID, id string) (Usage, error)
	// DeleteCascade removes the owner's budgets, recurring expenses and
	// expenses in the category, then the category, in one transaction.
	DeleteCascade(ctx context.Context, ownerID, id string) (Usage, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListVisible(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, internal.NewStorageError("failed to list categories", err)
	}

	categories := make([]*Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, FromDataModel(row))
	}
	return categories, nil
}

// Names maps every visible category id to its name, for label resolution.
func (s *Service) Names(ctx context.Context) (map[string]string, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetVisible(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get category")
	}
	return FromDataModel(row), nil
}

// EnsureVisible is used by the other modules to validate a category reference.
func (s *Service) EnsureVisible(ctx context.Context, id string) error {
	_, err := s.Get(ctx, id)
	return err
}

func (s *Service) Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &categoryDatamodel.Category{
		UserID: &ownerID,
		Name:   dto.Name,
		Emoji:  dto.Emoji,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create category", "error", err, "owner_id", ownerID)
		return nil, internal.NewStorageError("failed to create category", err)
	}

	s.logger.Info("category created", "category_id", row.ID, "owner_id", ownerID)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateCategoryDTO) (*Category, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetVisible(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get category")
	}
	if !FromDataModel(row).EditableBy(ownerID) {
		return nil, ErrDefaultReadOnly
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Emoji != nil {
		row.Emoji = *dto.Emoji
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewStorageError("failed to update category", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Usage(ctx context.Context, id string) (Usage, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return Usage{}, err
	}
	if _, err := s.repo.GetVisible(ctx, ownerID, id); err != nil {
		return Usage{}, repoError(err, "failed to get category")
	}
	usage, err := s.repo.Usage(ctx, ownerID, id)
	if err != nil {
		return Usage{}, internal.NewStorageError("failed to count category usage", err)
	}
	return usage, nil
}

// Delete removes an owned category. When anything still references it the
// caller must confirm, since the expenses go with it.
func (s *Service) Delete(ctx context.Context, id string, confirm bool) (Usage, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return Usage{}, err
	}

	row, err := s.repo.GetVisible(ctx, ownerID, id)
	if err != nil {
		return Usage{}, repoError(err, "failed to get category")
	}
	if !FromDataModel(row).EditableBy(ownerID) {
		return Usage{}, ErrDefaultReadOnly
	}

	if !confirm {
		usage, err := s.repo.Usage(ctx, ownerID, id)
		if err != nil {
			return Usage{}, internal.NewStorageError("failed to count category usage", err)
		}
		if usage.Total() > 0 {
			return usage, ErrInUse.WithDetails(usage)
		}
	}

	removed, err := s.repo.DeleteCascade(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return Usage{}, repoError(err, "failed to delete category")
	}

	s.logger.Info("category deleted",
		"category_id", id,
		"owner_id", ownerID,
		"expenses_removed", removed.Expenses,
		"recurring_removed", removed.RecurringExpenses,
		"budgets_removed", removed.Budgets)

	if s.publisher != nil {
		event := events.NewCategoryDeletedEvent(ownerID, id, removed.Expenses)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish category deleted event", "error", err, "category_id", id)
		}
	}
	return removed, nil
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
