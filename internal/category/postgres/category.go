package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/vesta-ledger/internal/category"
	budgetDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/budget"
	categoryDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/expense"
	recurringDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/recurring"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) visible(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&categoryDatamodel.Category{}).
		Where("user_id IS NULL OR user_id = ?", ownerID)
}

func (r *CategoryRepository) ListVisible(ctx context.Context, ownerID string) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.visible(ctx, ownerID).
		Order("is_default DESC").
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetVisible(ctx context.Context, ownerID, id string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.visible(ctx, ownerID).Where("id = ?", id).Take(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).
		Model(cat).
		Select("name", "emoji").
		Updates(cat).Error
}

func (r *CategoryRepository) Usage(ctx context.Context, ownerID, id string) (category.Usage, error) {
	return countUsage(r.db.WithContext(ctx), ownerID, id)
}

func (r *CategoryRepository) DeleteCascade(ctx context.Context, ownerID, id string) (category.Usage, error) {
	var removed category.Usage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND category_id = ?", ownerID, id).Delete(&budgetDatamodel.Budget{})
		if res.Error != nil {
			return res.Error
		}
		removed.Budgets = res.RowsAffected

		res = tx.Where("user_id = ? AND category_id = ?", ownerID, id).Delete(&recurringDatamodel.RecurringExpense{})
		if res.Error != nil {
			return res.Error
		}
		removed.RecurringExpenses = res.RowsAffected

		res = tx.Where("user_id = ? AND category_id = ?", ownerID, id).Delete(&expenseDatamodel.Expense{})
		if res.Error != nil {
			return res.Error
		}
		removed.Expenses = res.RowsAffected

		res = tx.Where("id = ? AND user_id = ? AND is_default = ?", id, ownerID, false).Delete(&categoryDatamodel.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return category.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return category.Usage{}, err
	}
	return removed, nil
}

func countUsage(db *gorm.DB, ownerID, id string) (category.Usage, error) {
	var usage category.Usage
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&expenseDatamodel.Expense{}, &usage.Expenses},
		{&recurringDatamodel.RecurringExpense{}, &usage.RecurringExpenses},
		{&budgetDatamodel.Budget{}, &usage.Budgets},
	}
	for _, c := range counts {
		err := db.Model(c.model).
			Where("user_id = ? AND category_id = ?", ownerID, id).
			Count(c.dst).Error
		if err != nil {
			return category.Usage{}, err
		}
	}
	return usage, nil
}
