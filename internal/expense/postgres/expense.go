package postgres

import (
	"context"
	"errors"
	"strings"

	expenseDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/vesta-ledger/internal/expense"
	"gorm.io/gorm"
)

// ExpenseRepository implements the expense.Repository interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, exp *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Create(exp).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, ownerID, id string) (*expenseDatamodel.Expense, error) {
	var exp expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Take(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expense.ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, exp *expenseDatamodel.Expense) error {
	res := r.db.WithContext(ctx).
		Model(exp).
		Where("user_id = ?", exp.UserID).
		Select("category_id", "amount", "note", "date", "updated_at").
		Updates(exp)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expense.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&expenseDatamodel.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expense.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) List(ctx context.Context, ownerID string, filter expense.Filter) ([]*expenseDatamodel.Expense, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)

	if filter.From != nil {
		query = query.Where("date >= ?", filter.From.Time())
	}
	if filter.To != nil {
		query = query.Where("date <= ?", filter.To.Time())
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(note) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var expenses []*expenseDatamodel.Expense
	err := query.
		Order("date DESC").
		Order("created_at DESC").
		Find(&expenses).Error
	return expenses, err
}
