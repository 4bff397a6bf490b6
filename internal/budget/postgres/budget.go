package postgres

import (
	"context"

	"github.com/frahmantamala/vesta-ledger/internal/budget"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	budgetDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/budget"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.Repository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Upsert(ctx context.Context, b *budgetDatamodel.Budget) (*budgetDatamodel.Budget, error) {
	var stored budgetDatamodel.Budget
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(b).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND category_id = ? AND month = ?", b.UserID, b.CategoryID, b.Month).
			Take(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *BudgetRepository) ListForMonth(ctx context.Context, ownerID string, month calendar.Date) ([]*budgetDatamodel.Budget, error) {
	var budgets []*budgetDatamodel.Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", ownerID, calendar.StartOfMonth(month).Time()).
		Order("created_at ASC").
		Find(&budgets).Error
	return budgets, err
}

func (r *BudgetRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&budgetDatamodel.Budget{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return budget.ErrNotFound
	}
	return nil
}
