package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	recurringDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/recurring"
	"github.com/frahmantamala/vesta-ledger/internal/expense"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/recurring"
	"gorm.io/gorm"
)

// RecurringRepository stores recurring expenses and is the obligation store
// for their kind.
type RecurringRepository struct {
	db *gorm.DB
}

func NewRecurringRepository(db *gorm.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

var (
	_ recurring.Repository = (*RecurringRepository)(nil)
	_ obligation.Store     = (*RecurringRepository)(nil)
)

func (r *RecurringRepository) Create(ctx context.Context, row *recurringDatamodel.RecurringExpense) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *RecurringRepository) GetByID(ctx context.Context, ownerID, id string) (*recurringDatamodel.RecurringExpense, error) {
	var row recurringDatamodel.RecurringExpense
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recurring.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *RecurringRepository) Update(ctx context.Context, row *recurringDatamodel.RecurringExpense) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&recurringDatamodel.RecurringExpense{}).
		Where("id = ? AND user_id = ? AND version = ?", row.ID, row.UserID, row.Version).
		Updates(map[string]interface{}{
			"category_id": row.CategoryID,
			"amount":      row.Amount,
			"frequency":   row.Frequency,
			"next_due":    row.NextDue,
			"note":        row.Note,
			"version":     row.Version + 1,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrConcurrentUpdate
	}
	row.Version++
	row.UpdatedAt = now
	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&recurringDatamodel.RecurringExpense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return recurring.ErrNotFound
	}
	return nil
}

func (r *RecurringRepository) List(ctx context.Context, ownerID string) ([]*recurringDatamodel.RecurringExpense, error) {
	var rows []*recurringDatamodel.RecurringExpense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("next_due ASC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *RecurringRepository) FindObligation(ctx context.Context, ownerID, id string) (*obligation.Obligation, error) {
	row, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, recurring.ErrNotFound) {
			return nil, obligation.ErrNotFound
		}
		return nil, err
	}
	return recurring.ToObligation(row), nil
}

// Commit books the generated expense and advances next_due in one transaction.
func (r *RecurringRepository) Commit(ctx context.Context, entry *obligation.Entry, prev, next *obligation.Obligation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense.FromEntry(entry)).Error; err != nil {
			return err
		}

		res := tx.Model(&recurringDatamodel.RecurringExpense{}).
			Where("id = ? AND user_id = ? AND version = ?", prev.ID, prev.OwnerID, prev.Version).
			Updates(map[string]interface{}{
				"next_due":   next.NextOccurrence.Time(),
				"version":    next.Version,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrConcurrentUpdate
		}
		return nil
	})
}
