package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	loanDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/loan"
	"github.com/frahmantamala/vesta-ledger/internal/loan"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"gorm.io/gorm"
)

// LoanRepository stores loans with their payments and is the obligation
// store for the loan kind.
type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

var (
	_ loan.Repository  = (*LoanRepository)(nil)
	_ obligation.Store = (*LoanRepository)(nil)
)

func (r *LoanRepository) Create(ctx context.Context, row *loanDatamodel.Loan) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, ownerID, id string) (*loanDatamodel.Loan, error) {
	var row loanDatamodel.Loan
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *LoanRepository) Update(ctx context.Context, row *loanDatamodel.Loan) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&loanDatamodel.Loan{}).
		Where("id = ? AND user_id = ? AND version = ?", row.ID, row.UserID, row.Version).
		Updates(map[string]interface{}{
			"name":              row.Name,
			"type":              row.Type,
			"total_amount":      row.TotalAmount,
			"initial_amount":    row.InitialAmount,
			"recurring_payment": row.RecurringPayment,
			"duration":          row.Duration,
			"start_date":        row.StartDate,
			"next_due_date":     row.NextDueDate,
			"status":            row.Status,
			"version":           row.Version + 1,
			"updated_at":        now,
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

func (r *LoanRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&loanDatamodel.Loan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loan.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) List(ctx context.Context, ownerID string, status *obligation.Status) ([]*loanDatamodel.Loan, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var rows []*loanDatamodel.Loan
	err := query.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *LoanRepository) ListPayments(ctx context.Context, ownerID string, filter loan.PaymentFilter) ([]*loanDatamodel.LoanPayment, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if filter.LoanID != nil {
		query = query.Where("loan_id = ?", *filter.LoanID)
	}
	if filter.From != nil {
		query = query.Where("payment_date >= ?", filter.From.Time())
	}
	if filter.To != nil {
		query = query.Where("payment_date <= ?", filter.To.Time())
	}

	var rows []*loanDatamodel.LoanPayment
	err := query.Order("payment_date DESC").Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *LoanRepository) FindObligation(ctx context.Context, ownerID, id string) (*obligation.Obligation, error) {
	row, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			return nil, obligation.ErrNotFound
		}
		return nil, err
	}
	return loan.ToObligation(row), nil
}

// Commit records the payment and writes the new balance, status and due
// date in one transaction.
func (r *LoanRepository) Commit(ctx context.Context, entry *obligation.Entry, prev, next *obligation.Obligation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(loan.PaymentFromEntry(entry)).Error; err != nil {
			return err
		}

		res := tx.Model(&loanDatamodel.Loan{}).
			Where("id = ? AND user_id = ? AND version = ?", prev.ID, prev.OwnerID, prev.Version).
			Updates(map[string]interface{}{
				"total_amount":  next.RunningTotal,
				"status":        string(next.Status),
				"next_due_date": calendar.TimePtr(next.NextOccurrence),
				"version":       next.Version,
				"updated_at":    time.Now(),
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
