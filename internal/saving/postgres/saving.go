package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	savingDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/saving"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/saving"
	"gorm.io/gorm"
)

// SavingRepository stores savings goals with their contributions and is the
// obligation store for the saving kind.
type SavingRepository struct {
	db *gorm.DB
}

func NewSavingRepository(db *gorm.DB) *SavingRepository {
	return &SavingRepository{db: db}
}

var (
	_ saving.Repository = (*SavingRepository)(nil)
	_ obligation.Store  = (*SavingRepository)(nil)
)

func (r *SavingRepository) Create(ctx context.Context, row *savingDatamodel.Saving) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *SavingRepository) GetByID(ctx context.Context, ownerID, id string) (*savingDatamodel.Saving, error) {
	var row savingDatamodel.Saving
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, saving.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *SavingRepository) Update(ctx context.Context, row *savingDatamodel.Saving) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&savingDatamodel.Saving{}).
		Where("id = ? AND user_id = ? AND version = ?", row.ID, row.UserID, row.Version).
		Updates(map[string]interface{}{
			"name":                   row.Name,
			"type":                   row.Type,
			"current_amount":         row.CurrentAmount,
			"target_amount":          row.TargetAmount,
			"recurring_contribution": row.RecurringContribution,
			"duration":               row.Duration,
			"start_date":             row.StartDate,
			"next_contribution_date": row.NextContributionDate,
			"version":                row.Version + 1,
			"updated_at":             now,
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

func (r *SavingRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&savingDatamodel.Saving{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return saving.ErrNotFound
	}
	return nil
}

func (r *SavingRepository) List(ctx context.Context, ownerID string) ([]*savingDatamodel.Saving, error) {
	var rows []*savingDatamodel.Saving
	err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *SavingRepository) ListContributions(ctx context.Context, ownerID string, filter saving.ContributionFilter) ([]*savingDatamodel.SavingsContribution, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if filter.SavingID != nil {
		query = query.Where("saving_id = ?", *filter.SavingID)
	}
	if filter.From != nil {
		query = query.Where("contribution_date >= ?", filter.From.Time())
	}
	if filter.To != nil {
		query = query.Where("contribution_date <= ?", filter.To.Time())
	}

	var rows []*savingDatamodel.SavingsContribution
	err := query.Order("contribution_date DESC").Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *SavingRepository) FindObligation(ctx context.Context, ownerID, id string) (*obligation.Obligation, error) {
	row, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, saving.ErrNotFound) {
			return nil, obligation.ErrNotFound
		}
		return nil, err
	}
	return saving.ToObligation(row), nil
}

// Commit records the contribution and writes the new balance and date in
// one transaction.
func (r *SavingRepository) Commit(ctx context.Context, entry *obligation.Entry, prev, next *obligation.Obligation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(saving.ContributionFromEntry(entry)).Error; err != nil {
			return err
		}

		res := tx.Model(&savingDatamodel.Saving{}).
			Where("id = ? AND user_id = ? AND version = ?", prev.ID, prev.OwnerID, prev.Version).
			Updates(map[string]interface{}{
				"current_amount":         next.RunningTotal,
				"next_contribution_date": calendar.TimePtr(next.NextOccurrence),
				"version":                next.Version,
				"updated_at":             time.Now(),
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
