package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is unique per owner, category and month. Month is the first day of
// the month it applies to.
type Budget struct {
	ID         string          `gorm:"primaryKey;type:uuid"`
	UserID     string          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_budgets_owner_category_month,priority:1"`
	CategoryID string          `gorm:"column:category_id;type:uuid;not null;uniqueIndex:idx_budgets_owner_category_month,priority:2"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Month      time.Time       `gorm:"column:month;type:date;not null;uniqueIndex:idx_budgets_owner_category_month,priority:3"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Budget) TableName() string { return "budgets" }

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
