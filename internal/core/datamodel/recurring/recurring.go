package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecurringExpense struct {
	ID         string          `gorm:"primaryKey;type:uuid"`
	UserID     string          `gorm:"column:user_id;type:uuid;not null;index"`
	CategoryID *string         `gorm:"column:category_id;type:uuid;index"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Frequency  string          `gorm:"column:frequency;not null;default:monthly"`
	NextDue    time.Time       `gorm:"column:next_due;type:date;not null"`
	Note       string          `gorm:"column:note"`
	Version    int64           `gorm:"column:version;not null;default:1"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (RecurringExpense) TableName() string { return "recurring_expenses" }

func (r *RecurringExpense) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
