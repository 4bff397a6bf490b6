package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Expense struct {
	ID                 string          `gorm:"primaryKey;type:uuid"`
	UserID             string          `gorm:"column:user_id;type:uuid;not null;index:idx_expenses_owner_date,priority:1"`
	CategoryID         *string         `gorm:"column:category_id;type:uuid;index"`
	RecurringExpenseID *string         `gorm:"column:recurring_expense_id;type:uuid"`
	Amount             decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Note               string          `gorm:"column:note"`
	Date               time.Time       `gorm:"column:date;type:date;not null;index:idx_expenses_owner_date,priority:2"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string { return "expenses" }

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
