package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loan.TotalAmount is the outstanding balance, not the original principal.
type Loan struct {
	ID               string              `gorm:"primaryKey;type:uuid"`
	UserID           string              `gorm:"column:user_id;type:uuid;not null;index"`
	Name             string              `gorm:"column:name;not null"`
	Type             string              `gorm:"column:type;not null;default:bank"`
	TotalAmount      decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2);not null"`
	InitialAmount    decimal.NullDecimal `gorm:"column:initial_amount;type:numeric(14,2)"`
	RecurringPayment decimal.NullDecimal `gorm:"column:recurring_payment;type:numeric(14,2)"`
	Duration         *int                `gorm:"column:duration"`
	StartDate        *time.Time          `gorm:"column:start_date;type:date"`
	NextDueDate      *time.Time          `gorm:"column:next_due_date;type:date"`
	Status           string              `gorm:"column:status;not null;default:active"`
	Version          int64               `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// LoanPayment keeps LoanID after the loan is deleted.
type LoanPayment struct {
	ID          string          `gorm:"primaryKey;type:uuid"`
	UserID      string          `gorm:"column:user_id;type:uuid;not null;index"`
	LoanID      *string         `gorm:"column:loan_id;type:uuid;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	PaymentDate time.Time       `gorm:"column:payment_date;type:date;not null"`
	Note        string          `gorm:"column:note"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (LoanPayment) TableName() string { return "loan_payments" }

func (p *LoanPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
