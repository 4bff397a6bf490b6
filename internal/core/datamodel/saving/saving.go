package saving

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Saving struct {
	ID                    string              `gorm:"primaryKey;type:uuid"`
	UserID                string              `gorm:"column:user_id;type:uuid;not null;index"`
	Name                  string              `gorm:"column:name;not null"`
	Type                  string              `gorm:"column:type;not null;default:savings_account"`
	CurrentAmount         decimal.Decimal     `gorm:"column:current_amount;type:numeric(14,2);not null"`
	TargetAmount          decimal.NullDecimal `gorm:"column:target_amount;type:numeric(14,2)"`
	RecurringContribution decimal.NullDecimal `gorm:"column:recurring_contribution;type:numeric(14,2)"`
	Duration              *int                `gorm:"column:duration"`
	StartDate             *time.Time          `gorm:"column:start_date;type:date"`
	NextContributionDate  *time.Time          `gorm:"column:next_contribution_date;type:date"`
	Version               int64               `gorm:"column:version;not null;default:1"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Saving) TableName() string { return "savings" }

func (s *Saving) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SavingsContribution keeps SavingID after the goal is deleted.
type SavingsContribution struct {
	ID               string          `gorm:"primaryKey;type:uuid"`
	UserID           string          `gorm:"column:user_id;type:uuid;not null;index"`
	SavingID         *string         `gorm:"column:saving_id;type:uuid;index"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	ContributionDate time.Time       `gorm:"column:contribution_date;type:date;not null"`
	Note             string          `gorm:"column:note"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (SavingsContribution) TableName() string { return "savings_contributions" }

func (c *SavingsContribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
