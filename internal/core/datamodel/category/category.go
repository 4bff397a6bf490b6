package category

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category rows with a nil UserID are the shared defaults.
type Category struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	UserID    *string   `gorm:"column:user_id;type:uuid;index"`
	Name      string    `gorm:"column:name;not null"`
	Emoji     string    `gorm:"column:emoji"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
