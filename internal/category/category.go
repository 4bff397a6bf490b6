package category

import (
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	categoryDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/category"
)

// Category is either a shared default (OwnerID nil) or owned by one user.
type Category struct {
	ID        string    `json:"id"`
	OwnerID   *string   `json:"user_id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// EditableBy reports whether ownerID may rename or delete the category.
func (c *Category) EditableBy(ownerID string) bool {
	return !c.IsDefault && c.OwnerID != nil && *c.OwnerID == ownerID
}

// Usage counts the rows that reference a category.
type Usage struct {
	Expenses          int64 `json:"expenses"`
	RecurringExpenses int64 `json:"recurring_expenses"`
	Budgets           int64 `json:"budgets"`
}

// Total counts expenses and recurring expenses. Budgets do not block deletion.
func (u Usage) Total() int64 {
	return u.Expenses + u.RecurringExpenses
}

var (
	ErrNotFound        = internal.NewNotFoundError("category not found", internal.ErrCodeCategoryNotFound)
	ErrDefaultReadOnly = internal.NewForbiddenError("default categories cannot be modified", internal.ErrCodeDefaultCategory)
	ErrInUse           = internal.NewConflictError("category is in use; pass confirm=true to delete it with its expenses", internal.ErrCodeCategoryInUse)
)

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:        c.ID,
		UserID:    c.OwnerID,
		Name:      c.Name,
		Emoji:     c.Emoji,
		IsDefault: c.IsDefault,
		CreatedAt: c.CreatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:        c.ID,
		OwnerID:   c.UserID,
		Name:      c.Name,
		Emoji:     c.Emoji,
		IsDefault: c.IsDefault,
		CreatedAt: c.CreatedAt,
	}
}
