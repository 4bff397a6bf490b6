package recurring

import (
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
	"github.com/frahmantamala/vesta-ledger/internal/expense"
	"github.com/shopspring/decimal"
)

type CreateRecurringDTO struct {
	Amount     *decimal.Decimal `json:"amount"`
	CategoryID *string          `json:"category_id"`
	// Frequency defaults to monthly.
	Frequency string         `json:"frequency"`
	NextDue   *calendar.Date `json:"next_due"`
	Note      string         `json:"note"`
}

func (d *CreateRecurringDTO) Normalize() {
	d.Note = strings.TrimSpace(d.Note)
	d.Frequency = strings.ToLower(strings.TrimSpace(d.Frequency))
	if d.Frequency == "" {
		d.Frequency = string(calendar.Monthly)
	}
	d.CategoryID = blankToNil(d.CategoryID)
}

func (d CreateRecurringDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).Required().NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("frequency", d.Frequency).Period()
	v.Field("next_due", d.NextDue).Required()
	v.Field("note", d.Note).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateRecurringDTO carries PATCH /recurring-expenses/{id}. Omitted fields
// stay unchanged; an empty category_id clears the category.
type UpdateRecurringDTO struct {
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	CategoryID *string          `json:"category_id,omitempty"`
	Frequency  *string          `json:"frequency,omitempty"`
	NextDue    *calendar.Date   `json:"next_due,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

func (d UpdateRecurringDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("frequency", d.Frequency).Period()
	v.Field("note", d.Note).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RecurringListResponse struct {
	RecurringExpenses []*RecurringExpense `json:"recurring_expenses"`
	// DueCount counts bills due on or before today.
	DueCount int `json:"due_count"`
}

// ProcessResult is the outcome of POST /recurring-expenses/{id}/process.
type ProcessResult struct {
	Expense          *expense.Expense  `json:"expense"`
	RecurringExpense *RecurringExpense `json:"recurring_expense"`
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
