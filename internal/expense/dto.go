package expense

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type CreateExpenseDTO struct {
	Amount     *decimal.Decimal `json:"amount"`
	CategoryID *string          `json:"category_id"`
	// Date defaults to today.
	Date *calendar.Date `json:"date,omitempty"`
	Note string         `json:"note"`
}

func (d *CreateExpenseDTO) Normalize() {
	d.Note = strings.TrimSpace(d.Note)
	d.CategoryID = blankToNil(d.CategoryID)
}

func (d CreateExpenseDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).Required().Positive().MaxAmount(validation.MaxStoredAmount)
	v.Field("note", d.Note).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateExpenseDTO carries PATCH /expenses/{id}. Omitted fields are left
// unchanged; an empty category_id clears the category.
type UpdateExpenseDTO struct {
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	CategoryID *string          `json:"category_id,omitempty"`
	Date       *calendar.Date   `json:"date,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

func (d UpdateExpenseDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).Positive().MaxAmount(validation.MaxStoredAmount)
	v.Field("note", d.Note).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ExpensesResponse struct {
	Expenses []*Expense      `json:"expenses"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// ParseFilter reads range, start, end, category and search from a query string.
func ParseFilter(q url.Values, today calendar.Date) (Filter, error) {
	bounds, err := calendar.ResolveBounds(q.Get("range"), q.Get("start"), q.Get("end"), today)
	if err != nil {
		return Filter{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDate)
	}

	f := Filter{Bounds: bounds, Search: strings.TrimSpace(q.Get("search"))}
	if c := strings.TrimSpace(q.Get("category")); c != "" && c != "all" {
		f.CategoryID = &c
	}
	return f, nil
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
