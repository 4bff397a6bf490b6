package budget

import (
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// UpsertBudgetDTO carries PUT /budgets. Month is YYYY-MM or any date inside
// the month; it defaults to the current month.
type UpsertBudgetDTO struct {
	CategoryID string           `json:"category_id"`
	Amount     *decimal.Decimal `json:"amount"`
	Month      string           `json:"month,omitempty"`
}

func (d UpsertBudgetDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("category_id", d.CategoryID).Required()
	v.Field("amount", d.Amount).Required().MaxAmount(validation.MaxStoredAmount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type BudgetsResponse struct {
	Month   calendar.Date `json:"month"`
	Budgets []*Progress   `json:"budgets"`
}

// ParseMonth returns the first day of the month named by s, or of today's
// month when s is empty.
func ParseMonth(s string, today calendar.Date) (calendar.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return calendar.StartOfMonth(today), nil
	}
	if len(s) == len("2006-01") {
		s += "-01"
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, internal.NewValidationFieldError("month", "month must be YYYY-MM", internal.ErrCodeInvalidDate)
	}
	return calendar.StartOfMonth(d), nil
}
