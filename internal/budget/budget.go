package budget

import (
	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	budgetDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/budget"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	"github.com/shopspring/decimal"
)

// Budget caps spending in one category for one month.
type Budget struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"user_id"`
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	// Month is the first day of the budgeted month.
	Month calendar.Date `json:"month"`
}

// Progress is a budget with what was spent against it.
type Progress struct {
	*Budget
	report.BudgetStatus
}

var (
	ErrNotFound       = internal.NewNotFoundError("budget not found", internal.ErrCodeBudgetNotFound)
	ErrNegativeAmount = internal.NewInvalidOperationError("budget amount must not be negative", internal.ErrCodeNegativeBudget)
)

func FromDataModel(b *budgetDatamodel.Budget) *Budget {
	return &Budget{
		ID:         b.ID,
		OwnerID:    b.UserID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Month:      calendar.FromTime(b.Month),
	}
}
