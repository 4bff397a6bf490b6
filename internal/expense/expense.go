package expense

import (
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	expenseDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/shopspring/decimal"
)

// Expense is a realized spending entry, either logged by hand or generated
// from a recurring expense.
type Expense struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"user_id"`
	CategoryID         *string         `json:"category_id"`
	Category           string          `json:"category"`
	RecurringExpenseID *string         `json:"recurring_expense_id,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Date               calendar.Date   `json:"date"`
	Note               string          `json:"note"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Filter narrows List. Empty fields do not filter.
type Filter struct {
	calendar.Bounds
	CategoryID *string
	// Search matches the note case-insensitively.
	Search string
}

var ErrNotFound = internal.NewNotFoundError("expense not found", internal.ErrCodeExpenseNotFound)

func (e *Expense) ToEntry() obligation.Entry {
	return obligation.Entry{
		ID:           e.ID,
		OwnerID:      e.OwnerID,
		Kind:         obligation.KindRecurringExpense,
		ObligationID: e.RecurringExpenseID,
		CategoryID:   e.CategoryID,
		Amount:       e.Amount,
		OccurredOn:   e.Date,
		Note:         e.Note,
	}
}

// FromEntry builds the row for an entry produced by the obligation engine.
func FromEntry(entry *obligation.Entry) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:                 entry.ID,
		UserID:             entry.OwnerID,
		CategoryID:         entry.CategoryID,
		RecurringExpenseID: entry.ObligationID,
		Amount:             entry.Amount,
		Note:               entry.Note,
		Date:               entry.OccurredOn.Time(),
	}
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:                 e.ID,
		UserID:             e.OwnerID,
		CategoryID:         e.CategoryID,
		RecurringExpenseID: e.RecurringExpenseID,
		Amount:             e.Amount,
		Note:               e.Note,
		Date:               e.Date.Time(),
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:                 e.ID,
		OwnerID:            e.UserID,
		CategoryID:         e.CategoryID,
		RecurringExpenseID: e.RecurringExpenseID,
		Amount:             e.Amount,
		Date:               calendar.FromTime(e.Date),
		Note:               e.Note,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}
