package recurring

import (
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	recurringDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/recurring"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/shopspring/decimal"
)

// RecurringExpense is a bill that turns into an expense each time it is processed.
type RecurringExpense struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"user_id"`
	CategoryID *string         `json:"category_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Frequency  calendar.Period `json:"frequency"`
	NextDue    calendar.Date   `json:"next_due"`
	Note       string          `json:"note"`
	Version    int64           `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

var ErrNotFound = internal.NewNotFoundError("recurring expense not found", internal.ErrCodeObligationNotFound)

// IsDue reports whether the bill is due on or before today.
func (r *RecurringExpense) IsDue(today calendar.Date) bool {
	return !r.NextDue.After(today)
}

func FromDataModel(row *recurringDatamodel.RecurringExpense) *RecurringExpense {
	return &RecurringExpense{
		ID:         row.ID,
		OwnerID:    row.UserID,
		CategoryID: row.CategoryID,
		Amount:     row.Amount,
		Frequency:  calendar.Period(row.Frequency),
		NextDue:    calendar.FromTime(row.NextDue),
		Note:       row.Note,
		Version:    row.Version,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// ToObligation is the engine view of a stored row.
func ToObligation(row *recurringDatamodel.RecurringExpense) *obligation.Obligation {
	amount := row.Amount
	next := calendar.FromTime(row.NextDue)
	return &obligation.Obligation{
		ID:             row.ID,
		OwnerID:        row.UserID,
		Kind:           obligation.KindRecurringExpense,
		CategoryID:     row.CategoryID,
		Amount:         &amount,
		Period:         calendar.Period(row.Frequency),
		NextOccurrence: &next,
		Note:           row.Note,
		Version:        row.Version,
	}
}
