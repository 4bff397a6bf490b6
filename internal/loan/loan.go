package loan

import (
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	loanDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/loan"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeBank       Type = "bank"
	TypeJewelry    Type = "jewelry"
	TypePersonal   Type = "personal"
	TypeCreditCard Type = "credit_card"
	TypeOther      Type = "other"
)

var types = []string{string(TypeBank), string(TypeJewelry), string(TypePersonal), string(TypeCreditCard), string(TypeOther)}

// Loan is a debt paid down in monthly installments. TotalAmount is the
// outstanding balance.
type Loan struct {
	ID               string            `json:"id"`
	OwnerID          string            `json:"user_id"`
	Name             string            `json:"name"`
	Type             Type              `json:"type"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	InitialAmount    *decimal.Decimal  `json:"initial_amount"`
	RecurringPayment *decimal.Decimal  `json:"recurring_payment"`
	Duration         *int              `json:"duration"`
	StartDate        *calendar.Date    `json:"start_date"`
	NextDueDate      *calendar.Date    `json:"next_due_date"`
	Status           obligation.Status `json:"status"`
	// MonthsPaid counts the payments recorded against the loan.
	MonthsPaid int       `json:"months_paid"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Payment is one installment. LoanName falls back to "Deleted" once the
// loan is gone.
type Payment struct {
	ID          string          `json:"id"`
	LoanID      *string         `json:"loan_id"`
	LoanName    string          `json:"loan_name"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate calendar.Date   `json:"payment_date"`
	Note        string          `json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentFilter narrows the payment history.
type PaymentFilter struct {
	calendar.Bounds
	LoanID *string
}

var ErrNotFound = internal.NewNotFoundError("loan not found", internal.ErrCodeObligationNotFound)

func (l *Loan) IsClosed() bool {
	return l.Status == obligation.StatusClosed
}

func FromDataModel(row *loanDatamodel.Loan) *Loan {
	return &Loan{
		ID:               row.ID,
		OwnerID:          row.UserID,
		Name:             row.Name,
		Type:             Type(row.Type),
		TotalAmount:      row.TotalAmount,
		InitialAmount:    money.FromNull(row.InitialAmount),
		RecurringPayment: money.FromNull(row.RecurringPayment),
		Duration:         row.Duration,
		StartDate:        calendar.Ptr(row.StartDate),
		NextDueDate:      calendar.Ptr(row.NextDueDate),
		Status:           obligation.Status(row.Status),
		Version:          row.Version,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

// ApplyRealization copies the engine's result of one payment onto the loan
// as it was read before the payment.
func (l *Loan) ApplyRealization(next *obligation.Obligation, at time.Time) {
	l.TotalAmount = next.RunningTotal
	l.NextDueDate = next.NextOccurrence
	l.Status = next.Status
	l.Version = next.Version
	l.MonthsPaid++
	l.UpdatedAt = at
}

// ToObligation is the engine view of a stored loan.
func ToObligation(row *loanDatamodel.Loan) *obligation.Obligation {
	return &obligation.Obligation{
		ID:             row.ID,
		OwnerID:        row.UserID,
		Kind:           obligation.KindLoan,
		Amount:         money.FromNull(row.RecurringPayment),
		Period:         calendar.Monthly,
		NextOccurrence: calendar.Ptr(row.NextDueDate),
		RunningTotal:   row.TotalAmount,
		InitialAmount:  money.FromNull(row.InitialAmount),
		Status:         obligation.Status(row.Status),
		Note:           row.Name,
		Version:        row.Version,
	}
}

func PaymentFromDataModel(row *loanDatamodel.LoanPayment) *Payment {
	return &Payment{
		ID:          row.ID,
		LoanID:      row.LoanID,
		Amount:      row.Amount,
		PaymentDate: calendar.FromTime(row.PaymentDate),
		Note:        row.Note,
		CreatedAt:   row.CreatedAt,
	}
}

// PaymentFromEntry builds the row for a payment produced by the engine.
func PaymentFromEntry(entry *obligation.Entry) *loanDatamodel.LoanPayment {
	return &loanDatamodel.LoanPayment{
		ID:          entry.ID,
		UserID:      entry.OwnerID,
		LoanID:      entry.ObligationID,
		Amount:      entry.Amount,
		PaymentDate: entry.OccurredOn.Time(),
		Note:        entry.Note,
	}
}

func (p *Payment) ToEntry() obligation.Entry {
	return obligation.Entry{
		ID:           p.ID,
		Kind:         obligation.KindLoan,
		ObligationID: p.LoanID,
		Amount:       p.Amount,
		OccurredOn:   p.PaymentDate,
		Note:         p.Note,
	}
}
