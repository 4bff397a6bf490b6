package loan

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/shopspring/decimal"
)

type CreateLoanDTO struct {
	Name string `json:"name"`
	// Type defaults to bank.
	Type string `json:"type"`
	// TotalAmount may be omitted when both RecurringPayment and Duration are
	// set; it is then their product.
	TotalAmount      *decimal.Decimal `json:"total_amount"`
	InitialAmount    *decimal.Decimal `json:"initial_amount,omitempty"`
	RecurringPayment *decimal.Decimal `json:"recurring_payment,omitempty"`
	Duration         *int             `json:"duration,omitempty"`
	StartDate        *calendar.Date   `json:"start_date,omitempty"`
	NextDueDate      *calendar.Date   `json:"next_due_date,omitempty"`
}

func (d *CreateLoanDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	if d.Type == "" {
		d.Type = string(TypeBank)
	}
	if d.TotalAmount == nil && d.RecurringPayment != nil && d.Duration != nil {
		d.TotalAmount = money.Ptr(d.RecurringPayment.Mul(decimal.NewFromInt(int64(*d.Duration))))
	}
}

func (d CreateLoanDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("type", d.Type).OneOf(types...)
	v.Field("total_amount", d.TotalAmount).Required().NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("initial_amount", d.InitialAmount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("recurring_payment", d.RecurringPayment).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("duration", d.Duration).MinInt(1)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateLoanDTO carries PATCH /loans/{id}. Omitted fields stay unchanged.
type UpdateLoanDTO struct {
	Name             *string          `json:"name,omitempty"`
	Type             *string          `json:"type,omitempty"`
	TotalAmount      *decimal.Decimal `json:"total_amount,omitempty"`
	InitialAmount    *decimal.Decimal `json:"initial_amount,omitempty"`
	RecurringPayment *decimal.Decimal `json:"recurring_payment,omitempty"`
	Duration         *int             `json:"duration,omitempty"`
	StartDate        *calendar.Date   `json:"start_date,omitempty"`
	NextDueDate      *calendar.Date   `json:"next_due_date,omitempty"`
}

func (d UpdateLoanDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).MaxLength(100).Custom(func(interface{}) *internal.AppError {
		if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
			return internal.NewValidationFieldError("name", "name must not be empty", internal.ErrCodeInvalidName)
		}
		return nil
	})
	v.Field("type", d.Type).OneOf(types...)
	v.Field("total_amount", d.TotalAmount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("initial_amount", d.InitialAmount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("recurring_payment", d.RecurringPayment).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("duration", d.Duration).MinInt(1)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type PaymentDTO struct {
	Note string `json:"note"`
}

type LoansResponse struct {
	Loans []*Loan `json:"loans"`
}

type PaymentsResponse struct {
	Payments []*Payment     `json:"payments"`
	Total    decimal.Decimal `json:"total"`
}

// PaymentResult is the outcome of POST /loans/{id}/payments.
type PaymentResult struct {
	Payment *Payment `json:"payment"`
	Loan    *Loan    `json:"loan"`
}

// ParseStatus reads ?status=active|closed; anything else lists every loan.
func ParseStatus(s string) *obligation.Status {
	switch status := obligation.Status(strings.ToLower(strings.TrimSpace(s))); status {
	case obligation.StatusActive, obligation.StatusClosed:
		return &status
	}
	return nil
}

// ParsePaymentFilter reads loan, range, start and end.
func ParsePaymentFilter(q url.Values, today calendar.Date) (PaymentFilter, error) {
	bounds, err := calendar.ResolveBounds(q.Get("range"), q.Get("start"), q.Get("end"), today)
	if err != nil {
		return PaymentFilter{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDate)
	}
	f := PaymentFilter{Bounds: bounds}
	if id := strings.TrimSpace(q.Get("loan")); id != "" && id != "all" {
		f.LoanID = &id
	}
	return f, nil
}
