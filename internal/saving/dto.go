package saving

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	"github.com/shopspring/decimal"
)

type CreateSavingDTO struct {
	Name string `json:"name"`
	// Type defaults to savings_account.
	Type          string           `json:"type"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	// TargetAmount may be omitted when both RecurringContribution and
	// Duration are set; it is then their product.
	TargetAmount          *decimal.Decimal `json:"target_amount,omitempty"`
	RecurringContribution *decimal.Decimal `json:"recurring_contribution,omitempty"`
	Duration              *int             `json:"duration,omitempty"`
	StartDate             *calendar.Date   `json:"start_date,omitempty"`
	NextContributionDate  *calendar.Date   `json:"next_contribution_date,omitempty"`
}

func (d *CreateSavingDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	if d.Type == "" {
		d.Type = string(TypeSavingsAccount)
	}
	if d.CurrentAmount == nil {
		d.CurrentAmount = money.Ptr(decimal.Zero)
	}
	if d.TargetAmount == nil && d.RecurringContribution != nil && d.Duration != nil {
		d.TargetAmount = money.Ptr(d.RecurringContribution.Mul(decimal.NewFromInt(int64(*d.Duration))))
	}
}

func (d CreateSavingDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("type", d.Type).OneOf(types...)
	v.Field("current_amount", d.CurrentAmount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("target_amount", d.TargetAmount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("recurring_contribution", d.RecurringContribution).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("duration", d.Duration).MinInt(1)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateSavingDTO carries PATCH /savings/{id}. Omitted fields stay unchanged.
type UpdateSavingDTO struct {
	Name                  *string          `json:"name,omitempty"`
	Type                  *string          `json:"type,omitempty"`
	CurrentAmount         *decimal.Decimal `json:"current_amount,omitempty"`
	TargetAmount          *decimal.Decimal `json:"target_amount,omitempty"`
	RecurringContribution *decimal.Decimal `json:"recurring_contribution,omitempty"`
	Duration              *int             `json:"duration,omitempty"`
	StartDate             *calendar.Date   `json:"start_date,omitempty"`
	NextContributionDate  *calendar.Date   `json:"next_contribution_date,omitempty"`
}

func (d UpdateSavingDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).MaxLength(100).Custom(func(interface{}) *internal.AppError {
		if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
			return internal.NewValidationFieldError("name", "name must not be empty", internal.ErrCodeInvalidName)
		}
		return nil
	})
	v.Field("type", d.Type).OneOf(types...)
	v.Field("current_amount", d.CurrentAmount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("target_amount", d.TargetAmount).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("recurring_contribution", d.RecurringContribution).NonNegative().MaxAmount(validation.MaxStoredAmount)
	v.Field("duration", d.Duration).MinInt(1)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ContributionDTO struct {
	Note string `json:"note"`
}

type SavingsResponse struct {
	Savings []*Saving `json:"savings"`
}

type ContributionsResponse struct {
	Contributions []*Contribution `json:"contributions"`
	Total         decimal.Decimal `json:"total"`
}

// ContributionResult is the outcome of POST /savings/{id}/contributions.
type ContributionResult struct {
	Contribution *Contribution `json:"contribution"`
	Saving       *Saving       `json:"saving"`
}

// GoalProgress is one goal's share of its target.
type GoalProgress struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Progress *int64 `json:"progress"`
}

type SummaryResponse struct {
	report.SavingsSummary
	Goals []GoalProgress `json:"goals"`
}

// ParseContributionFilter reads saving, range, start and end.
func ParseContributionFilter(q url.Values, today calendar.Date) (ContributionFilter, error) {
	bounds, err := calendar.ResolveBounds(q.Get("range"), q.Get("start"), q.Get("end"), today)
	if err != nil {
		return ContributionFilter{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDate)
	}
	f := ContributionFilter{Bounds: bounds}
	if id := strings.TrimSpace(q.Get("saving")); id != "" && id != "all" {
		f.SavingID = &id
	}
	return f, nil
}
