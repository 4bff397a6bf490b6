package saving

import (
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	savingDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/saving"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSavingsAccount Type = "savings_account"
	TypeFixedDeposit   Type = "fd"
	TypeSIP            Type = "sip"
	TypeGold           Type = "gold"
	TypeOther          Type = "other"
)

var types = []string{string(TypeSavingsAccount), string(TypeFixedDeposit), string(TypeSIP), string(TypeGold), string(TypeOther)}

// Saving is a goal funded by monthly contributions.
type Saving struct {
	ID                    string           `json:"id"`
	OwnerID               string           `json:"user_id"`
	Name                  string           `json:"name"`
	Type                  Type             `json:"type"`
	CurrentAmount         decimal.Decimal  `json:"current_amount"`
	TargetAmount          *decimal.Decimal `json:"target_amount"`
	RecurringContribution *decimal.Decimal `json:"recurring_contribution"`
	Duration              *int             `json:"duration"`
	StartDate             *calendar.Date   `json:"start_date"`
	NextContributionDate  *calendar.Date   `json:"next_contribution_date"`
	// Progress is nil without a positive target.
	Progress  *int64    `json:"progress"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contribution is one deposit. SavingName falls back to "Deleted" once the
// goal is gone.
type Contribution struct {
	ID               string          `json:"id"`
	SavingID         *string         `json:"saving_id"`
	SavingName       string          `json:"saving_name"`
	Amount           decimal.Decimal `json:"amount"`
	ContributionDate calendar.Date   `json:"contribution_date"`
	Note             string          `json:"note"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ContributionFilter struct {
	calendar.Bounds
	SavingID *string
}

var ErrNotFound = internal.NewNotFoundError("saving not found", internal.ErrCodeObligationNotFound)

func FromDataModel(row *savingDatamodel.Saving) *Saving {
	s := &Saving{
		ID:                    row.ID,
		OwnerID:               row.UserID,
		Name:                  row.Name,
		Type:                  Type(row.Type),
		CurrentAmount:         row.CurrentAmount,
		TargetAmount:          money.FromNull(row.TargetAmount),
		RecurringContribution: money.FromNull(row.RecurringContribution),
		Duration:              row.Duration,
		StartDate:             calendar.Ptr(row.StartDate),
		NextContributionDate:  calendar.Ptr(row.NextContributionDate),
		Version:               row.Version,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
	if pct, ok := report.SavingsProgress(*ToObligation(row)); ok {
		s.Progress = &pct
	}
	return s
}

// ApplyRealization copies the engine's result of one contribution onto the
// goal as it was read before the contribution.
func (s *Saving) ApplyRealization(next *obligation.Obligation, at time.Time) {
	s.CurrentAmount = next.RunningTotal
	s.NextContributionDate = next.NextOccurrence
	s.Version = next.Version
	s.UpdatedAt = at
	s.Progress = nil
	if pct, ok := report.SavingsProgress(*next); ok {
		s.Progress = &pct
	}
}

// ToObligation is the engine view of a stored goal.
func ToObligation(row *savingDatamodel.Saving) *obligation.Obligation {
	return &obligation.Obligation{
		ID:             row.ID,
		OwnerID:        row.UserID,
		Kind:           obligation.KindSaving,
		Amount:         money.FromNull(row.RecurringContribution),
		Period:         calendar.Monthly,
		NextOccurrence: calendar.Ptr(row.NextContributionDate),
		RunningTotal:   row.CurrentAmount,
		Target:         money.FromNull(row.TargetAmount),
		Note:           row.Name,
		Version:        row.Version,
	}
}

func ContributionFromDataModel(row *savingDatamodel.SavingsContribution) *Contribution {
	return &Contribution{
		ID:               row.ID,
		SavingID:         row.SavingID,
		Amount:           row.Amount,
		ContributionDate: calendar.FromTime(row.ContributionDate),
		Note:             row.Note,
		CreatedAt:        row.CreatedAt,
	}
}

// ContributionFromEntry builds the row for a contribution produced by the engine.
func ContributionFromEntry(entry *obligation.Entry) *savingDatamodel.SavingsContribution {
	return &savingDatamodel.SavingsContribution{
		ID:               entry.ID,
		UserID:           entry.OwnerID,
		SavingID:         entry.ObligationID,
		Amount:           entry.Amount,
		ContributionDate: entry.OccurredOn.Time(),
		Note:             entry.Note,
	}
}
