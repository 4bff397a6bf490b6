// Package obligation implements the periodic-obligation ledger shared by
// recurring expenses, loans and savings goals. An obligation is realized
// into an immutable ledger entry and rolled forward by one period.
package obligation

import (
	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindRecurringExpense Kind = "recurring_expense"
	KindLoan             Kind = "loan"
	KindSaving           Kind = "saving"
)

// Direction is how a realization moves the running total.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionDecrease
	DirectionIncrease
)

// Capability describes the behaviour of one obligation kind.
type Capability struct {
	Direction    Direction
	HasTarget    bool
	ClosesAtZero bool
	// NotePrefix is prepended to the obligation note on generated entries.
	// Kinds without a prefix take the caller supplied note instead.
	NotePrefix string
	// CarriesCategory copies the obligation category onto its entries.
	CarriesCategory bool
}

var capabilities = map[Kind]Capability{
	KindRecurringExpense: {Direction: DirectionNone, NotePrefix: "Recurring: ", CarriesCategory: true},
	KindLoan:             {Direction: DirectionDecrease, ClosesAtZero: true},
	KindSaving:           {Direction: DirectionIncrease, HasTarget: true},
}

func CapabilityOf(k Kind) (Capability, bool) {
	c, ok := capabilities[k]
	return c, ok
}

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Obligation is the kind-agnostic view of a recurring expense, loan or savings goal.
type Obligation struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"owner_id"`
	Kind           Kind             `json:"kind"`
	CategoryID     *string          `json:"category_id,omitempty"`
	Amount         *decimal.Decimal `json:"amount"`
	Period         calendar.Period  `json:"period"`
	NextOccurrence *calendar.Date   `json:"next_occurrence"`
	RunningTotal   decimal.Decimal  `json:"running_total"`
	Target         *decimal.Decimal `json:"target,omitempty"`
	InitialAmount  *decimal.Decimal `json:"initial_amount,omitempty"`
	Status         Status           `json:"status,omitempty"`
	Note           string           `json:"note,omitempty"`
	Version        int64            `json:"version"`
}

// Entry is a realized ledger row: an expense, a loan payment or a savings contribution.
type Entry struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Kind         Kind            `json:"kind"`
	ObligationID *string         `json:"obligation_id,omitempty"`
	CategoryID   *string         `json:"category_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredOn   calendar.Date   `json:"occurred_on"`
	Note         string          `json:"note"`
}

// IsClosed treats an empty status as active.
func (o Obligation) IsClosed() bool {
	return o.Status == StatusClosed
}

var (
	ErrNotFound         = internal.NewNotFoundError("obligation not found", internal.ErrCodeObligationNotFound)
	ErrNoPeriodicAmount = internal.NewInvalidOperationError("obligation has no periodic amount to realize", internal.ErrCodeNoPeriodicAmount)
	ErrNegativeAmount   = internal.NewInvalidOperationError("periodic amount must not be negative", internal.ErrCodeInvalidAmount)
	ErrClosed           = internal.NewInvalidOperationError("obligation is already closed", internal.ErrCodeObligationClosed)
	ErrUnsupportedKind  = internal.NewInvalidOperationError("unsupported obligation kind", internal.ErrCodeUnsupportedKind)
	ErrReopen           = internal.NewInvalidOperationError("a closed obligation cannot be given a balance again", internal.ErrCodeInvalidStatusChange)
)
