package obligation

import (
	"context"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
)

// Realize executes one occurrence of ob on today. It returns the ledger entry
// to insert and the obligation state to persist. ob itself is not modified.
//
// The running total moves according to the kind's capability, the next
// occurrence advances one period from its current value, and a loan whose
// balance reaches zero is closed.
func Realize(ob Obligation, today calendar.Date) (Entry, Obligation, error) {
	capability, ok := CapabilityOf(ob.Kind)
	if !ok {
		return Entry{}, Obligation{}, ErrUnsupportedKind
	}
	if ob.Amount == nil {
		return Entry{}, Obligation{}, ErrNoPeriodicAmount
	}
	if ob.Amount.IsNegative() {
		return Entry{}, Obligation{}, ErrNegativeAmount
	}
	if capability.ClosesAtZero && !newStatusMachine(&ob).CanSettle() {
		return Entry{}, Obligation{}, ErrClosed
	}

	amount := *ob.Amount
	obligationID := ob.ID

	entry := Entry{
		OwnerID:      ob.OwnerID,
		Kind:         ob.Kind,
		ObligationID: &obligationID,
		Amount:       amount,
		OccurredOn:   today,
	}
	if capability.NotePrefix != "" {
		entry.Note = capability.NotePrefix + ob.Note
	}
	if capability.CarriesCategory && ob.CategoryID != nil {
		categoryID := *ob.CategoryID
		entry.CategoryID = &categoryID
	}

	next := ob
	switch capability.Direction {
	case DirectionDecrease:
		next.RunningTotal = money.ClampZero(ob.RunningTotal.Sub(amount))
	case DirectionIncrease:
		next.RunningTotal = ob.RunningTotal.Add(amount)
	}

	if ob.NextOccurrence != nil {
		advanced := calendar.Advance(*ob.NextOccurrence, ob.Period)
		next.NextOccurrence = &advanced
	}

	if capability.ClosesAtZero {
		if next.Status == "" {
			next.Status = StatusActive
		}
		if next.RunningTotal.IsZero() {
			if err := newStatusMachine(&next).Settle(context.Background()); err != nil {
				return Entry{}, Obligation{}, err
			}
		}
	}

	return entry, next, nil
}
