package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeObligationRealized = "obligation.realized"
	EventTypeLoanClosed         = "loan.closed"
	EventTypeCategoryDeleted    = "category.deleted"
)

// AllEventTypes lists every event the ledger emits.
var AllEventTypes = []string{
	EventTypeObligationRealized,
	EventTypeLoanClosed,
	EventTypeCategoryDeleted,
}

type ObligationRealizedEvent struct {
	BaseEvent
	OwnerID      string `json:"owner_id"`
	Kind         string `json:"kind"`
	ObligationID string `json:"obligation_id"`
	EntryID      string `json:"entry_id"`
	Amount       string `json:"amount"`
	OccurredOn   string `json:"occurred_on"`
	RunningTotal string `json:"running_total"`
}

func NewObligationRealizedEvent(ownerID, kind, obligationID, entryID, amount, occurredOn, runningTotal string) *ObligationRealizedEvent {
	return &ObligationRealizedEvent{
		BaseEvent: newBase(EventTypeObligationRealized, map[string]interface{}{
			"owner_id":      ownerID,
			"kind":          kind,
			"obligation_id": obligationID,
			"entry_id":      entryID,
			"amount":        amount,
			"occurred_on":   occurredOn,
			"running_total": runningTotal,
		}),
		OwnerID:      ownerID,
		Kind:         kind,
		ObligationID: obligationID,
		EntryID:      entryID,
		Amount:       amount,
		OccurredOn:   occurredOn,
		RunningTotal: runningTotal,
	}
}

type LoanClosedEvent struct {
	BaseEvent
	OwnerID  string `json:"owner_id"`
	LoanID   string `json:"loan_id"`
	ClosedOn string `json:"closed_on"`
}

func NewLoanClosedEvent(ownerID, loanID, closedOn string) *LoanClosedEvent {
	return &LoanClosedEvent{
		BaseEvent: newBase(EventTypeLoanClosed, map[string]interface{}{
			"owner_id":  ownerID,
			"loan_id":   loanID,
			"closed_on": closedOn,
		}),
		OwnerID:  ownerID,
		LoanID:   loanID,
		ClosedOn: closedOn,
	}
}

type CategoryDeletedEvent struct {
	BaseEvent
	OwnerID         string `json:"owner_id"`
	CategoryID      string `json:"category_id"`
	ExpensesRemoved int64  `json:"expenses_removed"`
}

func NewCategoryDeletedEvent(ownerID, categoryID string, expensesRemoved int64) *CategoryDeletedEvent {
	return &CategoryDeletedEvent{
		BaseEvent: newBase(EventTypeCategoryDeleted, map[string]interface{}{
			"owner_id":         ownerID,
			"category_id":      categoryID,
			"expenses_removed": expensesRemoved,
		}),
		OwnerID:         ownerID,
		CategoryID:      categoryID,
		ExpensesRemoved: expensesRemoved,
	}
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
