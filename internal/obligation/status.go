package obligation

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

const eventSettle = "settle"

// statusMachine wraps an obligation with its lifecycle state machine.
// The only transition is active -> closed, taken when the balance is paid off.
type statusMachine struct {
	ob  *Obligation
	fsm *fsm.FSM
}

func newStatusMachine(ob *Obligation) *statusMachine {
	current := ob.Status
	if current == "" {
		current = StatusActive
	}

	return &statusMachine{
		ob: ob,
		fsm: fsm.NewFSM(
			string(current),
			fsm.Events{
				{Name: eventSettle, Src: []string{string(StatusActive)}, Dst: string(StatusClosed)},
			},
			fsm.Callbacks{},
		),
	}
}

func (m *statusMachine) Settle(ctx context.Context) error {
	if err := m.fsm.Event(ctx, eventSettle); err != nil {
		return fmt.Errorf("failed to settle obligation %s: %w", m.ob.ID, err)
	}
	m.ob.Status = Status(m.fsm.Current())
	return nil
}

func (m *statusMachine) CanSettle() bool {
	return m.fsm.Can(eventSettle)
}

// SyncStatus applies a manual balance edit to the status: a balance edited
// down to zero closes the obligation, and a closed one cannot be given a
// balance again.
func SyncStatus(ctx context.Context, ob *Obligation) error {
	if capability, _ := CapabilityOf(ob.Kind); !capability.ClosesAtZero {
		return nil
	}
	if ob.IsClosed() {
		if ob.RunningTotal.IsPositive() {
			return ErrReopen
		}
		return nil
	}
	if ob.RunningTotal.IsZero() {
		return newStatusMachine(ob).Settle(ctx)
	}
	return nil
}
