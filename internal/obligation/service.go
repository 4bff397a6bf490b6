package obligation

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	"github.com/google/uuid"
)

// Store persists one obligation kind.
type Store interface {
	// FindObligation returns ErrNotFound when id does not exist for ownerID.
	FindObligation(ctx context.Context, ownerID, id string) (*Obligation, error)
	// Commit inserts entry and writes next in one transaction. The write only
	// applies while the stored version still equals prev.Version; otherwise it
	// returns internal.ErrConcurrentUpdate and nothing is persisted.
	Commit(ctx context.Context, entry *Entry, prev, next *Obligation) error
}

// Realizer is the engine entry point used by the domain services.
type Realizer interface {
	Realize(ctx context.Context, kind Kind, id, note string) (*Entry, *Obligation, error)
}

type Engine struct {
	stores    map[Kind]Store
	publisher events.Publisher
	today     func() calendar.Date
	logger    *slog.Logger
}

func NewEngine(publisher events.Publisher, today func() calendar.Date, logger *slog.Logger) *Engine {
	if today == nil {
		today = func() calendar.Date { return calendar.Today(nil) }
	}
	return &Engine{
		stores:    make(map[Kind]Store),
		publisher: publisher,
		today:     today,
		logger:    logger,
	}
}

// Register binds the store for kind. It is called once during wiring.
func (e *Engine) Register(kind Kind, store Store) {
	e.stores[kind] = store
}

// Realize loads the obligation owned by the caller, executes one occurrence
// and persists the resulting entry and obligation atomically. note replaces
// the entry note for kinds that do not generate their own.
func (e *Engine) Realize(ctx context.Context, kind Kind, id, note string) (*Entry, *Obligation, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, ok := e.stores[kind]
	if !ok {
		return nil, nil, ErrUnsupportedKind
	}

	prev, err := store.FindObligation(ctx, ownerID, id)
	if err != nil {
		return nil, nil, storageError(err, "failed to load obligation")
	}

	entry, next, err := Realize(*prev, e.today())
	if err != nil {
		return nil, nil, err
	}

	entry.ID = uuid.NewString()
	if capability, _ := CapabilityOf(kind); capability.NotePrefix == "" {
		entry.Note = note
	}
	next.Version = prev.Version + 1

	if err := store.Commit(ctx, &entry, prev, &next); err != nil {
		e.logger.Error("Realize: commit failed",
			"error", err,
			"kind", kind,
			"obligation_id", id,
			"owner_id", ownerID)
		return nil, nil, storageError(err, "failed to persist realization")
	}

	e.logger.Info("obligation realized",
		"kind", kind,
		"obligation_id", id,
		"entry_id", entry.ID,
		"amount", entry.Amount.String(),
		"owner_id", ownerID)

	e.publish(ctx, &entry, prev, &next)

	return &entry, &next, nil
}

func (e *Engine) publish(ctx context.Context, entry *Entry, prev, next *Obligation) {
	if e.publisher == nil {
		return
	}

	realized := events.NewObligationRealizedEvent(
		entry.OwnerID,
		string(entry.Kind),
		next.ID,
		entry.ID,
		entry.Amount.String(),
		entry.OccurredOn.String(),
		next.RunningTotal.String(),
	)
	if err := e.publisher.Publish(ctx, realized); err != nil {
		e.logger.Warn("failed to publish realization event", "error", err, "obligation_id", next.ID)
	}

	if !prev.IsClosed() && next.IsClosed() {
		closed := events.NewLoanClosedEvent(entry.OwnerID, next.ID, entry.OccurredOn.String())
		if err := e.publisher.Publish(ctx, closed); err != nil {
			e.logger.Warn("failed to publish loan closed event", "error", err, "obligation_id", next.ID)
		}
	}
}

// storageError keeps domain errors as they are and wraps anything else.
func storageError(err error, message string) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewStorageError(message, err)
}
