package obligation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockStore struct {
	obligations map[string]*obligation.Obligation
	entries     []obligation.Entry
	shouldFail  bool
	failError   error
}

func newMockStore() *mockStore {
	return &mockStore{obligations: make(map[string]*obligation.Obligation)}
}

func (m *mockStore) FindObligation(ctx context.Context, ownerID, id string) (*obligation.Obligation, error) {
	ob, ok := m.obligations[id]
	if !ok || ob.OwnerID != ownerID {
		return nil, obligation.ErrNotFound
	}
	cp := *ob
	return &cp, nil
}

func (m *mockStore) Commit(ctx context.Context, entry *obligation.Entry, prev, next *obligation.Obligation) error {
	if m.shouldFail {
		return m.failError
	}
	stored := m.obligations[prev.ID]
	if stored.Version != prev.Version {
		return internal.ErrConcurrentUpdate
	}
	m.entries = append(m.entries, *entry)
	cp := *next
	m.obligations[next.ID] = &cp
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

var _ = Describe("Engine", func() {
	var (
		store     *mockStore
		publisher *recordingPublisher
		engine    *obligation.Engine
		ctx       context.Context
		today     = calendar.MustParse("2024-06-10")
	)

	BeforeEach(func() {
		store = newMockStore()
		publisher = &recordingPublisher{}
		engine = obligation.NewEngine(publisher, func() calendar.Date { return today }, slog.New(slog.NewTextHandler(io.Discard, nil)))
		engine.Register(obligation.KindLoan, store)
		ctx = internal.ContextWithUserID(context.Background(), "owner-1")

		store.obligations["loan-1"] = &obligation.Obligation{
			ID:             "loan-1",
			OwnerID:        "owner-1",
			Kind:           obligation.KindLoan,
			Amount:         decPtr("100"),
			Period:         calendar.Monthly,
			NextOccurrence: datePtr("2024-06-01"),
			RunningTotal:   dec("150"),
			Status:         obligation.StatusActive,
			Version:        3,
		}
	})

	It("persists the payment and the reduced balance", func() {
		entry, next, err := engine.Realize(ctx, obligation.KindLoan, "loan-1", "June installment")

		Expect(err).NotTo(HaveOccurred())
		Expect(entry.ID).NotTo(BeEmpty())
		Expect(entry.Note).To(Equal("June installment"))
		Expect(entry.OccurredOn).To(Equal(today))
		Expect(next.RunningTotal.Equal(dec("50"))).To(BeTrue())
		Expect(next.Version).To(Equal(int64(4)))
		Expect(store.entries).To(HaveLen(1))
		Expect(store.obligations["loan-1"].NextOccurrence.String()).To(Equal("2024-07-01"))
		Expect(publisher.types()).To(Equal([]string{events.EventTypeObligationRealized}))
	})

	It("publishes loan.closed when the balance reaches zero", func() {
		_, _, err := engine.Realize(ctx, obligation.KindLoan, "loan-1", "")
		Expect(err).NotTo(HaveOccurred())
		_, next, err := engine.Realize(ctx, obligation.KindLoan, "loan-1", "")
		Expect(err).NotTo(HaveOccurred())

		Expect(next.IsClosed()).To(BeTrue())
		Expect(publisher.types()).To(ContainElement(events.EventTypeLoanClosed))

		_, _, err = engine.Realize(ctx, obligation.KindLoan, "loan-1", "")
		Expect(errors.Is(err, obligation.ErrClosed)).To(BeTrue())
		Expect(store.entries).To(HaveLen(2))
	})

	It("requires an authenticated owner", func() {
		_, _, err := engine.Realize(context.Background(), obligation.KindLoan, "loan-1", "")
		Expect(errors.Is(err, internal.ErrAuthMissing)).To(BeTrue())
		Expect(store.entries).To(BeEmpty())
	})

	It("does not realize obligations of another owner", func() {
		other := internal.ContextWithUserID(context.Background(), "owner-2")
		_, _, err := engine.Realize(other, obligation.KindLoan, "loan-1", "")
		Expect(errors.Is(err, obligation.ErrNotFound)).To(BeTrue())
	})

	It("rejects kinds without a registered store", func() {
		_, _, err := engine.Realize(ctx, obligation.KindSaving, "loan-1", "")
		Expect(errors.Is(err, obligation.ErrUnsupportedKind)).To(BeTrue())
	})

	It("wraps storage failures and publishes nothing", func() {
		store.shouldFail = true
		store.failError = errors.New("connection reset")

		entry, next, err := engine.Realize(ctx, obligation.KindLoan, "loan-1", "")

		Expect(entry).To(BeNil())
		Expect(next).To(BeNil())
		Expect(internal.IsType(err, internal.ErrorTypeStorage)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("connection reset"))
		Expect(publisher.types()).To(BeEmpty())
		Expect(store.obligations["loan-1"].RunningTotal.Equal(dec("150"))).To(BeTrue())
	})

	It("surfaces version conflicts unchanged", func() {
		store.shouldFail = true
		store.failError = internal.ErrConcurrentUpdate

		_, _, err := engine.Realize(ctx, obligation.KindLoan, "loan-1", "")
		Expect(errors.Is(err, internal.ErrConcurrentUpdate)).To(BeTrue())
	})
})
