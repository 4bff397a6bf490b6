package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers asynchronously published events to every subscriber", func() {
		var calls int32
		bus.SubscribeAll([]string{events.EventTypeLoanClosed}, func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
		bus.Subscribe(events.EventTypeLoanClosed, func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		Expect(bus.Publish(context.Background(), events.NewLoanClosedEvent("owner-1", "loan-1", "2024-06-01"))).To(Succeed())
		bus.Wait()
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(2)))
	})

	It("keeps handler contexts alive after the publisher's context is cancelled", func() {
		done := make(chan error, 1)
		bus.Subscribe(events.EventTypeObligationRealized, func(ctx context.Context, e events.Event) error {
			done <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewObligationRealizedEvent("o", "loan", "l", "e", "100", "2024-01-01", "0"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})

	It("returns handler errors from synchronous publishing", func() {
		bus.Subscribe(events.EventTypeCategoryDeleted, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})

		err := bus.PublishSync(context.Background(), events.NewCategoryDeletedEvent("o", "c", 3))
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("ignores events without subscribers", func() {
		Expect(bus.Publish(context.Background(), events.NewLoanClosedEvent("o", "l", "2024-01-01"))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewLoanClosedEvent("o", "l", "2024-01-01"))).To(Succeed())
	})

	It("carries the realization payload", func() {
		e := events.NewObligationRealizedEvent("owner", "saving", "s-1", "e-1", "50", "2024-02-29", "1050")
		Expect(e.EventType()).To(Equal(events.EventTypeObligationRealized))
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.Payload()).To(HaveKeyWithValue("running_total", "1050"))
	})
})
