package broker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rabbitmq/amqp091-go"
)

func TestBroker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Broker Suite")
}

type fakeChannel struct {
	exchange  string
	key       string
	msg       amqp091.Publishing
	publishes int
	failWith  error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.publishes++
	c.exchange = exchange
	c.key = key
	c.msg = msg
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

var _ = Describe("Forwarder", func() {
	var (
		ch        *fakeChannel
		forwarder *Forwarder
	)

	BeforeEach(func() {
		ch = &fakeChannel{}
		forwarder = NewForwarder(ch, "vesta.ledger", slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("publishes the event as persistent JSON routed by event type", func() {
		event := events.NewLoanClosedEvent("owner-1", "loan-9", "2024-12-01")

		Expect(forwarder.Handle(context.Background(), event)).To(Succeed())
		Expect(ch.publishes).To(Equal(1))
		Expect(ch.exchange).To(Equal("vesta.ledger"))
		Expect(ch.key).To(Equal(events.EventTypeLoanClosed))
		Expect(ch.msg.DeliveryMode).To(Equal(amqp091.Persistent))
		Expect(ch.msg.MessageId).To(Equal(event.EventID()))

		var body map[string]interface{}
		Expect(json.Unmarshal(ch.msg.Body, &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("loan_id", "loan-9"))
		Expect(body).To(HaveKeyWithValue("type", events.EventTypeLoanClosed))
	})

	It("wraps publish failures", func() {
		ch.failWith = errors.New("channel closed")
		err := forwarder.Handle(context.Background(), events.NewLoanClosedEvent("o", "l", "2024-01-01"))
		Expect(err).To(MatchError(ContainSubstring("channel closed")))
	})

	It("reports the exchange when healthy", func() {
		details, err := forwarder.Check(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(details).To(HaveKeyWithValue("exchange", "vesta.ledger"))
	})

	It("closes the channel", func() {
		Expect(forwarder.Close()).To(Succeed())
		Expect(ch.closed).To(BeTrue())
	})
})
