// Package broker forwards in-process ledger events to a RabbitMQ topic exchange.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel the forwarder needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Forwarder struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	logger   *slog.Logger
}

// Dial connects to url and declares a durable topic exchange.
func Dial(url, exchange string, logger *slog.Logger) (*Forwarder, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Forwarder{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// NewForwarder builds a forwarder over an existing channel.
func NewForwarder(ch channel, exchange string, logger *slog.Logger) *Forwarder {
	return &Forwarder{channel: ch, exchange: exchange, logger: logger}
}

// Handle is an events.Handler. The event type is the routing key.
func (f *Forwarder) Handle(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = f.channel.PublishWithContext(
		ctx,
		f.exchange,
		event.EventType(),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.EventID(),
			Type:         event.EventType(),
			Timestamp:    event.OccurredAt(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventID(), err)
	}

	f.logger.Debug("forwarded event to broker",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"exchange", f.exchange)
	return nil
}

// Check reports whether the broker connection is still open.
func (f *Forwarder) Check(ctx context.Context) (map[string]any, error) {
	if f.conn != nil && f.conn.IsClosed() {
		return nil, errors.New("broker connection closed")
	}
	return map[string]any{"exchange": f.exchange}, nil
}

func (f *Forwarder) Close() error {
	if f.channel != nil {
		f.channel.Close()
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
