package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	"github.com/frahmantamala/vesta-ledger/internal/core/events/broker"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test ledger events through the event bus and, when configured, the AMQP broker`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test ledger event (obligation.realized, loan.closed or category.deleted)`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var eventOwnerID string

// eventPipeline is the in-process bus plus the optional broker forwarder.
type eventPipeline struct {
	Bus       *events.EventBus
	forwarder *broker.Forwarder
	logger    *slog.Logger
}

// newEventPipeline subscribes a log handler to every ledger event and, when
// an AMQP URL is configured, a forwarder to the topic exchange.
func newEventPipeline(cfg internal.EventsConfig, log *slog.Logger) (*eventPipeline, error) {
	bus := events.NewEventBus(log)
	bus.SubscribeAll(events.AllEventTypes, func(ctx context.Context, event events.Event) error {
		log.Info("ledger event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	p := &eventPipeline{Bus: bus, logger: log}
	if cfg.AMQPURL == "" {
		return p, nil
	}

	forwarder, err := broker.Dial(cfg.AMQPURL, cfg.Exchange, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event broker: %w", err)
	}
	bus.SubscribeAll(events.AllEventTypes, forwarder.Handle)
	p.forwarder = forwarder

	log.Info("forwarding ledger events", "exchange", cfg.Exchange)
	return p, nil
}

// Close waits for in-flight handlers before closing the broker connection.
func (p *eventPipeline) Close() {
	p.Bus.Wait()
	if p.forwarder == nil {
		return
	}
	if err := p.forwarder.Close(); err != nil {
		p.logger.Error("failed to close event broker", "error", err)
	}
}

func publishTestEvent(eventType string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.LoggerWrapper()

	pipeline, err := newEventPipeline(cfg.Events, log)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	today := calendar.Today(nil).String()
	var event events.Event
	switch eventType {
	case events.EventTypeObligationRealized:
		event = events.NewObligationRealizedEvent(eventOwnerID, "loan", uuid.NewString(), uuid.NewString(), "100.00", today, "900.00")
	case events.EventTypeLoanClosed:
		event = events.NewLoanClosedEvent(eventOwnerID, uuid.NewString(), today)
	case events.EventTypeCategoryDeleted:
		event = events.NewCategoryDeletedEvent(eventOwnerID, uuid.NewString(), 0)
	default:
		fmt.Fprintf(os.Stderr, "unknown event type %q, expected one of %v\n", eventType, events.AllEventTypes)
		return fmt.Errorf("unknown event type %q", eventType)
	}

	log.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pipeline.Bus.PublishSync(ctx, event); err != nil {
		log.Error("failed to publish event", "error", err)
		return err
	}

	log.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventOwnerID, "owner", "00000000-0000-0000-0000-000000000000", "Owner id carried by the test event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
