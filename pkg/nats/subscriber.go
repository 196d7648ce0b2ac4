package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"braincells-be/internal/pkg/logger"
	"braincells-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc   *nats.Conn
	js   jetstream.JetStream
	log  logger.ILogger
	stop []jetstream.ConsumeContext
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, log: log}, nil
}

// Subscribe registers a handler on a durable consumer so no events are lost
// across restarts.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler events.EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var payload map[string]interface{}
		if err := json.Unmarshal(msg.Data(), &payload); err != nil {
			s.log.Error("NatsSubscriber", "failed to unmarshal event", map[string]interface{}{"subject": msg.Subject(), "error": err})
			_ = msg.Term()
			return
		}

		event := events.FromPayload(EventType(msg.Subject()), payload)
		if err := handler(context.Background(), event); err != nil {
			s.log.Warn("NatsSubscriber", "handler failed, event will be redelivered", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.stop = append(s.stop, cc)

	s.log.Info("NatsSubscriber", "subscribed", map[string]interface{}{"subject": subject, "durable": durableName})
	return nil
}

// Close stops all consumers and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.stop {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}

// Bind fixes the subject and durable name so the subscriber can be used as
// an events.Subscriber.
func (s *Subscriber) Bind(subject, durableName string) events.Subscriber {
	return &boundSubscriber{sub: s, subject: subject, durable: durableName}
}

type boundSubscriber struct {
	sub     *Subscriber
	subject string
	durable string
}

func (b *boundSubscriber) Subscribe(ctx context.Context, handler events.EventHandler) error {
	return b.sub.Subscribe(ctx, b.subject, b.durable, handler)
}
