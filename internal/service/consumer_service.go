package service

import (
	"context"

	"braincells-be/internal/pkg/logger"
	"braincells-be/pkg/events"
)

const consumerModule = "ConsumerService"

// IConsumerService keeps an audit trail of braincell lifecycle events.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber events.Subscriber
	logger     logger.ILogger
}

func NewConsumerService(subscriber events.Subscriber, logger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	return cs.subscriber.Subscribe(ctx, cs.processEvent)
}

func (cs *consumerService) processEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	cs.logger.Info(consumerModule, "braincell event", map[string]interface{}{
		"event_type":   event.EventType(),
		"braincell_id": payload["braincell_id"],
		"user_id":      payload["user_id"],
		"occurred_at":  event.Timestamp(),
	})
	return nil
}
