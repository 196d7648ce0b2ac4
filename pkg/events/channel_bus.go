package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topic is the single in-process topic; the event type travels in metadata.
const Topic = "events"

const metadataType = "event_type"

// ChannelBus is the in-process bus used when NATS is not configured.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
}

var (
	_ Publisher  = (*ChannelBus)(nil)
	_ Subscriber = (*ChannelBus)(nil)
)

func NewChannelBus(logger watermill.LoggerAdapter) *ChannelBus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &ChannelBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			logger,
		),
	}
}

func (b *ChannelBus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metadataType, event.EventType())
	msg.SetContext(ctx)

	return b.pubSub.Publish(Topic, msg)
}

// Subscribe runs handler for every event until ctx is done. A handler error
// nacks the message so gochannel redelivers it.
func (b *ChannelBus) Subscribe(ctx context.Context, handler EventHandler) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var payload map[string]interface{}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				// Unreadable payloads are dropped, a retry would not help
				msg.Ack()
				continue
			}

			event := FromPayload(msg.Metadata.Get(metadataType), payload)
			if err := handler(msg.Context(), event); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()

	return nil
}

func (b *ChannelBus) Close() {
	_ = b.pubSub.Close()
}
