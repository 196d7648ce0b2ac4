package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"braincells-be/internal/pkg/logger"
	"braincells-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRoundTrip(t *testing.T) {
	assert.Equal(t, "events.BRAINCELL_CREATED", Subject(events.BraincellCreated))
	assert.Equal(t, events.BraincellCreated, EventType(Subject(events.BraincellCreated)))
}

func TestPublishSubscribe(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping integration test: NATS_URL not set")
	}
	log := logger.NewNopLogger()

	pub, err := NewPublisher(url, log)
	require.NoError(t, err)
	defer pub.Close()

	sub, err := NewSubscriber(url, log)
	require.NoError(t, err)
	defer sub.Close()

	braincellId := uuid.NewString()
	received := make(chan events.Event, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, sub.Subscribe(ctx, Subject(events.BraincellCreated), "test-"+braincellId, func(ctx context.Context, e events.Event) error {
		if e.Payload()["braincell_id"] == braincellId {
			received <- e
		}
		return nil
	}))

	require.NoError(t, pub.Publish(ctx, events.NewBraincellEvent(events.BraincellCreated, braincellId, "u1", "title")))

	select {
	case e := <-received:
		assert.Equal(t, events.BraincellCreated, e.EventType())
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}
