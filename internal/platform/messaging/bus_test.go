package messaging

import (
	"context"
	"testing"
	"time"

	contractsv1 "commonwealth/contracts/gen/events/v1"

	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	received := make(chan contractsv1.Envelope, 1)
	bus.Subscribe(ctx, "governance", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	})

	require.NoError(t, bus.Publish(ctx, "governance", contractsv1.Envelope{EventID: "evt-1", Sequence: 7}))
	require.NoError(t, bus.Publish(ctx, "other-topic", contractsv1.Envelope{EventID: "evt-2"}))

	select {
	case event := <-received:
		require.Equal(t, "evt-1", event.EventID)
		require.Equal(t, uint64(7), event.Sequence)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, nil)
	require.Error(t, err)
}

func TestKafkaPublisherRejectsInvalidEnvelopeBeforeWriting(t *testing.T) {
	publisher, err := NewKafkaPublisher([]string{"127.0.0.1:9092"}, nil)
	require.NoError(t, err)
	defer publisher.Close()

	err = publisher.Publish(context.Background(), "governance.ledger.events", contractsv1.Envelope{EventType: "treasury.received"})
	require.ErrorIs(t, err, contractsv1.ErrMissingEventID)
}
