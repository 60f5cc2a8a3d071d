package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatermillPublisher_Envelope(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer bus.Close()

	messages, err := bus.Subscribe(ctx, "skillvault.events")
	require.NoError(t, err)

	pub := NewWatermillPublisher(bus, "skillvault.events", testLogger())
	require.NoError(t, pub.Publish(ctx, CollegeApproved, map[string]string{"college_id": "c1"}))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, CollegeApproved, msg.Metadata.Get("event_type"))

		var event Event
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, CollegeApproved, event.Type)
		assert.Equal(t, msg.UUID, event.ID)
		assert.JSONEq(t, `{"college_id":"c1"}`, string(event.Payload))
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}

func TestNewPublisher_InProcessWithoutBrokers(t *testing.T) {
	pub, err := NewPublisher(config.KafkaConfig{Topic: "skillvault.events"}, testLogger())
	require.NoError(t, err)
	defer pub.Close()

	assert.NoError(t, pub.Publish(context.Background(), UserSignedUp, map[string]string{"user_id": "u1"}))
}

func TestAuthStateBus_DeliversPerUser(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := NewAuthStateBus(testLogger())
	defer bus.Close()

	changes, err := bus.Subscribe(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, AuthStateChange{UserID: "u2", SignedIn: true}))
	require.NoError(t, bus.Publish(ctx, AuthStateChange{UserID: "u1", SignedIn: false}))

	select {
	case change := <-changes:
		assert.Equal(t, AuthStateChange{UserID: "u1", SignedIn: false}, change)
	case <-ctx.Done():
		t.Fatal("change not delivered")
	}
}

func TestAuthStateBus_ClosesOnCancel(t *testing.T) {
	bus := NewAuthStateBus(testLogger())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := bus.Subscribe(ctx, "u1")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("stream not closed")
	}
}

func TestMockPublisher_Records(t *testing.T) {
	m := NewMockPublisher()
	require.NoError(t, m.Publish(context.Background(), CertificateIssued, map[string]string{"id": "x"}))
	require.NoError(t, m.Publish(context.Background(), CertificateRevoked, map[string]string{"id": "x"}))
	assert.Equal(t, []string{CertificateIssued, CertificateRevoked}, m.Types())
}
