package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// AuthStateChange reports that an identity signed in or out.
type AuthStateChange struct {
	UserID   string `json:"user_id"`
	SignedIn bool   `json:"signed_in"`
}

// AuthStateBus fans identity state changes out to live session streams of the same user.
type AuthStateBus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewAuthStateBus(logger *slog.Logger) *AuthStateBus {
	return &AuthStateBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func authStateTopic(uid string) string {
	return "auth-state." + uid
}

// Publish delivers change to every current subscriber of change.UserID.
func (b *AuthStateBus) Publish(ctx context.Context, change AuthStateChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal auth state change: %w", err)
	}

	if err := b.pubsub.Publish(authStateTopic(change.UserID), message.NewMessage(watermill.NewUUID(), data)); err != nil {
		return fmt.Errorf("failed to publish auth state change: %w", err)
	}
	return nil
}

// Subscribe streams changes for uid until ctx is cancelled.
func (b *AuthStateBus) Subscribe(ctx context.Context, uid string) (<-chan AuthStateChange, error) {
	messages, err := b.pubsub.Subscribe(ctx, authStateTopic(uid))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to auth state: %w", err)
	}

	out := make(chan AuthStateChange)
	go func() {
		defer close(out)
		for msg := range messages {
			msg.Ack()

			var change AuthStateChange
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				b.logger.Warn("Dropping malformed auth state change", "error", err)
				continue
			}

			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (b *AuthStateBus) Close() error {
	return b.pubsub.Close()
}
