package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/skillvault/skillvault-service/internal/config"
)

// Domain event types
const (
	CollegeRegistered    = "college.registered"
	CollegeApproved      = "college.approved"
	CollegeRejected      = "college.rejected"
	CertificateIssued    = "certificate.issued"
	CertificateRevoked   = "certificate.revoked"
	UserSignedUp         = "user.signed_up"
	CandidateShortlisted = "candidate.shortlisted"
)

// Event is the envelope written to the events topic.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher emits domain events. Publishing is best effort for callers: a failed publish never
// undoes the state change that caused it.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// WatermillPublisher publishes events to a single topic through a watermill publisher.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewPublisher publishes to Kafka when brokers are configured, otherwise to an in-process channel.
func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*WatermillPublisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(cfg.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, using in-process event bus")
		return NewWatermillPublisher(gochannel.NewGoChannel(gochannel.Config{}, wmLogger), cfg.Topic, logger), nil
	}

	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	logger.Info("Kafka event publisher initialized", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return NewWatermillPublisher(pub, cfg.Topic, logger), nil
}

// NewWatermillPublisher wraps an existing watermill publisher.
func NewWatermillPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, topic: topic, logger: logger}
}

func (p *WatermillPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	event := Event{
		ID:         watermill.NewUUID(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, data)
	msg.Metadata.Set("event_type", eventType)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "Event published", "event_type", eventType, "event_id", event.ID)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
