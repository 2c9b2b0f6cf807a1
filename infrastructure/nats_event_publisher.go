package infrastructure

import (
	"context"
	"fmt"
	"time"

	"lottery/events"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SourceService identifies this service in event envelopes
const SourceService = "lottery"

// MessagePublisher sends raw bytes to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// PublishObserver is told about every forward attempt
type PublishObserver interface {
	RecordNATSPublish(ctx context.Context, eventType string, err error)
}

// EventEnvelope wraps an event payload on the wire
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher forwards domain events to NATS subjects
// "<prefix>.<event_type>"
type NATSEventPublisher struct {
	publisher MessagePublisher
	prefix    string
	observer  PublishObserver
	now       func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(publisher MessagePublisher, prefix string, observer PublishObserver) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher: publisher,
		prefix:    prefix,
		observer:  observer,
		now:       time.Now,
	}
}

// Subject returns the subject an event type is published to
func (p *NATSEventPublisher) Subject(eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", p.prefix, eventType)
}

// Subjects returns the wildcard subject covering all lottery events
func (p *NATSEventPublisher) Subjects() []string {
	return []string{p.prefix + ".>"}
}

// Publish wraps the event in an envelope and publishes it
func (p *NATSEventPublisher) Publish(event events.Event) error {
	return p.publish(context.Background(), event)
}

// Attach forwards every event emitted on bus. Forwarding failures are logged;
// the draw itself never depends on NATS.
func (p *NATSEventPublisher) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		if err := p.publish(ctx, event); err != nil {
			log.WithError(err).WithField("eventType", event.Type()).Error("Failed to forward event to NATS")
		}
	})
}

func (p *NATSEventPublisher) publish(ctx context.Context, event events.Event) error {
	envelopeData, envelope, err := p.encode(event)
	if err != nil {
		return err
	}

	subject := p.Subject(event.Type())
	err = p.publisher.Publish(ctx, subject, envelopeData)
	if p.observer != nil {
		p.observer.RecordNATSPublish(ctx, string(event.Type()), err)
	}
	if err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

func (p *NATSEventPublisher) encode(event events.Event) ([]byte, *EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     p.now().UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, envelope, nil
}
