package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher is what services depend on to emit domain events
type EventPublisher interface {
	Publish(ctx context.Context, eventType EventType, data interface{}) error
	Close() error
}

// Publisher sends events to a watermill publisher, one topic per event type
type Publisher struct {
	publisher   message.Publisher
	topicPrefix string
	logger      *slog.Logger
}

// NewPublisher wraps any watermill publisher (kafka in production, gochannel in tests)
func NewPublisher(publisher message.Publisher, topicPrefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		publisher:   publisher,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// NewKafkaPublisher connects a sync kafka publisher to the given brokers
func NewKafkaPublisher(brokers []string, topicPrefix string, logger *slog.Logger) (*Publisher, error) {
	kafkaPublisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return NewPublisher(kafkaPublisher, topicPrefix, logger), nil
}

// Topic returns the topic name an event type is published to
func (p *Publisher) Topic(eventType EventType) string {
	return p.topicPrefix + string(eventType)
}

func (p *Publisher) Publish(ctx context.Context, eventType EventType, data interface{}) error {
	event, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}

	msg, err := event.toMessage(ctx)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(p.Topic(eventType), msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", eventType)
	return nil
}

func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// NoopPublisher drops every event; used when events are disabled
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) Publish(context.Context, EventType, interface{}) error { return nil }
func (NoopPublisher) Close() error                                          { return nil }

// MockEventPublisher records events in memory for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// FailWith makes subsequent Publish calls return err
func (m *MockEventPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockEventPublisher) Publish(_ context.Context, eventType EventType, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	event, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfType filters recorded events by type
func (m *MockEventPublisher) EventsOfType(eventType EventType) []*Event {
	var out []*Event
	for _, e := range m.GetPublishedEvents() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
