package events

import (
	"context"
	"fmt"
	"time"

	"slotbook/pkg/kafka"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

const (
	TypeCreated   = "booking.created"
	TypeUpdated   = "booking.updated"
	TypeCancelled = "booking.cancelled"
)

// BookingEvent is the JSON value written to the bookings topic
type BookingEvent struct {
	Type       string         `json:"type"`
	Booking    *model.Booking `json:"booking"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking) error
}

// MessagePublisher is satisfied by *kafka.Producer
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher writes booking events keyed by booking id, so all events of
// one booking land on the same partition in order.
type KafkaPublisher struct {
	producer MessagePublisher
	source   string
	now      func() time.Time
}

func NewKafkaPublisher(producer MessagePublisher, source string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		source:   source,
		now:      time.Now,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) error {
	occurredAt := p.now().UTC()

	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(BookingEvent{Type: eventType, Booking: booking, OccurredAt: occurredAt}).
		WithEventID("").
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSource(p.source).
		WithTimestamp(occurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *model.Booking) error {
	return nil
}
