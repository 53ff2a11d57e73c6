// Package events defines the booking events published after each committed
// transition and the publishers that deliver them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gymclass/service-booking/internal/platform/kafka"
)

// Source identifies this service on the event bus.
const Source = "service-booking"

// Event types published on the booking topic.
const (
	BookingCreated        = "booking.created"
	BookingCancelled      = "booking.cancelled"
	BookingLateCancelled  = "booking.late_cancelled"
	ClassCompleted        = "class.completed"
	ClassCompletionUndone = "class.completion_undone"
)

// BookingCreatedEvent is published when a member books a class.
type BookingCreatedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	UserID            uuid.UUID `json:"user_id"`
	ClassID           uuid.UUID `json:"class_id"`
	BookingDate       string    `json:"booking_date"`
	ConcessionBalance int       `json:"concession_balance"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published for early and late cancellations.
type BookingCancelledEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	UserID            uuid.UUID `json:"user_id"`
	ClassID           uuid.UUID `json:"class_id"`
	BookingDate       string    `json:"booking_date"`
	CancelledBy       uuid.UUID `json:"cancelled_by"`
	IsLate            bool      `json:"is_late"`
	Refunded          bool      `json:"refunded"`
	ConcessionBalance int       `json:"concession_balance"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ClassSessionEvent is published when an admin completes a session or undoes it.
type ClassSessionEvent struct {
	ClassID     uuid.UUID `json:"class_id"`
	BookingDate string    `json:"booking_date"`
	Affected    int64     `json:"affected"`
	ActorID     uuid.UUID `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// KafkaPublisher delivers events as CloudEvents on one topic.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(producer *kafka.Producer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish sends data as eventType. Failures are logged; the transition that
// produced the event has already been committed.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, data interface{}) {
	ce, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		p.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEvent(ctx, p.topic, key, ce); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", p.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, string, string, interface{}) {}
