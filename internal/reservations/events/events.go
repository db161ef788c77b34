// Package events publishes reservation lifecycle events for external
// collaborators (notifications, analytics). Delivery is their concern; the
// engine only emits.
package events

import (
	"context"
	"time"

	"courtbook/pkg/kafka"
	"courtbook/pkg/logger"
	"courtbook/pkg/model"
)

const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCancelled = "reservation.cancelled"

	source = "courtbook"
)

// ReservationEvent is the wire payload for both lifecycle events.
type ReservationEvent struct {
	ReservationID string `json:"reservation_id"`
	CourtID       string `json:"court_id"`
	HolderID      string `json:"holder_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
}

type Publisher interface {
	ReservationCreated(ctx context.Context, res *model.Reservation)
	ReservationCancelled(ctx context.Context, res *model.Reservation)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewKafkaPublisher publishes events keyed by court id so consumers see each
// court's events in order.
func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) ReservationCreated(ctx context.Context, res *model.Reservation) {
	p.publish(ctx, TypeReservationCreated, res)
}

func (p *kafkaPublisher) ReservationCancelled(ctx context.Context, res *model.Reservation) {
	p.publish(ctx, TypeReservationCancelled, res)
}

// publish is best-effort: the reservation is already committed, so a broker
// failure is logged rather than surfaced to the caller.
func (p *kafkaPublisher) publish(ctx context.Context, eventType string, res *model.Reservation) {
	msg := kafka.NewMessage().
		WithKey(res.CourtID).
		WithValue(ReservationEvent{
			ReservationID: res.ID,
			CourtID:       res.CourtID,
			HolderID:      res.HolderID,
			StartTime:     res.StartTime.UTC().Format(time.RFC3339),
			EndTime:       res.EndTime.UTC().Format(time.RFC3339),
			Status:        res.Status,
		}).
		WithEventType(eventType).
		WithSource(source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", res.ID,
			"court_id", res.CourtID,
			"error", err,
		)
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when no Kafka brokers are configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) ReservationCreated(context.Context, *model.Reservation)   {}
func (noopPublisher) ReservationCancelled(context.Context, *model.Reservation) {}
