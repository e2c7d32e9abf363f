package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/flights"
)

// Producer publishes flight events to the queue.
type Producer struct {
	conn *Connection
}

// NewProducer creates a new queue producer.
func NewProducer(conn *Connection) *Producer {
	return &Producer{conn: conn}
}

var _ flights.EventPublisher = (*Producer)(nil)

// PublishFlightSaved publishes a persisted flight record to the flight queue.
func (p *Producer) PublishFlightSaved(ctx context.Context, record domain.FlightRecord) error {
	event := FlightSavedEvent{
		FlightID:      record.ID,
		Origin:        record.Origin,
		Destination:   record.Destination,
		DepartureDate: record.DepartureDate,
		Price:         record.Price,
		Raw:           record.Raw,
		SavedAt:       time.Now(),
	}

	if err := p.conn.PublishJSON(ctx, FlightQueueName, event); err != nil {
		return fmt.Errorf("failed to publish flight event: %w", err)
	}

	slog.Info("published flight event",
		"flight_id", event.FlightID,
		"origin", event.Origin,
		"destination", event.Destination,
	)

	return nil
}
