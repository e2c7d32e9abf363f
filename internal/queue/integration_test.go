//go:build integration

package queue_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/queue"
)

// setupRabbitMQ creates a RabbitMQ container for testing
func setupRabbitMQ(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get AMQP URL: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return amqpURL, cleanup
}

func TestIntegration_Connection_ConnectAndClose(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}

	if !conn.IsConnected() {
		t.Error("expected connection to be active")
	}

	if err := conn.Close(); err != nil {
		t.Errorf("failed to close connection: %v", err)
	}
}

func TestIntegration_Connection_InvalidURL(t *testing.T) {
	_, err := queue.NewConnection("amqp://invalid:5672")
	if err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_Producer_PublishFlightSaved(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	producer := queue.NewProducer(conn)

	record := domain.FlightRecord{
		ID:            uuid.New(),
		Origin:        "MAD",
		Destination:   "LIS",
		DepartureDate: "2026-09-01",
		Price:         52.40,
		Raw:           json.RawMessage(`{"destination":"LIS"}`),
		CreatedAt:     time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := producer.PublishFlightSaved(ctx, record); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	// Pull the message straight off the queue and verify the payload
	msg, ok, err := conn.Channel().Get(queue.FlightQueueName, true)
	if err != nil {
		t.Fatalf("failed to get message: %v", err)
	}
	if !ok {
		t.Fatal("expected a message on the flight queue")
	}

	var event queue.FlightSavedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.FlightID != record.ID || event.Destination != "LIS" {
		t.Errorf("unexpected event: %+v", event)
	}
}
