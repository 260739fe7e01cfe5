// This file contains the implementation of EventService. This service publishes a ChangeEvent to an AMQP message broker
// every time an environment or placed object is written, so that other workers (thumbnail rendering, audit, live views)
// can react without polling the database.
//
// This service expects a rabbitMQ AMQP 0.9.1 broker to be running on the specified domain. The service connects to the broker
// and declares a durable topic exchange; events are published with their type as routing key ("object.created", ...).
// The connection is re-established on the next publish if it was lost.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
)

// EventExchange is the topic exchange change events are published to.
const EventExchange = "environment-events"

type EventService struct {
	messageBrokerDomain string
	username            string
	password            string
	connection          *amqp.Connection
	channel             *amqp.Channel
	logger              *log.Logger
	// guards connection and channel, which are replaced on reconnect
	mu sync.Mutex
}

// NewEventService connects to the broker and declares the exchange.
func NewEventService(messageBrokerDomain, username, password string, logger *log.Logger) (*EventService, error) {
	service := &EventService{
		messageBrokerDomain: messageBrokerDomain,
		username:            username,
		password:            password,
		logger:              logger,
	}

	service.mu.Lock()
	defer service.mu.Unlock()
	if err := service.connect(); err != nil {
		return nil, err
	}
	return service, nil
}

// connect establishes a connection to the AMQP message broker and declares the exchange. Retries for 15 seconds.
func (s *EventService) connect() error {
	timeout := time.Now().Add(time.Minute / 4)
	var err error

	for time.Now().Before(timeout) {
		s.connection, err = amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:5672/", s.username, s.password, s.messageBrokerDomain))
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	s.channel, err = s.connection.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	err = s.channel.ExchangeDeclare(EventExchange, amqp.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", EventExchange, err)
	}

	s.logger.Infof("Connected to RabbitMQ at %s", s.messageBrokerDomain)
	return nil
}

// ensureConnection reconnects if the connection was closed. Callers hold s.mu.
func (s *EventService) ensureConnection() error {
	if s.connection != nil && !s.connection.IsClosed() && s.channel != nil && !s.channel.IsClosed() {
		return nil
	}

	s.logger.Info("Reconnecting to RabbitMQ...")
	return s.connect()
}

// Publish sends the event to the exchange with its type as routing key.
func (s *EventService) Publish(ctx context.Context, event ChangeEvent) error {
	body, err := encodeEvent(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnection(); err != nil {
		return fmt.Errorf("failed to ensure connection: %w", err)
	}

	err = s.channel.PublishWithContext(ctx, EventExchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Time,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	s.logger.Debugf("Published %s event for environment %d", event.Type, event.EnvironmentID)
	return nil
}

// Shutdown closes the channel and connection.
func (s *EventService) Shutdown() {
	s.logger.Info("Shutting down AMQP service...")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != nil {
		s.channel.Close()
	}
	if s.connection != nil {
		s.connection.Close()
	}
	s.logger.Info("AMQP service shut down")
}

func encodeEvent(event ChangeEvent) ([]byte, error) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	return body, nil
}
