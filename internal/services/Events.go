package services

import (
	"context"
	"time"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

// Change event types.
const (
	EventObjectCreated      = "object.created"
	EventObjectUpdated      = "object.updated"
	EventObjectDeleted      = "object.deleted"
	EventEnvironmentDeleted = "environment.deleted"
)

// ChangeEvent describes a successful write. It is published after the write is stored.
type ChangeEvent struct {
	Type          string               `json:"type"`
	UserID        string               `json:"user_id"`
	EnvironmentID int                  `json:"environment_id"`
	ObjectID      int                  `json:"object_id,omitempty"`
	Object        *object.PlacedObject `json:"object,omitempty"`
	Time          time.Time            `json:"time"`
}

// EventPublisher delivers change events. EventService is the AMQP implementation.
type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ChangeEvent) error { return nil }
