// Package pubsub provides a generic publish/subscribe event bus used for
// asynchronous taps on a core: notification monitors, command error reports
// and live log streaming.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	NotificationSentEvent   EventType = "notification_sent"
	CommandExecutedEvent    EventType = "command_executed"
	CommandFailedEvent      EventType = "command_failed"
	MediatorRegisteredEvent EventType = "mediator_registered"
	MediatorRemovedEvent    EventType = "mediator_removed"
	ProxyRegisteredEvent    EventType = "proxy_registered"
	ProxyRemovedEvent       EventType = "proxy_removed"
	LogEntryEvent           EventType = "log_entry"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
