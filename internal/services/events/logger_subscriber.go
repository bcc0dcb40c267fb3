package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/interfaces"
)

// SessionEvent is implemented by payloads scoped to one web session
type SessionEvent interface {
	EventSessionID() string
	EventSeq() uint64
}

// NewLoggerSubscriber creates an event handler that logs every event at debug level
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if payload, ok := event.Payload.(SessionEvent); ok {
			logEvent = logEvent.
				Str("session_id", payload.EventSessionID()).
				Int64("seq", int64(payload.EventSeq()))
		}

		logEvent.Msg("Event published")
		return nil
	}
}

// SubscribeLogger subscribes the logger subscriber to all known event types
func SubscribeLogger(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventSurfaceChanged,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	return nil
}
