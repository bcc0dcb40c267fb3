package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/interfaces"
)

type sessionPayload struct{}

func (sessionPayload) EventSessionID() string { return "session-1" }
func (sessionPayload) EventSeq() uint64       { return 3 }

func TestNewLoggerSubscriber(t *testing.T) {
	subscriber := NewLoggerSubscriber(arbor.NewLogger())
	ctx := context.Background()

	assert.NoError(t, subscriber(ctx, interfaces.Event{
		Type:    interfaces.EventSurfaceChanged,
		Payload: sessionPayload{},
	}))
	assert.NoError(t, subscriber(ctx, interfaces.Event{
		Type:    interfaces.EventSurfaceChanged,
		Payload: nil,
	}))
}

func TestSubscribeLogger(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)

	assert.NoError(t, SubscribeLogger(service, logger))
	assert.NoError(t, service.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventSurfaceChanged,
		Payload: sessionPayload{},
	}))

	assert.NoError(t, service.Close())
	assert.Error(t, SubscribeLogger(service, logger))
}
