package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/interfaces"
)

func TestSubscribe_NilHandler(t *testing.T) {
	service := NewService(arbor.NewLogger())
	assert.Error(t, service.Subscribe(interfaces.EventSurfaceChanged, nil))
}

func TestPublishSync_DeliversInOrder(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var mu sync.Mutex
	var received []int
	require.NoError(t, service.Subscribe(interfaces.EventSurfaceChanged, func(ctx context.Context, event interfaces.Event) error {
		mu.Lock()
		received = append(received, event.Payload.(int))
		mu.Unlock()
		return nil
	}))

	for i := 1; i <= 5; i++ {
		require.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSurfaceChanged, Payload: i}))
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, received)
}

func TestPublishSync_ReportsHandlerErrors(t *testing.T) {
	service := NewService(arbor.NewLogger())

	require.NoError(t, service.Subscribe(interfaces.EventSurfaceChanged, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("client gone")
	}))
	require.NoError(t, service.Subscribe(interfaces.EventSurfaceChanged, func(ctx context.Context, event interfaces.Event) error {
		panic("boom")
	}))

	err := service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSurfaceChanged})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors")
}

func TestPublish_Async(t *testing.T) {
	service := NewService(arbor.NewLogger())

	done := make(chan interfaces.Event, 1)
	require.NoError(t, service.Subscribe(interfaces.EventSurfaceChanged, func(ctx context.Context, event interfaces.Event) error {
		done <- event
		return nil
	}))

	require.NoError(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventSurfaceChanged, Payload: "x"}))

	select {
	case event := <-done:
		assert.Equal(t, "x", event.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	service := NewService(arbor.NewLogger())
	assert.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSurfaceChanged}))
	assert.NoError(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventSurfaceChanged}))
}

func TestClose(t *testing.T) {
	service := NewService(arbor.NewLogger())

	called := false
	require.NoError(t, service.Subscribe(interfaces.EventSurfaceChanged, func(ctx context.Context, event interfaces.Event) error {
		called = true
		return nil
	}))

	require.NoError(t, service.Close())
	require.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSurfaceChanged}))
	assert.False(t, called)
	assert.Error(t, service.Subscribe(interfaces.EventSurfaceChanged, func(ctx context.Context, event interfaces.Event) error { return nil }))
}
