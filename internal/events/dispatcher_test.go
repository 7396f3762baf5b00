package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventOrderCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "first:"+e.OrderNumber)
		return nil
	})
	d.Subscribe(EventOrderCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "second:"+e.OrderNumber)
		return nil
	})
	d.Subscribe(EventOrderFlagged, func(ctx context.Context, e Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{
		Type:        EventOrderCreated,
		OrderNumber: "TKT-20260901-001",
	}))

	assert.Equal(t, []string{"first:TKT-20260901-001", "second:TKT-20260901-001"}, calls)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	reached := false
	d.Subscribe(EventReminderDue, func(ctx context.Context, e Event) error {
		return errors.New("handler blew up")
	})
	d.Subscribe(EventReminderDue, func(ctx context.Context, e Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventReminderDue}))
	assert.True(t, reached)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventDailySummary}))
}
