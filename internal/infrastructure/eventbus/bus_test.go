package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefronthq/storefront/internal/domain/event"
)

type testEvent struct {
	name string
}

func (e testEvent) EventName() string { return e.name }

func waitFor(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
		return nil
	}
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())
	received := make(chan event.Event, 2)

	bus.Subscribe("thing.happened", func(ctx context.Context, e event.Event) error {
		received <- e
		return nil
	})
	bus.Subscribe("thing.happened", func(ctx context.Context, e event.Event) error {
		received <- e
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "thing.happened"}))

	first := waitFor(t, received)
	second := waitFor(t, received)
	assert.Equal(t, "thing.happened", first.EventName())
	assert.Equal(t, "thing.happened", second.EventName())
}

func TestPublishWithoutSubscriberIsDropped(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	assert.NoError(t, bus.Publish(context.Background(), testEvent{name: "nobody.listens"}))
}

func TestPublishAfterStopErrorsInsteadOfPanicking(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())
	bus.Stop(context.Background())

	err := bus.Publish(context.Background(), testEvent{name: "late.event"})
	assert.ErrorIs(t, err, ErrClosed)

	// Stop is idempotent and repeated publishes keep failing cleanly.
	bus.Stop(context.Background())
	assert.ErrorIs(t, bus.Publish(context.Background(), testEvent{name: "late.event"}), ErrClosed)
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	bus := NewBus(zap.NewNop())
	received := make(chan event.Event, 1)

	bus.Subscribe("fragile.event", func(ctx context.Context, e event.Event) error {
		panic("handler exploded")
	})
	bus.Subscribe("solid.event", func(ctx context.Context, e event.Event) error {
		received <- e
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "fragile.event"}))
	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "solid.event"}))

	got := waitFor(t, received)
	assert.Equal(t, "solid.event", got.EventName())
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus(zap.NewNop())
	received := make(chan event.Event, 1)

	bus.Subscribe("shared.event", func(ctx context.Context, e event.Event) error {
		return assert.AnError
	})
	bus.Subscribe("shared.event", func(ctx context.Context, e event.Event) error {
		received <- e
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "shared.event"}))
	waitFor(t, received)
}
