package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awemart/awemart/internal/domain/event"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	var mu sync.Mutex
	got := map[string]int{}
	done := make(chan struct{}, 2)

	for _, id := range []string{"a", "b"} {
		id := id
		bus.Subscribe("thing.happened", func(_ context.Context, e event.Event) error {
			mu.Lock()
			got[id]++
			mu.Unlock()
			done <- struct{}{}
			return nil
		})
	}

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "thing.happened"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler was not invoked")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, got)
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	delivered := make(chan struct{}, 1)
	bus.Subscribe("boom", func(context.Context, event.Event) error {
		panic("handler exploded")
	})
	bus.Subscribe("boom", func(context.Context, event.Event) error {
		delivered <- struct{}{}
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "boom"}))

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("sibling handler starved by panic")
	}

	// The dispatch loop is still alive afterwards.
	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "boom"}))
	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("bus stopped dispatching after panic")
	}
}

func TestBusDropsUnsubscribedEvents(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "nobody.cares"}))
	bus.Stop(context.Background())
}

func TestBusPublishNilEventIsNoop(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	assert.NoError(t, bus.Publish(context.Background(), nil))
}
