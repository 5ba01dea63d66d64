package messaging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(Config{AsyncMode: false})
}

func TestPublish_DeliversToTypeSubscribers(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var got []shared.Event
	err := bus.Subscribe(shared.EventPointsAwarded, shared.EventHandlerFunc(func(e shared.Event) error {
		got = append(got, e)
		return nil
	}))
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("user-1", 10, 10, "progress_update")))
	assert.NoError(t, bus.Publish(shared.NewStreakChangedEvent(shared.EventStreakStarted, "user-1", 1, 1)))

	assert.Len(t, got, 1, "only the subscribed type is delivered")
	assert.Equal(t, shared.EventPointsAwarded, got[0].EventType())
	assert.Equal(t, "user-1", got[0].AggregateID())
}

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	count := 0
	err := bus.SubscribeAll(shared.EventHandlerFunc(func(shared.Event) error {
		count++
		return nil
	}))
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("user-1", 10, 10, "progress_update")))
	assert.NoError(t, bus.Publish(shared.NewAchievementUnlockedEvent("user-1", "ach-1", "First Steps")))

	assert.Equal(t, 2, count)
}

func TestPublish_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	err := bus.Subscribe(shared.EventPointsAwarded, shared.EventHandlerFunc(func(shared.Event) error {
		return assert.AnError
	}))
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("user-1", 10, 10, "progress_update")))
}

func TestPublish_NoSubscribers(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("user-1", 10, 10, "progress_update")))
}

func TestPublish_NilEvent(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.Error(t, bus.Publish(nil))
}

func TestSubscribe_NilHandler(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventPointsAwarded, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}

func TestClosedBus(t *testing.T) {
	bus := syncBus()
	assert.NoError(t, bus.Close())

	err := bus.Publish(shared.NewPointsAwardedEvent("user-1", 10, 10, "progress_update"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventPointsAwarded, shared.EventHandlerFunc(func(shared.Event) error { return nil }))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	assert.NoError(t, bus.Close(), "closing twice is safe")
}

func TestAsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(Config{AsyncMode: true, WorkerPoolSize: 2})

	var mu sync.Mutex
	delivered := 0
	done := make(chan struct{}, 3)

	err := bus.Subscribe(shared.EventPointsAwarded, shared.EventHandlerFunc(func(shared.Event) error {
		mu.Lock()
		delivered++
		mu.Unlock()
		done <- struct{}{}
		return nil
	}))
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("user-1", 10, 10, "progress_update")))
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for async delivery")
		}
	}

	assert.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, delivered)
}
