package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBus(t *testing.T) {
	bus := NewBus()
	assert.NotNil(t, bus)

	metrics := bus.GetMetrics()
	assert.Equal(t, 0, metrics.TotalSubscriptions)
	assert.Equal(t, 0, metrics.ActiveSubscriptions)
	assert.Equal(t, int64(0), metrics.EventsPublished)
}

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus()

	var received []string
	bus.Subscribe(TopicLogLine, func(e Event) {
		received = append(received, e.Payload.(string))
	})

	bus.Publish(TopicLogLine, "one")
	bus.Publish(TopicLogLine, "two")
	bus.Publish(TopicLogDone, nil) // different topic, not delivered

	assert.Equal(t, []string{"one", "two"}, received)

	metrics := bus.GetMetrics()
	assert.Equal(t, int64(3), metrics.EventsPublished)
	assert.Equal(t, int64(2), metrics.EventsDelivered)
}

func TestBus_DeliveryOrderAcrossSubscribers(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(TopicSessionOutput, func(e Event) {
		order = append(order, "first:"+e.Payload.(string))
	})
	bus.Subscribe(TopicSessionOutput, func(e Event) {
		order = append(order, "second:"+e.Payload.(string))
	})

	bus.Publish(TopicSessionOutput, "a")
	bus.Publish(TopicSessionOutput, "b")

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, order)
}

func TestBus_SubscribeBeforePublishSeesEvent(t *testing.T) {
	bus := NewBus()

	got := 0
	sub := bus.Subscribe(TopicAnalysisToken, func(Event) { got++ })
	bus.Publish(TopicAnalysisToken, "tok")
	assert.Equal(t, 1, got)

	// Subscribing after a publish must not replay past events.
	late := 0
	bus.Subscribe(TopicAnalysisToken, func(Event) { late++ })
	assert.Equal(t, 0, late)
	_ = sub
}

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	bus := NewBus()

	got := 0
	sub := bus.Subscribe(TopicLogLine, func(Event) { got++ })

	bus.Publish(TopicLogLine, "a")
	sub.Close()
	bus.Publish(TopicLogLine, "b")

	assert.Equal(t, 1, got)
	assert.True(t, sub.IsClosed())
	assert.Equal(t, 0, bus.GetMetrics().ActiveSubscriptions)
}

func TestSubscription_DoubleCloseIsSafe(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicLogLine, func(Event) {})

	assert.NotPanics(t, func() {
		sub.Close()
		sub.Close()
	})
	assert.Equal(t, 0, bus.GetMetrics().ActiveSubscriptions)
}

func TestBus_CloseShutsDownAllSubscriptions(t *testing.T) {
	bus := NewBus()

	got := 0
	sub1 := bus.Subscribe(TopicLogLine, func(Event) { got++ })
	sub2 := bus.Subscribe(TopicLogDone, func(Event) { got++ })

	bus.Close()
	bus.Publish(TopicLogLine, "a")
	bus.Publish(TopicLogDone, nil)

	assert.Equal(t, 0, got)
	assert.True(t, sub1.IsClosed())
	assert.True(t, sub2.IsClosed())
}

func TestBus_SubscribeAfterCloseReturnsClosedHandle(t *testing.T) {
	bus := NewBus()
	bus.Close()

	sub := bus.Subscribe(TopicLogLine, func(Event) {})
	assert.True(t, sub.IsClosed())
	assert.NotPanics(t, sub.Close)
}

func TestBus_ConcurrentPublishAndClose(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	sub := bus.Subscribe(TopicLogLine, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(TopicLogLine, "x")
		}()
	}
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 10, count)
	mu.Unlock()
	sub.Close()
}
