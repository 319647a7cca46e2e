package events

import (
	"sync"
	"time"
)

// Event is one delivery on the bus: a topic plus a payload typed to
// that topic (string chunks for output/token topics, nil for done
// topics unless the producer attaches a final payload).
type Event struct {
	Topic     Topic
	Payload   any
	Timestamp time.Time
}

// Handler processes a delivered event. Handlers are invoked
// synchronously on the publisher's goroutine, in subscription order.
type Handler func(Event)

// Subscription is the handle returned by Subscribe. Invoking Close
// permanently stops delivery to this subscription; double-Close is safe.
type Subscription struct {
	id     int64
	topic  Topic
	bus    *Bus
	closed bool
	mu     sync.Mutex
}

// Close stops delivery to this subscription. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.remove(s)
	}
}

// IsClosed reports whether the subscription has been closed.
func (s *Subscription) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type subscriber struct {
	sub     *Subscription
	handler Handler
}

// Metrics tracks bus activity.
type Metrics struct {
	TotalSubscriptions  int
	ActiveSubscriptions int
	EventsPublished     int64
	EventsDelivered     int64
	LastEventTime       time.Time
}

// Bus is a named-topic publish/subscribe channel. Delivery is
// synchronous and ordered: within one topic, subscribers see events in
// emission order, and a subscriber registered before a Publish call is
// guaranteed to see that event. This is the ordering contract the
// inspect controllers rely on (subscribe happens-before trigger).
type Bus struct {
	mu        sync.RWMutex
	subs      map[Topic][]subscriber
	metrics   Metrics
	idCounter int64
	closed    bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers a handler for a topic and returns its handle.
func (b *Bus) Subscribe(topic Topic, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return &Subscription{topic: topic, closed: true}
	}

	b.idCounter++
	sub := &Subscription{id: b.idCounter, topic: topic, bus: b}
	b.subs[topic] = append(b.subs[topic], subscriber{sub: sub, handler: handler})
	b.metrics.TotalSubscriptions++
	b.metrics.ActiveSubscriptions++
	return sub
}

// Publish delivers an event to every live subscriber of the topic, in
// subscription order, on the caller's goroutine. Handlers that need to
// do slow work must hand it off themselves.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	targets := make([]subscriber, len(b.subs[topic]))
	copy(targets, b.subs[topic])
	b.mu.RUnlock()

	event := Event{Topic: topic, Payload: payload, Timestamp: time.Now()}
	delivered := 0
	for _, t := range targets {
		if t.sub.IsClosed() {
			continue
		}
		t.handler(event)
		delivered++
	}

	b.mu.Lock()
	b.metrics.EventsPublished++
	b.metrics.EventsDelivered += int64(delivered)
	b.metrics.LastEventTime = event.Timestamp
	b.mu.Unlock()
}

// remove detaches a closed subscription from the topic list.
func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.topic]
	for i, s := range list {
		if s.sub.id == sub.id {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			b.metrics.ActiveSubscriptions--
			return
		}
	}
}

// GetMetrics returns a snapshot of bus activity.
func (b *Bus) GetMetrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// Close shuts down the bus and all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for _, list := range b.subs {
		for _, s := range list {
			s.sub.mu.Lock()
			s.sub.closed = true
			s.sub.mu.Unlock()
		}
	}
	b.subs = make(map[Topic][]subscriber)
	b.metrics.ActiveSubscriptions = 0
}
