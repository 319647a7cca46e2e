package inspect

import (
	"sync"

	"podscope/internal/events"
)

// SubscriptionSet owns the bus subscriptions of one controller run and
// releases them as a unit. Closing an already-closed set (or a set
// whose members were closed individually) is safe, so teardown can run
// on every exit path without bookkeeping.
type SubscriptionSet struct {
	mu   sync.Mutex
	subs []*events.Subscription
}

// NewSubscriptionSet returns an empty set.
func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{}
}

// Add takes ownership of a subscription.
func (s *SubscriptionSet) Add(sub *events.Subscription) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// CloseAll closes every owned subscription and empties the set.
// Idempotent.
func (s *SubscriptionSet) CloseAll() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// Len returns the number of currently owned subscriptions.
func (s *SubscriptionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
