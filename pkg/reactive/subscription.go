package reactive

import (
	"sync"
)

// TeardownFunc releases whatever a subscribe procedure acquired
type TeardownFunc func()

type teardown struct {
	fn    TeardownFunc
	child *Subscription
}

// Subscription is a cancellable handle owning teardown actions. Teardowns
// run once, in the order they were added.
type Subscription struct {
	mu      sync.Mutex
	closed  bool
	entries []teardown
}

// NewSubscription creates an open subscription
func NewSubscription() *Subscription {
	return &Subscription{}
}

// Add registers fn to run on unsubscribe. On a closed subscription fn runs immediately.
func (s *Subscription) Add(fn TeardownFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		runTeardown(fn)
		return
	}
	s.entries = append(s.entries, teardown{fn: fn})
	s.mu.Unlock()
}

// AddSubscription makes child part of s. The child is unsubscribed together
// with s, and removes itself from s when it closes first.
func (s *Subscription) AddSubscription(child *Subscription) {
	if child == nil || child == s {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		child.Unsubscribe()
		return
	}
	s.entries = append(s.entries, teardown{child: child})
	s.mu.Unlock()

	child.Add(func() { s.Remove(child) })
}

// Remove detaches child without unsubscribing it
func (s *Subscription) Remove(child *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.child == child {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Closed reports whether Unsubscribe has been called
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Unsubscribe closes s and runs its teardowns. Further calls do nothing.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	for _, e := range entries {
		if e.child != nil {
			e.child.Unsubscribe()
			continue
		}
		runTeardown(e.fn)
	}
}

// runTeardown reports a panicking teardown as unhandled and returns
func runTeardown(fn TeardownFunc) {
	if err := try(func() { fn() }); err != nil {
		reportUnhandled(err)
	}
}
