package reactive

import (
	"sync/atomic"
)

// Subscriber is the producer-facing end of one subscription. Once Error or
// Complete has been delivered, or the subscription was cancelled, every
// further call is ignored.
type Subscriber[T any] struct {
	observer Observer[T]
	sub      *Subscription
	stopped  atomic.Bool
}

func newSubscriber[T any](observer Observer[T]) *Subscriber[T] {
	s := &Subscriber[T]{
		observer: observer.normalize(),
		sub:      NewSubscription(),
	}
	s.sub.Add(func() { s.stopped.Store(true) })
	return s
}

func (s *Subscriber[T]) Next(v T) {
	if s.stopped.Load() {
		return
	}
	s.observer.Next(v)
}

func (s *Subscriber[T]) Error(err error) {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	defer s.sub.Unsubscribe()
	s.observer.Error(err)
}

func (s *Subscriber[T]) Complete() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	defer s.sub.Unsubscribe()
	s.observer.Complete()
}

// Closed reports whether the subscriber still forwards values
func (s *Subscriber[T]) Closed() bool {
	return s.stopped.Load()
}

// Add registers a teardown on the subscriber's subscription
func (s *Subscriber[T]) Add(fn TeardownFunc) {
	s.sub.Add(fn)
}

// AddSubscription ties child to the subscriber's lifetime
func (s *Subscriber[T]) AddSubscription(child *Subscription) {
	s.sub.AddSubscription(child)
}

// Unsubscribe cancels the subscription without notifying the observer
func (s *Subscriber[T]) Unsubscribe() {
	s.sub.Unsubscribe()
}

// Subscription returns the subscription owned by s
func (s *Subscriber[T]) Subscription() *Subscription {
	return s.sub
}
