package reactive

// Observable is a lazy description of a value-producing process. Each call
// to Subscribe runs the subscribe procedure again; the zero Observable
// completes immediately.
type Observable[T any] struct {
	subscribe func(*Subscriber[T]) TeardownFunc
}

// New creates an Observable from a subscribe procedure. The returned
// teardown, if any, runs when the subscription ends. A panic inside fn is
// delivered to the subscriber as a *PanicError.
func New[T any](fn func(*Subscriber[T]) TeardownFunc) Observable[T] {
	return Observable[T]{subscribe: fn}
}

// Subscribe runs the stream against observer. The procedure starts before
// Subscribe returns.
func (o Observable[T]) Subscribe(observer Observer[T]) *Subscription {
	s := newSubscriber(guardConsumer(observer))
	guarded := s.observer.Next
	s.observer.Next = func(v T) {
		if err := try(func() { guarded(v) }); err != nil {
			reportUnhandled(err)
			s.Unsubscribe()
		}
	}
	o.run(s)
	return s.sub
}

// SubscribeFunc subscribes with a next callback only
func (o Observable[T]) SubscribeFunc(next func(T)) *Subscription {
	return o.Subscribe(Observer[T]{Next: next})
}

func (o Observable[T]) run(s *Subscriber[T]) {
	if o.subscribe == nil {
		s.Complete()
		return
	}
	if s.Closed() {
		return
	}
	var td TeardownFunc
	if err := try(func() { td = o.subscribe(s) }); err != nil {
		s.Error(err)
	}
	s.Add(td)
}

// subscribeChild subscribes o with observer and ties the resulting
// subscription to parent.
func (o Observable[T]) subscribeChild(parent *Subscription, observer Observer[T]) *Subscription {
	s := newSubscriber(observer)
	parent.AddSubscription(s.sub)
	o.run(s)
	return s.sub
}

// guardConsumer keeps panics in terminal handlers from escaping into producers
func guardConsumer[T any](o Observer[T]) Observer[T] {
	if fn := o.Error; fn != nil {
		o.Error = func(err error) {
			if perr := try(func() { fn(err) }); perr != nil {
				reportUnhandled(perr)
			}
		}
	}
	if fn := o.Complete; fn != nil {
		o.Complete = func() {
			if perr := try(fn); perr != nil {
				reportUnhandled(perr)
			}
		}
	}
	return o
}
