package reactive

// Flattening operators map every outer value to an inner Observable. They
// share one error policy: an error from the outer stream, from any inner
// stream or from project ends the whole operator and unsubscribes every
// inner subscription. Wrap the inner Observable in CatchError inside
// project to recover per inner stream instead.

// ConcatMap subscribes to one inner Observable at a time. Outer values that
// arrive while an inner is active are queued and projected in order.
func ConcatMap[T, R any](project func(T) Observable[R]) Operator[T, R] {
	return func(source Observable[T]) Observable[R] {
		return New(func(dst *Subscriber[R]) TeardownFunc {
			return mergeInternals(source, dst, project, 1)
		})
	}
}

// MergeMap subscribes to every inner Observable as soon as its outer value
// arrives. With WithConcurrency(n) at most n inners run at once and further
// outer values wait in FIFO order.
func MergeMap[T, R any](project func(T) Observable[R], opts ...Option) Operator[T, R] {
	cfg := newOptions(opts)
	return func(source Observable[T]) Observable[R] {
		return New(func(dst *Subscriber[R]) TeardownFunc {
			return mergeInternals(source, dst, project, cfg.concurrency)
		})
	}
}

// mergeInternals drives ConcatMap and MergeMap. Active inners are owned by
// the map, keyed by id, and dropped from it when they complete; the returned
// teardown cancels whatever is left.
func mergeInternals[T, R any](source Observable[T], dst *Subscriber[R], project func(T) Observable[R], limit int) TeardownFunc {
	var (
		buffer    []T
		inners    = make(map[uint64]*Subscription)
		nextID    uint64
		outerDone bool
		draining  bool
	)

	var drain func()
	startInner := func(v T) {
		var inner Observable[R]
		if err := try(func() { inner = project(v) }); err != nil {
			dst.Error(err)
			return
		}
		nextID++
		id := nextID
		s := newSubscriber(Observer[R]{
			Next:  dst.Next,
			Error: dst.Error,
			Complete: func() {
				delete(inners, id)
				if !draining {
					drain()
				}
			},
		})
		inners[id] = s.sub
		inner.run(s)
	}
	drain = func() {
		draining = true
		for len(buffer) > 0 && (limit <= 0 || len(inners) < limit) && !dst.Closed() {
			v := buffer[0]
			var zero T
			buffer[0] = zero
			buffer = buffer[1:]
			startInner(v)
		}
		draining = false
		if outerDone && len(inners) == 0 && len(buffer) == 0 {
			dst.Complete()
		}
	}

	source.subscribeChild(dst.sub, Observer[T]{
		Next: func(v T) {
			buffer = append(buffer, v)
			if !draining {
				drain()
			}
		},
		Error: dst.Error,
		Complete: func() {
			outerDone = true
			if !draining {
				drain()
			}
		},
	})

	return func() {
		active := make([]*Subscription, 0, len(inners))
		for _, sub := range inners {
			active = append(active, sub)
		}
		clear(inners)
		for _, sub := range active {
			sub.Unsubscribe()
		}
	}
}

// SwitchMap keeps only the most recent inner Observable. A new outer value
// unsubscribes the current inner before the next one is subscribed.
func SwitchMap[T, R any](project func(T) Observable[R]) Operator[T, R] {
	return func(source Observable[T]) Observable[R] {
		return New(func(dst *Subscriber[R]) TeardownFunc {
			var (
				current     *Subscription
				currentID   uint64
				innerActive bool
				outerDone   bool
			)
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					if current != nil {
						current.Unsubscribe()
						current = nil
					}
					innerActive = false

					var inner Observable[R]
					if err := try(func() { inner = project(v) }); err != nil {
						dst.Error(err)
						return
					}
					currentID++
					id := currentID
					innerActive = true
					// current is set before the inner runs so a value fed back
					// into the outer stream can cancel it
					s := newSubscriber(Observer[R]{
						Next:  dst.Next,
						Error: dst.Error,
						Complete: func() {
							if id != currentID {
								return
							}
							innerActive = false
							current = nil
							if outerDone {
								dst.Complete()
							}
						},
					})
					dst.AddSubscription(s.sub)
					current = s.sub
					inner.run(s)
				},
				Error: dst.Error,
				Complete: func() {
					outerDone = true
					if !innerActive {
						dst.Complete()
					}
				},
			})
			return nil
		})
	}
}

// ExhaustMap ignores outer values while an inner Observable is active
func ExhaustMap[T, R any](project func(T) Observable[R]) Operator[T, R] {
	return func(source Observable[T]) Observable[R] {
		return New(func(dst *Subscriber[R]) TeardownFunc {
			var (
				innerActive bool
				outerDone   bool
			)
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					if innerActive {
						return
					}
					var inner Observable[R]
					if err := try(func() { inner = project(v) }); err != nil {
						dst.Error(err)
						return
					}
					innerActive = true
					inner.subscribeChild(dst.sub, Observer[R]{
						Next:  dst.Next,
						Error: dst.Error,
						Complete: func() {
							innerActive = false
							if outerDone {
								dst.Complete()
							}
						},
					})
				},
				Error: dst.Error,
				Complete: func() {
					outerDone = true
					if !innerActive {
						dst.Complete()
					}
				},
			})
			return nil
		})
	}
}
