package reactive

// Filter forwards values for which predicate returns true
func Filter[T any](predicate func(T) bool) Operator[T, T] {
	return func(source Observable[T]) Observable[T] {
		return New(func(dst *Subscriber[T]) TeardownFunc {
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					var keep bool
					if err := try(func() { keep = predicate(v) }); err != nil {
						dst.Error(err)
						return
					}
					if keep {
						dst.Next(v)
					}
				},
				Error:    dst.Error,
				Complete: dst.Complete,
			})
			return nil
		})
	}
}

// Map forwards project(v) for every value v
func Map[T, R any](project func(T) R) Operator[T, R] {
	return TryMap(func(v T) (R, error) {
		return project(v), nil
	})
}

// TryMap is Map for projections that can fail. A non-nil error terminates the stream.
func TryMap[T, R any](project func(T) (R, error)) Operator[T, R] {
	return func(source Observable[T]) Observable[R] {
		return New(func(dst *Subscriber[R]) TeardownFunc {
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					var (
						out R
						err error
					)
					if perr := try(func() { out, err = project(v) }); perr != nil {
						err = perr
					}
					if err != nil {
						dst.Error(err)
						return
					}
					dst.Next(out)
				},
				Error:    dst.Error,
				Complete: dst.Complete,
			})
			return nil
		})
	}
}

// Tap calls the side-effect handlers of observer before forwarding each
// notification unchanged. A panicking handler terminates the stream with
// its own error.
func Tap[T any](observer Observer[T]) Operator[T, T] {
	return func(source Observable[T]) Observable[T] {
		return New(func(dst *Subscriber[T]) TeardownFunc {
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					if observer.Next != nil {
						if err := try(func() { observer.Next(v) }); err != nil {
							dst.Error(err)
							return
						}
					}
					dst.Next(v)
				},
				Error: func(err error) {
					if observer.Error != nil {
						if perr := try(func() { observer.Error(err) }); perr != nil {
							err = perr
						}
					}
					dst.Error(err)
				},
				Complete: func() {
					if observer.Complete != nil {
						if err := try(observer.Complete); err != nil {
							dst.Error(err)
							return
						}
					}
					dst.Complete()
				},
			})
			return nil
		})
	}
}

// TapFunc is Tap with a next handler only
func TapFunc[T any](fn func(T)) Operator[T, T] {
	return Tap(Observer[T]{Next: fn})
}

// Finalize runs fn once the subscription ends, whether by completion, error or unsubscribe
func Finalize[T any](fn func()) Operator[T, T] {
	return func(source Observable[T]) Observable[T] {
		return New(func(dst *Subscriber[T]) TeardownFunc {
			source.subscribeChild(dst.sub, Observer[T]{
				Next:     dst.Next,
				Error:    dst.Error,
				Complete: dst.Complete,
			})
			return TeardownFunc(fn)
		})
	}
}

// CatchError replaces a failed source with the Observable returned by
// selector. Recovery covers only the operators upstream of CatchError.
func CatchError[T any](selector func(err error) Observable[T]) Operator[T, T] {
	return func(source Observable[T]) Observable[T] {
		return New(func(dst *Subscriber[T]) TeardownFunc {
			var upstream *Subscriber[T]
			upstream = newSubscriber(Observer[T]{
				Next: dst.Next,
				Error: func(err error) {
					upstream.Unsubscribe()

					var replacement Observable[T]
					if perr := try(func() { replacement = selector(err) }); perr != nil {
						dst.Error(perr)
						return
					}
					replacement.subscribeChild(dst.sub, Observer[T]{
						Next:     dst.Next,
						Error:    dst.Error,
						Complete: dst.Complete,
					})
				},
				Complete: dst.Complete,
			})
			dst.AddSubscription(upstream.sub)
			source.run(upstream)
			return nil
		})
	}
}

// Take forwards the first n values and then completes
func Take[T any](n int) Operator[T, T] {
	return func(source Observable[T]) Observable[T] {
		return New(func(dst *Subscriber[T]) TeardownFunc {
			if n <= 0 {
				dst.Complete()
				return nil
			}
			seen := 0
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					seen++
					dst.Next(v)
					if seen >= n {
						dst.Complete()
					}
				},
				Error:    dst.Error,
				Complete: dst.Complete,
			})
			return nil
		})
	}
}

// Reduce folds every value into an accumulator and emits it on completion
func Reduce[T, R any](accumulator func(R, T) R, seed R) Operator[T, R] {
	return func(source Observable[T]) Observable[R] {
		return New(func(dst *Subscriber[R]) TeardownFunc {
			acc := seed
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					if err := try(func() { acc = accumulator(acc, v) }); err != nil {
						dst.Error(err)
					}
				},
				Error: dst.Error,
				Complete: func() {
					dst.Next(acc)
					dst.Complete()
				},
			})
			return nil
		})
	}
}

// ToSlice collects every value and emits them as one slice on completion
func ToSlice[T any]() Operator[T, []T] {
	return Reduce(func(acc []T, v T) []T {
		return append(acc, v)
	}, nil)
}
