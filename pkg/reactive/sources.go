package reactive

import (
	"context"
	"iter"
)

// Of emits values synchronously and completes
func Of[T any](values ...T) Observable[T] {
	return From(values)
}

// From emits the elements of values synchronously and completes
func From[T any](values []T) Observable[T] {
	return New(func(dst *Subscriber[T]) TeardownFunc {
		for _, v := range values {
			if dst.Closed() {
				return nil
			}
			dst.Next(v)
		}
		dst.Complete()
		return nil
	})
}

// FromSeq emits every element yielded by seq and completes. Iteration stops
// early once the subscriber is closed.
func FromSeq[T any](seq iter.Seq[T]) Observable[T] {
	return New(func(dst *Subscriber[T]) TeardownFunc {
		for v := range seq {
			if dst.Closed() {
				return nil
			}
			dst.Next(v)
		}
		dst.Complete()
		return nil
	})
}

// Empty completes immediately without emitting
func Empty[T any]() Observable[T] {
	return Observable[T]{}
}

// Throw errors immediately with err
func Throw[T any](err error) Observable[T] {
	return New(func(dst *Subscriber[T]) TeardownFunc {
		dst.Error(err)
		return nil
	})
}

// Never neither emits nor terminates
func Never[T any]() Observable[T] {
	return New(func(*Subscriber[T]) TeardownFunc { return nil })
}

// Defer calls factory on every subscription and subscribes to its result
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return New(func(dst *Subscriber[T]) TeardownFunc {
		factory().subscribeChild(dst.sub, Observer[T]{
			Next:     dst.Next,
			Error:    dst.Error,
			Complete: dst.Complete,
		})
		return nil
	})
}

// FromFunc runs fn once per subscription on its own goroutine and delivers
// the outcome through the scheduler: the value followed by Complete, or the
// error alone. Unsubscribing cancels the context passed to fn.
func FromFunc[T any](fn func(ctx context.Context) (T, error), opts ...Option) Observable[T] {
	cfg := newOptions(opts)
	return New(func(dst *Subscriber[T]) TeardownFunc {
		clock := cfg.clock()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			var (
				v   T
				err error
			)
			if perr := try(func() { v, err = fn(ctx) }); perr != nil {
				err = perr
			}
			clock.Post(func() {
				if err != nil {
					dst.Error(err)
					return
				}
				dst.Next(v)
				dst.Complete()
			})
		}()
		return TeardownFunc(cancel)
	})
}

// FromChannel emits every value received from ch and completes when ch is
// closed. Values are handed to the subscriber through the scheduler.
func FromChannel[T any](ch <-chan T, opts ...Option) Observable[T] {
	cfg := newOptions(opts)
	return New(func(dst *Subscriber[T]) TeardownFunc {
		clock := cfg.clock()
		done := make(chan struct{})
		go func() {
			for {
				select {
				case v, ok := <-ch:
					if !ok {
						clock.Post(dst.Complete)
						return
					}
					clock.Post(func() { dst.Next(v) })
				case <-done:
					return
				}
			}
		}()
		return func() { close(done) }
	})
}

// Collect subscribes to o on the scheduler and blocks until it terminates,
// returning every emitted value. Cancelling ctx unsubscribes.
func Collect[T any](ctx context.Context, o Observable[T], opts ...Option) ([]T, error) {
	clock := newOptions(opts).clock()

	type result struct {
		values []T
		err    error
	}
	done := make(chan result, 1)
	subs := make(chan *Subscription, 1)
	clock.Post(func() {
		var values []T
		subs <- o.Subscribe(Observer[T]{
			Next: func(v T) { values = append(values, v) },
			Error: func(err error) {
				done <- result{values: values, err: err}
			},
			Complete: func() {
				done <- result{values: values}
			},
		})
	})

	select {
	case r := <-done:
		return r.values, r.err
	case <-ctx.Done():
		clock.Post(func() {
			select {
			case sub := <-subs:
				sub.Unsubscribe()
			default:
			}
		})
		return nil, ctx.Err()
	}
}

// Last is Collect returning only the final value. ErrNoValue is returned
// when o completes without emitting.
func Last[T any](ctx context.Context, o Observable[T], opts ...Option) (T, error) {
	var zero T
	values, err := Collect(ctx, o, opts...)
	if err != nil {
		return zero, err
	}
	if len(values) == 0 {
		return zero, ErrNoValue
	}
	return values[len(values)-1], nil
}
