package reactive

import (
	"time"

	"github.com/code-100-precent/LingRx/pkg/scheduler"
)

// DebounceTime emits a value only after window has passed without another
// value arriving. On completion a pending value is flushed before Complete;
// on error it is dropped.
func DebounceTime[T any](window time.Duration, opts ...Option) Operator[T, T] {
	cfg := newOptions(opts)
	return func(source Observable[T]) Observable[T] {
		return New(func(dst *Subscriber[T]) TeardownFunc {
			clock := cfg.clock()
			var (
				pending    T
				hasPending bool
				cancel     scheduler.Cancel
			)
			stop := func() {
				if cancel != nil {
					cancel()
					cancel = nil
				}
			}
			flush := func() {
				cancel = nil
				if !hasPending {
					return
				}
				v := pending
				var zero T
				pending, hasPending = zero, false
				dst.Next(v)
			}

			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					stop()
					pending, hasPending = v, true
					cancel = clock.Schedule(window, flush)
				},
				Error: func(err error) {
					stop()
					hasPending = false
					dst.Error(err)
				},
				Complete: func() {
					stop()
					flush()
					dst.Complete()
				},
			})
			return stop
		})
	}
}
