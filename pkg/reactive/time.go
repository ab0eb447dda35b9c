package reactive

import (
	"time"

	"github.com/code-100-precent/LingRx/pkg/scheduler"
)

// Timer emits 0 once after delay and completes
func Timer(delay time.Duration, opts ...Option) Observable[int] {
	cfg := newOptions(opts)
	return New(func(dst *Subscriber[int]) TeardownFunc {
		cancel := cfg.clock().Schedule(delay, func() {
			dst.Next(0)
			dst.Complete()
		})
		return TeardownFunc(cancel)
	})
}

// Interval emits 0, 1, 2, ... every period. It never completes on its own.
func Interval(period time.Duration, opts ...Option) Observable[int] {
	cfg := newOptions(opts)
	return New(func(dst *Subscriber[int]) TeardownFunc {
		clock := cfg.clock()
		var (
			n      int
			cancel scheduler.Cancel
			tick   func()
		)
		tick = func() {
			v := n
			n++
			cancel = clock.Schedule(period, tick)
			dst.Next(v)
		}
		cancel = clock.Schedule(period, tick)
		return func() {
			cancel()
		}
	})
}

// Cron emits the fire time of every activation of a cron expression, in 5
// or 6 field form. It never completes on its own; an invalid expression is
// delivered as an error.
func Cron(expr string, opts ...Option) Observable[time.Time] {
	cfg := newOptions(opts)
	return New(func(dst *Subscriber[time.Time]) TeardownFunc {
		sched, err := scheduler.ParseCron(expr)
		if err != nil {
			dst.Error(err)
			return nil
		}
		clock := cfg.clock()
		var (
			cancel scheduler.Cancel
			arm    func()
		)
		arm = func() {
			now := clock.Now()
			at := sched.Next(now)
			cancel = clock.Schedule(at.Sub(now), func() {
				arm()
				dst.Next(at)
			})
		}
		arm()
		return func() {
			cancel()
		}
	})
}
