package reactive

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/code-100-precent/LingRx/pkg/scheduler"
	"go.uber.org/zap"
)

func init() {
	logger.Lg = zap.NewNop()
}

// recorder collects notifications and the virtual time they arrived at
type recorder[T any] struct {
	mu        sync.Mutex
	clock     scheduler.Scheduler
	start     time.Time
	values    []T
	at        []time.Duration
	err       error
	errors    int
	completed int
	log       []string
}

func newRecorder[T any](clock scheduler.Scheduler) *recorder[T] {
	r := &recorder[T]{clock: clock}
	if clock != nil {
		r.start = clock.Now()
	}
	return r
}

func (r *recorder[T]) observer() Observer[T] {
	return Observer[T]{
		Next: func(v T) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.values = append(r.values, v)
			if r.clock != nil {
				r.at = append(r.at, r.clock.Now().Sub(r.start))
			}
			r.log = append(r.log, fmt.Sprintf("next:%v", v))
		},
		Error: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.err = err
			r.errors++
			r.log = append(r.log, "error:"+err.Error())
		},
		Complete: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completed++
			r.log = append(r.log, "complete")
		},
	}
}

func (r *recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *recorder[T]) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

// step is one scripted notification, relative to subscription time
type step[T any] struct {
	at       time.Duration
	value    T
	complete bool
	err      error
}

func next[T any](at time.Duration, v T) step[T] { return step[T]{at: at, value: v} }

func done[T any](at time.Duration) step[T] { return step[T]{at: at, complete: true} }

func fail[T any](at time.Duration, err error) step[T] { return step[T]{at: at, err: err} }

// scripted replays steps on the virtual clock. teardowns counts how many
// subscriptions were torn down.
func scripted[T any](v *scheduler.Virtual, teardowns *int, steps ...step[T]) Observable[T] {
	return New(func(dst *Subscriber[T]) TeardownFunc {
		cancels := make([]scheduler.Cancel, 0, len(steps))
		for _, s := range steps {
			cancels = append(cancels, v.Schedule(s.at, func() {
				switch {
				case s.err != nil:
					dst.Error(s.err)
				case s.complete:
					dst.Complete()
				default:
					dst.Next(s.value)
				}
			}))
		}
		return func() {
			if teardowns != nil {
				*teardowns++
			}
			for _, c := range cancels {
				c()
			}
		}
	})
}

func captureUnhandled(t *testing.T) *[]error {
	t.Helper()
	var mu sync.Mutex
	var errs []error
	prev := SetUnhandledErrorHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	})
	t.Cleanup(func() { SetUnhandledErrorHandler(prev) })
	return &errs
}

func newLoop(t *testing.T) *scheduler.Loop {
	t.Helper()
	l := scheduler.NewLoop(0)
	t.Cleanup(l.Close)
	return l
}

// len counts the teardowns and children still registered on s
func (s *Subscription) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

const ms = time.Millisecond
