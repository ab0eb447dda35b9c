package reactive

import (
	"github.com/code-100-precent/LingRx/pkg/scheduler"
)

// Option configures time-based sources and operators
type Option func(*options)

type options struct {
	scheduler   scheduler.Scheduler
	concurrency int
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// clock resolves the scheduler at subscribe time so SetDefault takes effect
func (o *options) clock() scheduler.Scheduler {
	if o.scheduler != nil {
		return o.scheduler
	}
	return scheduler.Default()
}

// WithScheduler drives timers and hand-offs through s instead of scheduler.Default()
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithConcurrency caps the number of inner subscriptions MergeMap keeps open.
// Zero or a negative n means unbounded.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
