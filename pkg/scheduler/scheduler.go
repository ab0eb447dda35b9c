package scheduler

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when posting work to a loop that has been closed
var ErrClosed = errors.New("scheduler is closed")

// Cancel stops a scheduled task. Calling it more than once, or after the
// task already ran, is a no-op.
type Cancel func()

// Scheduler is the clock every asynchronous boundary of a stream goes through.
// Callbacks handed to Schedule and Post never run concurrently with each other.
type Scheduler interface {
	// Now returns the scheduler's current time
	Now() time.Time
	// Schedule runs task once after delay
	Schedule(delay time.Duration, task func()) Cancel
	// Post runs task as soon as possible, after already queued work
	Post(task func())
}

var (
	defaultMu    sync.Mutex
	defaultSched Scheduler
)

// Default returns the process-wide scheduler, starting a Loop on first use
func Default() Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSched == nil {
		defaultSched = NewLoop(0)
	}
	return defaultSched
}

// SetDefault replaces the process-wide scheduler and returns the previous one
func SetDefault(s Scheduler) Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultSched
	defaultSched = s
	return prev
}
