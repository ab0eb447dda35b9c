package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/code-100-precent/LingRx/pkg/logger"
	"go.uber.org/zap"
)

// Loop is a single-goroutine event loop. Tasks run one at a time in the
// order they were posted; timers fire by posting into the same queue.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewLoop starts a loop whose queue is pre-allocated for queueSize tasks
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	l := &Loop{
		queue:   make([]func(), 0, queueSize),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) Post(task func()) {
	_ = l.enqueue(task)
}

func (l *Loop) Schedule(delay time.Duration, task func()) Cancel {
	if delay < 0 {
		delay = 0
	}
	var cancelled atomic.Bool
	timer := time.AfterFunc(delay, func() {
		l.Post(func() {
			if !cancelled.Load() {
				task()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

// Do runs task on the loop and waits for it to return. It must not be
// called from inside a loop task.
func (l *Loop) Do(task func()) error {
	finished := make(chan struct{})
	if err := l.enqueue(func() {
		defer close(finished)
		task()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.stopped:
		return ErrClosed
	}
}

// Close stops the loop. Queued tasks that have not started are dropped.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
	<-l.stopped
}

// Len returns the number of queued tasks
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) enqueue(task func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.wake:
		case <-l.done:
			return
		}
		for {
			task, ok := l.next()
			if !ok {
				break
			}
			l.execute(task)
		}
	}
}

func (l *Loop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduler task panicked",
				zap.String("panic", fmt.Sprint(r)),
				zap.Stack("stack"))
		}
	}()
	task()
}
