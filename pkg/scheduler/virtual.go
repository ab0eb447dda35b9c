package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// Virtual is a manually advanced clock. Tasks only run inside Advance,
// AdvanceTo and Flush, on the calling goroutine.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue taskQueue
}

// NewVirtual creates a virtual clock starting at start. A zero start means
// the Unix epoch.
func NewVirtual(start time.Time) *Virtual {
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) Schedule(delay time.Duration, task func()) Cancel {
	if delay < 0 {
		delay = 0
	}
	v.mu.Lock()
	v.seq++
	t := &timedTask{at: v.now.Add(delay), seq: v.seq, fn: task}
	heap.Push(&v.queue, t)
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if t.index >= 0 {
			heap.Remove(&v.queue, t.index)
		}
	}
}

func (v *Virtual) Post(task func()) {
	v.Schedule(0, task)
}

// Advance moves the clock forward by d, running every task that falls due
func (v *Virtual) Advance(d time.Duration) {
	v.AdvanceTo(v.Now().Add(d))
}

// AdvanceTo moves the clock to t, running due tasks in time order. Tasks
// scheduled by running tasks are honoured if they fall due before t.
func (v *Virtual) AdvanceTo(t time.Time) {
	for {
		v.mu.Lock()
		if v.queue.Len() == 0 || v.queue[0].at.After(t) {
			if t.After(v.now) {
				v.now = t
			}
			v.mu.Unlock()
			return
		}
		next := heap.Pop(&v.queue).(*timedTask)
		if next.at.After(v.now) {
			v.now = next.at
		}
		v.mu.Unlock()

		next.fn()
	}
}

// Flush runs every task that is due at the current time
func (v *Virtual) Flush() {
	v.AdvanceTo(v.Now())
}

// Pending returns the number of tasks waiting to run
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queue.Len()
}

type timedTask struct {
	at    time.Time
	seq   uint64
	fn    func()
	index int
}

type taskQueue []*timedTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*timedTask)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
