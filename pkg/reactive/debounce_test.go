package reactive

import (
	"errors"
	"testing"
	"time"

	"github.com/code-100-precent/LingRx/pkg/scheduler"
	"github.com/stretchr/testify/assert"
)

func TestDebounceTime_Coalesces(t *testing.T) {
	v := scheduler.NewVirtual(time.Time{})
	src := scripted(v, nil, next(0, 1), next(50*ms, 2), next(120*ms, 3))

	rec := newRecorder[int](v)
	src.Pipe(DebounceTime[int](100*ms, WithScheduler(v))).Subscribe(rec.observer())

	v.Advance(219 * ms)
	assert.Empty(t, rec.Values())

	v.Advance(1 * ms)
	assert.Equal(t, []int{3}, rec.Values())
	assert.Equal(t, []time.Duration{220 * ms}, rec.at)

	v.Advance(time.Second)
	assert.Equal(t, []int{3}, rec.Values())
}

func TestDebounceTime_GapLongerThanWindowEmitsBoth(t *testing.T) {
	v := scheduler.NewVirtual(time.Time{})
	src := scripted(v, nil, next(0, 1), next(50*ms, 2), next(200*ms, 3))

	rec := newRecorder[int](v)
	src.Pipe(DebounceTime[int](100*ms, WithScheduler(v))).Subscribe(rec.observer())
	v.Advance(time.Second)

	// 2 settles at 150ms, before 3 arrives
	assert.Equal(t, []int{2, 3}, rec.Values())
	assert.Equal(t, []time.Duration{150 * ms, 300 * ms}, rec.at)
}

func TestDebounceTime_EmitsEachSettledValue(t *testing.T) {
	v := scheduler.NewVirtual(time.Time{})
	src := scripted(v, nil, next(0, "a"), next(150*ms, "b"), next(400*ms, "c"))

	rec := newRecorder[string](v)
	src.Pipe(DebounceTime[string](100*ms, WithScheduler(v))).Subscribe(rec.observer())
	v.Advance(time.Second)

	assert.Equal(t, []string{"a", "b", "c"}, rec.Values())
	assert.Equal(t, []time.Duration{100 * ms, 250 * ms, 500 * ms}, rec.at)
}

func TestDebounceTime_FlushesPendingOnComplete(t *testing.T) {
	v := scheduler.NewVirtual(time.Time{})
	src := scripted(v, nil, next(0, 1), next(10*ms, 2), done[int](20*ms))

	rec := newRecorder[int](v)
	src.Pipe(DebounceTime[int](100*ms, WithScheduler(v))).Subscribe(rec.observer())
	v.Advance(20 * ms)

	assert.Equal(t, []string{"next:2", "complete"}, rec.Log())
	assert.Equal(t, []time.Duration{20 * ms}, rec.at)
	assert.Equal(t, 0, v.Pending())
}

func TestDebounceTime_DropsPendingOnError(t *testing.T) {
	v := scheduler.NewVirtual(time.Time{})
	boom := errors.New("boom")
	src := scripted(v, nil, next(0, 1), fail[int](10*ms, boom))

	rec := newRecorder[int](v)
	src.Pipe(DebounceTime[int](100*ms, WithScheduler(v))).Subscribe(rec.observer())
	v.Advance(time.Second)

	assert.Empty(t, rec.Values())
	assert.Same(t, boom, rec.err)
}

func TestDebounceTime_UnsubscribeCancelsTimer(t *testing.T) {
	v := scheduler.NewVirtual(time.Time{})
	teardowns := 0
	src := scripted(v, &teardowns, next(0, 1))

	rec := newRecorder[int](v)
	sub := src.Pipe(DebounceTime[int](100*ms, WithScheduler(v))).Subscribe(rec.observer())
	v.Advance(50 * ms)
	assert.Equal(t, 1, v.Pending())

	sub.Unsubscribe()
	assert.Equal(t, 0, v.Pending())
	assert.Equal(t, 1, teardowns)

	v.Advance(time.Second)
	assert.Empty(t, rec.Values())
}
