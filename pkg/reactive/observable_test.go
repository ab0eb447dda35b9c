package reactive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservable_SubscribeRunsSynchronously(t *testing.T) {
	rec := newRecorder[int](nil)
	sub := Of(1, 2, 3).Subscribe(rec.observer())

	assert.Equal(t, []string{"next:1", "next:2", "next:3", "complete"}, rec.Log())
	assert.True(t, sub.Closed())
}

func TestObservable_ColdResubscription(t *testing.T) {
	calls := 0
	src := New(func(dst *Subscriber[int]) TeardownFunc {
		calls++
		dst.Next(calls)
		dst.Complete()
		return nil
	})

	a := newRecorder[int](nil)
	b := newRecorder[int](nil)
	src.Subscribe(a.observer())
	src.Subscribe(b.observer())

	assert.Equal(t, []int{1}, a.Values())
	assert.Equal(t, []int{2}, b.Values())
}

func TestSubscriber_IgnoresCallsAfterTermination(t *testing.T) {
	rec := newRecorder[int](nil)
	New(func(dst *Subscriber[int]) TeardownFunc {
		dst.Next(1)
		dst.Complete()
		dst.Next(2)
		dst.Error(errors.New("late"))
		dst.Complete()
		return nil
	}).Subscribe(rec.observer())

	assert.Equal(t, []string{"next:1", "complete"}, rec.Log())
}

func TestSubscriber_StopsForwardingAfterUnsubscribe(t *testing.T) {
	var producer *Subscriber[int]
	rec := newRecorder[int](nil)
	sub := New(func(dst *Subscriber[int]) TeardownFunc {
		producer = dst
		return nil
	}).Subscribe(rec.observer())

	producer.Next(1)
	sub.Unsubscribe()
	producer.Next(2)
	producer.Complete()

	assert.Equal(t, []string{"next:1"}, rec.Log())
	assert.True(t, producer.Closed())
}

func TestObservable_TeardownOnEveryExitPath(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		run  func(dst *Subscriber[int])
		stop bool
	}{
		{name: "complete", run: func(dst *Subscriber[int]) { dst.Complete() }},
		{name: "error", run: func(dst *Subscriber[int]) { dst.Error(boom) }},
		{name: "unsubscribe", run: func(*Subscriber[int]) {}, stop: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			teardowns := 0
			var producer *Subscriber[int]
			sub := New(func(dst *Subscriber[int]) TeardownFunc {
				producer = dst
				return func() { teardowns++ }
			}).Subscribe(Observer[int]{Error: func(error) {}})

			assert.Equal(t, 0, teardowns)
			tc.run(producer)
			if tc.stop {
				sub.Unsubscribe()
			}
			sub.Unsubscribe()
			assert.Equal(t, 1, teardowns)
		})
	}
}

func TestObservable_SyncCompletionRunsTeardownImmediately(t *testing.T) {
	teardowns := 0
	Of(1).Pipe(Finalize[int](func() { teardowns++ })).SubscribeFunc(func(int) {})
	assert.Equal(t, 1, teardowns)
}

func TestObservable_PanicInProcedureBecomesError(t *testing.T) {
	rec := newRecorder[int](nil)
	assert.NotPanics(t, func() {
		New(func(dst *Subscriber[int]) TeardownFunc {
			dst.Next(1)
			panic("broken producer")
		}).Subscribe(rec.observer())
	})

	assert.Equal(t, []int{1}, rec.Values())
	var perr *PanicError
	require.ErrorAs(t, rec.err, &perr)
	assert.Equal(t, "broken producer", perr.Value)
	assert.NotEmpty(t, perr.Stack)
}

func TestPanicError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := error(newPanicError(inner))
	assert.ErrorIs(t, err, inner)
	assert.Nil(t, newPanicError("text").Unwrap())
	assert.Contains(t, err.Error(), "inner")
}

func TestObservable_UnhandledErrorReachesHook(t *testing.T) {
	errs := captureUnhandled(t)
	boom := errors.New("nobody listens")

	Throw[int](boom).SubscribeFunc(func(int) {})
	require.Len(t, *errs, 1)
	assert.Same(t, boom, (*errs)[0])

	handled := false
	Throw[int](boom).Subscribe(Observer[int]{Error: func(error) { handled = true }})
	assert.True(t, handled)
	assert.Len(t, *errs, 1)
}

func TestObservable_ConsumerPanicIsReportedAndUnsubscribes(t *testing.T) {
	errs := captureUnhandled(t)
	emitted := 0
	sub := New(func(dst *Subscriber[int]) TeardownFunc {
		for i := 0; i < 3; i++ {
			emitted++
			dst.Next(i)
		}
		return nil
	}).SubscribeFunc(func(int) { panic("consumer bug") })

	assert.True(t, sub.Closed())
	assert.Equal(t, 3, emitted)
	require.Len(t, *errs, 1)
}

func TestObservable_ZeroValueCompletes(t *testing.T) {
	var empty Observable[string]
	rec := newRecorder[string](nil)
	empty.Subscribe(rec.observer())
	assert.Equal(t, []string{"complete"}, rec.Log())
}

func TestDefaultUnhandledHandlerLogs(t *testing.T) {
	prev := SetUnhandledErrorHandler(nil)
	defer SetUnhandledErrorHandler(prev)
	assert.NotPanics(t, func() {
		Throw[int](errors.New("logged")).SubscribeFunc(func(int) {})
	})
}
