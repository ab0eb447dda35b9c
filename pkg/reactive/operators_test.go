package reactive

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/code-100-precent/LingRx/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	rec := newRecorder[int](nil)
	Of(1, 2, 3, 4, 5, 6, 7, 8, 9, 10).Pipe(Filter(func(x int) bool {
		return x%2 == 0
	})).Subscribe(rec.observer())

	assert.Equal(t, []int{2, 4, 6, 8, 10}, rec.Values())
	assert.Equal(t, 1, rec.completed)
}

func TestFilter_PredicatePanicTerminates(t *testing.T) {
	rec := newRecorder[int](nil)
	Of(1, 2, 3).Pipe(Filter(func(x int) bool {
		if x == 2 {
			panic("bad predicate")
		}
		return true
	})).Subscribe(rec.observer())

	assert.Equal(t, []int{1}, rec.Values())
	assert.Equal(t, 1, rec.errors)
	assert.Equal(t, 0, rec.completed)
}

func TestMap(t *testing.T) {
	rec := newRecorder[string](nil)
	Pipe1(Of(1, 2, 3), Map(func(x int) string {
		return strconv.Itoa(x * 2)
	})).Subscribe(rec.observer())

	assert.Equal(t, []string{"2", "4", "6"}, rec.Values())
}

func TestMap_ProjectionPanicTerminates(t *testing.T) {
	rec := newRecorder[int](nil)
	var zero []int
	Pipe1(Of(0, 1), Map(func(i int) int { return zero[i] })).Subscribe(rec.observer())

	assert.Empty(t, rec.Values())
	var perr *PanicError
	assert.ErrorAs(t, rec.err, &perr)
}

func TestTryMap(t *testing.T) {
	rec := newRecorder[int](nil)
	Pipe1(Of("1", "2", "x", "4"), TryMap(strconv.Atoi)).Subscribe(rec.observer())

	assert.Equal(t, []int{1, 2}, rec.Values())
	var numErr *strconv.NumError
	assert.ErrorAs(t, rec.err, &numErr)
}

func TestPipe_OrderMatters(t *testing.T) {
	even := Filter(func(x int) bool { return x%2 == 0 })
	inc := Map(func(x int) int { return x + 1 })

	a := newRecorder[int](nil)
	Of(1, 2, 3, 4).Pipe(even, inc).Subscribe(a.observer())
	b := newRecorder[int](nil)
	Of(1, 2, 3, 4).Pipe(inc, even).Subscribe(b.observer())

	assert.Equal(t, []int{3, 5}, a.Values())
	assert.Equal(t, []int{2, 4}, b.Values())
}

func TestCompose_IsAssociative(t *testing.T) {
	double := Map(func(x int) int { return x * 2 })
	toStr := Map(strconv.Itoa)
	exclaim := Map(func(s string) string { return s + "!" })

	left := newRecorder[string](nil)
	Compose(Compose(double, toStr), exclaim)(Of(1, 2)).Subscribe(left.observer())
	right := newRecorder[string](nil)
	Compose(double, Compose(toStr, exclaim))(Of(1, 2)).Subscribe(right.observer())
	piped := newRecorder[string](nil)
	Pipe3(Of(1, 2), double, toStr, exclaim).Subscribe(piped.observer())

	assert.Equal(t, []string{"2!", "4!"}, left.Values())
	assert.Equal(t, left.Values(), right.Values())
	assert.Equal(t, left.Values(), piped.Values())
}

func TestChain(t *testing.T) {
	rec := newRecorder[int](nil)
	Chain(Take[int](3), Filter(func(x int) bool { return x > 1 }))(Of(1, 2, 3, 4)).Subscribe(rec.observer())
	assert.Equal(t, []int{2, 3}, rec.Values())
}

func TestTap(t *testing.T) {
	var seen []string
	rec := newRecorder[int](nil)
	Of(1, 2).Pipe(Tap(Observer[int]{
		Next:     func(v int) { seen = append(seen, "tap:"+strconv.Itoa(v)) },
		Complete: func() { seen = append(seen, "tap:complete") },
	})).Subscribe(rec.observer())

	assert.Equal(t, []string{"tap:1", "tap:2", "tap:complete"}, seen)
	assert.Equal(t, []int{1, 2}, rec.Values())
	assert.Equal(t, 1, rec.completed)
}

func TestTap_ErrorSideEffect(t *testing.T) {
	boom := errors.New("boom")
	var tapped error
	rec := newRecorder[int](nil)
	Throw[int](boom).Pipe(Tap(Observer[int]{Error: func(err error) { tapped = err }})).Subscribe(rec.observer())

	assert.Same(t, boom, tapped)
	assert.Same(t, boom, rec.err)
}

func TestTap_SideEffectPanicIsNotSwallowed(t *testing.T) {
	rec := newRecorder[int](nil)
	Of(1, 2).Pipe(TapFunc(func(v int) {
		if v == 2 {
			panic(errors.New("side effect failed"))
		}
	})).Subscribe(rec.observer())

	assert.Equal(t, []int{1}, rec.Values())
	require.Error(t, rec.err)
	assert.EqualError(t, errors.Unwrap(rec.err), "side effect failed")
}

func TestFinalize(t *testing.T) {
	var order []string
	Of(1).Pipe(
		Finalize[int](func() { order = append(order, "finalize") }),
	).Subscribe(Observer[int]{Complete: func() { order = append(order, "complete") }})

	assert.Equal(t, []string{"complete", "finalize"}, order)
}

func TestCatchError_ReplacesFailedSource(t *testing.T) {
	v := scheduler.NewVirtual(time.Time{})
	boom := errors.New("boom")
	upstreamTeardowns := 0
	source := scripted(v, &upstreamTeardowns, next(0, 1), fail[int](10*ms, boom))

	var caught error
	rec := newRecorder[int](v)
	source.Pipe(CatchError(func(err error) Observable[int] {
		caught = err
		assert.Equal(t, 1, upstreamTeardowns, "upstream is torn down before the replacement starts")
		return Of(8, 9)
	})).Subscribe(rec.observer())
	v.Advance(time.Second)

	assert.Same(t, boom, caught)
	assert.Equal(t, []string{"next:1", "next:8", "next:9", "complete"}, rec.Log())
	assert.Equal(t, 1, upstreamTeardowns)
}

func TestCatchError_EmptyReplacementCompletes(t *testing.T) {
	rec := newRecorder[int](nil)
	Throw[int](errors.New("x")).Pipe(CatchError(func(error) Observable[int] {
		return Empty[int]()
	})).Subscribe(rec.observer())

	assert.Equal(t, []string{"complete"}, rec.Log())
}

func TestCatchError_SelectorPanic(t *testing.T) {
	rec := newRecorder[int](nil)
	Throw[int](errors.New("x")).Pipe(CatchError(func(error) Observable[int] {
		panic("selector failed")
	})).Subscribe(rec.observer())

	var perr *PanicError
	require.ErrorAs(t, rec.err, &perr)
	assert.Equal(t, "selector failed", perr.Value)
}

func TestCatchError_ReplacementErrorIsForwarded(t *testing.T) {
	second := errors.New("second")
	rec := newRecorder[int](nil)
	Throw[int](errors.New("first")).Pipe(CatchError(func(error) Observable[int] {
		return Throw[int](second)
	})).Subscribe(rec.observer())

	assert.Same(t, second, rec.err)
	assert.Equal(t, 1, rec.errors)
}

func TestTake(t *testing.T) {
	produced := 0
	src := New(func(dst *Subscriber[int]) TeardownFunc {
		for i := 0; !dst.Closed(); i++ {
			produced++
			dst.Next(i)
		}
		return nil
	})
	rec := newRecorder[int](nil)
	src.Pipe(Take[int](3)).Subscribe(rec.observer())

	assert.Equal(t, []int{0, 1, 2}, rec.Values())
	assert.Equal(t, 3, produced)
	assert.Equal(t, 1, rec.completed)

	none := newRecorder[int](nil)
	src.Pipe(Take[int](0)).Subscribe(none.observer())
	assert.Equal(t, []string{"complete"}, none.Log())
}

func TestReduceAndToSlice(t *testing.T) {
	sum := newRecorder[int](nil)
	Pipe1(Of(1, 2, 3, 4), Reduce(func(acc, v int) int { return acc + v }, 0)).Subscribe(sum.observer())
	assert.Equal(t, []int{10}, sum.Values())

	all := newRecorder[[]string](nil)
	Pipe1(Of("a", "b"), ToSlice[string]()).Subscribe(all.observer())
	assert.Equal(t, [][]string{{"a", "b"}}, all.Values())

	again := newRecorder[[]string](nil)
	Pipe1(Empty[string](), ToSlice[string]()).Subscribe(again.observer())
	require.Len(t, again.Values(), 1)
	assert.Empty(t, again.Values()[0])
}
