package reactive

import (
	"slices"
)

// ForkJoin waits for every source to complete and emits one slice holding
// each source's last value. A source that completes without emitting makes
// ForkJoin complete without emitting; any error is forwarded immediately.
// With no sources it completes at once.
func ForkJoin[T any](sources ...Observable[T]) Observable[[]T] {
	return New(func(dst *Subscriber[[]T]) TeardownFunc {
		n := len(sources)
		if n == 0 {
			dst.Complete()
			return nil
		}
		values := make([]T, n)
		hasValue := make([]bool, n)
		remaining := n

		for i, src := range sources {
			src.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					values[i] = v
					hasValue[i] = true
				},
				Error: dst.Error,
				Complete: func() {
					if !hasValue[i] {
						dst.Complete()
						return
					}
					remaining--
					if remaining == 0 {
						dst.Next(slices.Clone(values))
						dst.Complete()
					}
				},
			})
			if dst.Closed() {
				break
			}
		}
		return nil
	})
}

// CombineLatest emits the latest value of every source each time any source
// emits, once all of them have emitted at least once. It completes when all
// sources have completed and errors as soon as one does.
func CombineLatest[T any](sources ...Observable[T]) Observable[[]T] {
	return New(func(dst *Subscriber[[]T]) TeardownFunc {
		n := len(sources)
		if n == 0 {
			dst.Complete()
			return nil
		}
		values := make([]T, n)
		hasValue := make([]bool, n)
		waiting := n
		active := n

		for i, src := range sources {
			src.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					if !hasValue[i] {
						hasValue[i] = true
						waiting--
					}
					values[i] = v
					if waiting == 0 {
						dst.Next(slices.Clone(values))
					}
				},
				Error: dst.Error,
				Complete: func() {
					active--
					if active == 0 {
						dst.Complete()
					}
				},
			})
			if dst.Closed() {
				break
			}
		}
		return nil
	})
}

// Tuple2 pairs values of two different types
type Tuple2[A, B any] struct {
	First  A
	Second B
}

// Tuple3 groups values of three different types
type Tuple3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

func ForkJoin2[A, B any](a Observable[A], b Observable[B]) Observable[Tuple2[A, B]] {
	return Map(toTuple2[A, B])(ForkJoin(toAny(a), toAny(b)))
}

func ForkJoin3[A, B, C any](a Observable[A], b Observable[B], c Observable[C]) Observable[Tuple3[A, B, C]] {
	return Map(toTuple3[A, B, C])(ForkJoin(toAny(a), toAny(b), toAny(c)))
}

func CombineLatest2[A, B any](a Observable[A], b Observable[B]) Observable[Tuple2[A, B]] {
	return Map(toTuple2[A, B])(CombineLatest(toAny(a), toAny(b)))
}

func CombineLatest3[A, B, C any](a Observable[A], b Observable[B], c Observable[C]) Observable[Tuple3[A, B, C]] {
	return Map(toTuple3[A, B, C])(CombineLatest(toAny(a), toAny(b), toAny(c)))
}

func toAny[T any](o Observable[T]) Observable[any] {
	return Map(func(v T) any { return v })(o)
}

// nil interface values come back as the zero value of their slot type
func toTuple2[A, B any](vs []any) Tuple2[A, B] {
	a, _ := vs[0].(A)
	b, _ := vs[1].(B)
	return Tuple2[A, B]{First: a, Second: b}
}

func toTuple3[A, B, C any](vs []any) Tuple3[A, B, C] {
	a, _ := vs[0].(A)
	b, _ := vs[1].(B)
	c, _ := vs[2].(C)
	return Tuple3[A, B, C]{First: a, Second: b, Third: c}
}
