package reactive

// Operator transforms one Observable into another. Per-subscription state
// belongs inside the subscribe procedure of the returned Observable.
type Operator[T, R any] func(Observable[T]) Observable[R]

// Pipe applies same-typed operators left to right
func (o Observable[T]) Pipe(ops ...Operator[T, T]) Observable[T] {
	for _, op := range ops {
		o = op(o)
	}
	return o
}

func Pipe1[T, A any](src Observable[T], op1 Operator[T, A]) Observable[A] {
	return op1(src)
}

func Pipe2[T, A, B any](src Observable[T], op1 Operator[T, A], op2 Operator[A, B]) Observable[B] {
	return op2(op1(src))
}

func Pipe3[T, A, B, C any](src Observable[T], op1 Operator[T, A], op2 Operator[A, B], op3 Operator[B, C]) Observable[C] {
	return op3(op2(op1(src)))
}

func Pipe4[T, A, B, C, D any](src Observable[T], op1 Operator[T, A], op2 Operator[A, B], op3 Operator[B, C], op4 Operator[C, D]) Observable[D] {
	return op4(op3(op2(op1(src))))
}

func Pipe5[T, A, B, C, D, E any](src Observable[T], op1 Operator[T, A], op2 Operator[A, B], op3 Operator[B, C], op4 Operator[C, D], op5 Operator[D, E]) Observable[E] {
	return op5(op4(op3(op2(op1(src)))))
}

// Compose chains f then g into a single operator
func Compose[T, A, R any](f Operator[T, A], g Operator[A, R]) Operator[T, R] {
	return func(src Observable[T]) Observable[R] {
		return g(f(src))
	}
}

// Chain composes same-typed operators left to right
func Chain[T any](ops ...Operator[T, T]) Operator[T, T] {
	return func(src Observable[T]) Observable[T] {
		return src.Pipe(ops...)
	}
}
