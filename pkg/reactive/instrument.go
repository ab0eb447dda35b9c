package reactive

// Recorder receives lifecycle notifications for a named stream
type Recorder interface {
	Subscribed(stream string)
	Value(stream string)
	Errored(stream string, err error)
	Completed(stream string)
	Unsubscribed(stream string)
}

// Instrument reports every subscription to source through rec without
// changing what flows through it. Unsubscribed is reported only for
// subscriptions cancelled before they terminated.
func Instrument[T any](stream string, rec Recorder) Operator[T, T] {
	return func(source Observable[T]) Observable[T] {
		return New(func(dst *Subscriber[T]) TeardownFunc {
			rec.Subscribed(stream)
			terminated := false
			source.subscribeChild(dst.sub, Observer[T]{
				Next: func(v T) {
					rec.Value(stream)
					dst.Next(v)
				},
				Error: func(err error) {
					terminated = true
					rec.Errored(stream, err)
					dst.Error(err)
				},
				Complete: func() {
					terminated = true
					rec.Completed(stream)
					dst.Complete()
				},
			})
			return func() {
				if !terminated {
					rec.Unsubscribed(stream)
				}
			}
		})
	}
}
