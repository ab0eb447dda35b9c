package reactive

import (
	"errors"
	"sync"

	"github.com/code-100-precent/LingRx/pkg/logger"
	"go.uber.org/zap"
)

// Observer is the three-channel sink a stream delivers to. Every field is optional.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// normalize fills missing handlers. A missing Error handler forwards to the
// unhandled error hook.
func (o Observer[T]) normalize() Observer[T] {
	if o.Next == nil {
		o.Next = func(T) {}
	}
	if o.Error == nil {
		o.Error = reportUnhandled
	}
	if o.Complete == nil {
		o.Complete = func() {}
	}
	return o
}

var (
	unhandledMu      sync.RWMutex
	unhandledHandler = logUnhandled
)

// SetUnhandledErrorHandler installs fn as the process-wide sink for errors
// that reach an observer without an Error handler, and returns the previous
// one. A nil fn restores the default, which logs the error.
func SetUnhandledErrorHandler(fn func(error)) func(error) {
	if fn == nil {
		fn = logUnhandled
	}
	unhandledMu.Lock()
	defer unhandledMu.Unlock()
	prev := unhandledHandler
	unhandledHandler = fn
	return prev
}

func reportUnhandled(err error) {
	unhandledMu.RLock()
	fn := unhandledHandler
	unhandledMu.RUnlock()
	fn(err)
}

func logUnhandled(err error) {
	fields := []zap.Field{zap.Error(err)}
	var perr *PanicError
	if errors.As(err, &perr) {
		fields = append(fields, zap.ByteString("stack", perr.Stack))
	}
	logger.Error("reactive: unhandled stream error", fields...)
}
