package reactive

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrClosed is delivered by adapters whose underlying resource was closed remotely
	ErrClosed = errors.New("reactive: source closed")
	// ErrNoValue is returned by Last when a stream completes without emitting
	ErrNoValue = errors.New("reactive: completed without a value")
)

// PanicError carries a value recovered from a panicking callback
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("reactive: panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// try runs fn and converts a panic into a *PanicError
func try(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	fn()
	return nil
}
