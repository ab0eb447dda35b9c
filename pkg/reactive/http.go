package reactive

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPError makes Handler respond with Status instead of 500
type HTTPError struct {
	Status int
	Err    error
}

func (e *HTTPError) Error() string {
	return e.Err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Handler adapts a stream-producing function to a gin.HandlerFunc. The
// response is written once the stream terminates: {} for no values, the
// value itself for one, an array for several, or the error. Errors are
// answered with 500 unless they wrap an *HTTPError.
func Handler[T any](fn func(*gin.Context) Observable[T], opts ...Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := Collect(c.Request.Context(), fn(c), opts...)
		if err != nil {
			if c.Request.Context().Err() != nil && errors.Is(err, c.Request.Context().Err()) {
				return
			}
			status := http.StatusInternalServerError
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.Status
			}
			c.JSON(status, gin.H{
				"error": err.Error(),
			})
			return
		}

		switch len(values) {
		case 0:
			c.JSON(http.StatusOK, gin.H{})
		case 1:
			c.JSON(http.StatusOK, values[0])
		default:
			c.JSON(http.StatusOK, values)
		}
	}
}

type sseEvent struct {
	name string
	data any
}

// StreamHandler writes every value of the stream as a Server-Sent Event.
// Errors are sent as an "error" event and completion as a "close" event.
// The subscription is cancelled when the client goes away.
func StreamHandler[T any](fn func(*gin.Context) Observable[T], heartbeat time.Duration, opts ...Option) gin.HandlerFunc {
	cfg := newOptions(opts)
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)

		clock := cfg.clock()
		source := fn(c)
		events := make(chan sseEvent, 16)
		done := make(chan struct{})
		defer close(done)

		send := func(ev sseEvent) {
			select {
			case events <- ev:
			case <-done:
			}
		}
		subs := make(chan *Subscription, 1)
		clock.Post(func() {
			subs <- source.Subscribe(Observer[T]{
				Next: func(v T) { send(sseEvent{data: v}) },
				Error: func(err error) {
					send(sseEvent{name: "error", data: gin.H{"error": err.Error()}})
				},
				Complete: func() { send(sseEvent{name: "close", data: gin.H{}}) },
			})
		})
		defer clock.Post(func() {
			select {
			case sub := <-subs:
				sub.Unsubscribe()
			default:
			}
		})

		var beat <-chan time.Time
		if heartbeat > 0 {
			ticker := time.NewTicker(heartbeat)
			defer ticker.Stop()
			beat = ticker.C
		}
		for {
			select {
			case ev := <-events:
				if err := writeSSE(c.Writer, ev); err != nil || ev.name != "" {
					return
				}
			case <-beat:
				if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}

func writeSSE(w gin.ResponseWriter, ev sseEvent) error {
	data, err := json.Marshal(ev.data)
	if err != nil {
		data, _ = json.Marshal(gin.H{"error": err.Error()})
		ev.name = "error"
	}
	if ev.name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", ev.name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// BodyOf emits the request body decoded as T. Binding failures are
// delivered as a 400 *HTTPError.
func BodyOf[T any](c *gin.Context) Observable[T] {
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		return Throw[T](&HTTPError{Status: http.StatusBadRequest, Err: err})
	}
	return Of(body)
}

// QueryParams emits the request's query parameters once. Repeated keys keep every value.
func QueryParams(c *gin.Context) Observable[map[string]any] {
	params := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}
	return Of(params)
}
