package reactive

import (
	"time"

	"github.com/gin-gonic/gin"
)

// EventRequest is the event name RequestEvents dispatches
const EventRequest = "request"

// RequestEvent describes one finished HTTP request
type RequestEvent struct {
	Method   string        `json:"method"`
	Path     string        `json:"path"`
	Status   int           `json:"status"`
	Latency  time.Duration `json:"latency"`
	ClientIP string        `json:"client_ip"`
	At       time.Time     `json:"at"`
}

// RequestEvents is gin middleware that dispatches a RequestEvent on emitter
// after each request. Dispatch happens on the scheduler, so
// FromEvent(emitter, EventRequest) observes requests like any other source.
func RequestEvents(emitter *Emitter[RequestEvent], opts ...Option) gin.HandlerFunc {
	cfg := newOptions(opts)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := RequestEvent{
			Method:   c.Request.Method,
			Path:     c.FullPath(),
			Status:   c.Writer.Status(),
			Latency:  time.Since(start),
			ClientIP: c.ClientIP(),
			At:       start,
		}
		if ev.Path == "" {
			ev.Path = c.Request.URL.Path
		}
		cfg.clock().Post(func() {
			emitter.Dispatch(EventRequest, ev)
		})
	}
}
