package handlers

import (
	"time"

	"github.com/code-100-precent/LingRx/pkg/reactive"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

const maxTicks = 3600

type tick struct {
	Seq int       `json:"seq"`
	At  time.Time `json:"at"`
}

// ticks streams n ticks, one per tick interval. n defaults to 10.
func (h *Handlers) ticks(c *gin.Context) reactive.Observable[tick] {
	n := cast.ToInt(c.DefaultQuery("n", "10"))
	if n <= 0 || n > maxTicks {
		n = 10
	}
	return reactive.Pipe3(
		reactive.Interval(h.tick, h.opts...),
		reactive.Take[int](n),
		reactive.Map(func(i int) tick { return tick{Seq: i, At: h.clock.Now()} }),
		instrument[tick](h.recorder, "ticks"),
	)
}

// liveRequests streams the requests served by this process. ?errors=1 keeps
// only failed requests.
func (h *Handlers) liveRequests(c *gin.Context) reactive.Observable[reactive.RequestEvent] {
	onlyErrors := cast.ToBool(c.Query("errors"))
	return h.requestFeed.Pipe(
		reactive.Filter(func(ev reactive.RequestEvent) bool {
			return !onlyErrors || ev.Status >= 400
		}),
		instrument[reactive.RequestEvent](h.recorder, "requests.live"),
	)
}
