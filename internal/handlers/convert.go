package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/code-100-precent/LingRx/internal/models"
	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/code-100-precent/LingRx/pkg/reactive"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	fieldTemperature = "temperature"
	fieldUnit        = "unit"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// converterInput is one edit sent by a converter client
type converterInput struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// convert answers a single conversion from the value and from query parameters
func (h *Handlers) convert(c *gin.Context) reactive.Observable[models.Conversion] {
	value := reactive.Pipe1(reactive.Of(c.Query("value")), reactive.TryMap(func(s string) (float64, error) {
		v, err := cast.ToFloat64E(s)
		if err != nil || s == "" {
			return 0, badRequest(fmt.Errorf("value %q is not a number", s))
		}
		return v, nil
	}))
	unit := reactive.Pipe1(reactive.Of(c.DefaultQuery("from", string(models.Celsius))), reactive.TryMap(func(s string) (models.Unit, error) {
		u, err := models.ParseUnit(s)
		if err != nil {
			return u, badRequest(err)
		}
		return u, nil
	}))
	return reactive.Pipe2(
		reactive.CombineLatest2(value, unit),
		reactive.Map(toConversion),
		instrument[models.Conversion](h.recorder, "convert"),
	)
}

// convertSocket runs a live converter over a websocket. Clients send
// {"field":"temperature"|"unit","value":...}; once both fields have a valid
// value every change is answered with a Conversion. Temperature edits are
// debounced.
func (h *Handlers) convertSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	inputs := reactive.NewEmitter[string]()
	temperatures := reactive.FromEvent[string](inputs, fieldTemperature)
	if h.debounce > 0 {
		temperatures = temperatures.Pipe(reactive.DebounceTime[string](h.debounce, h.opts...))
	}
	conversions := reactive.Pipe3(
		reactive.CombineLatest2(
			reactive.Pipe1(temperatures, reactive.ConcatMap(parseTemperature)),
			reactive.Pipe1(reactive.FromEvent[string](inputs, fieldUnit), reactive.ConcatMap(parseUnit)),
		),
		reactive.Map(toConversion),
		instrument[models.Conversion](h.recorder, "convert.ws"),
		reactive.SendWebSocket[models.Conversion](reactive.NewWebSocketWriter(conn), h.opts...),
	)
	edits := reactive.Pipe1(reactive.FromWebSocket(conn, h.opts...), reactive.TryMap(decodeInput))

	h.clock.Post(func() {
		session := reactive.NewSubscription()
		session.AddSubscription(conversions.Subscribe(reactive.Observer[models.Conversion]{
			Error: func(err error) {
				logger.Warn("converter write failed", zap.Error(err))
				session.Unsubscribe()
			},
		}))
		session.AddSubscription(edits.Subscribe(reactive.Observer[converterInput]{
			Next: func(in converterInput) {
				inputs.Dispatch(in.Field, in.Value)
			},
			Error: func(err error) {
				logger.Debug("converter session ended", zap.Error(err))
				session.Unsubscribe()
			},
			Complete: session.Unsubscribe,
		}))
	})
}

func decodeInput(msg reactive.WSMessage) (converterInput, error) {
	var in converterInput
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		return in, fmt.Errorf("decode converter input: %w", err)
	}
	return in, nil
}

// parseTemperature drops values that are not numbers
func parseTemperature(s string) reactive.Observable[float64] {
	v, err := cast.ToFloat64E(s)
	if err != nil || s == "" {
		return reactive.Empty[float64]()
	}
	return reactive.Of(v)
}

// parseUnit drops unknown units
func parseUnit(s string) reactive.Observable[models.Unit] {
	u, err := models.ParseUnit(s)
	if err != nil {
		return reactive.Empty[models.Unit]()
	}
	return reactive.Of(u)
}

func toConversion(t reactive.Tuple2[float64, models.Unit]) models.Conversion {
	return models.Convert(t.First, t.Second)
}
