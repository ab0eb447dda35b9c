package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/code-100-precent/LingRx/internal/models"
	"github.com/code-100-precent/LingRx/pkg/reactive"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type readingInput struct {
	Sensor  string    `json:"sensor" binding:"required"`
	Celsius *float64  `json:"celsius" binding:"required"`
	TakenAt time.Time `json:"takenAt"`
}

// listReadings emits the newest readings as one array, optionally filtered
// by sensor and a minimum temperature
func (h *Handlers) listReadings(c *gin.Context) reactive.Observable[[]models.Reading] {
	limit := cast.ToInt(c.Query("limit"))
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	q := h.db.Order("taken_at desc").Limit(limit)
	if sensor := c.Query("sensor"); sensor != "" {
		q = q.Where("sensor = ?", sensor)
	}

	rows := reactive.Find[models.Reading](q)
	if raw := c.Query("min"); raw != "" {
		minimum, err := cast.ToFloat64E(raw)
		if err != nil {
			return reactive.Throw[[]models.Reading](badRequest(fmt.Errorf("min: %w", err)))
		}
		rows = rows.Pipe(reactive.Filter(func(r models.Reading) bool { return r.Celsius >= minimum }))
	}
	return reactive.Pipe2(
		rows,
		instrument[models.Reading](h.recorder, "readings.list"),
		reactive.Reduce(func(acc []models.Reading, r models.Reading) []models.Reading {
			return append(acc, r)
		}, []models.Reading{}),
	)
}

// createReading stores the posted reading and announces it to live subscribers
func (h *Handlers) createReading(c *gin.Context) reactive.Observable[*models.Reading] {
	created := reactive.Pipe2(
		reactive.BodyOf[readingInput](c),
		reactive.Map(func(in readingInput) *models.Reading {
			takenAt := in.TakenAt
			if takenAt.IsZero() {
				takenAt = h.clock.Now()
			}
			return &models.Reading{Sensor: in.Sensor, Celsius: *in.Celsius, TakenAt: takenAt.UTC()}
		}),
		reactive.ConcatMap(func(r *models.Reading) reactive.Observable[*models.Reading] {
			return reactive.Create(h.db, r)
		}),
	)
	if h.redis != nil {
		created = created.Pipe(reactive.PublishRedis[*models.Reading](h.redis, h.channel, h.opts...))
	} else {
		created = created.Pipe(reactive.TapFunc(func(r *models.Reading) {
			h.created.Dispatch(eventReadingCreated, *r)
		}))
	}
	return created.Pipe(instrument[*models.Reading](h.recorder, "readings.create"))
}

// latestReading emits the newest reading of one sensor, or a 404
func (h *Handlers) latestReading(c *gin.Context) reactive.Observable[models.Reading] {
	sensor := c.Param("sensor")
	return reactive.First[models.Reading](h.db.Where("sensor = ?", sensor).Order("taken_at desc")).Pipe(
		reactive.CatchError(func(err error) reactive.Observable[models.Reading] {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = &reactive.HTTPError{Status: http.StatusNotFound, Err: fmt.Errorf("sensor %q has no readings", sensor)}
			}
			return reactive.Throw[models.Reading](err)
		}),
		instrument[models.Reading](h.recorder, "readings.latest"),
	)
}

// summary looks up every sensor and emits their latest readings together
func (h *Handlers) summary(*gin.Context) reactive.Observable[[]models.Reading] {
	sensors := reactive.Pipe2(
		h.db.Raw("SELECT DISTINCT sensor FROM readings ORDER BY sensor"),
		reactive.Map(func(row map[string]any) string { return cast.ToString(row["sensor"]) }),
		reactive.ToSlice[string](),
	)
	return reactive.Pipe2(
		sensors,
		reactive.ConcatMap(func(names []string) reactive.Observable[[]models.Reading] {
			if len(names) == 0 {
				return reactive.Of([]models.Reading{})
			}
			latest := make([]reactive.Observable[models.Reading], 0, len(names))
			for _, name := range names {
				latest = append(latest, reactive.First[models.Reading](h.db.Where("sensor = ?", name).Order("taken_at desc")))
			}
			return reactive.ForkJoin(latest...)
		}),
		instrument[[]models.Reading](h.recorder, "readings.summary"),
	)
}

// liveReadings streams readings as they are created
func (h *Handlers) liveReadings(c *gin.Context) reactive.Observable[models.Reading] {
	live := h.live
	if sensor := c.Query("sensor"); sensor != "" {
		live = live.Pipe(reactive.Filter(func(r models.Reading) bool { return r.Sensor == sensor }))
	}
	return live.Pipe(instrument[models.Reading](h.recorder, "readings.live"))
}

func decodeReading(payload string) (models.Reading, error) {
	var r models.Reading
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return r, fmt.Errorf("decode reading: %w", err)
	}
	return r, nil
}

func badRequest(err error) error {
	return &reactive.HTTPError{Status: http.StatusBadRequest, Err: err}
}
