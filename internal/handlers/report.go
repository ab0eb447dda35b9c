package handlers

import (
	"time"

	"github.com/code-100-precent/LingRx/internal/models"
	"github.com/code-100-precent/LingRx/pkg/reactive"
	"github.com/spf13/cast"
)

// ReadingReport is a snapshot of the readings table
type ReadingReport struct {
	At       time.Time `json:"at"`
	Readings int64     `json:"readings"`
	Sensors  int64     `json:"sensors"`
}

// Report emits a ReadingReport at every activation of the cron expression.
// An activation that fires while the previous report is still running is skipped.
func (h *Handlers) Report(expr string) reactive.Observable[ReadingReport] {
	return reactive.Pipe2(
		reactive.Cron(expr, h.opts...),
		reactive.ExhaustMap(func(at time.Time) reactive.Observable[ReadingReport] {
			sensors := reactive.Pipe1(
				h.db.Raw("SELECT COUNT(DISTINCT sensor) AS n FROM readings"),
				reactive.Map(func(row map[string]any) int64 { return cast.ToInt64(row["n"]) }),
			)
			return reactive.Pipe1(
				reactive.ForkJoin2(reactive.Count[models.Reading](h.db), sensors),
				reactive.Map(func(t reactive.Tuple2[int64, int64]) ReadingReport {
					return ReadingReport{At: at, Readings: t.First, Sensors: t.Second}
				}),
			)
		}),
		instrument[ReadingReport](h.recorder, "readings.report"),
	)
}
