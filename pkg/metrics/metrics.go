package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lingrx"

// StreamMetrics counts stream lifecycle events per stream name
type StreamMetrics struct {
	Subscriptions   *prometheus.CounterVec
	Values          *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	Completions     *prometheus.CounterVec
	Unsubscriptions *prometheus.CounterVec
	Active          *prometheus.GaugeVec
}

// NewStreamMetrics creates the collectors and registers them on reg. A nil
// reg leaves them unregistered. Collectors that are already registered are
// reused.
func NewStreamMetrics(reg prometheus.Registerer) (*StreamMetrics, error) {
	labels := []string{"stream"}
	m := &StreamMetrics{
		Subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_total",
			Help:      "Number of subscriptions started.",
		}, labels),
		Values: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_total",
			Help:      "Number of values delivered.",
		}, labels),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of subscriptions terminated by an error.",
		}, labels),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Number of subscriptions that completed.",
		}, labels),
		Unsubscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unsubscriptions_total",
			Help:      "Number of subscriptions cancelled before terminating.",
		}, labels),
		Active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "Number of subscriptions currently running.",
		}, labels),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.Subscriptions = register(reg, m.Subscriptions, &err)
	m.Values = register(reg, m.Values, &err)
	m.Errors = register(reg, m.Errors, &err)
	m.Completions = register(reg, m.Completions, &err)
	m.Unsubscriptions = register(reg, m.Unsubscriptions, &err)
	m.Active = register(reg, m.Active, &err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, errp *error) C {
	if *errp != nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		*errp = err
	}
	return c
}

func (m *StreamMetrics) Subscribed(stream string) {
	m.Subscriptions.WithLabelValues(stream).Inc()
	m.Active.WithLabelValues(stream).Inc()
}

func (m *StreamMetrics) Value(stream string) {
	m.Values.WithLabelValues(stream).Inc()
}

func (m *StreamMetrics) Errored(stream string, _ error) {
	m.Errors.WithLabelValues(stream).Inc()
	m.Active.WithLabelValues(stream).Dec()
}

func (m *StreamMetrics) Completed(stream string) {
	m.Completions.WithLabelValues(stream).Inc()
	m.Active.WithLabelValues(stream).Dec()
}

func (m *StreamMetrics) Unsubscribed(stream string) {
	m.Unsubscriptions.WithLabelValues(stream).Inc()
	m.Active.WithLabelValues(stream).Dec()
}
