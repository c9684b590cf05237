// Package instrument exports query context activity as logs and prometheus
// metrics.
package instrument

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/contexts/enumerable"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/disposable"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/signals"
)

const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

type QueryMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	workingSet prometheus.Histogram
}

// NewQueryMetrics registers the collectors with reg. Registering twice with
// the same registerer panics, as promauto does.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	factory := promauto.With(reg)
	return &QueryMetrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asceticodm_enumerable_operations_total",
				Help: "Total number of enumerable context operations",
			},
			[]string{"operation", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "asceticodm_enumerable_operation_duration_seconds",
				Help:    "Enumerable context operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		workingSet: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "asceticodm_enumerable_working_set_size",
				Help:    "Number of documents matched before pagination",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
}

func (m *QueryMetrics) Record(event enumerable.QueryEvent) {
	m.operations.WithLabelValues(event.Operation, status(event.Err)).Inc()
	m.duration.WithLabelValues(event.Operation).Observe(event.Duration.Seconds())
	if event.Err == nil {
		m.workingSet.Observe(float64(event.Matched))
	}
}

func (m *QueryMetrics) Observer() signals.Observer[enumerable.QueryEvent] {
	return m.Record
}

// Attach records every query of the given contexts until the returned
// disposable is disposed.
func (m *QueryMetrics) Attach(contexts ...*enumerable.Context) disposable.Disposable {
	sources := make([]signals.Signal[enumerable.QueryEvent], len(contexts))
	for i, ctx := range contexts {
		sources[i] = ctx.OnQuery()
	}
	return signals.Merge(sources...).Attach(m.Observer(), m)
}

func status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, enumerable.ErrDocumentNotFound):
		return StatusNotFound
	default:
		return StatusError
	}
}
