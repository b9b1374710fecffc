package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the record store.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RecordsCreated    *prometheus.CounterVec
	RecordsUpdated    *prometheus.CounterVec
	RecordsDeleted    *prometheus.CounterVec
	StoreReadFailures prometheus.Counter
	StoreSaveDuration prometheus.Histogram
	SubmitsThrottled  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_records_created_total",
			Help: "Total number of records created, by collection",
		}, []string{"collection"}),
		RecordsUpdated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_records_updated_total",
			Help: "Total number of records updated or toggled, by collection",
		}, []string{"collection"}),
		RecordsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_records_deleted_total",
			Help: "Total number of records deleted, by collection",
		}, []string{"collection"}),
		StoreReadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "studio_store_read_failures_total",
			Help: "Dataset loads that failed and degraded to an empty dataset",
		}),
		StoreSaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studio_store_save_duration_seconds",
			Help:    "Duration of whole-dataset saves",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SubmitsThrottled: factory.NewCounter(prometheus.CounterOpts{
			Name: "studio_submissions_throttled_total",
			Help: "Public submissions rejected by the per-client rate limit",
		}),
	}
}

// IncrementCreated records a successful create in collection.
func (m *Metrics) IncrementCreated(collection string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(collection).Inc()
}

// IncrementUpdated records a successful update or toggle in collection.
func (m *Metrics) IncrementUpdated(collection string) {
	if m == nil {
		return
	}
	m.RecordsUpdated.WithLabelValues(collection).Inc()
}

// IncrementDeleted records a successful delete in collection.
func (m *Metrics) IncrementDeleted(collection string) {
	if m == nil {
		return
	}
	m.RecordsDeleted.WithLabelValues(collection).Inc()
}

// IncrementReadFailures records a load that fell back to an empty dataset.
func (m *Metrics) IncrementReadFailures() {
	if m == nil {
		return
	}
	m.StoreReadFailures.Inc()
}

// ObserveSave records the duration of a save.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSave(start time.Time) {
	if m == nil {
		return
	}
	m.StoreSaveDuration.Observe(time.Since(start).Seconds())
}

// IncrementThrottled records a submission rejected with 429.
func (m *Metrics) IncrementThrottled() {
	if m == nil {
		return
	}
	m.SubmitsThrottled.Inc()
}
