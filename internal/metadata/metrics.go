package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "title_fetcher"

// Metrics holds the Prometheus collectors fed by the Recorder.
type Metrics struct {
	fetchesTotal  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	errorsTotal   *prometheus.CounterVec
	batchesTotal  prometheus.Counter
	batchSize     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_total",
			Help:      "Number of resolved URLs by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent resolving a single URL.",
			Buckets:   prometheus.DefBuckets,
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Number of recorded errors by package and cause.",
		}, []string{"package", "cause"}),
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batches_total",
			Help:      "Number of completed batches.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "batch_size",
			Help:      "Number of URLs per batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	collectors := []prometheus.Collector{
		m.fetchesTotal,
		m.fetchDuration,
		m.errorsTotal,
		m.batchesTotal,
		m.batchSize,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeFetch(outcome string, seconds float64) {
	m.fetchesTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(seconds)
}

func (m *Metrics) observeError(packageName string, cause ErrorCause) {
	m.errorsTotal.WithLabelValues(packageName, cause.String()).Inc()
}

func (m *Metrics) observeBatch(totalURLs int) {
	m.batchesTotal.Inc()
	m.batchSize.Observe(float64(totalURLs))
}
