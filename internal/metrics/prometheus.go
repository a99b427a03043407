// Package metrics holds the Prometheus collectors of the dashboard.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DatasetLoads counts pipeline loads by status (success|error).
	DatasetLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commodity_forecast_dataset_loads_total",
			Help: "Total number of dataset loads from the source files",
		},
		[]string{"status"},
	)

	// DatasetCacheHits counts dataset requests served from the cache.
	DatasetCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "commodity_forecast_dataset_cache_hits_total",
			Help: "Total number of dataset requests served without reloading",
		},
	)

	// DatasetLoadDuration observes how long a load takes.
	DatasetLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "commodity_forecast_dataset_load_duration_seconds",
			Help:    "Dataset load and aggregation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	// DatasetObservations is the row count of the last loaded dataset.
	DatasetObservations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "commodity_forecast_dataset_observations",
			Help: "Number of observations in the most recently loaded dataset",
		},
	)

	// HTTPRequests counts API requests by endpoint and status code class.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commodity_forecast_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"endpoint", "code"},
	)

	// HTTPDuration observes API latency by endpoint.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commodity_forecast_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			DatasetLoads,
			DatasetCacheHits,
			DatasetLoadDuration,
			DatasetObservations,
			HTTPRequests,
			HTTPDuration,
		)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordLoad records the outcome of one dataset load.
func RecordLoad(err error, duration time.Duration, observations int) {
	if err != nil {
		DatasetLoads.WithLabelValues("error").Inc()
		return
	}
	DatasetLoads.WithLabelValues("success").Inc()
	DatasetLoadDuration.Observe(duration.Seconds())
	DatasetObservations.Set(float64(observations))
}

// RecordRequest records one API request.
func RecordRequest(endpoint, code string, duration time.Duration) {
	HTTPRequests.WithLabelValues(endpoint, code).Inc()
	HTTPDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
