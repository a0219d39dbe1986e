package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	aggregateRequests      *prometheus.CounterVec
	heatmapRecomputes      *prometheus.CounterVec
	heatmapBuildSeconds    prometheus.Histogram
	pollerTicksTotal       *prometheus.CounterVec
	liveSubscribersCurrent prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fokus_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fokus_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fokus_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		aggregateRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fokus_aggregate_requests_total",
			Help: "Student aggregate computations by cache outcome.",
		}, []string{"outcome"})

		heatmapRecomputes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fokus_heatmap_recomputes_total",
			Help: "Heatmap matrix computations by outcome (built, skipped, stale, no_data, error).",
		}, []string{"outcome"})

		heatmapBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fokus_heatmap_build_seconds",
			Help:    "Time spent densifying the engagement matrix.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		})

		pollerTicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fokus_poller_ticks_total",
			Help: "Polling cycles by result (applied, discarded, failed).",
		}, []string{"result"})

		liveSubscribersCurrent = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fokus_live_subscribers",
			Help: "Currently connected live heatmap websocket clients.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			aggregateRequests,
			heatmapRecomputes,
			heatmapBuildSeconds,
			pollerTicksTotal,
			liveSubscribersCurrent,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AggregateRequests exposes the student aggregate computation counter.
func AggregateRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return aggregateRequests
}

// HeatmapRecomputes exposes the matrix computation counter.
func HeatmapRecomputes() *prometheus.CounterVec {
	RegisterMetrics()
	return heatmapRecomputes
}

// HeatmapBuildLatency exposes the densifier latency histogram.
func HeatmapBuildLatency() prometheus.Histogram {
	RegisterMetrics()
	return heatmapBuildSeconds
}

// PollerTicks exposes the polling cycle counter.
func PollerTicks() *prometheus.CounterVec {
	RegisterMetrics()
	return pollerTicksTotal
}

// LiveSubscribers exposes the connected websocket client gauge.
func LiveSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return liveSubscribersCurrent
}
