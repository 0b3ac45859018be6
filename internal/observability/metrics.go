package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "notam_briefing"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// briefing service.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Briefing metrics.
	Briefings         *prometheus.CounterVec // labels: status={ok,failed}, kind
	BriefingDuration  prometheus.Histogram
	WaypointsPerRoute prometheus.Histogram
	NotamsPerBriefing prometheus.Histogram

	// FAA NOTAM API metrics.
	FAARequests      *prometheus.CounterVec   // labels: query={location,airport}, outcome={success,error,rate_limited}
	FAARetries       prometheus.Counter       // rate-limit backoffs
	FAACache         *prometheus.CounterVec   // labels: result={hit,miss}
	FAAAPIDuration   *prometheus.HistogramVec // labels: query={location,airport}
	FAAInflightFetch prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total route requests read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total briefings written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total route requests that could not be decoded.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of route requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-build-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Briefings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "briefings_total",
			Help:      "Briefings built by status and error kind.",
		}, []string{"status", "kind"}),
		BriefingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "briefing_duration_seconds",
			Help:      "Time to build one route briefing.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		WaypointsPerRoute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "waypoints_per_route",
			Help:      "Waypoints generated per route.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}),
		NotamsPerBriefing: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notams_per_briefing",
			Help:      "Distinct NOTAMs in each successful briefing.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		FAARequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faa_requests_total",
			Help:      "FAA NOTAM API page requests by query type and outcome.",
		}, []string{"query", "outcome"}),
		FAARetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faa_rate_limit_retries_total",
			Help:      "Backoffs taken after an HTTP 429 from the FAA NOTAM API.",
		}),
		FAACache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faa_cache_total",
			Help:      "NOTAM query cache lookups by result.",
		}, []string{"result"}),
		FAAAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "faa_api_duration_seconds",
			Help:      "FAA NOTAM API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"query"}),
		FAAInflightFetch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "faa_inflight_fetches",
			Help:      "Per-waypoint NOTAM fetches currently running.",
		}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Briefings,
		m.BriefingDuration,
		m.WaypointsPerRoute,
		m.NotamsPerBriefing,
		m.FAARequests,
		m.FAARetries,
		m.FAACache,
		m.FAAAPIDuration,
		m.FAAInflightFetch,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		Briefings:               prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "briefings_total"}, []string{"status", "kind"}),
		BriefingDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "briefing_duration_seconds"}),
		WaypointsPerRoute:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "waypoints_per_route"}),
		NotamsPerBriefing:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "notams_per_briefing"}),
		FAARequests:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "faa_requests_total"}, []string{"query", "outcome"}),
		FAARetries:              prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "faa_rate_limit_retries_total"}),
		FAACache:                prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "faa_cache_total"}, []string{"result"}),
		FAAAPIDuration:          prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "faa_api_duration_seconds"}, []string{"query"}),
		FAAInflightFetch:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "faa_inflight_fetches"}),
	}
}
