// Package metrics defines the Prometheus metric collectors used by the
// anagram service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	QueriesTotal         *prometheus.CounterVec
	QueryLatency         *prometheus.HistogramVec
	SentencesReturned    prometheus.Histogram
	PartitionsFound      prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DictionaryWords      prometheus.Gauge
	DictionaryProfiles   prometheus.Gauge
	DictionaryReloads    *prometheus.CounterVec
	RateLimitedTotal     prometheus.Counter
	DeadlineExceeded     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Passing nil
// registers with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anagram_queries_total",
				Help: "Anagram queries by kind (word, sentence) and outcome (ok, zero_result, truncated, error).",
			},
			[]string{"kind", "outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "anagram_query_latency_seconds",
				Help:    "Anagram query latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
			},
			[]string{"kind", "cache_status"},
		),
		SentencesReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "anagram_sentences_returned",
				Help:    "Number of sentences returned per sentence query.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000},
			},
		),
		PartitionsFound: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "anagram_partitions_found",
				Help:    "Number of profile partitions found per sentence query.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses.",
			},
		),
		DictionaryWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_words",
				Help: "Number of distinct words in the active dictionary.",
			},
		),
		DictionaryProfiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_profiles",
				Help: "Number of distinct letter profiles in the active dictionary.",
			},
		),
		DictionaryReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dictionary_reloads_total",
				Help: "Dictionary reloads by status.",
			},
			[]string{"status"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "Requests rejected by the per-client rate limit.",
			},
		),
		DeadlineExceeded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_request_deadline_exceeded_total",
				Help: "Requests whose handler ran past the request deadline, by route.",
			},
			[]string{"path"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.QueriesTotal,
		m.QueryLatency,
		m.SentencesReturned,
		m.PartitionsFound,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DictionaryWords,
		m.DictionaryProfiles,
		m.DictionaryReloads,
		m.RateLimitedTotal,
		m.DeadlineExceeded,
	)

	return m
}

// Handler returns the scrape handler for g, or for the default registry
// when g is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
