package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects scan-cycle metrics on its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	scansTotal     *prometheus.CounterVec
	symbolsScored  prometheus.Counter
	symbolsSkipped *prometheus.CounterVec
	scanDuration   prometheus.Histogram
	topScore       prometheus.Gauge
	fetchLatency   *prometheus.HistogramVec
}

// New creates a Recorder with a fresh registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bullscan_scans_total",
				Help: "Scan cycles by outcome",
			},
			[]string{"status"},
		),
		symbolsScored: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bullscan_symbols_scored_total",
				Help: "Symbols that received a score",
			},
		),
		symbolsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bullscan_symbols_skipped_total",
				Help: "Symbols excluded from a cycle",
			},
			[]string{"reason"},
		),
		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bullscan_scan_duration_seconds",
				Help:    "Wall time of a scan cycle",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
			},
		),
		topScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bullscan_top_score",
				Help: "Score of the rank-1 symbol in the last successful cycle",
			},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bullscan_fetch_duration_seconds",
				Help:    "Series fetch latency by source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}

// RecordScan records a finished cycle
func (r *Recorder) RecordScan(success bool, seconds float64) {
	if r == nil {
		return
	}
	status := "success"
	if !success {
		status = "failed"
	}
	r.scansTotal.WithLabelValues(status).Inc()
	r.scanDuration.Observe(seconds)
}

// RecordScored counts one scored symbol
func (r *Recorder) RecordScored() {
	if r == nil {
		return
	}
	r.symbolsScored.Inc()
}

// RecordSkipped counts one excluded symbol
func (r *Recorder) RecordSkipped(reason string) {
	if r == nil {
		return
	}
	r.symbolsSkipped.WithLabelValues(reason).Inc()
}

// RecordTopScore sets the rank-1 score gauge
func (r *Recorder) RecordTopScore(score float64) {
	if r == nil {
		return
	}
	r.topScore.Set(score)
}

// RecordFetch records series fetch latency
func (r *Recorder) RecordFetch(source string, seconds float64) {
	if r == nil {
		return
	}
	r.fetchLatency.WithLabelValues(source).Observe(seconds)
}

// Gatherer exposes the registry for scraping and tests
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
