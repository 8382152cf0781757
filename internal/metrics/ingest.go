// Package metrics provides Prometheus metrics for AS-RUN ingestion
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics contains Prometheus metrics for file ingestion
type IngestMetrics struct {
	filesTotal             *prometheus.CounterVec
	broadcastsCreatedTotal *prometheus.CounterVec
	segmentsSkippedTotal   *prometheus.CounterVec
	linesTotal             *prometheus.CounterVec
	fileDurationSeconds    prometheus.Histogram
}

// NewIngestMetrics creates and registers ingestion metrics with registry
func NewIngestMetrics(registry prometheus.Registerer) (*IngestMetrics, error) {
	m := &IngestMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IngestMetrics) initMetrics() {
	m.filesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrun_files_total",
			Help: "Total number of AS-RUN files handled",
		},
		[]string{"status"}, // processed, skipped, failed
	)

	m.broadcastsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrun_broadcasts_created_total",
			Help: "Total number of broadcasts created",
		},
		[]string{"region", "channel"},
	)

	m.segmentsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrun_segments_skipped_total",
			Help: "Total number of segments not persisted",
		},
		[]string{"reason"}, // overlap
	)

	m.linesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrun_lines_total",
			Help: "Total number of AS-RUN lines by decode outcome",
		},
		[]string{"outcome"}, // decoded, blank, short, failed, malformed_timestamp
	)

	m.fileDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "asrun_file_duration_seconds",
		Help:    "Time taken to ingest one file",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})
}

// Describe implements prometheus.Collector
func (m *IngestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.filesTotal.Describe(ch)
	m.broadcastsCreatedTotal.Describe(ch)
	m.segmentsSkippedTotal.Describe(ch)
	m.linesTotal.Describe(ch)
	m.fileDurationSeconds.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *IngestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.filesTotal.Collect(ch)
	m.broadcastsCreatedTotal.Collect(ch)
	m.segmentsSkippedTotal.Collect(ch)
	m.linesTotal.Collect(ch)
	m.fileDurationSeconds.Collect(ch)
}

// RecordFile records a finished file with its status and duration
func (m *IngestMetrics) RecordFile(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.filesTotal.WithLabelValues(status).Inc()
	m.fileDurationSeconds.Observe(duration.Seconds())
}

// RecordBroadcastCreated increments created broadcasts for a region and channel
func (m *IngestMetrics) RecordBroadcastCreated(region, channel string) {
	if m == nil {
		return
	}
	m.broadcastsCreatedTotal.WithLabelValues(region, channel).Inc()
}

// RecordSegmentSkipped increments skipped segments by reason
func (m *IngestMetrics) RecordSegmentSkipped(reason string) {
	if m == nil {
		return
	}
	m.segmentsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordLines adds decode outcome counts for one file
func (m *IngestMetrics) RecordLines(decoded, blank, short, failed, malformed int) {
	if m == nil {
		return
	}
	m.linesTotal.WithLabelValues("decoded").Add(float64(decoded))
	m.linesTotal.WithLabelValues("blank").Add(float64(blank))
	m.linesTotal.WithLabelValues("short").Add(float64(short))
	m.linesTotal.WithLabelValues("failed").Add(float64(failed))
	m.linesTotal.WithLabelValues("malformed_timestamp").Add(float64(malformed))
}
