// Package metrics exposes prometheus instrumentation for stream transforms
// and the block store.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/ssargent/iostreams/pkg/stream"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the collectors. It implements stream.Observer.
type Metrics struct {
	transformRuns     *prometheus.CounterVec
	transformBytesIn  prometheus.Counter
	transformBytesOut prometheus.Counter
	transformChunks   prometheus.Counter
	transformDuration prometheus.Histogram

	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
	storeBytes             *prometheus.CounterVec
}

var _ stream.Observer = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		transformRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iostreams_transform_runs_total",
				Help: "Total number of stream transform runs",
			},
			[]string{"status"},
		),

		transformBytesIn: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "iostreams_transform_bytes_in_total",
				Help: "Bytes read from source streams by the transform driver",
			},
		),

		transformBytesOut: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "iostreams_transform_bytes_out_total",
				Help: "Bytes written to destination streams by the transform driver",
			},
		),

		transformChunks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "iostreams_transform_chunks_total",
				Help: "Source chunks fed to transforms",
			},
		),

		transformDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "iostreams_transform_duration_seconds",
				Help:    "Stream transform duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		storeOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iostreams_store_operations_total",
				Help: "Total number of block store operations",
			},
			[]string{"operation", "status"},
		),

		storeOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iostreams_store_operation_duration_seconds",
				Help:    "Block store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		storeBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iostreams_store_bytes_total",
				Help: "Stream bytes moved in or out of the block store",
			},
			[]string{"operation"},
		),
	}
}

// ObserveRun records one transform driver run.
func (m *Metrics) ObserveRun(r stream.Run) {
	m.transformRuns.WithLabelValues(status(r.Err == nil)).Inc()
	m.transformBytesIn.Add(float64(r.BytesIn))
	m.transformBytesOut.Add(float64(r.BytesOut))
	m.transformChunks.Add(float64(r.Chunks))
	m.transformDuration.Observe(r.Duration.Seconds())
}

// RecordStoreOperation records a block store operation that moved size bytes.
func (m *Metrics) RecordStoreOperation(operation string, size uint64, success bool, duration time.Duration) {
	m.storeOperationsTotal.WithLabelValues(operation, status(success)).Inc()
	m.storeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if success {
		m.storeBytes.WithLabelValues(operation).Add(float64(size))
	}
}

// WriteText writes every metric gathered from g in the prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func status(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}
