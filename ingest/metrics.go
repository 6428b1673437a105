package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	runsTotal        *prometheus.CounterVec
	recordsProcessed prometheus.Counter
	runDuration      prometheus.Histogram
}

// NewMetrics registers the ingestion metrics with the provided registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_runs_total",
				Help: "Total number of ingestion runs by outcome",
			},
			[]string{"outcome"},
		),
		recordsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingestion_records_processed_total",
				Help: "Total number of records successfully upserted",
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingestion_run_duration_seconds",
				Help:    "Ingestion run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.runsTotal, m.recordsProcessed, m.runDuration)
	return m
}

func (m *Metrics) observeRun(processed int, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.recordsProcessed.Add(float64(processed))
	m.runDuration.Observe(d.Seconds())
}
