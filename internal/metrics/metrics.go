package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainaware_products_registered_total",
		Help: "Total number of products successfully registered.",
	})

	ReadingsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainaware_readings_ingested_total",
		Help: "Total number of location readings appended to the ledger.",
	})

	ReadingsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainaware_readings_dropped_total",
		Help: "Total number of readings rejected due to a full ingest queue.",
	})

	Assessments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainaware_risk_assessments_total",
		Help: "Total number of risk assessments, labelled by kind and level.",
	}, []string{"kind", "level"})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainaware_alerts_raised_total",
		Help: "Total number of alerts raised, labelled by alert type.",
	}, []string{"type"})

	CapabilityFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainaware_capability_failures_total",
		Help: "Total number of failed external capability calls, labelled by capability.",
	}, []string{"capability"})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chainaware_reading_ingest_duration_ms",
		Help:    "End-to-end append+assess+alert latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chainaware_ingest_queue_utilization_ratio",
		Help: "Current ingest queue utilization (0–1).",
	})
)
