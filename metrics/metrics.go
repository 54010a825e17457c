package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exofinder_predictions_total",
		Help: "Total number of predictions served.",
	}, []string{"schema"})

	PredictionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exofinder_prediction_failures_total",
		Help: "Total number of pipeline failures by stage.",
	}, []string{"schema", "stage"})

	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exofinder_persistence_failures_total",
		Help: "Total number of observation writes that failed after a successful prediction.",
	}, []string{"schema"})

	BulkRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exofinder_bulk_rows_total",
		Help: "Total number of rows processed through bulk prediction.",
	}, []string{"schema"})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exofinder_inference_duration_seconds",
		Help:    "Duration of the scale-infer-explain sequence.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	}, []string{"schema"})
)
