package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exoplanet-finder-api/metrics"
	"exoplanet-finder-api/ml"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const (
	LabelConfirmed = "confirmed"
	LabelFalse     = "false"
)

// Transformer is the pre-fit normalization step.
type Transformer interface {
	Transform(x []float64) ([]float64, error)
	TransformBatch(m *mat.Dense) (*mat.Dense, error)
}

// Classifier is the trained binary model.
type Classifier interface {
	Proba(x []float64) (float64, error)
	ProbaBatch(m *mat.Dense) ([]float64, error)
}

// Explainer produces per-feature attributions for the classifier's output.
type Explainer interface {
	Attribute(x []float64) ([]float64, error)
	AttributeBatch(m *mat.Dense) ([][]float64, error)
}

// PredictionService runs the inference pipeline for one schema variant:
// build vector, scale, infer, explain, record. All collaborators are injected
// at startup and immutable afterwards.
type PredictionService struct {
	schema    ml.Schema
	scaler    Transformer
	model     Classifier
	explainer Explainer
	recorder  ObservationRecorder
	threshold float64
}

func NewPredictionService(schema ml.Schema, scaler Transformer, model Classifier, explainer Explainer, recorder ObservationRecorder, threshold float64) *PredictionService {
	return &PredictionService{
		schema:    schema,
		scaler:    scaler,
		model:     model,
		explainer: explainer,
		recorder:  recorder,
		threshold: threshold,
	}
}

func (s *PredictionService) Schema() ml.Schema { return s.schema }

type Prediction struct {
	Prediction   int
	Label        string
	Probability  float64
	Attributions map[string]float64
}

// Disposition renders the stored label+confidence string. Single-record
// paths store two decimals, bulk paths three.
func Disposition(label string, probability float64, decimals int) string {
	return fmt.Sprintf("%s (%.*f)", label, decimals, probability)
}

func (s *PredictionService) label(p float64) (int, string) {
	if p >= s.threshold {
		return 1, LabelConfirmed
	}
	return 0, LabelFalse
}

// PredictOne runs a single validated request through the pipeline. A failure
// in any model stage aborts before persistence; a persistence failure after a
// successful prediction is logged and counted but the prediction is still
// returned to the caller.
func (s *PredictionService) PredictOne(ctx context.Context, fields map[string]float64, userID *uint) (*Prediction, error) {
	x, err := s.schema.Vector(fields)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "vector").Inc()
		return nil, err
	}

	start := time.Now()
	scaled, err := s.scaler.Transform(x)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "scale").Inc()
		return nil, fmt.Errorf("scale: %w", err)
	}

	proba, err := s.model.Proba(scaled)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "infer").Inc()
		return nil, fmt.Errorf("infer: %w", err)
	}

	attrs, err := s.explainer.Attribute(scaled)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "explain").Inc()
		return nil, fmt.Errorf("explain: %w", err)
	}
	metrics.InferenceDuration.WithLabelValues(s.schema.Name).Observe(time.Since(start).Seconds())

	pred, label := s.label(proba)
	disposition := Disposition(label, proba, 2)

	if err := s.recorder.Record(ctx, x, disposition, userID); err != nil {
		metrics.PersistenceFailures.WithLabelValues(s.schema.Name).Inc()
		log.Error().Err(err).Str("schema", s.schema.Name).Str("disposition", disposition).
			Msg("observation write failed, returning prediction anyway")
	}

	metrics.PredictionsTotal.WithLabelValues(s.schema.Name).Inc()
	return &Prediction{
		Prediction:   pred,
		Label:        label,
		Probability:  proba,
		Attributions: s.schema.Named(attrs),
	}, nil
}

// BatchResult carries per-row outcomes of a bulk run, in input row order.
type BatchResult struct {
	Dispositions []string
	Attributions []map[string]float64
	// RowErrors maps input row index to its persistence error. Rows listed
	// here still have a computed disposition.
	RowErrors map[int]error
}

// PredictBatch runs an uploaded table through the pipeline. Column validation
// happens before any model work; scaling, inference and explanation each run
// once over the whole batch. Per-row persistence failures do not abort the
// remaining rows.
func (s *PredictionService) PredictBatch(ctx context.Context, header []string, rows [][]string, userID *uint) (*BatchResult, error) {
	m, err := s.schema.Matrix(header, rows)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "vector").Inc()
		return nil, err
	}

	start := time.Now()
	scaled, err := s.scaler.TransformBatch(m)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "scale").Inc()
		return nil, fmt.Errorf("scale batch: %w", err)
	}

	probas, err := s.model.ProbaBatch(scaled)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "infer").Inc()
		return nil, fmt.Errorf("infer batch: %w", err)
	}

	attrs, err := s.explainer.AttributeBatch(scaled)
	if err != nil {
		metrics.PredictionFailures.WithLabelValues(s.schema.Name, "explain").Inc()
		return nil, fmt.Errorf("explain batch: %w", err)
	}
	metrics.InferenceDuration.WithLabelValues(s.schema.Name).Observe(time.Since(start).Seconds())

	result := &BatchResult{
		Dispositions: make([]string, len(rows)),
		Attributions: make([]map[string]float64, len(rows)),
		RowErrors:    make(map[int]error),
	}

	for i := range rows {
		_, label := s.label(probas[i])
		disposition := Disposition(label, probas[i], 3)
		result.Dispositions[i] = disposition
		result.Attributions[i] = s.schema.Named(attrs[i])

		if err := s.recorder.Record(ctx, mat.Row(nil, i, m), disposition, userID); err != nil {
			metrics.PersistenceFailures.WithLabelValues(s.schema.Name).Inc()
			result.RowErrors[i] = err
			log.Error().Err(err).Str("schema", s.schema.Name).Int("row", i).
				Msg("bulk observation write failed, continuing")
			continue
		}
	}

	metrics.BulkRows.WithLabelValues(s.schema.Name).Add(float64(len(rows)))
	metrics.PredictionsTotal.WithLabelValues(s.schema.Name).Add(float64(len(rows)))
	return result, nil
}

// IsValidationError reports whether a pipeline error is the caller's fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ml.ErrSchema)
}
