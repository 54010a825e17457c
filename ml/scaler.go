package ml

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Scaler applies a pre-fit per-feature standardization, scaled = (raw-mean)/scale.
// Parameters are loaded once at startup and never mutated, so a single
// instance is safe for concurrent use.
type Scaler struct {
	mean  []float64
	scale []float64
}

type scalerArtifact struct {
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// LoadScaler reads a fitted-scaler artifact and checks it against the schema
// it will serve. Any mismatch is fatal at startup.
func LoadScaler(path string, schema Schema) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read scaler %s: %v", ErrArtifactLoad, path, err)
	}

	var art scalerArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: parse scaler %s: %v", ErrArtifactLoad, path, err)
	}

	if len(art.Mean) != schema.Len() || len(art.Scale) != schema.Len() {
		return nil, fmt.Errorf("%w: scaler %s has %d/%d parameters, schema %q needs %d",
			ErrArtifactLoad, path, len(art.Mean), len(art.Scale), schema.Name, schema.Len())
	}
	if len(art.FeatureNames) != schema.Len() {
		return nil, fmt.Errorf("%w: scaler %s names %d features, schema %q needs %d",
			ErrArtifactLoad, path, len(art.FeatureNames), schema.Name, schema.Len())
	}
	for i, name := range art.FeatureNames {
		if name != schema.Fields[i] {
			return nil, fmt.Errorf("%w: scaler %s feature %d is %q, schema %q expects %q",
				ErrArtifactLoad, path, i, name, schema.Name, schema.Fields[i])
		}
	}
	for i, s := range art.Scale {
		if s == 0 {
			return nil, fmt.Errorf("%w: scaler %s has zero scale for %q", ErrArtifactLoad, path, art.FeatureNames[i])
		}
	}

	return &Scaler{mean: art.Mean, scale: art.Scale}, nil
}

func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("%w: vector has %d features, scaler expects %d", ErrSchema, len(x), len(s.mean))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

func (s *Scaler) TransformBatch(m *mat.Dense) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if cols != len(s.mean) {
		return nil, fmt.Errorf("%w: batch has %d features, scaler expects %d", ErrSchema, cols, len(s.mean))
	}
	out := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, (m.At(r, c)-s.mean[c])/s.scale[c])
		}
	}
	return out, nil
}
