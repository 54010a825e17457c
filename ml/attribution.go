package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Explainer produces additive per-feature attributions for ensemble
// predictions. Walking each decision path, the change in the node's expected
// margin at every split is credited to the split feature; summed over trees,
// Baseline() + sum(attributions) equals the raw margin exactly.
type Explainer struct {
	ensemble *Ensemble
}

func NewExplainer(e *Ensemble) (*Explainer, error) {
	if e == nil || len(e.trees) == 0 {
		return nil, fmt.Errorf("%w: no ensemble to explain", ErrExplanation)
	}
	return &Explainer{ensemble: e}, nil
}

// Baseline is the expected margin of the ensemble before observing any
// features: the base margin plus each tree's root expectation.
func (ex *Explainer) Baseline() float64 {
	base := ex.ensemble.baseMargin
	for t := range ex.ensemble.trees {
		base += ex.ensemble.expected[t][0]
	}
	return base
}

// Attribute returns one attribution per feature for a single scaled vector.
func (ex *Explainer) Attribute(x []float64) ([]float64, error) {
	if len(x) != ex.ensemble.numFeatures {
		return nil, fmt.Errorf("%w: vector has %d features, model expects %d", ErrExplanation, len(x), ex.ensemble.numFeatures)
	}

	attrs := make([]float64, len(x))
	for t, tree := range ex.ensemble.trees {
		ev := ex.ensemble.expected[t]
		i := 0
		for tree.Nodes[i].Feature != -1 {
			n := tree.Nodes[i]
			next := n.Right
			if x[n.Feature] < n.Threshold {
				next = n.Left
			}
			attrs[n.Feature] += ev[next] - ev[i]
			i = next
		}
	}
	return attrs, nil
}

// AttributeBatch explains a whole scaled batch in one call, one attribution
// row per input row. Bulk callers must use this rather than looping
// Attribute per request row.
func (ex *Explainer) AttributeBatch(m *mat.Dense) ([][]float64, error) {
	rows, cols := m.Dims()
	if cols != ex.ensemble.numFeatures {
		return nil, fmt.Errorf("%w: batch has %d features, model expects %d", ErrExplanation, cols, ex.ensemble.numFeatures)
	}
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		attrs, err := ex.Attribute(mat.Row(nil, r, m))
		if err != nil {
			return nil, err
		}
		out[r] = attrs
	}
	return out, nil
}
