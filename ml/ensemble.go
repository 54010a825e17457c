package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Node is one decision node of a boosted tree. Leaves have Feature == -1 and
// carry the leaf margin in Value. Cover is the training-sample weight that
// reached the node; attribution uses it to form expected values.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Cover     float64 `json:"cover"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

type ensembleArtifact struct {
	NumFeatures int     `json:"num_features"`
	BaseMargin  float64 `json:"base_margin"`
	Trees       []Tree  `json:"trees"`
}

// Ensemble is a pre-trained gradient-boosted binary classifier, evaluated
// in-process from an exported tree dump. It is immutable after load and safe
// for concurrent use.
type Ensemble struct {
	numFeatures int
	baseMargin  float64
	trees       []Tree

	// expected[t][n] is the cover-weighted mean leaf margin beneath node n of
	// tree t, precomputed at load for path attribution.
	expected [][]float64
}

// LoadEnsemble reads a classifier artifact and validates its tree structure.
// Any defect is fatal at startup.
func LoadEnsemble(path string) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read model %s: %v", ErrArtifactLoad, path, err)
	}

	var art ensembleArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: parse model %s: %v", ErrArtifactLoad, path, err)
	}
	if art.NumFeatures <= 0 {
		return nil, fmt.Errorf("%w: model %s declares %d features", ErrArtifactLoad, path, art.NumFeatures)
	}
	if len(art.Trees) == 0 {
		return nil, fmt.Errorf("%w: model %s has no trees", ErrArtifactLoad, path)
	}

	e := &Ensemble{
		numFeatures: art.NumFeatures,
		baseMargin:  art.BaseMargin,
		trees:       art.Trees,
	}

	e.expected = make([][]float64, len(art.Trees))
	for t, tree := range art.Trees {
		if err := validateTree(tree, art.NumFeatures); err != nil {
			return nil, fmt.Errorf("%w: model %s tree %d: %v", ErrArtifactLoad, path, t, err)
		}
		e.expected[t] = expectedValues(tree)
	}

	return e, nil
}

func validateTree(tree Tree, numFeatures int) error {
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range tree.Nodes {
		if n.Feature == -1 {
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d, model has %d", i, n.Feature, numFeatures)
		}
		if n.Left <= i || n.Left >= len(tree.Nodes) || n.Right <= i || n.Right >= len(tree.Nodes) {
			return fmt.Errorf("node %d has children %d/%d outside (%d, %d)", i, n.Left, n.Right, i, len(tree.Nodes))
		}
		if tree.Nodes[n.Left].Cover <= 0 || tree.Nodes[n.Right].Cover <= 0 {
			return fmt.Errorf("node %d has non-positive child cover", i)
		}
	}
	return nil
}

// expectedValues computes, for every node, the cover-weighted mean of the
// leaf margins beneath it. Children always follow their parent in the node
// array, so a single reverse pass suffices.
func expectedValues(tree Tree) []float64 {
	ev := make([]float64, len(tree.Nodes))
	for i := len(tree.Nodes) - 1; i >= 0; i-- {
		n := tree.Nodes[i]
		if n.Feature == -1 {
			ev[i] = n.Value
			continue
		}
		lc := tree.Nodes[n.Left].Cover
		rc := tree.Nodes[n.Right].Cover
		ev[i] = (lc*ev[n.Left] + rc*ev[n.Right]) / (lc + rc)
	}
	return ev
}

func (e *Ensemble) NumFeatures() int { return e.numFeatures }

// leaf walks tree t for input x and returns the leaf node index.
func (e *Ensemble) leaf(t int, x []float64) int {
	tree := e.trees[t]
	i := 0
	for tree.Nodes[i].Feature != -1 {
		n := tree.Nodes[i]
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return i
}

// Margin returns the raw additive score for one scaled feature vector.
func (e *Ensemble) Margin(x []float64) (float64, error) {
	if len(x) != e.numFeatures {
		return 0, fmt.Errorf("%w: vector has %d features, model expects %d", ErrInference, len(x), e.numFeatures)
	}
	margin := e.baseMargin
	for t := range e.trees {
		margin += e.trees[t].Nodes[e.leaf(t, x)].Value
	}
	return margin, nil
}

// Proba returns the positive-class probability for one scaled feature vector.
func (e *Ensemble) Proba(x []float64) (float64, error) {
	margin, err := e.Margin(x)
	if err != nil {
		return 0, err
	}
	return sigmoid(margin), nil
}

// ProbaBatch returns one probability per row of a scaled batch.
func (e *Ensemble) ProbaBatch(m *mat.Dense) ([]float64, error) {
	rows, cols := m.Dims()
	if cols != e.numFeatures {
		return nil, fmt.Errorf("%w: batch has %d features, model expects %d", ErrInference, cols, e.numFeatures)
	}
	out := make([]float64, rows)
	for r := 0; r < rows; r++ {
		p, err := e.Proba(mat.Row(nil, r, m))
		if err != nil {
			return nil, err
		}
		out[r] = p
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
