package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAttributions(t *testing.T) {
	e := loadTestEnsemble(t)
	ex, err := NewExplainer(e)
	require.NoError(t, err)

	assert.InDelta(t, -0.15, ex.Baseline(), 1e-12)

	attrs, err := ex.Attribute([]float64{1.0, 0.0})
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	// tree 0: right leaf 2.0 vs root expectation -0.25
	assert.InDelta(t, 2.25, attrs[0], 1e-12)
	// tree 1: left leaf 0.5 vs root expectation 0
	assert.InDelta(t, 0.5, attrs[1], 1e-12)
}

// The additive property: baseline plus attributions reproduces the raw margin.
func TestAttributionsSumToMargin(t *testing.T) {
	e := loadTestEnsemble(t)
	ex, err := NewExplainer(e)
	require.NoError(t, err)

	inputs := [][]float64{
		{1.0, 0.0}, {-3.0, 5.0}, {0.0, 1.0}, {-0.5, 0.99}, {42.0, -42.0},
	}
	for _, x := range inputs {
		margin, err := e.Margin(x)
		require.NoError(t, err)

		attrs, err := ex.Attribute(x)
		require.NoError(t, err)

		total := ex.Baseline()
		for _, a := range attrs {
			total += a
		}
		assert.InDelta(t, margin, total, 1e-9, "input %v", x)
	}
}

func TestAttributeBatchMatchesSingle(t *testing.T) {
	e := loadTestEnsemble(t)
	ex, err := NewExplainer(e)
	require.NoError(t, err)

	rows := [][]float64{{1.0, 0.0}, {-3.0, 5.0}}
	m := mat.NewDense(2, 2, nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}

	batch, err := ex.AttributeBatch(m)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for i, r := range rows {
		single, err := ex.Attribute(r)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "row %d", i)
	}
}

func TestExplainerShapeError(t *testing.T) {
	e := loadTestEnsemble(t)
	ex, err := NewExplainer(e)
	require.NoError(t, err)

	_, err = ex.Attribute([]float64{1.0})
	assert.ErrorIs(t, err, ErrExplanation)

	_, err = ex.AttributeBatch(mat.NewDense(1, 4, nil))
	assert.ErrorIs(t, err, ErrExplanation)
}

func TestNewExplainerNilEnsemble(t *testing.T) {
	_, err := NewExplainer(nil)
	assert.ErrorIs(t, err, ErrExplanation)
}
