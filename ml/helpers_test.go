package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var testSchema = Schema{Name: "test", Fields: []string{"a", "b"}}

// Two stumps over two features:
//
//	tree 0: a < 0 ? -1.0 (cover 6) : 2.0 (cover 2)   root expectation -0.25
//	tree 1: b < 1 ?  0.5 (cover 4) : -0.5 (cover 4)  root expectation  0
//
// base margin 0.1, so baseline = -0.15.
const testEnsembleJSON = `{
	"num_features": 2,
	"base_margin": 0.1,
	"trees": [
		{"nodes": [
			{"feature": 0, "threshold": 0, "left": 1, "right": 2, "cover": 8},
			{"feature": -1, "value": -1.0, "cover": 6},
			{"feature": -1, "value": 2.0, "cover": 2}
		]},
		{"nodes": [
			{"feature": 1, "threshold": 1.0, "left": 1, "right": 2, "cover": 8},
			{"feature": -1, "value": 0.5, "cover": 4},
			{"feature": -1, "value": -0.5, "cover": 4}
		]}
	]
}`

const testScalerJSON = `{
	"feature_names": ["a", "b"],
	"mean": [10.0, 2.0],
	"scale": [2.0, 0.5]
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func loadTestEnsemble(t *testing.T) *Ensemble {
	t.Helper()
	e, err := LoadEnsemble(writeArtifact(t, "model.json", testEnsembleJSON))
	require.NoError(t, err)
	return e
}
