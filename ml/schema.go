package ml

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Schema is an ordered feature list. Order is significant: it must match the
// column order the classifier and scaler were fit on.
type Schema struct {
	Name   string
	Fields []string
}

var (
	Full    = Schema{Name: "full", Fields: []string{"period", "duration", "depth", "prad", "steff", "srad", "mag"}}
	Reduced = Schema{Name: "reduced", Fields: []string{"period", "duration", "depth", "mag"}}
)

func (s Schema) Len() int { return len(s.Fields) }

// Vector extracts the schema's fields from a validated request in schema
// order. Every field must be present and finite.
func (s Schema) Vector(fields map[string]float64) ([]float64, error) {
	x := make([]float64, len(s.Fields))
	for i, name := range s.Fields {
		v, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrSchema, name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: field %q is not finite", ErrSchema, name)
		}
		x[i] = v
	}
	return x, nil
}

// columnIndex maps each schema field to its position in a CSV header.
func (s Schema) columnIndex(header []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[col] = i
	}

	idx := make([]int, len(s.Fields))
	for i, name := range s.Fields {
		j, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchema, name)
		}
		idx[i] = j
	}
	return idx, nil
}

// Matrix extracts the schema's columns from a parsed CSV table as one
// row-per-observation dense matrix. Extra columns are ignored. The whole
// table is rejected before any model work if a required column is absent or
// a cell fails to parse.
func (s Schema) Matrix(header []string, rows [][]string) (*mat.Dense, error) {
	idx, err := s.columnIndex(header)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table has no data rows", ErrSchema)
	}

	m := mat.NewDense(len(rows), len(s.Fields), nil)
	for r, row := range rows {
		for c, j := range idx {
			if j >= len(row) {
				return nil, fmt.Errorf("%w: row %d has %d cells, need column %q", ErrSchema, r+1, len(row), s.Fields[c])
			}
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q: %q is not numeric", ErrSchema, r+1, s.Fields[c], row[j])
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d column %q is not finite", ErrSchema, r+1, s.Fields[c])
			}
			m.Set(r, c, v)
		}
	}
	return m, nil
}

// Named zips a vector back into field-name order, for attribution payloads.
func (s Schema) Named(values []float64) map[string]float64 {
	out := make(map[string]float64, len(s.Fields))
	for i, name := range s.Fields {
		if i < len(values) {
			out[name] = values[i]
		}
	}
	return out
}
