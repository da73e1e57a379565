// SPDX-License-Identifier: MIT

package kpath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// singularDet is the determinant magnitude below which a lattice is
// treated as singular.
const singularDet = 1e-12

// Metric maps fractional reciprocal-space vectors to Cartesian ones.
// It holds a 3×3 matrix whose columns are the reciprocal basis vectors, so
// Cartesian(q) = R·q.
//
// A Metric is immutable and safe for concurrent use.
type Metric struct {
	rec *mat.Dense // 3×3, columns are reciprocal basis vectors
}

// NewMetric builds a metric from the reciprocal basis. reciprocal[i][j] is
// row i, column j of R; column j is the j-th reciprocal basis vector.
// Returns ErrNonFinite on NaN/Inf entries.
func NewMetric(reciprocal [3][3]float64) (*Metric, error) {
	data := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := reciprocal[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("NewMetric: entry (%d,%d): %w", i, j, ErrNonFinite)
			}
			data = append(data, v)
		}
	}

	return &Metric{rec: mat.NewDense(3, 3, data)}, nil
}

// MetricFromLattice builds a metric from real-space lattice vectors given as
// rows (a, b, c). The reciprocal basis is the inverse of that matrix (no 2π
// factor), which makes Cartesian(δq) equal to δq·inv(L)ᵀ.
// Returns ErrNonFinite or ErrSingularLattice.
func MetricFromLattice(lattice [3][3]float64) (*Metric, error) {
	data := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := lattice[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("MetricFromLattice: entry (%d,%d): %w", i, j, ErrNonFinite)
			}
			data = append(data, v)
		}
	}
	l := mat.NewDense(3, 3, data)
	if math.Abs(mat.Det(l)) < singularDet {
		return nil, fmt.Errorf("MetricFromLattice: %w", ErrSingularLattice)
	}

	var inv mat.Dense
	if err := inv.Inverse(l); err != nil {
		return nil, fmt.Errorf("MetricFromLattice: %v: %w", err, ErrSingularLattice)
	}

	return &Metric{rec: &inv}, nil
}

// IdentityMetric returns the metric whose Cartesian frame equals the
// fractional one.
func IdentityMetric() *Metric {
	return &Metric{rec: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// Cartesian returns R·q.
func (m *Metric) Cartesian(q r3.Vec) r3.Vec {
	x := mat.NewVecDense(3, []float64{q.X, q.Y, q.Z})
	var y mat.VecDense
	y.MulVec(m.rec, x)

	return r3.Vec{X: y.AtVec(0), Y: y.AtVec(1), Z: y.AtVec(2)}
}

// Length returns the Cartesian length of the fractional delta dq.
func (m *Metric) Length(dq r3.Vec) float64 {
	return r3.Norm(m.Cartesian(dq))
}

// Reciprocal returns a copy of R as row-major [3][3] (columns are the
// reciprocal basis vectors).
func (m *Metric) Reciprocal() [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m.rec.At(i, j)
		}
	}

	return out
}
