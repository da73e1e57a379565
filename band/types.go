// SPDX-License-Identifier: MIT

package band

import (
	"fmt"

	"github.com/katalvlaran/phband"
	"github.com/katalvlaran/phband/kpath"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sentinel errors. Collaborator errors are returned as they are (wrapped
// with position context) and do not match any of these.
var (
	// ErrNilDynamicalMatrix indicates a nil DynamicalMatrix.
	ErrNilDynamicalMatrix = fmt.Errorf("band: dynamical matrix is nil: %w", phband.ErrInvalidInput)

	// ErrNilMetric indicates a nil metric.
	ErrNilMetric = fmt.Errorf("band: metric is nil: %w", phband.ErrInvalidInput)

	// ErrNonSquare indicates a dynamical matrix that is nil or not square.
	ErrNonSquare = fmt.Errorf("band: dynamical matrix is not square: %w", phband.ErrInvalidInput)

	// ErrBandCountChanged indicates operators of different sizes along one solve.
	ErrBandCountChanged = fmt.Errorf("band: number of bands changed between q-points: %w", phband.ErrInvalidInput)

	// ErrSolverShape indicates eigenvalues or eigenvectors whose size does
	// not match the operator.
	ErrSolverShape = fmt.Errorf("band: eigen solution has mismatched dimensions: %w", phband.ErrInvalidInput)

	// ErrConnectorOrder indicates a connection strategy that did not return a
	// permutation of the bands.
	ErrConnectorOrder = fmt.Errorf("band: connector returned an invalid band order: %w", phband.ErrInvalidInput)

	// ErrGroupVelocityShape indicates group velocities that do not have one
	// entry per q-point and band.
	ErrGroupVelocityShape = fmt.Errorf("band: group velocities have mismatched dimensions: %w", phband.ErrInvalidInput)
)

// DynamicalMatrix evaluates the dynamical matrix of a crystal.
//
// Evaluate returns the Hermitian (3·atoms)×(3·atoms) operator at the
// fractional q-point q. direction is non-nil only at Γ for matrices with a
// non-analytic correction and gives the limiting approach direction.
type DynamicalMatrix interface {
	Evaluate(q r3.Vec, direction *r3.Vec) (mat.CMatrix, error)
	HasNonAnalyticCorrection() bool
}

// GroupVelocityCalculator computes group velocities for a whole path in one
// call. The result holds one slice per q-point with one vector per band, in
// natural (ascending eigenvalue) band order.
type GroupVelocityCalculator interface {
	ComputeForPath(qpoints []r3.Vec) ([][]r3.Vec, error)
}

// Segment is the solution along one path.
type Segment struct {
	Distances   []float64   // cumulative distance per q-point
	QPoints     kpath.Path  // copy of the input path
	Frequencies [][]float64 // [q-point][band]

	// Eigenvectors holds, per q-point, a matrix whose column b is the
	// eigenvector of output band b. Nil unless eigenvectors were requested.
	Eigenvectors []*mat.CDense

	// GroupVelocities holds [q-point][band] vectors aligned with the output
	// band order. Nil unless a calculator was given.
	GroupVelocities [][]r3.Vec

	// BandOrders holds, per q-point, the natural eigen index of every
	// output band. Nil unless band connection was enabled.
	BandOrders [][]int
}

// Len returns the number of q-points, counted from Distances.
func (s *Segment) Len() int { return len(s.Distances) }

// NumBands returns the number of bands, 0 for an empty segment.
func (s *Segment) NumBands() int {
	if len(s.Frequencies) == 0 {
		return 0
	}

	return len(s.Frequencies[0])
}

// HasEigenvectors reports whether eigenvectors were recorded.
func (s *Segment) HasEigenvectors() bool { return s.Eigenvectors != nil }

// HasGroupVelocities reports whether group velocities were recorded.
func (s *Segment) HasGroupVelocities() bool { return s.GroupVelocities != nil }

// Band returns the frequencies of band b along the segment.
func (s *Segment) Band(b int) []float64 {
	out := make([]float64, len(s.Frequencies))
	for j, f := range s.Frequencies {
		out[j] = f[b]
	}

	return out
}
