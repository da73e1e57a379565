// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"

	"github.com/katalvlaran/phband"
	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by the solvers.
var (
	// ErrEmpty indicates a 0×0 operator.
	ErrEmpty = fmt.Errorf("eigen: empty matrix: %w", phband.ErrInvalidInput)

	// ErrNonSquare indicates a non-square operator.
	ErrNonSquare = fmt.Errorf("eigen: matrix is not square: %w", phband.ErrInvalidInput)

	// ErrNotHermitian indicates |H[i,j] − conj(H[j,i])| above tolerance.
	ErrNotHermitian = fmt.Errorf("eigen: matrix is not Hermitian within tolerance: %w", phband.ErrInvalidInput)

	// ErrNaNInf indicates a NaN or ±Inf entry.
	ErrNaNInf = fmt.Errorf("eigen: NaN or Inf entry: %w", phband.ErrNumericalFailure)

	// ErrNoConvergence indicates the backend did not converge.
	ErrNoConvergence = fmt.Errorf("eigen: decomposition did not converge: %w", phband.ErrNumericalFailure)

	// ErrOddCluster indicates that eigenvalue pairs of the real embedding
	// split further apart than the degeneracy tolerance.
	ErrOddCluster = fmt.Errorf("eigen: unpaired eigenvalue in real embedding: %w", phband.ErrNumericalFailure)

	// ErrRankDeficient indicates that a degenerate cluster did not yield
	// enough independent complex eigenvectors.
	ErrRankDeficient = fmt.Errorf("eigen: degenerate eigenspace is rank deficient: %w", phband.ErrNumericalFailure)
)

// Operation tags for error wrapping.
const (
	opHermitian = "Hermitian.Solve"
	opJacobi    = "Jacobi.Solve"
)

// Solver diagonalizes a Hermitian matrix.
//
// Solve returns the eigenvalues in ascending order and, when vectors is
// true, the matching unit eigenvectors as columns. Implementations must not
// retain or mutate h.
type Solver interface {
	Solve(h mat.CMatrix, vectors bool) (*Decomposition, error)
}

// Decomposition is the result of Solver.Solve.
type Decomposition struct {
	Values  []float64   // ascending
	Vectors *mat.CDense // column j pairs with Values[j]; nil when not requested
}

// Len returns the number of eigenvalues.
func (d *Decomposition) Len() int { return len(d.Values) }

// HasVectors reports whether eigenvectors were computed.
func (d *Decomposition) HasVectors() bool { return d.Vectors != nil }

// Vector returns a copy of eigenvector j. d must hold vectors.
func (d *Decomposition) Vector(j int) []complex128 {
	n, _ := d.Vectors.Dims()
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = d.Vectors.At(i, j)
	}

	return out
}

func eigenErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
