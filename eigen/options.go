// SPDX-License-Identifier: MIT

package eigen

import "math"

// Defaults (single source of truth).
const (
	// DefaultHermitianTol is the relative tolerance of the Hermiticity check,
	// scaled by max(1, max|H[i,j]|).
	DefaultHermitianTol = 1e-8

	// DefaultDegeneracyTol is the relative gap, scaled by max(1, max|λ|),
	// under which eigenvalues of the embedding are treated as one cluster.
	DefaultDegeneracyTol = 1e-8

	// DefaultJacobiTol is the relative off-diagonal threshold of the Jacobi
	// backend, scaled by max(1, max|S[i,j]|).
	DefaultJacobiTol = 1e-13

	// DefaultRotationsPerEntry bounds Jacobi rotations to this many per
	// entry of the embedding when WithMaxRotations is not given.
	DefaultRotationsPerEntry = 50

	// minResidual is the smallest acceptable residual norm when extracting a
	// complex basis from a degenerate cluster.
	minResidual = 1e-6
)

const (
	panicHermitianTol = "eigen: WithHermitianTolerance: tol must be finite and non-negative"
	panicDegeneracy   = "eigen: WithDegeneracyTolerance: tol must be finite and positive"
	panicJacobiTol    = "eigen: WithJacobiTolerance: tol must be finite and positive"
	panicRotations    = "eigen: WithMaxRotations: n must be positive"
)

// Option configures a solver.
type Option func(*Options)

// Options holds solver settings. Build it with DefaultOptions and Option
// setters; solvers copy it at construction.
type Options struct {
	HermitianTol  float64
	DegeneracyTol float64
	JacobiTol     float64
	MaxRotations  int // 0 means DefaultRotationsPerEntry·(2n)²
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		HermitianTol:  DefaultHermitianTol,
		DegeneracyTol: DefaultDegeneracyTol,
		JacobiTol:     DefaultJacobiTol,
	}
}

// WithHermitianTolerance sets the relative Hermiticity tolerance.
// Panics on negative or non-finite values.
func WithHermitianTolerance(tol float64) Option {
	if !finiteNonNegative(tol) {
		panic(panicHermitianTol)
	}

	return func(o *Options) { o.HermitianTol = tol }
}

// WithDegeneracyTolerance sets the relative gap that groups eigenvalues into
// one degenerate cluster. Panics on non-positive or non-finite values.
func WithDegeneracyTolerance(tol float64) Option {
	if !finiteNonNegative(tol) || tol == 0 {
		panic(panicDegeneracy)
	}

	return func(o *Options) { o.DegeneracyTol = tol }
}

// WithJacobiTolerance sets the Jacobi convergence threshold.
// Panics on non-positive or non-finite values.
func WithJacobiTolerance(tol float64) Option {
	if !finiteNonNegative(tol) || tol == 0 {
		panic(panicJacobiTol)
	}

	return func(o *Options) { o.JacobiTol = tol }
}

// WithMaxRotations caps the number of Jacobi rotations. Panics if n <= 0.
func WithMaxRotations(n int) Option {
	if n <= 0 {
		panic(panicRotations)
	}

	return func(o *Options) { o.MaxRotations = n }
}

func gatherOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
