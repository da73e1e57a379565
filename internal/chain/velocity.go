// SPDX-License-Identifier: MIT

package chain

import (
	"fmt"
	"math"

	"github.com/katalvlaran/phband/eigen"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultStep is the fractional finite-difference step of Velocity.
const DefaultStep = 1e-5

// Velocity computes group velocities of a Chain by central differences of
// sign(e)·√|e| along q_x, in natural band order. The y and z components
// are zero because the chain has no dispersion off its axis.
type Velocity struct {
	chain  *Chain
	solver eigen.Solver
	step   float64
}

// NewVelocity returns a calculator for c.
func NewVelocity(c *Chain) *Velocity {
	return &Velocity{chain: c, solver: eigen.NewHermitian(), step: DefaultStep}
}

// ComputeForPath returns one vector per band for every q-point.
func (v *Velocity) ComputeForPath(qpoints []r3.Vec) ([][]r3.Vec, error) {
	out := make([][]r3.Vec, len(qpoints))
	h := r3.Vec{X: v.step}
	for i, q := range qpoints {
		lo, err := v.frequencies(r3.Sub(q, h))
		if err != nil {
			return nil, fmt.Errorf("q-point %d: %w", i, err)
		}
		hi, err := v.frequencies(r3.Add(q, h))
		if err != nil {
			return nil, fmt.Errorf("q-point %d: %w", i, err)
		}
		out[i] = make([]r3.Vec, len(lo))
		for b := range lo {
			out[i][b] = r3.Vec{X: (hi[b] - lo[b]) / (2 * v.step)}
		}
	}

	return out, nil
}

// frequencies uses the analytic part of the chain only.
func (v *Velocity) frequencies(q r3.Vec) ([]float64, error) {
	analytic := v.chain.WithSplit(0)
	h, err := analytic.Evaluate(q, nil)
	if err != nil {
		return nil, err
	}
	d, err := v.solver.Solve(h, false)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(d.Values))
	for i, e := range d.Values {
		out[i] = math.Copysign(math.Sqrt(math.Abs(e)), e)
	}

	return out, nil
}
