// SPDX-License-Identifier: MIT

// Package chain is a toy crystal: a diatomic chain along x with lattice
// constant 1, embedded in three dimensions. It provides a dynamical matrix
// and a finite-difference group velocity calculator for examples and tests.
//
// Atom a ∈ {0, 1} and axis α ∈ {x, y, z} map to row 3a+α. Every axis is an
// independent spring chain, longitudinal (x) with constant KL and
// transverse (y, z) with constant KT:
//
//	D[a=0,a=0] = 2k/m₁   D[a=1,a=1] = 2k/m₂
//	D[a=0,a=1] = −k·(1 + e^{−2πi·q_x})/√(m₁m₂)
//
// A non-zero Split adds the rank-one term Split·(d̂_α d̂_β)·z_a z_b/√(m_a m_b)
// with charges z = (+1, −1), where d̂ is the limiting direction at Γ and the
// q direction elsewhere. It lifts the optical mode polarized along d̂.
package chain

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/phband"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBadParameter indicates a non-positive mass or spring constant.
var ErrBadParameter = fmt.Errorf("chain: masses and springs must be finite and positive: %w", phband.ErrInvalidInput)

// ErrNonFinite indicates a NaN or Inf q-point or direction.
var ErrNonFinite = fmt.Errorf("chain: non-finite q-point: %w", phband.ErrInvalidInput)

// Size is the order of the dynamical matrix.
const Size = 6

// Chain is a diatomic chain. It is immutable and safe for concurrent use.
type Chain struct {
	m      [2]float64
	kl, kt float64
	split  float64
}

// New returns a chain with masses m1, m2 and longitudinal and transverse
// spring constants kl, kt.
func New(m1, m2, kl, kt float64) (*Chain, error) {
	for _, v := range []float64{m1, m2, kl, kt} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, ErrBadParameter
		}
	}

	return &Chain{m: [2]float64{m1, m2}, kl: kl, kt: kt}, nil
}

// WithSplit returns a copy of c with a non-analytic term of strength s.
func (c *Chain) WithSplit(s float64) *Chain {
	cp := *c
	cp.split = s

	return &cp
}

// HasNonAnalyticCorrection reports whether a split is configured.
func (c *Chain) HasNonAnalyticCorrection() bool { return c.split != 0 }

// Evaluate returns the 6×6 dynamical matrix at fractional q.
func (c *Chain) Evaluate(q r3.Vec, direction *r3.Vec) (mat.CMatrix, error) {
	if !finite(q) || (direction != nil && !finite(*direction)) {
		return nil, ErrNonFinite
	}
	d := mat.NewCDense(Size, Size, nil)
	phase := cmplx.Exp(complex(0, -2*math.Pi*q.X))
	root := math.Sqrt(c.m[0] * c.m[1])
	for axis, k := range [3]float64{c.kl, c.kt, c.kt} {
		off := -complex(k/root, 0) * (1 + phase)
		d.Set(axis, axis, complex(2*k/c.m[0], 0))
		d.Set(3+axis, 3+axis, complex(2*k/c.m[1], 0))
		d.Set(axis, 3+axis, off)
		d.Set(3+axis, axis, cmplx.Conj(off))
	}
	if c.split != 0 {
		c.addSplit(d, q, direction)
	}

	return d, nil
}

func (c *Chain) addSplit(d *mat.CDense, q r3.Vec, direction *r3.Vec) {
	dir := q
	if direction != nil {
		dir = *direction
	}
	n := r3.Norm(dir)
	if n == 0 {
		return
	}
	u := r3.Scale(1/n, dir)
	axes := [3]float64{u.X, u.Y, u.Z}
	charge := [2]float64{1, -1}
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			w := c.split * charge[a] * charge[b] / math.Sqrt(c.m[a]*c.m[b])
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					v := d.At(3*a+i, 3*b+j) + complex(w*axes[i]*axes[j], 0)
					d.Set(3*a+i, 3*b+j, v)
				}
			}
		}
	}
}

func finite(v r3.Vec) bool {
	for _, x := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}
