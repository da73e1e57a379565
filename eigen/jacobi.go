// SPDX-License-Identifier: MIT

package eigen

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Jacobi is a Solver that runs classical Jacobi rotations on the real
// symmetric embedding. It needs no LAPACK routine and is fully
// deterministic: the pivot is always the first largest off-diagonal entry
// in i→j order.
//
// A Jacobi is stateless after construction and safe for concurrent use.
type Jacobi struct {
	opts Options
}

// NewJacobi returns a Jacobi solver.
func NewJacobi(opts ...Option) *Jacobi {
	return &Jacobi{opts: gatherOptions(opts...)}
}

// Solve implements Solver.
//
// Implementation:
//   - Stage 1: validate and embed h into S (2n×2n).
//   - Stage 2: rotate the largest |S[p,r]| to zero until every off-diagonal
//     entry is below JacobiTol·max(1, max|S|) or MaxRotations is reached.
//   - Stage 3: sort eigenpairs ascending (stable), then merge pairs and
//     extract complex vectors like the gonum backend.
//
// Errors: same as Hermitian.Solve; ErrNoConvergence when the rotation budget
// runs out.
//
// Complexity: O(n²) per rotation, typically O(n⁴) overall; use for small n.
func (s *Jacobi) Solve(h mat.CMatrix, vectors bool) (*Decomposition, error) {
	sym, n, err := embed(h, s.opts.HermitianTol)
	if err != nil {
		return nil, eigenErrorf(opJacobi, err)
	}

	size := 2 * n
	a := make([]float64, size*size)
	var scale float64
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			a[i*size+j] = sym.At(i, j)
			scale = math.Max(scale, math.Abs(a[i*size+j]))
		}
	}
	maxRot := s.opts.MaxRotations
	if maxRot == 0 {
		maxRot = DefaultRotationsPerEntry * size * size
	}

	vals, v, ok := jacobiRotate(a, size, s.opts.JacobiTol*math.Max(1, scale), maxRot)
	if !ok {
		return nil, eigenErrorf(opJacobi, ErrNoConvergence)
	}

	// ascending order, stable on ties
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool { return vals[idx[x]] < vals[idx[y]] })
	sorted := make([]float64, size)
	u := mat.NewDense(size, size, nil)
	for k, src := range idx {
		sorted[k] = vals[src]
		for i := 0; i < size; i++ {
			u.Set(i, k, v[i*size+src])
		}
	}

	if !vectors {
		return &Decomposition{Values: mergePairs(sorted)}, nil
	}
	d, err := extract(sorted, u, n, s.opts.DegeneracyTol)
	if err != nil {
		return nil, eigenErrorf(opJacobi, err)
	}

	return d, nil
}

// jacobiRotate diagonalizes the symmetric row-major n×n matrix a in place.
// It returns the diagonal, the row-major rotation accumulator V (columns are
// eigenvectors) and whether every off-diagonal entry dropped below tol.
func jacobiRotate(a []float64, n int, tol float64, maxRot int) ([]float64, []float64, bool) {
	v := make([]float64, n*n)
	for i := 0; i < n; i++ {
		v[i*n+i] = 1
	}

	var (
		p, r               int     // pivot indices
		maxOff, off        float64 // largest |a[p,r]|, scratch
		app, arr, apr      float64 // a[p,p], a[r,r], a[p,r]
		theta, t, c, s     float64 // rotation parameters
		aip, air, vip, vir float64
		converged          bool
	)
	for iter := 0; iter < maxRot; iter++ {
		// find pivot (p,r) maximizing |a[p,r]|
		maxOff = 0
		for i := 0; i < n; i++ {
			base := i * n
			for j := i + 1; j < n; j++ {
				off = math.Abs(a[base+j])
				if off > maxOff {
					maxOff, p, r = off, i, j
				}
			}
		}
		if maxOff < tol {
			converged = true
			break
		}

		app, arr, apr = a[p*n+p], a[r*n+r], a[p*n+r]
		// θ = (arr−app)/(2·apr), t = sign(θ)/(|θ|+√(θ²+1))
		theta = (arr - app) / (2 * apr)
		t = math.Copysign(1/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1 / math.Sqrt(t*t+1)
		s = t * c

		for i := 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			aip, air = a[i*n+p], a[i*n+r]
			nip, nir := c*aip-s*air, s*aip+c*air
			a[i*n+p], a[p*n+i] = nip, nip
			a[i*n+r], a[r*n+i] = nir, nir
		}
		a[p*n+p] = c*c*app - 2*c*s*apr + s*s*arr
		a[r*n+r] = s*s*app + 2*c*s*apr + c*c*arr
		a[p*n+r], a[r*n+p] = 0, 0

		for i := 0; i < n; i++ {
			vip, vir = v[i*n+p], v[i*n+r]
			v[i*n+p] = c*vip - s*vir
			v[i*n+r] = s*vip + c*vir
		}
	}
	if !converged {
		// the budget may run out exactly on the converging rotation
		converged = true
		for i := 0; i < n && converged; i++ {
			for j := i + 1; j < n; j++ {
				if math.Abs(a[i*n+j]) >= tol {
					converged = false
					break
				}
			}
		}
	}

	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		diag[i] = a[i*n+i]
	}

	return diag, v, converged
}
