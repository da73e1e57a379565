// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// mergePairs folds the 2n ascending eigenvalues of the embedding into the n
// eigenvalues of the Hermitian matrix by averaging consecutive pairs.
func mergePairs(vals []float64) []float64 {
	out := make([]float64, len(vals)/2)
	for m := range out {
		out[m] = (vals[2*m] + vals[2*m+1]) / 2
	}

	return out
}

// extract builds the complex eigenvectors of the n×n Hermitian matrix from
// the ascending eigenpairs (vals, u) of its 2n×2n embedding.
//
// Implementation:
//   - Stage 1: group consecutive eigenvalues whose gap is ≤ degTol·max(1,max|λ|).
//     Every group must hold an even number 2k of values.
//   - Stage 2: map each real eigenvector (x; y) of a group to x + i·y and keep
//     k of them by Gram–Schmidt, always taking the candidate with the largest
//     residual (ties: lowest index).
//   - Stage 3: fix the phase of every kept vector.
func extract(vals []float64, u *mat.Dense, n int, degTol float64) (*Decomposition, error) {
	values := mergePairs(vals)
	abs := make([]float64, len(vals))
	for i, v := range vals {
		abs[i] = math.Abs(v)
	}
	gap := degTol * math.Max(1, floats.Max(abs))

	vecs := mat.NewCDense(n, n, nil)
	var col int // next output column
	for start := 0; start < len(vals); {
		end := start + 1
		for end < len(vals) && vals[end]-vals[end-1] <= gap {
			end++
		}
		size := end - start
		if size%2 != 0 {
			return nil, fmt.Errorf("cluster at %d has %d values: %w", start, size, ErrOddCluster)
		}

		basis, err := clusterBasis(u, n, start, end)
		if err != nil {
			return nil, err
		}
		for _, v := range basis {
			fixPhase(v)
			for i := 0; i < n; i++ {
				vecs.Set(i, col, v[i])
			}
			col++
		}
		start = end
	}

	return &Decomposition{Values: values, Vectors: vecs}, nil
}

// clusterBasis returns (end−start)/2 orthonormal complex vectors spanning the
// eigenspace represented by columns [start, end) of u.
func clusterBasis(u *mat.Dense, n, start, end int) ([][]complex128, error) {
	cands := make([][]complex128, 0, end-start)
	for k := start; k < end; k++ {
		v := make([]complex128, n)
		for i := 0; i < n; i++ {
			v[i] = complex(u.At(i, k), u.At(n+i, k))
		}
		cands = append(cands, v)
	}

	want := (end - start) / 2
	basis := make([][]complex128, 0, want)
	used := make([]bool, len(cands))
	for len(basis) < want {
		best, bestNorm := -1, 0.0
		for k, v := range cands {
			if used[k] {
				continue
			}
			if nrm := norm(v); nrm > bestNorm {
				best, bestNorm = k, nrm
			}
		}
		if best < 0 || bestNorm < minResidual {
			return nil, fmt.Errorf("cluster [%d,%d): %w", start, end, ErrRankDeficient)
		}
		used[best] = true
		b := cands[best]
		for i := range b {
			b[i] /= complex(bestNorm, 0)
		}
		basis = append(basis, b)
		// remove the new direction from the remaining candidates
		for k, v := range cands {
			if used[k] {
				continue
			}
			p := inner(b, v)
			for i := range v {
				v[i] -= p * b[i]
			}
		}
	}

	return basis, nil
}

// inner returns ⟨a, b⟩ = Σ conj(a_i)·b_i.
func inner(a, b []complex128) complex128 {
	var s complex128
	for i := range a {
		s += cmplx.Conj(a[i]) * b[i]
	}

	return s
}

func norm(v []complex128) float64 {
	return math.Sqrt(real(inner(v, v)))
}

// fixPhase rotates v so that its first largest-magnitude component is real
// and positive.
func fixPhase(v []complex128) {
	var pivot complex128
	var maxAbs float64
	for _, c := range v {
		if a := cmplx.Abs(c); a > maxAbs*(1+1e-12) {
			pivot, maxAbs = c, a
		}
	}
	if maxAbs == 0 {
		return
	}
	rot := cmplx.Conj(pivot) / complex(maxAbs, 0)
	for i := range v {
		v[i] *= rot
	}
}
