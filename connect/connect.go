// SPDX-License-Identifier: MIT

package connect

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/phband"
	"gonum.org/v1/gonum/mat"
)

// Sentinel errors.
var (
	// ErrDimensionMismatch indicates eigenvector matrices or orders of
	// different or non-square sizes.
	ErrDimensionMismatch = fmt.Errorf("connect: dimension mismatch: %w", phband.ErrInvalidInput)

	// ErrBadOrder indicates a carried band order that is not a permutation.
	ErrBadOrder = fmt.Errorf("connect: band order is not a permutation: %w", phband.ErrInvalidInput)

	// ErrNonFinite indicates a NaN or Inf overlap, for which no maximum is defined.
	ErrNonFinite = fmt.Errorf("connect: non-finite overlap: %w", phband.ErrNumericalFailure)
)

// Strategy returns the output band order of the current q-point given the
// eigenvectors of the previous and current q-points (columns in natural
// eigen-order) and the output order used at the previous q-point.
type Strategy func(prev, cur mat.CMatrix, prevOrder []int) ([]int, error)

// Greedy is the default Strategy. See the package documentation for the
// algorithm and its tie rule.
func Greedy(prev, cur mat.CMatrix, prevOrder []int) ([]int, error) {
	if !IsPermutation(prevOrder) {
		return nil, fmt.Errorf("Greedy: %w", ErrBadOrder)
	}
	m, err := Overlap(prev, cur)
	if err != nil {
		return nil, fmt.Errorf("Greedy: %w", err)
	}
	connection, err := Match(m)
	if err != nil {
		return nil, fmt.Errorf("Greedy: %w", err)
	}

	return Compose(connection, prevOrder)
}

// Overlap returns M with M[a][b] = |Σ_k conj(prev[k,a])·cur[k,b]|.
// Both matrices must be square and of equal size.
func Overlap(prev, cur mat.CMatrix) (*mat.Dense, error) {
	if prev == nil || cur == nil {
		return nil, ErrDimensionMismatch
	}
	pr, pc := prev.Dims()
	cr, cc := cur.Dims()
	if pr != pc || cr != cc || pr != cr || pr == 0 {
		return nil, fmt.Errorf("prev %dx%d, cur %dx%d: %w", pr, pc, cr, cc, ErrDimensionMismatch)
	}

	n := pr
	m := mat.NewDense(n, n, nil)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			var s complex128
			for k := 0; k < n; k++ {
				s += cmplx.Conj(prev.At(k, a)) * cur.At(k, b)
			}
			m.Set(a, b, cmplx.Abs(s))
		}
	}

	return m, nil
}

// Match runs the greedy row-by-row assignment on a square overlap matrix and
// returns connection with connection[a] = column chosen by row a.
//
// Rows are processed in increasing order. Each row scans the free columns
// from the highest index down and keeps a column only if it is strictly
// larger than the best so far, so ties resolve to the highest index. A row
// whose free overlaps are all zero still takes the highest free column,
// which keeps the result a permutation.
func Match(overlap mat.Matrix) ([]int, error) {
	n, c := overlap.Dims()
	if n != c || n == 0 {
		return nil, fmt.Errorf("overlap %dx%d: %w", n, c, ErrDimensionMismatch)
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if v := overlap.At(a, b); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("overlap (%d,%d): %w", a, b, ErrNonFinite)
			}
		}
	}

	used := make([]bool, n)
	connection := make([]int, n)
	for a := 0; a < n; a++ {
		best, bestVal := -1, math.Inf(-1)
		for b := n - 1; b >= 0; b-- {
			if used[b] {
				continue
			}
			if v := overlap.At(a, b); v > bestVal {
				best, bestVal = b, v
			}
		}
		used[best] = true
		connection[a] = best
	}

	return connection, nil
}

// Compose returns newOrder with newOrder[i] = connection[prevOrder[i]].
func Compose(connection, prevOrder []int) ([]int, error) {
	if len(connection) != len(prevOrder) {
		return nil, fmt.Errorf("Compose: %d vs %d: %w", len(connection), len(prevOrder), ErrDimensionMismatch)
	}
	if !IsPermutation(prevOrder) || !IsPermutation(connection) {
		return nil, fmt.Errorf("Compose: %w", ErrBadOrder)
	}
	out := make([]int, len(prevOrder))
	for i, p := range prevOrder {
		out[i] = connection[p]
	}

	return out, nil
}
