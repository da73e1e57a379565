// SPDX-License-Identifier: MIT

package connect

import "gonum.org/v1/gonum/mat"

// Identity returns the natural order 0..n−1.
func Identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

// IsPermutation reports whether order holds every index 0..len−1 exactly once.
func IsPermutation(order []int) bool {
	seen := make([]bool, len(order))
	for _, v := range order {
		if v < 0 || v >= len(order) || seen[v] {
			return false
		}
		seen[v] = true
	}

	return true
}

// Permute returns out with out[i] = s[order[i]]. order must be a
// permutation of len(s) indices.
func Permute[T any](s []T, order []int) []T {
	out := make([]T, len(order))
	for i, src := range order {
		out[i] = s[src]
	}

	return out
}

// PermuteColumns returns a copy of v whose column i is column order[i] of v.
func PermuteColumns(v mat.CMatrix, order []int) *mat.CDense {
	r, _ := v.Dims()
	out := mat.NewCDense(r, len(order), nil)
	for j, src := range order {
		for i := 0; i < r; i++ {
			out.Set(i, j, v.At(i, src))
		}
	}

	return out
}
