// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// ValidateHermitian checks that h is non-empty, square, finite and
// Hermitian within tol·max(1, max|h[i,j]|).
//
// Errors: ErrEmpty, ErrNonSquare, ErrNaNInf, ErrNotHermitian.
// Complexity: O(n²).
func ValidateHermitian(h mat.CMatrix, tol float64) error {
	if h == nil {
		return ErrEmpty
	}
	r, c := h.Dims()
	if r != c {
		return fmt.Errorf("%dx%d: %w", r, c, ErrNonSquare)
	}
	if r == 0 {
		return ErrEmpty
	}

	var scale float64
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			v := h.At(i, j)
			if cmplx.IsNaN(v) || cmplx.IsInf(v) {
				return fmt.Errorf("entry (%d,%d): %w", i, j, ErrNaNInf)
			}
			scale = math.Max(scale, cmplx.Abs(v))
		}
	}
	limit := tol * math.Max(1, scale)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			if d := cmplx.Abs(h.At(i, j) - cmplx.Conj(h.At(j, i))); d > limit {
				return fmt.Errorf("entry (%d,%d) deviates by %g: %w", i, j, d, ErrNotHermitian)
			}
		}
	}

	return nil
}

// embed validates h and returns its real symmetric embedding
//
//	S = | A  −B |
//	    | B   A |
//
// with A = Re h and B = Im h, both symmetrized from the two triangles.
func embed(h mat.CMatrix, tol float64) (*mat.SymDense, int, error) {
	if err := ValidateHermitian(h, tol); err != nil {
		return nil, 0, err
	}
	n, _ := h.Dims()
	s := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			hij, hji := h.At(i, j), h.At(j, i)
			a := (real(hij) + real(hji)) / 2
			b := (imag(hij) - imag(hji)) / 2 // B is antisymmetric
			if j >= i {
				s.SetSym(i, j, a)
				s.SetSym(n+i, n+j, a)
			}
			s.SetSym(i, n+j, -b)
		}
	}

	return s, n, nil
}
