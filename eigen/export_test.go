// SPDX-License-Identifier: MIT

package eigen

import "gonum.org/v1/gonum/mat"

// Extract exposes the embedding-to-complex eigenvector step to tests.
func Extract(vals []float64, u *mat.Dense, n int, degTol float64) (*Decomposition, error) {
	return extract(vals, u, n, degTol)
}
