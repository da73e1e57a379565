// SPDX-License-Identifier: MIT

// Package eigen diagonalizes dense Hermitian matrices such as phonon
// dynamical matrices.
//
// What & Why:
//
//	A dynamical matrix D(q) is an n×n Hermitian matrix (n = 3·atoms). Its real
//	eigenvalues are squared frequencies and its complex eigenvectors are the
//	mode polarizations. gonum has no complex Hermitian eigen-solver, so every
//	backend here diagonalizes the real symmetric embedding
//
//	  S = | Re D   −Im D |
//	      | Im D    Re D |
//
//	of size 2n. Each eigenvalue λ of D appears twice in S, and every real
//	eigenvector (x; y) of S maps to a complex eigenvector x + i·y of D.
//	Pairs are merged back into n values, and for each degenerate cluster an
//	orthonormal complex basis is picked by max-residual Gram–Schmidt.
//
// Backends:
//   - Hermitian - LAPACK-style symmetric solver from gonum (mat.EigenSym); default.
//   - Jacobi    - deterministic classical Jacobi rotations, useful as a
//     dependency-light cross-check and for tiny matrices.
//
// Output:
//
//	Values ascending; Vectors (optional) as a *mat.CDense whose column j is the
//	unit eigenvector of Values[j]. Each column is phase-fixed so its first
//	largest-magnitude component is real and positive.
//
// Errors:
//   - ErrEmpty, ErrNonSquare, ErrNotHermitian     (wrap phband.ErrInvalidInput)
//   - ErrNaNInf, ErrNoConvergence, ErrOddCluster,
//     ErrRankDeficient                            (wrap phband.ErrNumericalFailure)
//
// Complexity: O(n³) time, O(n²) memory (the embedding is 4× the input).
package eigen
