// SPDX-License-Identifier: MIT

// Package connect follows phonon bands across neighbouring q-points by
// comparing eigenvectors.
//
// Eigen-solvers return bands sorted by eigenvalue, so two branches that
// approach each other (an avoided crossing) swap indices between q-points.
// Band connection reorders the bands of each q-point so that an output band
// index keeps tracing the same mode.
//
// Greedy algorithm:
//  1. M[a][b] = |⟨prev_a, cur_b⟩| for previous eigenvector a and current b.
//  2. Rows a = 0..n−1 in order each take the unused column b with the largest
//     M[a][b]; on ties the highest column index wins.
//  3. The result is composed with the order carried from the previous step:
//     newOrder[i] = connection[prevOrder[i]].
//
// The matching is one-pass greedy, not a globally optimal assignment; it can
// mismatch under triple near-degeneracies. That behaviour, including the tie
// rule, is part of the contract: output band orders must stay reproducible.
// Other matchings can be supplied to the band solver as a Strategy without
// replacing Greedy.
//
// Errors:
//   - ErrDimensionMismatch, ErrBadOrder (wrap phband.ErrInvalidInput)
//   - ErrNonFinite                     (wraps phband.ErrNumericalFailure)
//
// Complexity: O(n³) for the overlap matrix, O(n²) for the matching.
package connect
