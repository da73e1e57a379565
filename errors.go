// SPDX-License-Identifier: MIT

package phband

import "errors"

// Error kinds. Every sentinel exported by a subpackage wraps exactly one of
// these, so callers can branch on the kind without knowing the package:
//
//	if errors.Is(err, phband.ErrNumericalFailure) { ... }
var (
	// ErrInvalidInput marks malformed input: a path with fewer than two
	// endpoints, a non-square operator, mismatched eigenvector dimensions.
	ErrInvalidInput = errors.New("phband: invalid input")

	// ErrNumericalFailure marks a numerical breakdown: an eigen-decomposition
	// that does not converge, non-finite matrix entries or overlaps.
	ErrNumericalFailure = errors.New("phband: numerical failure")
)
