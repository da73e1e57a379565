// SPDX-License-Identifier: MIT

// Package kpath generates q-point paths through reciprocal space for band
// structure calculations.
//
// 🚀 What does it do?
//
//	A band path is described by its endpoints in fractional reciprocal
//	coordinates, e.g. Γ → X → M and a separate R → Γ:
//
//	  [[0,0,0], [0.5,0,0], [0.5,0.5,0]]
//	  [[0.5,0.5,0.5], [0,0,0]]
//
//	Every consecutive pair of endpoints is a segment. kpath interpolates each
//	segment linearly, including both endpoints, and concatenates the segments
//	of one piecewise path (shared endpoints appear once).
//
// ✨ Sampling policies:
//   - Fixed(n)            - every segment gets exactly n points
//   - Adaptive(n, metric) - the Cartesian-longest segment gets n points, the
//     others round(ℓ/L·n) points, never fewer than 2
//
// The Metric maps fractional deltas to Cartesian ones. Build it from the
// reciprocal basis (NewMetric) or from the real-space lattice
// (MetricFromLattice, which inverts the lattice).
//
// Path connections tell a renderer whether path i ends where path i+1 starts.
// SampleSegments derives them from the piecewise input; DefaultConnections
// gives the usual "all connected except the last" layout. LabelCount and
// ValidateLabels enforce that one label exists per path end, shared across
// connected boundaries.
//
// Errors (sentinel, all wrap phband.ErrInvalidInput):
//
//	ErrNoPaths, ErrTooFewEndpoints, ErrUnknownMode, ErrNilMetric,
//	ErrZeroLength, ErrNonFinite, ErrSingularLattice, ErrShortPath,
//	ErrConnectionCount, ErrLabelCount.
//
// Complexity: O(S + Q) where S = segments and Q = generated q-points.
package kpath
