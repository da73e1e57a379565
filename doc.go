// SPDX-License-Identifier: MIT

// Package phband computes phonon band structures along paths through
// reciprocal space.
//
// Given a dynamical-matrix evaluator and a set of q-point paths, phband samples
// the paths, diagonalizes the dynamical matrix at every q-point, converts the
// eigenvalues to frequencies, and optionally follows bands through avoided
// crossings by comparing eigenvectors of neighbouring points.
//
// The work is split into small packages:
//
//	kpath/   - q-point sampling (fixed or adaptive density), reciprocal metric,
//	           path connections and label bookkeeping
//	eigen/   - dense Hermitian eigen-solvers (gonum EigenSym and Jacobi backends)
//	connect/ - greedy eigenvector-overlap band connection
//	band/    - the band-path solver, distance tracking, frequency transform
//
// Quick start:
//
//	paths, _ := kpath.Sample(endpoints, kpath.Adaptive(51, metric))
//	bs, err := band.Solve(paths, dm, metric,
//	    band.WithBandConnection(),
//	    band.WithFactor(band.VaspToTHz),
//	)
//
// This package itself only declares the error kinds shared by the
// subpackages: ErrInvalidInput and ErrNumericalFailure. Errors raised by the
// caller's dynamical matrix or group-velocity calculator are never
// reclassified; they stay reachable through errors.Is / errors.As.
package phband
