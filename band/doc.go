// SPDX-License-Identifier: MIT

// Package band solves phonon band structures along q-point paths.
//
// 🚀 What does Solve do?
//
//	For every path of a kpath.PathSet, in order, and every q-point of a path,
//	in order, it
//	  1. evaluates the caller's DynamicalMatrix (passing a limiting direction
//	     at Γ when the matrix carries a non-analytic correction),
//	  2. diagonalizes it with an eigen.Solver,
//	  3. optionally reorders bands with a connect.Strategy so each band index
//	     follows one mode through avoided crossings,
//	  4. records the cumulative Cartesian distance with a Tracker.
//	Afterwards it asks the optional GroupVelocityCalculator once per path,
//	aligns the velocities with the band order and converts eigenvalues to
//	frequencies: f = sign(e)·√|e|·factor.
//
// ✨ Options:
//   - WithEigenvectors()         - keep eigenvectors per q-point
//   - WithBandConnection()       - follow bands (implies eigenvectors)
//   - WithGroupVelocity(calc)    - batch group velocities per path
//   - WithFactor(f)              - eigenvalue→frequency unit factor (default VaspToTHz)
//   - WithPathConnections(c)     - renderer hints, default all true but the last
//   - WithLabels(l)              - end-point labels, validated against connections
//   - WithSolver(s)              - eigen backend (default eigen.NewHermitian())
//   - WithConnector(s)           - band connection strategy (default connect.Greedy)
//   - WithWorkers(n)             - solve paths on n goroutines
//   - WithGammaTolerance(tol)    - |q_i| < tol on every axis means Γ (default 1e-4)
//   - WithLogger(l)              - zerolog logger (default zerolog.Nop())
//
// Distances:
//
//	One running distance covers the whole PathSet. It starts at 0 on the very
//	first q-point and also counts the jump from the end of one path to the
//	start of the next, even across disconnected boundaries. SpecialPoints
//	holds 0 followed by the distance at the end of every path, so a renderer
//	can split the axis using PathConnections (see Structure.AxisSegments).
//
// Failures:
//
//	Any error aborts the whole solve; no partial Structure is returned.
//	Errors from the caller's collaborators are wrapped with the path and
//	q-point index only and keep their identity for errors.Is / errors.As.
//
// Concurrency:
//
//	Solve is synchronous. With WithWorkers(n > 1) the per-path eigen stage
//	runs on an errgroup; DynamicalMatrix.Evaluate must then be safe for
//	concurrent use. Band connection chains never cross paths, and group
//	velocities, distances and special points are still produced in path order.
package band
