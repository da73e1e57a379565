// SPDX-License-Identifier: MIT

package kpath

import (
	"fmt"

	"github.com/katalvlaran/phband"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultNPoints is the customary number of q-points per segment,
// endpoints included.
const DefaultNPoints = 51

// MinSegmentPoints is the lower clamp for every segment point count.
const MinSegmentPoints = 2

// Sentinel errors returned by kpath. All of them wrap phband.ErrInvalidInput.
var (
	// ErrNoPaths indicates an empty request.
	ErrNoPaths = fmt.Errorf("kpath: no paths given: %w", phband.ErrInvalidInput)

	// ErrTooFewEndpoints indicates a piecewise path with fewer than two endpoints.
	ErrTooFewEndpoints = fmt.Errorf("kpath: path needs at least 2 endpoints: %w", phband.ErrInvalidInput)

	// ErrUnknownMode indicates a policy whose mode is neither fixed nor adaptive.
	ErrUnknownMode = fmt.Errorf("kpath: unknown sampling mode: %w", phband.ErrInvalidInput)

	// ErrNilMetric indicates an adaptive policy without a metric.
	ErrNilMetric = fmt.Errorf("kpath: adaptive sampling needs a metric: %w", phband.ErrInvalidInput)

	// ErrZeroLength indicates that every segment of an adaptive request has
	// zero Cartesian length, so no reference length exists.
	ErrZeroLength = fmt.Errorf("kpath: all segments have zero length: %w", phband.ErrInvalidInput)

	// ErrNonFinite indicates a NaN or ±Inf coordinate or metric entry.
	ErrNonFinite = fmt.Errorf("kpath: NaN or Inf coordinate: %w", phband.ErrInvalidInput)

	// ErrSingularLattice indicates a lattice that cannot be inverted.
	ErrSingularLattice = fmt.Errorf("kpath: singular lattice: %w", phband.ErrInvalidInput)

	// ErrShortPath indicates a sampled path with fewer than two q-points.
	ErrShortPath = fmt.Errorf("kpath: path needs at least 2 q-points: %w", phband.ErrInvalidInput)

	// ErrConnectionCount indicates a connection slice whose length differs
	// from the number of paths.
	ErrConnectionCount = fmt.Errorf("kpath: one connection flag per path required: %w", phband.ErrInvalidInput)

	// ErrLabelCount indicates a label slice that does not match LabelCount.
	ErrLabelCount = fmt.Errorf("kpath: label count does not match path connections: %w", phband.ErrInvalidInput)
)

// Path is an ordered sequence of q-points in fractional reciprocal
// coordinates. Sampled paths hold at least two points.
type Path []r3.Vec

// PathSet is an ordered sequence of paths. Order defines both the plotting
// order and how distance is carried from one path to the next.
type PathSet []Path

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)

	return out
}

// First returns the first q-point. p must not be empty.
func (p Path) First() r3.Vec { return p[0] }

// Last returns the last q-point. p must not be empty.
func (p Path) Last() r3.Vec { return p[len(p)-1] }

// NumQPoints returns the total number of q-points over all paths.
func (ps PathSet) NumQPoints() int {
	var n int
	for _, p := range ps {
		n += len(p)
	}

	return n
}

// Validate checks that ps is non-empty, every path has at least two
// q-points and every coordinate is finite.
func (ps PathSet) Validate() error {
	if len(ps) == 0 {
		return ErrNoPaths
	}
	for i, p := range ps {
		if len(p) < 2 {
			return fmt.Errorf("path %d has %d q-points: %w", i, len(p), ErrShortPath)
		}
		for j, q := range p {
			if !finiteVec(q) {
				return fmt.Errorf("path %d q-point %d: %w", i, j, ErrNonFinite)
			}
		}
	}

	return nil
}

// Mode selects how many points a segment receives.
type Mode int

const (
	// ModeFixed gives every segment the same number of points.
	ModeFixed Mode = iota

	// ModeAdaptive scales the number of points with the Cartesian segment length.
	ModeAdaptive
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeAdaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Policy is a sampling policy. Build it with Fixed or Adaptive. Point counts
// below MinSegmentPoints, the zero value included, are raised to it.
type Policy struct {
	mode    Mode
	npoints int
	metric  *Metric
}

// Fixed returns a policy that interpolates every segment into exactly
// max(npoints, MinSegmentPoints) points, endpoints included.
func Fixed(npoints int) Policy {
	return Policy{mode: ModeFixed, npoints: npoints}
}

// Adaptive returns a policy where the longest segment of the whole request
// (measured through metric) gets npoints points and every other segment
// round(ℓ/L·npoints), clamped to MinSegmentPoints.
func Adaptive(npoints int, metric *Metric) Policy {
	return Policy{mode: ModeAdaptive, npoints: npoints, metric: metric}
}

// Mode reports the policy mode.
func (p Policy) Mode() Mode { return p.mode }

// NPoints reports the requested point count of the reference segment.
func (p Policy) NPoints() int { return p.npoints }

// Metric returns the metric of an adaptive policy, nil for fixed ones.
func (p Policy) Metric() *Metric { return p.metric }
