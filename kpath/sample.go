// SPDX-License-Identifier: MIT

package kpath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// SegmentCounts returns the number of q-points each segment receives under
// policy, in request order (path by path, segment by segment).
//
// Fixed(n) gives n everywhere. n below MinSegmentPoints is raised to it. Adaptive(n, metric) measures every segment as
// ℓ = |metric·(b−a)|, takes L = max ℓ over the whole request and assigns
// round(ℓ/L·n) points (half to even), clamped to MinSegmentPoints.
//
// Errors: ErrNoPaths, ErrTooFewEndpoints, ErrNonFinite, ErrUnknownMode,
// ErrNilMetric, ErrZeroLength.
func SegmentCounts(endpoints [][]r3.Vec, policy Policy) ([]int, error) {
	nseg, err := validateEndpoints(endpoints)
	if err != nil {
		return nil, err
	}
	npoints := max(policy.npoints, MinSegmentPoints)

	counts := make([]int, nseg)
	switch policy.mode {
	case ModeFixed:
		for i := range counts {
			counts[i] = npoints
		}

		return counts, nil
	case ModeAdaptive:
		// handled below
	default:
		return nil, fmt.Errorf("SegmentCounts: unknown mode %v: %w", policy.mode, ErrUnknownMode)
	}

	if policy.metric == nil {
		return nil, ErrNilMetric
	}
	lengths := make([]float64, 0, nseg)
	for _, ends := range endpoints {
		for i := 0; i+1 < len(ends); i++ {
			lengths = append(lengths, policy.metric.Length(r3.Sub(ends[i+1], ends[i])))
		}
	}
	maxLen := floats.Max(lengths)
	if !(maxLen > 0) || math.IsInf(maxLen, 0) {
		return nil, ErrZeroLength
	}
	n := float64(npoints)
	for i, l := range lengths {
		c := int(math.RoundToEven(l / maxLen * n))
		if c < MinSegmentPoints {
			c = MinSegmentPoints
		}
		counts[i] = c
	}

	return counts, nil
}

// Sample interpolates every piecewise path of endpoints under policy and
// returns one Path per input path. Segments of a path are concatenated; the
// end of segment i and the start of segment i+1 are the same endpoint and
// appear once.
//
// Example:
//
//	ps, err := kpath.Sample([][]r3.Vec{{gamma, x, m}}, kpath.Fixed(3))
//	// ps[0] = Γ, (Γ+X)/2, X, (X+M)/2, M
func Sample(endpoints [][]r3.Vec, policy Policy) (PathSet, error) {
	counts, err := SegmentCounts(endpoints, policy)
	if err != nil {
		return nil, err
	}

	out := make(PathSet, 0, len(endpoints))
	var c int // running segment index into counts
	for _, ends := range endpoints {
		var total int
		for i := 0; i+1 < len(ends); i++ {
			total += counts[c+i]
		}
		path := make(Path, 0, total-(len(ends)-2))
		for i := 0; i+1 < len(ends); i++ {
			seg := interpolate(ends[i], ends[i+1], counts[c])
			if i > 0 {
				seg = seg[1:] // shared endpoint already present
			}
			path = append(path, seg...)
			c++
		}
		out = append(out, path)
	}

	return out, nil
}

// SampleSegments interpolates every segment into its own Path and derives
// the matching path connections: true between segments of one piecewise
// path, false after its last segment.
func SampleSegments(endpoints [][]r3.Vec, policy Policy) (PathSet, []bool, error) {
	counts, err := SegmentCounts(endpoints, policy)
	if err != nil {
		return nil, nil, err
	}

	out := make(PathSet, 0, len(counts))
	connections := make([]bool, 0, len(counts))
	var c int
	for _, ends := range endpoints {
		for i := 0; i+1 < len(ends); i++ {
			out = append(out, interpolate(ends[i], ends[i+1], counts[c]))
			connections = append(connections, i+2 < len(ends))
			c++
		}
	}

	return out, connections, nil
}

// interpolate returns n points from a to b inclusive. The first and last
// points are a and b bit for bit.
func interpolate(a, b r3.Vec, n int) Path {
	delta := r3.Scale(1/float64(n-1), r3.Sub(b, a))
	out := make(Path, n)
	for j := 0; j < n; j++ {
		out[j] = r3.Add(r3.Scale(float64(j), delta), a)
	}
	out[0] = a
	out[n-1] = b

	return out
}

// validateEndpoints checks the request shape and returns the segment count.
func validateEndpoints(endpoints [][]r3.Vec) (int, error) {
	if len(endpoints) == 0 {
		return 0, ErrNoPaths
	}
	var nseg int
	for i, ends := range endpoints {
		if len(ends) < 2 {
			return 0, fmt.Errorf("path %d has %d endpoints: %w", i, len(ends), ErrTooFewEndpoints)
		}
		for j, v := range ends {
			if !finiteVec(v) {
				return 0, fmt.Errorf("path %d endpoint %d: %w", i, j, ErrNonFinite)
			}
		}
		nseg += len(ends) - 1
	}

	return nseg, nil
}

func finiteVec(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}
