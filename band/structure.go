// SPDX-License-Identifier: MIT

package band

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Structure is the result of Solve.
type Structure struct {
	Segments []Segment

	// SpecialPoints holds 0 followed by the cumulative distance at the end
	// of every path (len(Segments)+1 entries).
	SpecialPoints []float64

	// PathConnections tells a renderer whether path i continues into path
	// i+1 without a visual break.
	PathConnections []bool

	// Labels names the path end points, kpath.LabelCount(PathConnections)
	// entries, or nil.
	Labels []string

	// Factor is the eigenvalue-to-frequency factor used.
	Factor float64
}

// NumBands returns the number of bands, 0 for an empty structure.
func (s *Structure) NumBands() int {
	if len(s.Segments) == 0 {
		return 0
	}

	return s.Segments[0].NumBands()
}

// TotalDistance returns the cumulative distance at the last q-point.
func (s *Structure) TotalDistance() float64 {
	if len(s.SpecialPoints) == 0 {
		return 0
	}

	return s.SpecialPoints[len(s.SpecialPoints)-1]
}

// MaxFrequency returns the largest frequency over all segments, or -Inf
// for an empty structure.
func (s *Structure) MaxFrequency() float64 {
	best := math.Inf(-1)
	for i := range s.Segments {
		for _, f := range s.Segments[i].Frequencies {
			if len(f) > 0 {
				best = math.Max(best, floats.Max(f))
			}
		}
	}

	return best
}

// AxisSegments splits the distance axis into groups drawn side by side.
// A group ends after every path whose connection flag is false, and after
// the last path. Each group lists the start distance of each of its paths
// followed by the end distance of its last path.
func (s *Structure) AxisSegments() [][]float64 {
	var (
		groups [][]float64
		cur    []float64
	)
	for i := range s.Segments {
		seg := &s.Segments[i]
		if len(seg.Distances) == 0 {
			continue
		}
		cur = append(cur, seg.Distances[0])
		last := i == len(s.Segments)-1
		if last || (i < len(s.PathConnections) && !s.PathConnections[i]) {
			cur = append(cur, seg.Distances[len(seg.Distances)-1])
			groups = append(groups, cur)
			cur = nil
		}
	}

	return groups
}
