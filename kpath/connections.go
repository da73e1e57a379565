// SPDX-License-Identifier: MIT

package kpath

import "fmt"

// DefaultConnections returns n flags, all true except the last.
// n <= 0 yields an empty slice.
func DefaultConnections(n int) []bool {
	if n <= 0 {
		return []bool{}
	}
	out := make([]bool, n)
	for i := 0; i < n-1; i++ {
		out[i] = true
	}

	return out
}

// ValidateConnections checks that connections has one flag per path.
func ValidateConnections(connections []bool, npaths int) error {
	if len(connections) != npaths {
		return fmt.Errorf("got %d flags for %d paths: %w", len(connections), npaths, ErrConnectionCount)
	}

	return nil
}

// LabelCount returns the number of end-point labels a path layout needs:
// a connected boundary shares one label, a disconnected one needs two.
// It equals Σ (2 − c) over connections (true counts as 1).
func LabelCount(connections []bool) int {
	var n int
	for _, c := range connections {
		if c {
			n++
		} else {
			n += 2
		}
	}

	return n
}

// ValidateLabels checks len(labels) == LabelCount(connections).
// A nil labels slice is accepted (no labels).
func ValidateLabels(labels []string, connections []bool) error {
	if labels == nil {
		return nil
	}
	if want := LabelCount(connections); len(labels) != want {
		return fmt.Errorf("got %d labels, want %d: %w", len(labels), want, ErrLabelCount)
	}

	return nil
}

// SegmentLabels pairs the labels of every path as (start, end), following
// the connections: after a connected path the next start reuses the end
// label. labels must satisfy ValidateLabels.
func SegmentLabels(labels []string, connections []bool) ([][2]string, error) {
	if labels == nil {
		return nil, nil
	}
	if err := ValidateLabels(labels, connections); err != nil {
		return nil, err
	}
	out := make([][2]string, len(connections))
	var i int
	for k, c := range connections {
		if i+1 >= len(labels) {
			// a trailing connected path has no end label of its own
			return nil, fmt.Errorf("path %d: %w", k, ErrLabelCount)
		}
		out[k] = [2]string{labels[i], labels[i+1]}
		if c {
			i++
		} else {
			i += 2
		}
	}

	return out, nil
}
