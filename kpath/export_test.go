// SPDX-License-Identifier: MIT

package kpath

// NewPolicy builds a Policy with an arbitrary mode for tests.
func NewPolicy(mode Mode, npoints int, metric *Metric) Policy {
	return Policy{mode: mode, npoints: npoints, metric: metric}
}
