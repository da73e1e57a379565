// SPDX-License-Identifier: MIT

package band

import (
	"github.com/katalvlaran/phband/kpath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tracker accumulates the Cartesian distance travelled through a sequence
// of q-points. The first Advance after construction or Reset contributes
// nothing; every later call adds |metric·(q − previous q)|.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	metric   *kpath.Metric
	distance float64
	last     r3.Vec
	started  bool
}

// NewTracker returns a Tracker measuring with metric.
func NewTracker(metric *kpath.Metric) *Tracker {
	return &Tracker{metric: metric}
}

// Reset forgets the running distance and the previous q-point.
func (t *Tracker) Reset() {
	t.distance = 0
	t.last = r3.Vec{}
	t.started = false
}

// Advance moves to q and returns the cumulative distance.
func (t *Tracker) Advance(q r3.Vec) float64 {
	if !t.started {
		t.started = true
		t.last = q

		return t.distance
	}
	t.distance += t.metric.Length(r3.Sub(q, t.last))
	t.last = q

	return t.distance
}

// Distance returns the cumulative distance so far.
func (t *Tracker) Distance() float64 { return t.distance }
