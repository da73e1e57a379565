// SPDX-License-Identifier: MIT

package band_test

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/katalvlaran/phband"
	"github.com/katalvlaran/phband/band"
	"github.com/katalvlaran/phband/eigen"
	"github.com/katalvlaran/phband/internal/chain"
	"github.com/katalvlaran/phband/kpath"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var errBoom = errors.New("dynamical matrix exploded")

// fakeDM evaluates eval and records every call. Safe for concurrent use.
type fakeDM struct {
	eval func(q r3.Vec) (mat.CMatrix, error)
	nac  bool

	mu    sync.Mutex
	calls []call
}

type call struct {
	q   r3.Vec
	dir *r3.Vec
}

func (f *fakeDM) Evaluate(q r3.Vec, dir *r3.Vec) (mat.CMatrix, error) {
	f.mu.Lock()
	var cp *r3.Vec
	if dir != nil {
		d := *dir
		cp = &d
	}
	f.calls = append(f.calls, call{q: q, dir: cp})
	f.mu.Unlock()

	return f.eval(q)
}

func (f *fakeDM) HasNonAnalyticCorrection() bool { return f.nac }

func diag(vals ...float64) *mat.CDense {
	m := mat.NewCDense(len(vals), len(vals), nil)
	for i, v := range vals {
		m.Set(i, i, complex(v, 0))
	}

	return m
}

// crossingDM has two uncoupled modes along x: mode 0 rises 1→2→4 and mode 1
// falls 4→3→1 over q_x = 0, 0.5, 1.
func crossingDM() *fakeDM {
	return &fakeDM{eval: func(q r3.Vec) (mat.CMatrix, error) {
		switch {
		case q.X < 0.25:
			return diag(1, 4), nil
		case q.X < 0.75:
			return diag(2, 3), nil
		default:
			return diag(4, 1), nil
		}
	}}
}

func line(from, to r3.Vec, n int) kpath.Path {
	p := make(kpath.Path, n)
	for j := range p {
		p[j] = r3.Add(from, r3.Scale(float64(j)/float64(n-1), r3.Sub(to, from)))
	}

	return p
}

// velocityFunc adapts a function to band.GroupVelocityCalculator.
type velocityFunc func(qpoints []r3.Vec) ([][]r3.Vec, error)

func (f velocityFunc) ComputeForPath(qpoints []r3.Vec) ([][]r3.Vec, error) { return f(qpoints) }

func TestSolve_FrequenciesAndSign(t *testing.T) {
	dm := &fakeDM{eval: func(r3.Vec) (mat.CMatrix, error) { return diag(4, -4), nil }}
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 0.5}, 3)}

	s, err := band.Solve(paths, dm, kpath.IdentityMetric())
	require.NoError(t, err)
	require.Len(t, s.Segments, 1)
	assert.Equal(t, band.VaspToTHz, s.Factor)
	for _, f := range s.Segments[0].Frequencies {
		assert.InDeltaSlice(t, []float64{-2 * band.VaspToTHz, 2 * band.VaspToTHz}, f, 1e-9)
	}

	s, err = band.Solve(paths, dm, kpath.IdentityMetric(), band.WithFactor(1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-2, 2}, s.Segments[0].Frequencies[0], 1e-12)
	assert.False(t, s.Segments[0].HasEigenvectors())
	assert.Nil(t, s.Segments[0].BandOrders)
}

func TestSolve_DistancesMonotone(t *testing.T) {
	c, err := chain.New(1, 2, 1, 0.5)
	require.NoError(t, err)
	paths, err := kpath.Sample([][]r3.Vec{{{}, {X: 0.5}, {X: 0.5, Y: 0.5}}}, kpath.Fixed(11))
	require.NoError(t, err)

	s, err := band.Solve(paths, c, kpath.IdentityMetric())
	require.NoError(t, err)
	d := s.Segments[0].Distances
	require.Len(t, d, paths.NumQPoints())
	assert.Zero(t, d[0])
	for j := 1; j < len(d); j++ {
		assert.GreaterOrEqual(t, d[j], d[j-1])
	}
	assert.InDelta(t, 1.0, s.TotalDistance(), 1e-12)
	assert.Equal(t, chain.Size, s.NumBands())
}

func TestSolve_DisconnectedPathsKeepJump(t *testing.T) {
	dm := &fakeDM{eval: func(r3.Vec) (mat.CMatrix, error) { return diag(1), nil }}
	paths := kpath.PathSet{
		line(r3.Vec{}, r3.Vec{X: 0.5}, 3),
		line(r3.Vec{Y: 0.5}, r3.Vec{Y: 0.5, Z: 0.5}, 3),
	}

	s, err := band.Solve(paths, dm, kpath.IdentityMetric(),
		band.WithPathConnections([]bool{false, false}),
		band.WithLabels([]string{"Γ", "X", "Y", "Z"}))
	require.NoError(t, err)

	jump := math.Sqrt(0.5)
	require.Len(t, s.SpecialPoints, 3)
	assert.InDeltaSlice(t, []float64{0, 0.5, 0.5 + jump + 0.5}, s.SpecialPoints, 1e-12)
	assert.InDelta(t, 0.5+jump, s.Segments[1].Distances[0], 1e-12)
	assert.Equal(t, []bool{false, false}, s.PathConnections)
	assert.Equal(t, []string{"Γ", "X", "Y", "Z"}, s.Labels)
	assert.Len(t, s.AxisSegments(), 2)
}

func TestSolve_FailureAborts(t *testing.T) {
	n := 0
	dm := &fakeDM{eval: func(r3.Vec) (mat.CMatrix, error) {
		n++
		if n == 3 {
			return nil, errBoom
		}

		return diag(1, 2), nil
	}}
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 5), line(r3.Vec{}, r3.Vec{Y: 1}, 5)}

	s, err := band.Solve(paths, dm, kpath.IdentityMetric())
	assert.Nil(t, s)
	require.ErrorIs(t, err, errBoom)
	assert.False(t, errors.Is(err, phband.ErrInvalidInput), "collaborator errors are not reclassified")
	assert.False(t, errors.Is(err, phband.ErrNumericalFailure))
	assert.Contains(t, err.Error(), "path 0 q-point 2")
	assert.Len(t, dm.calls, 3, "no evaluation after the failure")
}

func TestSolve_BandConnectionFollowsCrossing(t *testing.T) {
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}

	s, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(),
		band.WithFactor(1), band.WithBandConnection(), band.WithEigenvectors())
	require.NoError(t, err)
	seg := s.Segments[0]
	assert.InDeltaSlice(t, []float64{1, math.Sqrt2, 2}, seg.Band(0), 1e-9)
	assert.InDeltaSlice(t, []float64{2, math.Sqrt(3), 1}, seg.Band(1), 1e-9)
	assert.Equal(t, [][]int{{0, 1}, {0, 1}, {1, 0}}, seg.BandOrders)

	// Band 0 keeps the polarization of mode 0 throughout.
	require.True(t, seg.HasEigenvectors())
	for j, v := range seg.Eigenvectors {
		assert.InDelta(t, 1.0, absAt(v, 0, 0), 1e-9, "q-point %d", j)
		assert.InDelta(t, 0.0, absAt(v, 1, 0), 1e-9, "q-point %d", j)
	}

	// Natural order swaps the bands at the crossing.
	s, err = band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithFactor(1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, math.Sqrt2, 1}, s.Segments[0].Band(0), 1e-9)
}

// TestSolve_BandConnectionSwappedVectors keeps the spectrum {1, 4} at every
// q-point while the eigenvectors trade places. Following the modes makes
// each band alternate between the two energies.
func TestSolve_BandConnectionSwappedVectors(t *testing.T) {
	dm := &fakeDM{eval: func(q r3.Vec) (mat.CMatrix, error) {
		if q.X > 0.25 && q.X < 0.75 {
			return diag(4, 1), nil
		}

		return diag(1, 4), nil
	}}
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}

	s, err := band.Solve(paths, dm, kpath.IdentityMetric(),
		band.WithFactor(1), band.WithBandConnection(), band.WithEigenvectors())
	require.NoError(t, err)
	seg := s.Segments[0]
	assert.Equal(t, [][]int{{0, 1}, {1, 0}, {0, 1}}, seg.BandOrders)
	assert.InDeltaSlice(t, []float64{1, 2, 1}, seg.Band(0), 1e-9)
	assert.InDeltaSlice(t, []float64{2, 1, 2}, seg.Band(1), 1e-9)
	for j, v := range seg.Eigenvectors {
		assert.InDelta(t, 1.0, absAt(v, 0, 0), 1e-9, "band 0 stays on mode 0 at q-point %d", j)
		assert.InDelta(t, 1.0, absAt(v, 1, 1), 1e-9, "band 1 stays on mode 1 at q-point %d", j)
	}

	// Natural order reports the flat spectrum instead.
	s, err = band.Solve(paths, dm, kpath.IdentityMetric(), band.WithFactor(1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, 1}, s.Segments[0].Band(0), 1e-9)
}

func TestSolve_BandConnectionWithoutStoredVectors(t *testing.T) {
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}
	s, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithBandConnection())
	require.NoError(t, err)
	assert.False(t, s.Segments[0].HasEigenvectors())
	assert.Len(t, s.Segments[0].BandOrders, 3)
}

func TestSolve_ConnectionRestartsPerPath(t *testing.T) {
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3), line(r3.Vec{X: 1}, r3.Vec{}, 3)}
	s, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithBandConnection())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, s.Segments[1].BandOrders[0])
}

func TestSolve_NonAnalyticDirection(t *testing.T) {
	dm := &fakeDM{nac: true, eval: func(r3.Vec) (mat.CMatrix, error) { return diag(1), nil }}
	paths := kpath.PathSet{
		line(r3.Vec{}, r3.Vec{X: 0.5}, 3),
		line(r3.Vec{Y: 0.5}, r3.Vec{Z: 0.00005}, 2),
	}
	_, err := band.Solve(paths, dm, kpath.IdentityMetric())
	require.NoError(t, err)
	require.Len(t, dm.calls, 5)

	require.NotNil(t, dm.calls[0].dir)
	assert.Equal(t, r3.Vec{X: -0.5}, *dm.calls[0].dir)
	assert.Nil(t, dm.calls[1].dir)
	assert.Nil(t, dm.calls[2].dir)
	assert.Nil(t, dm.calls[3].dir)
	require.NotNil(t, dm.calls[4].dir, "within tolerance of Γ")
	assert.Equal(t, r3.Vec{Y: 0.5, Z: -0.00005}, *dm.calls[4].dir)

	// Tighter tolerance: the end point is no longer Γ.
	dm.calls = nil
	_, err = band.Solve(paths, dm, kpath.IdentityMetric(), band.WithGammaTolerance(1e-5))
	require.NoError(t, err)
	assert.Nil(t, dm.calls[4].dir)

	// No correction, no direction.
	dm.calls, dm.nac = nil, false
	_, err = band.Solve(paths, dm, kpath.IdentityMetric())
	require.NoError(t, err)
	assert.Nil(t, dm.calls[0].dir)
}

func TestSolve_NonAnalyticChain(t *testing.T) {
	c, err := chain.New(1, 2, 1, 0.5)
	require.NoError(t, err)
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 0.5}, 5)}

	s, err := band.Solve(paths, c.WithSplit(0.6), kpath.IdentityMetric(), band.WithFactor(1))
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(3.9), s.Segments[0].Frequencies[0][5], 1e-9, "LO lifted at Γ")
}

func TestSolve_GroupVelocityBatchedAndPermuted(t *testing.T) {
	var got [][]r3.Vec
	calc := velocityFunc(func(qpoints []r3.Vec) ([][]r3.Vec, error) {
		got = append(got, qpoints)
		out := make([][]r3.Vec, len(qpoints))
		for j := range out {
			out[j] = []r3.Vec{{X: 0, Y: float64(j)}, {X: 1, Y: float64(j)}}
		}

		return out, nil
	})
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3), line(r3.Vec{}, r3.Vec{X: 1}, 3)}

	s, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(),
		band.WithBandConnection(), band.WithGroupVelocity(calc))
	require.NoError(t, err)
	require.Len(t, got, 2, "one call per path")
	assert.Equal(t, []r3.Vec(paths[0]), got[0])

	gv := s.Segments[0].GroupVelocities
	require.True(t, s.Segments[0].HasGroupVelocities())
	assert.Equal(t, []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}}, gv[0])
	assert.Equal(t, []r3.Vec{{X: 1, Y: 2}, {X: 0, Y: 2}}, gv[2], "follows the band order")

	// Without connection the natural order is kept.
	s, err = band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithGroupVelocity(calc))
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{X: 0, Y: 2}, {X: 1, Y: 2}}, s.Segments[0].GroupVelocities[2])
}

func TestSolve_GroupVelocityErrors(t *testing.T) {
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}
	short := velocityFunc(func(qpoints []r3.Vec) ([][]r3.Vec, error) {
		return make([][]r3.Vec, len(qpoints)-1), nil
	})
	_, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithGroupVelocity(short))
	assert.ErrorIs(t, err, band.ErrGroupVelocityShape)

	narrow := velocityFunc(func(qpoints []r3.Vec) ([][]r3.Vec, error) {
		out := make([][]r3.Vec, len(qpoints))
		for j := range out {
			out[j] = []r3.Vec{{}}
		}

		return out, nil
	})
	_, err = band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithGroupVelocity(narrow))
	assert.ErrorIs(t, err, band.ErrGroupVelocityShape)

	failing := velocityFunc(func([]r3.Vec) ([][]r3.Vec, error) { return nil, errBoom })
	s, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithGroupVelocity(failing))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errBoom)
}

func TestSolve_WorkersMatchSequential(t *testing.T) {
	c, err := chain.New(1, 3, 1.2, 0.4)
	require.NoError(t, err)
	endpoints := [][]r3.Vec{
		{{}, {X: 0.5}},
		{{X: 0.5}, {X: 0.5, Y: 0.5}},
		{{X: 0.5, Y: 0.5}, {}},
		{{}, {X: 0.3, Y: 0.2, Z: 0.1}},
	}
	paths, conns, err := kpath.SampleSegments(endpoints, kpath.Fixed(9))
	require.NoError(t, err)

	opts := []band.Option{band.WithBandConnection(), band.WithEigenvectors(), band.WithPathConnections(conns)}
	seq, err := band.Solve(paths, c.WithSplit(0.2), kpath.IdentityMetric(), opts...)
	require.NoError(t, err)
	par, err := band.Solve(paths, c.WithSplit(0.2), kpath.IdentityMetric(), append(opts, band.WithWorkers(3))...)
	require.NoError(t, err)

	require.Len(t, par.Segments, len(seq.Segments))
	assert.Equal(t, seq.SpecialPoints, par.SpecialPoints)
	for i := range seq.Segments {
		assert.Equal(t, seq.Segments[i].Frequencies, par.Segments[i].Frequencies, "path %d", i)
		assert.Equal(t, seq.Segments[i].Distances, par.Segments[i].Distances, "path %d", i)
		assert.Equal(t, seq.Segments[i].BandOrders, par.Segments[i].BandOrders, "path %d", i)
	}
}

func TestSolve_WorkersFailure(t *testing.T) {
	dm := &fakeDM{eval: func(q r3.Vec) (mat.CMatrix, error) {
		if q.Y > 0.9 {
			return nil, errBoom
		}

		return diag(1, 2), nil
	}}
	paths := kpath.PathSet{
		line(r3.Vec{}, r3.Vec{X: 1}, 4),
		line(r3.Vec{}, r3.Vec{Y: 1}, 4),
		line(r3.Vec{}, r3.Vec{Z: 1}, 4),
	}
	s, err := band.Solve(paths, dm, kpath.IdentityMetric(), band.WithWorkers(2))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errBoom)
}

func TestSolve_CustomSolverAndConnector(t *testing.T) {
	var used int
	keep := func(prev, cur mat.CMatrix, prevOrder []int) ([]int, error) {
		used++

		return append([]int(nil), prevOrder...), nil
	}
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}
	s, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithFactor(1),
		band.WithBandConnection(), band.WithConnector(keep), band.WithSolver(eigen.NewJacobi()))
	require.NoError(t, err)
	assert.Equal(t, 2, used)
	assert.InDeltaSlice(t, []float64{1, math.Sqrt2, 1}, s.Segments[0].Band(0), 1e-9)
}

func TestSolve_InvalidInput(t *testing.T) {
	ok := crossingDM()
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}
	id := kpath.IdentityMetric()

	tests := []struct {
		name  string
		paths kpath.PathSet
		dm    band.DynamicalMatrix
		m     *kpath.Metric
		opts  []band.Option
		want  error
	}{
		{"no paths", nil, ok, id, nil, kpath.ErrNoPaths},
		{"short path", kpath.PathSet{{{}}}, ok, id, nil, kpath.ErrShortPath},
		{"nil dm", paths, nil, id, nil, band.ErrNilDynamicalMatrix},
		{"nil metric", paths, ok, nil, nil, band.ErrNilMetric},
		{"connections", paths, ok, id, []band.Option{band.WithPathConnections([]bool{true, false})}, kpath.ErrConnectionCount},
		{"labels", paths, ok, id, []band.Option{band.WithLabels([]string{"Γ"})}, kpath.ErrLabelCount},
		{"non-square", paths, &fakeDM{eval: func(r3.Vec) (mat.CMatrix, error) {
			return mat.NewCDense(2, 3, nil), nil
		}}, id, nil, band.ErrNonSquare},
		{"nil operator", paths, &fakeDM{eval: func(r3.Vec) (mat.CMatrix, error) { return nil, nil }}, id, nil, band.ErrNonSquare},
		{"band count", paths, &fakeDM{eval: func(q r3.Vec) (mat.CMatrix, error) {
			if q.X > 0.25 {
				return diag(1, 2, 3), nil
			}

			return diag(1, 2), nil
		}}, id, nil, band.ErrBandCountChanged},
		{"not hermitian", paths, &fakeDM{eval: func(r3.Vec) (mat.CMatrix, error) {
			m := diag(1, 2)
			m.Set(0, 1, 1)

			return m, nil
		}}, id, nil, eigen.ErrNotHermitian},
		{"connector order", paths, ok, id, []band.Option{band.WithBandConnection(),
			band.WithConnector(func(mat.CMatrix, mat.CMatrix, []int) ([]int, error) { return []int{0, 0}, nil })},
			band.ErrConnectorOrder},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := band.Solve(tc.paths, tc.dm, tc.m, tc.opts...)
			assert.Nil(t, s)
			require.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, phband.ErrInvalidInput)
		})
	}
}

func TestSolve_NumericalFailure(t *testing.T) {
	dm := &fakeDM{eval: func(r3.Vec) (mat.CMatrix, error) { return diag(1, math.NaN()), nil }}
	_, err := band.Solve(kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 2)}, dm, kpath.IdentityMetric())
	assert.ErrorIs(t, err, eigen.ErrNaNInf)
	assert.ErrorIs(t, err, phband.ErrNumericalFailure)
}

func TestSolve_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}

	_, err := band.Solve(paths, crossingDM(), kpath.IdentityMetric(), band.WithLogger(log))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "band solve started")
	assert.Contains(t, buf.String(), `"path":0`)
	assert.Contains(t, buf.String(), "band solve finished")

	buf.Reset()
	_, err = band.Solve(paths, nil, kpath.IdentityMetric(), band.WithLogger(log))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "band solve aborted")
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { band.WithFactor(0) })
	assert.Panics(t, func() { band.WithFactor(math.Inf(1)) })
	assert.Panics(t, func() { band.WithWorkers(0) })
	assert.Panics(t, func() { band.WithSolver(nil) })
	assert.Panics(t, func() { band.WithConnector(nil) })
	assert.Panics(t, func() { band.WithGammaTolerance(0) })
	assert.Panics(t, func() { band.WithGammaTolerance(math.NaN()) })
	assert.NotPanics(t, func() { band.WithFactor(-1) })
	assert.NotPanics(t, func() { band.WithGroupVelocity(nil) })
}

func TestSolve_NilOptionSkipped(t *testing.T) {
	paths := kpath.PathSet{line(r3.Vec{}, r3.Vec{X: 1}, 3)}
	var s *band.Structure
	var err error
	require.NotPanics(t, func() {
		s, err = band.Solve(paths, crossingDM(), kpath.IdentityMetric(), nil, band.WithFactor(1), nil)
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Factor)
}

func TestDefaultOptions(t *testing.T) {
	o := band.DefaultOptions()
	assert.Equal(t, band.VaspToTHz, o.Factor)
	assert.Equal(t, 1, o.Workers)
	assert.Equal(t, band.DefaultGammaTol, o.GammaTol)
	assert.NotNil(t, o.Solver)
	assert.NotNil(t, o.Connector)
	assert.False(t, o.Eigenvectors)
	assert.False(t, o.BandConnection)
}

func absAt(v mat.CMatrix, i, j int) float64 {
	z := v.At(i, j)

	return math.Hypot(real(z), imag(z))
}
