// SPDX-License-Identifier: MIT

package band

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/phband/connect"
	"github.com/katalvlaran/phband/kpath"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const opSolve = "band.Solve"

// pathSolution is the eigen stage result of one path, bands in output order.
type pathSolution struct {
	values  [][]float64
	vectors []*mat.CDense // nil unless eigenvectors were requested
	orders  [][]int       // nil unless band connection is enabled
	nbands  int
}

// Solve computes the band structure along paths.
//
// metric converts fractional q-point differences to Cartesian lengths for
// the distance axis. See the package documentation for the per-point
// pipeline and Options for the available settings.
//
// Errors: kpath.ErrNoPaths, kpath.ErrShortPath, kpath.ErrNonFinite,
// kpath.ErrConnectionCount, kpath.ErrLabelCount, ErrNilDynamicalMatrix,
// ErrNilMetric, ErrNonSquare, ErrBandCountChanged, ErrSolverShape,
// ErrConnectorOrder, ErrGroupVelocityShape, any eigen or connect sentinel,
// and the unmodified errors of dm, the solver, the connector and the group
// velocity calculator, all wrapped with position context. On error the
// result is nil.
func Solve(paths kpath.PathSet, dm DynamicalMatrix, metric *kpath.Metric, opts ...Option) (*Structure, error) {
	o := gatherOptions(opts...)
	log := o.Logger.With().Str("op", opSolve).Logger()

	s, err := solve(paths, dm, metric, o, log)
	if err != nil {
		log.Error().Err(err).Msg("band solve aborted")

		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}

	return s, nil
}

func solve(paths kpath.PathSet, dm DynamicalMatrix, metric *kpath.Metric, o Options, log zerolog.Logger) (*Structure, error) {
	if err := paths.Validate(); err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, ErrNilDynamicalMatrix
	}
	if metric == nil {
		return nil, ErrNilMetric
	}
	connections := o.PathConnections
	if connections == nil {
		connections = kpath.DefaultConnections(len(paths))
	}
	if err := kpath.ValidateConnections(connections, len(paths)); err != nil {
		return nil, err
	}
	if err := kpath.ValidateLabels(o.Labels, connections); err != nil {
		return nil, err
	}

	log.Debug().
		Int("paths", len(paths)).
		Int("qpoints", paths.NumQPoints()).
		Bool("eigenvectors", o.Eigenvectors).
		Bool("band_connection", o.BandConnection).
		Bool("group_velocity", o.GroupVelocity != nil).
		Int("workers", o.Workers).
		Msg("band solve started")

	solutions, err := solvePaths(paths, dm, o)
	if err != nil {
		return nil, err
	}

	tracker := NewTracker(metric)
	special := make([]float64, 1, len(paths)+1)
	segments := make([]Segment, len(paths))
	nbands := -1
	for i, p := range paths {
		sol := solutions[i]
		if nbands >= 0 && sol.nbands != nbands {
			return nil, fmt.Errorf("path %d: %d bands, want %d: %w", i, sol.nbands, nbands, ErrBandCountChanged)
		}
		nbands = sol.nbands

		seg := Segment{
			Distances:    make([]float64, len(p)),
			QPoints:      p.Clone(),
			Frequencies:  make([][]float64, len(p)),
			Eigenvectors: sol.vectors,
			BandOrders:   sol.orders,
		}
		for j, q := range p {
			seg.Distances[j] = tracker.Advance(q)
			seg.Frequencies[j] = Frequencies(sol.values[j], o.Factor)
		}
		if o.GroupVelocity != nil {
			gv, err := groupVelocities(o.GroupVelocity, p, sol)
			if err != nil {
				return nil, fmt.Errorf("path %d: %w", i, err)
			}
			seg.GroupVelocities = gv
		}
		segments[i] = seg
		special = append(special, tracker.Distance())

		log.Debug().
			Int("path", i).
			Int("qpoints", len(p)).
			Int("bands", sol.nbands).
			Float64("distance", tracker.Distance()).
			Msg("path solved")
	}

	s := &Structure{
		Segments:        segments,
		SpecialPoints:   special,
		PathConnections: append([]bool(nil), connections...),
		Labels:          o.Labels,
		Factor:          o.Factor,
	}
	log.Debug().
		Float64("total_distance", s.TotalDistance()).
		Int("bands", nbands).
		Msg("band solve finished")

	return s, nil
}

// solvePaths runs the eigen stage for every path, sequentially or on an
// errgroup bounded by o.Workers.
func solvePaths(paths kpath.PathSet, dm DynamicalMatrix, o Options) ([]pathSolution, error) {
	out := make([]pathSolution, len(paths))
	if o.Workers <= 1 || len(paths) == 1 {
		ctx := context.Background()
		for i, p := range paths {
			sol, err := solvePath(ctx, i, p, dm, o)
			if err != nil {
				return nil, err
			}
			out[i] = sol
		}

		return out, nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(o.Workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			sol, err := solvePath(ctx, i, p, dm, o)
			if err != nil {
				return err
			}
			out[i] = sol

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// solvePath evaluates and diagonalizes every q-point of one path and, with
// band connection, threads the band order from point to point.
func solvePath(ctx context.Context, idx int, p kpath.Path, dm DynamicalMatrix, o Options) (pathSolution, error) {
	var (
		sol       = pathSolution{values: make([][]float64, len(p)), nbands: -1}
		withVecs  = o.Eigenvectors || o.BandConnection
		nac       = dm.HasNonAnalyticCorrection()
		prevVecs  *mat.CDense
		prevOrder []int
	)
	if o.Eigenvectors {
		sol.vectors = make([]*mat.CDense, len(p))
	}
	if o.BandConnection {
		sol.orders = make([][]int, len(p))
	}

	for j, q := range p {
		if err := ctx.Err(); err != nil {
			return pathSolution{}, err
		}

		var dir *r3.Vec
		if nac && isGamma(q, o.GammaTol) {
			d := r3.Sub(p.First(), p.Last())
			dir = &d
		}

		h, err := dm.Evaluate(q, dir)
		if err != nil {
			return pathSolution{}, fmt.Errorf("path %d q-point %d: %w", idx, j, err)
		}
		if h == nil {
			return pathSolution{}, fmt.Errorf("path %d q-point %d: nil operator: %w", idx, j, ErrNonSquare)
		}
		n, c := h.Dims()
		if n != c {
			return pathSolution{}, fmt.Errorf("path %d q-point %d: %dx%d: %w", idx, j, n, c, ErrNonSquare)
		}
		if sol.nbands >= 0 && n != sol.nbands {
			return pathSolution{}, fmt.Errorf("path %d q-point %d: %d bands, want %d: %w", idx, j, n, sol.nbands, ErrBandCountChanged)
		}
		sol.nbands = n

		d, err := o.Solver.Solve(h, withVecs)
		if err != nil {
			return pathSolution{}, fmt.Errorf("path %d q-point %d: %w", idx, j, err)
		}
		if err = checkDecomposition(d.Values, d.Vectors, n, withVecs); err != nil {
			return pathSolution{}, fmt.Errorf("path %d q-point %d: %w", idx, j, err)
		}

		values, vectors := d.Values, d.Vectors
		if o.BandConnection {
			var order []int
			if j == 0 {
				order = connect.Identity(n)
			} else {
				order, err = o.Connector(prevVecs, d.Vectors, prevOrder)
				if err != nil {
					return pathSolution{}, fmt.Errorf("path %d q-point %d: %w", idx, j, err)
				}
				if len(order) != n || !connect.IsPermutation(order) {
					return pathSolution{}, fmt.Errorf("path %d q-point %d: %w", idx, j, ErrConnectorOrder)
				}
			}
			prevVecs, prevOrder = d.Vectors, order
			sol.orders[j] = append([]int(nil), order...)
			values = connect.Permute(values, order)
			if o.Eigenvectors {
				vectors = connect.PermuteColumns(vectors, order)
			}
		}
		sol.values[j] = append([]float64(nil), values...)
		if o.Eigenvectors {
			sol.vectors[j] = vectors
		}
	}

	return sol, nil
}

// groupVelocities fetches the velocities of a whole path in one call and
// aligns them with the output band order.
func groupVelocities(calc GroupVelocityCalculator, p kpath.Path, sol pathSolution) ([][]r3.Vec, error) {
	gv, err := calc.ComputeForPath(p.Clone())
	if err != nil {
		return nil, err
	}
	if len(gv) != len(p) {
		return nil, fmt.Errorf("%d q-points, want %d: %w", len(gv), len(p), ErrGroupVelocityShape)
	}
	out := make([][]r3.Vec, len(p))
	for j, v := range gv {
		if len(v) != sol.nbands {
			return nil, fmt.Errorf("q-point %d: %d bands, want %d: %w", j, len(v), sol.nbands, ErrGroupVelocityShape)
		}
		if sol.orders != nil {
			out[j] = connect.Permute(v, sol.orders[j])
		} else {
			out[j] = append([]r3.Vec(nil), v...)
		}
	}

	return out, nil
}

func checkDecomposition(values []float64, vectors *mat.CDense, n int, withVecs bool) error {
	if len(values) != n {
		return fmt.Errorf("%d eigenvalues for %d bands: %w", len(values), n, ErrSolverShape)
	}
	if !withVecs {
		return nil
	}
	if vectors == nil {
		return fmt.Errorf("eigenvectors missing: %w", ErrSolverShape)
	}
	if r, c := vectors.Dims(); r != n || c != n {
		return fmt.Errorf("eigenvectors %dx%d for %d bands: %w", r, c, n, ErrSolverShape)
	}

	return nil
}

// isGamma reports whether every component of q is below tol in magnitude.
func isGamma(q r3.Vec, tol float64) bool {
	return math.Abs(q.X) < tol && math.Abs(q.Y) < tol && math.Abs(q.Z) < tol
}
