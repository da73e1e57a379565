// SPDX-License-Identifier: MIT

package band

import (
	"math"

	"github.com/katalvlaran/phband/connect"
	"github.com/katalvlaran/phband/eigen"
	"github.com/rs/zerolog"
)

// DefaultGammaTol is the per-axis magnitude below which a fractional
// q-point is treated as Γ.
const DefaultGammaTol = 1e-4

const (
	panicFactor    = "band: WithFactor: factor must be finite and non-zero"
	panicSolver    = "band: WithSolver: solver must not be nil"
	panicConnector = "band: WithConnector: strategy must not be nil"
	panicWorkers   = "band: WithWorkers: n must be positive"
	panicGammaTol  = "band: WithGammaTolerance: tol must be finite and positive"
)

// Option configures Solve.
type Option func(*Options)

// Options holds the settings of one Solve call.
type Options struct {
	Eigenvectors    bool
	BandConnection  bool
	GroupVelocity   GroupVelocityCalculator // nil disables group velocities
	Factor          float64
	Solver          eigen.Solver
	Connector       connect.Strategy
	PathConnections []bool // nil means kpath.DefaultConnections
	Labels          []string
	Workers         int
	GammaTol        float64
	Logger          zerolog.Logger
}

// DefaultOptions returns the documented defaults: values only, no band
// connection, VaspToTHz, the Hermitian backend, Greedy, one worker and a
// disabled logger.
func DefaultOptions() Options {
	return Options{
		Factor:    VaspToTHz,
		Solver:    eigen.NewHermitian(),
		Connector: connect.Greedy,
		Workers:   1,
		GammaTol:  DefaultGammaTol,
		Logger:    zerolog.Nop(),
	}
}

// WithEigenvectors keeps the eigenvectors of every q-point.
func WithEigenvectors() Option {
	return func(o *Options) { o.Eigenvectors = true }
}

// WithBandConnection reorders bands to follow modes along each path.
// Eigenvectors are computed internally; they are only stored when
// WithEigenvectors is given too.
func WithBandConnection() Option {
	return func(o *Options) { o.BandConnection = true }
}

// WithGroupVelocity requests group velocities from calc, once per path.
// A nil calc disables them.
func WithGroupVelocity(calc GroupVelocityCalculator) Option {
	return func(o *Options) { o.GroupVelocity = calc }
}

// WithFactor sets the eigenvalue-to-frequency unit factor.
// Panics on zero or non-finite values.
func WithFactor(f float64) Option {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		panic(panicFactor)
	}

	return func(o *Options) { o.Factor = f }
}

// WithPathConnections sets the per-path connection flags copied into the
// result. Their count is checked by Solve.
func WithPathConnections(connections []bool) Option {
	return func(o *Options) { o.PathConnections = append([]bool(nil), connections...) }
}

// WithLabels sets the end-point labels copied into the result. Their count
// must equal kpath.LabelCount of the path connections.
func WithLabels(labels []string) Option {
	return func(o *Options) { o.Labels = append([]string(nil), labels...) }
}

// WithSolver replaces the eigen backend. Panics on nil.
func WithSolver(s eigen.Solver) Option {
	if s == nil {
		panic(panicSolver)
	}

	return func(o *Options) { o.Solver = s }
}

// WithConnector replaces the band connection strategy. Panics on nil.
func WithConnector(s connect.Strategy) Option {
	if s == nil {
		panic(panicConnector)
	}

	return func(o *Options) { o.Connector = s }
}

// WithWorkers solves up to n paths concurrently. Panics on n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkers)
	}

	return func(o *Options) { o.Workers = n }
}

// WithGammaTolerance sets the Γ detection threshold.
// Panics on non-positive or non-finite values.
func WithGammaTolerance(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicGammaTol)
	}

	return func(o *Options) { o.GammaTol = tol }
}

// WithLogger sets the logger for solve events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func gatherOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
