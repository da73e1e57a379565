// SPDX-License-Identifier: MIT

package eigen

import (
	"gonum.org/v1/gonum/mat"
)

// Hermitian is the default Solver. It factorizes the real symmetric
// embedding with gonum's mat.EigenSym.
//
// A Hermitian is stateless after construction and safe for concurrent use.
type Hermitian struct {
	opts Options
}

// NewHermitian returns a gonum-backed solver.
func NewHermitian(opts ...Option) *Hermitian {
	return &Hermitian{opts: gatherOptions(opts...)}
}

// Solve implements Solver.
//
// Errors: ErrEmpty, ErrNonSquare, ErrNotHermitian, ErrNaNInf,
// ErrNoConvergence, ErrOddCluster, ErrRankDeficient; all wrapped with the
// operation tag.
func (s *Hermitian) Solve(h mat.CMatrix, vectors bool) (*Decomposition, error) {
	sym, n, err := embed(h, s.opts.HermitianTol)
	if err != nil {
		return nil, eigenErrorf(opHermitian, err)
	}

	var es mat.EigenSym
	if ok := es.Factorize(sym, vectors); !ok {
		return nil, eigenErrorf(opHermitian, ErrNoConvergence)
	}
	vals := es.Values(nil) // ascending
	if !vectors {
		return &Decomposition{Values: mergePairs(vals)}, nil
	}

	var u mat.Dense
	es.VectorsTo(&u)
	d, err := extract(vals, &u, n, s.opts.DegeneracyTol)
	if err != nil {
		return nil, eigenErrorf(opHermitian, err)
	}

	return d, nil
}
