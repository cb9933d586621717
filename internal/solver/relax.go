package solver

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	feasTol     = 1e-6
	integralTol = 1e-6
	boundTol    = 1e-9
)

// errNodeInfeasible signals that one node's relaxation has no solution. The
// node is pruned; it is not a solve failure.
var errNodeInfeasible = errors.New("node relaxation infeasible")

// relax solves the LP relaxation of the model restricted by a partial 0/1
// assignment (-1 = free, variables relaxed to [0,1]). It returns an upper
// bound on the best integral objective reachable from the node along with the
// full relaxed variable values.
//
// The LP is assembled in standard form (min c·y, Ay = b, y >= 0): one slack
// or surplus column per inequality row and one slack column per x <= 1 row.
// Variable lower bounds come for free from standard form.
func (m *Model) relax(assign []int8) (bound float64, frac []float64, err error) {
	n := m.NumVars()

	free := make([]int, 0, n)
	pos := make([]int, n) // variable index -> free slot, or -1
	var fixedObj float64
	for i := 0; i < n; i++ {
		pos[i] = -1
		switch assign[i] {
		case -1:
			pos[i] = len(free)
			free = append(free, i)
		case 1:
			fixedObj += m.objective[i]
		}
	}

	frac = make([]float64, n)
	for i := 0; i < n; i++ {
		if assign[i] == 1 {
			frac[i] = 1
		}
	}

	if len(free) == 0 {
		return fixedObj, frac, nil
	}

	// Partition constraint rows by sense, dropping rows with no free
	// variables after checking they still hold.
	type row struct {
		coeffs []float64 // indexed by free slot
		rhs    float64
	}
	var les, ges, eqs []row
	for _, c := range m.constraints {
		coeffs := make([]float64, len(free))
		rhs := c.Bound
		active := false
		for k, idx := range c.Indices {
			a := c.coeff(k)
			switch assign[idx] {
			case 1:
				rhs -= a
			case -1:
				coeffs[pos[idx]] += a
				active = true
			}
		}
		if !active {
			switch c.Sense {
			case LessEq:
				if rhs < -feasTol {
					return 0, nil, errNodeInfeasible
				}
			case GreaterEq:
				if rhs > feasTol {
					return 0, nil, errNodeInfeasible
				}
			default:
				if math.Abs(rhs) > feasTol {
					return 0, nil, errNodeInfeasible
				}
			}
			continue
		}
		r := row{coeffs: coeffs, rhs: rhs}
		switch c.Sense {
		case LessEq:
			les = append(les, r)
		case GreaterEq:
			ges = append(ges, r)
		default:
			eqs = append(eqs, r)
		}
	}

	nf := len(free)
	rows := len(les) + len(ges) + len(eqs) + nf
	cols := nf + len(les) + len(ges) + nf

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	for j, idx := range free {
		c[j] = -m.objective[idx] // simplex minimizes
	}

	r := 0
	slack := nf
	for _, le := range les {
		for j, v := range le.coeffs {
			a.Set(r, j, v)
		}
		a.Set(r, slack, 1)
		b[r] = le.rhs
		slack++
		r++
	}
	for _, ge := range ges {
		for j, v := range ge.coeffs {
			a.Set(r, j, v)
		}
		a.Set(r, slack, -1)
		b[r] = ge.rhs
		slack++
		r++
	}
	for _, eq := range eqs {
		for j, v := range eq.coeffs {
			a.Set(r, j, v)
		}
		b[r] = eq.rhs
		r++
	}
	// x_j + u_j = 1 keeps each relaxed variable inside [0,1].
	for j := 0; j < nf; j++ {
		a.Set(r, j, 1)
		a.Set(r, slack, 1)
		b[r] = 1
		slack++
		r++
	}

	// Phase-1 simplex wants non-negative right-hand sides.
	for i := 0; i < rows; i++ {
		if b[i] < 0 {
			b[i] = -b[i]
			for j := 0; j < cols; j++ {
				a.Set(i, j, -a.At(i, j))
			}
		}
	}

	opt, y, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return 0, nil, errNodeInfeasible
		}
		return 0, nil, &EngineError{Op: "simplex relaxation", Err: err}
	}

	for j, idx := range free {
		frac[idx] = math.Max(0, math.Min(1, y[j]))
	}
	return fixedObj - opt, frac, nil
}
