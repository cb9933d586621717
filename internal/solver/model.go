// Package solver implements an exact 0/1 integer optimizer: a declarative
// linear constraint model plus a branch-and-bound engine that bounds nodes
// with an LP relaxation solved by gonum's simplex.
package solver

import (
	"fmt"
)

// Sense is the comparison direction of a linear constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	}
	return "?"
}

// Constraint is one linear row: sum of Coeffs over Indices {<=,>=,=} Bound.
// A nil Coeffs means all coefficients are 1 (a pure counting constraint).
type Constraint struct {
	Name    string
	Indices []int
	Coeffs  []float64
	Sense   Sense
	Bound   float64
}

// Model is one optimization problem instance over binary selection variables.
// It is mutable while being built and must not be changed once handed to Solve.
type Model struct {
	objective   []float64
	constraints []Constraint
}

// NewModel creates a model maximizing objective · x over binary x.
func NewModel(objective []float64) *Model {
	obj := make([]float64, len(objective))
	copy(obj, objective)
	return &Model{objective: obj}
}

// AddConstraint appends a constraint row. Indices must reference existing
// variables, Coeffs (when present) must match Indices, and Bound must be
// non-negative.
func (m *Model) AddConstraint(c Constraint) error {
	if len(c.Indices) == 0 {
		return fmt.Errorf("constraint %q: no variables referenced", c.Name)
	}
	for _, idx := range c.Indices {
		if idx < 0 || idx >= len(m.objective) {
			return fmt.Errorf("constraint %q: variable index %d out of range [0,%d)", c.Name, idx, len(m.objective))
		}
	}
	if c.Coeffs != nil && len(c.Coeffs) != len(c.Indices) {
		return fmt.Errorf("constraint %q: %d coefficients for %d variables", c.Name, len(c.Coeffs), len(c.Indices))
	}
	if c.Bound < 0 {
		return fmt.Errorf("constraint %q: negative bound %v", c.Name, c.Bound)
	}
	m.constraints = append(m.constraints, c)
	return nil
}

// NumVars returns the number of selection variables.
func (m *Model) NumVars() int {
	return len(m.objective)
}

// Objective returns the objective coefficient of variable i.
func (m *Model) Objective(i int) float64 {
	return m.objective[i]
}

// Constraints returns the constraint rows in insertion order.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// coeff returns the coefficient of the k-th referenced variable of c.
func (c Constraint) coeff(k int) float64 {
	if c.Coeffs == nil {
		return 1
	}
	return c.Coeffs[k]
}

// evaluate computes the row value for a full 0/1 assignment.
func (c Constraint) evaluate(assign []int8) float64 {
	var sum float64
	for k, idx := range c.Indices {
		if assign[idx] == 1 {
			sum += c.coeff(k)
		}
	}
	return sum
}

// satisfied reports whether the row holds for a full 0/1 assignment.
func (c Constraint) satisfied(assign []int8) bool {
	sum := c.evaluate(assign)
	switch c.Sense {
	case LessEq:
		return sum <= c.Bound+feasTol
	case GreaterEq:
		return sum >= c.Bound-feasTol
	default:
		return sum >= c.Bound-feasTol && sum <= c.Bound+feasTol
	}
}

// rangeCheck computes the minimum and maximum row value still reachable from a
// partial assignment (-1 = free) and reports whether the row is already
// irrecoverably violated.
func (c Constraint) rangeCheck(assign []int8) (violated bool) {
	var lo, hi float64
	for k, idx := range c.Indices {
		a := c.coeff(k)
		switch assign[idx] {
		case 1:
			lo += a
			hi += a
		case -1:
			if a > 0 {
				hi += a
			} else {
				lo += a
			}
		}
	}
	switch c.Sense {
	case LessEq:
		return lo > c.Bound+feasTol
	case GreaterEq:
		return hi < c.Bound-feasTol
	default:
		return lo > c.Bound+feasTol || hi < c.Bound-feasTol
	}
}
