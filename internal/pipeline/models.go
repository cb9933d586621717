package pipeline

import (
	"fmt"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
	"github.com/fantasy-tools/fpl-optimizer/internal/solver"
)

// BuildSquadModel assembles the pass-1 constraint model over the full player
// pool: maximize expected points under the budget, the exact per-position
// counts, the squad size and the per-club cap. Building is pure.
func BuildSquadModel(players []catalog.Player, rules RosterRules) (*solver.Model, error) {
	objective := make([]float64, len(players))
	for i, p := range players {
		objective[i] = p.ExpectedPoints
	}
	m := solver.NewModel(objective)

	all := make([]int, len(players))
	prices := make([]float64, len(players))
	for i, p := range players {
		all[i] = i
		prices[i] = p.Price
	}

	if err := m.AddConstraint(solver.Constraint{
		Name:    "budget",
		Indices: all,
		Coeffs:  prices,
		Sense:   solver.LessEq,
		Bound:   rules.Budget,
	}); err != nil {
		return nil, err
	}
	if err := m.AddConstraint(solver.Constraint{
		Name:    "squad_size",
		Indices: all,
		Sense:   solver.Equal,
		Bound:   float64(rules.SquadSize),
	}); err != nil {
		return nil, err
	}

	for _, pos := range catalog.Positions {
		count, ok := rules.PositionCounts[pos]
		if !ok {
			continue
		}
		var indices []int
		for i, p := range players {
			if p.Position == pos {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			if count == 0 {
				continue
			}
			return nil, fmt.Errorf("no candidates for position %s", pos)
		}
		if err := m.AddConstraint(solver.Constraint{
			Name:    fmt.Sprintf("position_%s", pos),
			Indices: indices,
			Sense:   solver.Equal,
			Bound:   float64(count),
		}); err != nil {
			return nil, err
		}
	}

	byClub := make(map[string][]int)
	for i, p := range players {
		byClub[p.Club] = append(byClub[p.Club], i)
	}
	for _, club := range clubsInOrder(players) {
		indices := byClub[club]
		if len(indices) <= rules.MaxPerClub {
			continue // cannot be violated, skip the row
		}
		if err := m.AddConstraint(solver.Constraint{
			Name:    fmt.Sprintf("club_%s", club),
			Indices: indices,
			Sense:   solver.LessEq,
			Bound:   float64(rules.MaxPerClub),
		}); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// BuildLineupModel assembles the pass-2 model restricted to the chosen squad:
// maximize expected points with a fixed lineup size and per-position bounds.
func BuildLineupModel(squad []catalog.Player, rules LineupRules) (*solver.Model, error) {
	objective := make([]float64, len(squad))
	for i, p := range squad {
		objective[i] = p.ExpectedPoints
	}
	m := solver.NewModel(objective)

	all := make([]int, len(squad))
	for i := range squad {
		all[i] = i
	}
	if err := m.AddConstraint(solver.Constraint{
		Name:    "lineup_size",
		Indices: all,
		Sense:   solver.Equal,
		Bound:   float64(rules.Size),
	}); err != nil {
		return nil, err
	}

	for _, pos := range catalog.Positions {
		bound, ok := rules.PositionBounds[pos]
		if !ok || bound.Count == 0 && !bound.Exact {
			continue
		}
		var indices []int
		for i, p := range squad {
			if p.Position == pos {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			return nil, fmt.Errorf("squad has no %s to satisfy the lineup bound", pos)
		}
		sense := solver.GreaterEq
		if bound.Exact {
			sense = solver.Equal
		}
		if err := m.AddConstraint(solver.Constraint{
			Name:    fmt.Sprintf("lineup_%s", pos),
			Indices: indices,
			Sense:   sense,
			Bound:   float64(bound.Count),
		}); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func clubsInOrder(players []catalog.Player) []string {
	seen := make(map[string]bool)
	var clubs []string
	for _, p := range players {
		if !seen[p.Club] {
			seen[p.Club] = true
			clubs = append(clubs, p.Club)
		}
	}
	return clubs
}
