// Package pipeline runs the two-pass squad selection: an optimal full squad
// from the whole catalog, then the starting lineup from that squad, then a
// deterministic captain pick.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
	"github.com/fantasy-tools/fpl-optimizer/internal/solver"
	"github.com/fantasy-tools/fpl-optimizer/pkg/logger"
)

// Result carries both selections, the captain and the plain aggregates the
// reporting adapter consumes.
type Result struct {
	Squad   []catalog.Player `json:"squad"`
	Lineup  []catalog.Player `json:"lineup"`
	Captain catalog.Player   `json:"captain"`

	SquadStatus  solver.Status `json:"squad_status"`
	LineupStatus solver.Status `json:"lineup_status"`

	SquadCost    float64 `json:"squad_cost"`
	SquadPoints  float64 `json:"squad_points"`
	LineupCost   float64 `json:"lineup_cost"`
	LineupPoints float64 `json:"lineup_points"`
}

// Pipeline orchestrates the two optimization passes.
type Pipeline struct {
	solverOpts solver.Options
}

// New creates a pipeline whose solves run with the given options.
func New(opts solver.Options) *Pipeline {
	return &Pipeline{solverOpts: opts}
}

// Run selects the squad, the lineup and the captain. Infeasibility of pass 1
// aborts the run with solver.ErrInfeasible; infeasibility of pass 2 means the
// roster and lineup rules disagree and is reported as a ConfigError, since
// Validate guarantees every valid squad admits a lineup.
func (p *Pipeline) Run(ctx context.Context, cat *catalog.Catalog, rules Rules) (*Result, error) {
	runID := uuid.New().String()

	if err := rules.Validate(cat); err != nil {
		return nil, err
	}

	log := logger.WithSolveContext(runID, "squad")
	log.WithFields(logrus.Fields{
		"candidates": cat.Len(),
		"budget":     rules.Roster.Budget,
		"squad_size": rules.Roster.SquadSize,
	}).Info("Starting squad selection")

	players := cat.Players()
	squadModel, err := BuildSquadModel(players, rules.Roster)
	if err != nil {
		return nil, fmt.Errorf("building squad model: %w", err)
	}
	squadSol, err := solver.Solve(ctx, squadModel, p.solverOpts)
	if err != nil {
		return nil, fmt.Errorf("squad selection: %w", err)
	}

	squad := make([]catalog.Player, len(squadSol.Selected))
	for i, idx := range squadSol.Selected {
		squad[i] = players[idx]
	}
	sortByPosition(squad)

	log = logger.WithSolveContext(runID, "lineup")
	log.WithFields(logrus.Fields{
		"squad_size":  len(squad),
		"lineup_size": rules.Lineup.Size,
	}).Info("Starting lineup selection")

	lineupModel, err := BuildLineupModel(squad, rules.Lineup)
	if err != nil {
		return nil, fmt.Errorf("building lineup model: %w", err)
	}
	lineupSol, err := solver.Solve(ctx, lineupModel, p.solverOpts)
	if err != nil {
		if errors.Is(err, solver.ErrInfeasible) {
			// Validate should have ruled this out; reaching it means the
			// two rule sets are inconsistent.
			return nil, &ConfigError{Reason: fmt.Sprintf("lineup rules are unsatisfiable for a valid squad: %v", err)}
		}
		return nil, fmt.Errorf("lineup selection: %w", err)
	}

	lineup := make([]catalog.Player, len(lineupSol.Selected))
	for i, idx := range lineupSol.Selected {
		lineup[i] = squad[idx]
	}
	sortByPosition(lineup)

	res := &Result{
		Squad:        squad,
		Lineup:       lineup,
		Captain:      pickCaptain(lineup),
		SquadStatus:  squadSol.Status,
		LineupStatus: lineupSol.Status,
	}
	for _, pl := range squad {
		res.SquadCost += pl.Price
		res.SquadPoints += pl.ExpectedPoints
	}
	for _, pl := range lineup {
		res.LineupCost += pl.Price
		res.LineupPoints += pl.ExpectedPoints
	}

	logger.WithSolveID(runID).WithFields(logrus.Fields{
		"squad_cost":    res.SquadCost,
		"squad_points":  res.SquadPoints,
		"lineup_points": res.LineupPoints,
		"captain":       res.Captain.Name,
	}).Info("Selection pipeline finished")

	return res, nil
}

// pickCaptain returns the lineup member with the highest expected points;
// ties go to the lowest ID so repeated runs agree.
func pickCaptain(lineup []catalog.Player) catalog.Player {
	captain := lineup[0]
	for _, p := range lineup[1:] {
		if p.ExpectedPoints > captain.ExpectedPoints ||
			(p.ExpectedPoints == captain.ExpectedPoints && p.ID < captain.ID) {
			captain = p
		}
	}
	return captain
}

var positionOrder = map[catalog.Position]int{
	catalog.Goalkeeper: 0,
	catalog.Defender:   1,
	catalog.Midfielder: 2,
	catalog.Forward:    3,
}

func sortByPosition(players []catalog.Player) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].Position != players[j].Position {
			return positionOrder[players[i].Position] < positionOrder[players[j].Position]
		}
		return players[i].ID < players[j].ID
	})
}
