package pipeline

import (
	"fmt"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
	"github.com/fantasy-tools/fpl-optimizer/internal/config"
)

// ConfigError reports a rule set that is internally inconsistent or that
// references categories/groups absent from the catalog. It always surfaces
// before any solve attempt when statically detectable.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid rule configuration: " + e.Reason
}

// RosterRules constrains the full-squad selection pass.
type RosterRules struct {
	Budget         float64                  `json:"budget"`
	SquadSize      int                      `json:"squad_size"`
	PositionCounts map[catalog.Position]int `json:"position_counts"` // exact per position
	MaxPerClub     int                      `json:"max_per_club"`
}

// PositionBound is one lineup quota: exactly Count or at least Count.
type PositionBound struct {
	Exact bool `json:"exact"`
	Count int  `json:"count"`
}

// LineupRules constrains the starting-lineup pass.
type LineupRules struct {
	Size           int                                `json:"size"`
	PositionBounds map[catalog.Position]PositionBound `json:"position_bounds"`
}

// Rules bundles both passes.
type Rules struct {
	Roster RosterRules `json:"roster"`
	Lineup LineupRules `json:"lineup"`
}

// RulesFromConfig maps the service configuration onto pipeline rules.
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		Roster: RosterRules{
			Budget:    cfg.Budget,
			SquadSize: cfg.SquadSize,
			PositionCounts: map[catalog.Position]int{
				catalog.Goalkeeper: cfg.SquadGoalkeepers,
				catalog.Defender:   cfg.SquadDefenders,
				catalog.Midfielder: cfg.SquadMidfielders,
				catalog.Forward:    cfg.SquadForwards,
			},
			MaxPerClub: cfg.MaxPerClub,
		},
		Lineup: LineupRules{
			Size: cfg.LineupSize,
			PositionBounds: map[catalog.Position]PositionBound{
				catalog.Goalkeeper: {Exact: true, Count: cfg.LineupGoalkeepers},
				catalog.Defender:   {Count: cfg.LineupMinDefenders},
				catalog.Midfielder: {Count: cfg.LineupMinMidfielders},
				catalog.Forward:    {Count: cfg.LineupMinForwards},
			},
		},
	}
}

// Validate checks the rule set against the catalog. Every inconsistency that
// can be detected without solving is rejected here, including the guarantee
// that any squad satisfying the roster rules admits at least one valid lineup.
func (r Rules) Validate(cat *catalog.Catalog) error {
	if r.Roster.Budget <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("budget must be positive, got %v", r.Roster.Budget)}
	}
	if r.Roster.SquadSize <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("squad size must be positive, got %d", r.Roster.SquadSize)}
	}
	if r.Roster.MaxPerClub <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("max per club must be positive, got %d", r.Roster.MaxPerClub)}
	}
	if r.Lineup.Size <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("lineup size must be positive, got %d", r.Lineup.Size)}
	}
	if r.Lineup.Size > r.Roster.SquadSize {
		return &ConfigError{Reason: fmt.Sprintf("lineup size %d exceeds squad size %d", r.Lineup.Size, r.Roster.SquadSize)}
	}

	available := cat.CountByPosition()

	exactSum := 0
	for pos, count := range r.Roster.PositionCounts {
		if !pos.Valid() {
			return &ConfigError{Reason: fmt.Sprintf("unknown position %q in roster rules", pos)}
		}
		if count < 0 {
			return &ConfigError{Reason: fmt.Sprintf("negative count %d for position %s", count, pos)}
		}
		if count > 0 && available[pos] == 0 {
			return &ConfigError{Reason: fmt.Sprintf("roster rules require %s but the catalog has none", pos)}
		}
		exactSum += count
	}
	if exactSum > r.Roster.SquadSize {
		return &ConfigError{Reason: fmt.Sprintf("exact position counts sum to %d, more than the squad size %d", exactSum, r.Roster.SquadSize)}
	}
	if exactSum < r.Roster.SquadSize {
		return &ConfigError{Reason: fmt.Sprintf("exact position counts sum to %d, less than the squad size %d", exactSum, r.Roster.SquadSize)}
	}

	minSum := 0
	for pos, bound := range r.Lineup.PositionBounds {
		if !pos.Valid() {
			return &ConfigError{Reason: fmt.Sprintf("unknown position %q in lineup rules", pos)}
		}
		if bound.Count < 0 {
			return &ConfigError{Reason: fmt.Sprintf("negative lineup bound %d for position %s", bound.Count, pos)}
		}
		// Any valid squad must be able to field the lineup minimum.
		if bound.Count > r.Roster.PositionCounts[pos] {
			return &ConfigError{Reason: fmt.Sprintf("lineup requires %d %s but the squad only carries %d",
				bound.Count, pos, r.Roster.PositionCounts[pos])}
		}
		minSum += bound.Count
	}
	if minSum > r.Lineup.Size {
		return &ConfigError{Reason: fmt.Sprintf("lineup position minimums sum to %d, more than the lineup size %d", minSum, r.Lineup.Size)}
	}
	for pos, bound := range r.Lineup.PositionBounds {
		// An exact bound caps the position's lineup slots, so the rest of
		// the squad must be able to fill the remaining places.
		if bound.Exact && r.Lineup.Size-bound.Count > r.Roster.SquadSize-r.Roster.PositionCounts[pos] {
			return &ConfigError{Reason: fmt.Sprintf("lineup fixes %s at %d, leaving %d places for %d eligible squad members",
				pos, bound.Count, r.Lineup.Size-bound.Count, r.Roster.SquadSize-r.Roster.PositionCounts[pos])}
		}
	}

	return nil
}
