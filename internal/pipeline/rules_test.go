package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
)

func TestRulesValidateAcceptsStandardRules(t *testing.T) {
	cat := loadTestCatalog(t)
	require.NoError(t, testRules().Validate(cat))
}

func TestRulesValidateRejections(t *testing.T) {
	cat := loadTestCatalog(t)

	tests := []struct {
		name   string
		mutate func(r *Rules)
	}{
		{"zero budget", func(r *Rules) { r.Roster.Budget = 0 }},
		{"zero squad size", func(r *Rules) { r.Roster.SquadSize = 0 }},
		{"zero club cap", func(r *Rules) { r.Roster.MaxPerClub = 0 }},
		{"counts above squad size", func(r *Rules) { r.Roster.PositionCounts[catalog.Forward] = 9 }},
		{"counts below squad size", func(r *Rules) { r.Roster.PositionCounts[catalog.Forward] = 1 }},
		{"unknown roster position", func(r *Rules) { r.Roster.PositionCounts[catalog.Position("Striker")] = 0 }},
		{"unknown lineup position", func(r *Rules) {
			r.Lineup.PositionBounds[catalog.Position("Sweeper")] = PositionBound{Count: 1}
		}},
		{"lineup larger than squad", func(r *Rules) { r.Lineup.Size = 16 }},
		{"lineup minimums above lineup size", func(r *Rules) {
			r.Lineup.PositionBounds[catalog.Defender] = PositionBound{Count: 5}
			r.Lineup.PositionBounds[catalog.Midfielder] = PositionBound{Count: 5}
		}},
		{"lineup minimum above squad count", func(r *Rules) {
			r.Lineup.PositionBounds[catalog.Goalkeeper] = PositionBound{Exact: true, Count: 3}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := testRules()
			tt.mutate(&rules)
			err := rules.Validate(cat)
			require.Error(t, err)
			var configErr *ConfigError
			assert.ErrorAs(t, err, &configErr)
		})
	}
}

func TestRulesValidateRequiresCandidatesPerPosition(t *testing.T) {
	records := []catalog.Record{
		{ID: 1, Name: "Only Keeper", Club: "Arsenal", Position: "Goalkeeper", Price: 4.0, TotalPoints: 2.0},
	}
	cat, err := catalog.Load(records, catalog.DeriveConfig{FormWeight: 2.0})
	require.NoError(t, err)

	err = testRules().Validate(cat)
	require.Error(t, err)
	var configErr *ConfigError
	assert.ErrorAs(t, err, &configErr)
}
