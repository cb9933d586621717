package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
	"github.com/fantasy-tools/fpl-optimizer/internal/solver"
)

func testRecords() []catalog.Record {
	return []catalog.Record{
		// Goalkeepers
		{ID: 1, Name: "Keeper One", Club: "Arsenal", Position: "Goalkeeper", Price: 4.5, TotalPoints: 3.0},
		{ID: 2, Name: "Keeper Two", Club: "Chelsea", Position: "Goalkeeper", Price: 5.0, TotalPoints: 3.5},
		{ID: 3, Name: "Keeper Three", Club: "Everton", Position: "Goalkeeper", Price: 4.0, TotalPoints: 2.5},
		// Defenders
		{ID: 4, Name: "Back One", Club: "Arsenal", Position: "Defender", Price: 4.5, TotalPoints: 4.0},
		{ID: 5, Name: "Back Two", Club: "Chelsea", Position: "Defender", Price: 5.0, TotalPoints: 4.5},
		{ID: 6, Name: "Back Three", Club: "Everton", Position: "Defender", Price: 5.5, TotalPoints: 5.0},
		{ID: 7, Name: "Back Four", Club: "Fulham", Position: "Defender", Price: 6.0, TotalPoints: 5.5},
		{ID: 8, Name: "Back Five", Club: "Leeds", Position: "Defender", Price: 6.5, TotalPoints: 6.0},
		{ID: 9, Name: "Back Six", Club: "Spurs", Position: "Defender", Price: 7.0, TotalPoints: 6.5},
		// Midfielders
		{ID: 10, Name: "Mid One", Club: "Arsenal", Position: "Midfielder", Price: 5.5, TotalPoints: 5.0},
		{ID: 11, Name: "Mid Two", Club: "Chelsea", Position: "Midfielder", Price: 6.5, TotalPoints: 6.0},
		{ID: 12, Name: "Mid Three", Club: "Everton", Position: "Midfielder", Price: 7.5, TotalPoints: 7.0},
		{ID: 13, Name: "Mid Four", Club: "Fulham", Position: "Midfielder", Price: 8.0, TotalPoints: 7.5},
		{ID: 14, Name: "Mid Five", Club: "Leeds", Position: "Midfielder", Price: 9.0, TotalPoints: 8.5},
		{ID: 15, Name: "Mid Six", Club: "Spurs", Position: "Midfielder", Price: 9.5, TotalPoints: 9.0},
		// Forwards
		{ID: 16, Name: "Striker One", Club: "Fulham", Position: "Forward", Price: 6.0, TotalPoints: 6.0},
		{ID: 17, Name: "Striker Two", Club: "Leeds", Position: "Forward", Price: 8.5, TotalPoints: 8.0},
		{ID: 18, Name: "Striker Three", Club: "Spurs", Position: "Forward", Price: 10.5, TotalPoints: 10.0},
		{ID: 19, Name: "Striker Four", Club: "Arsenal", Position: "Forward", Price: 12.5, TotalPoints: 12.0},
	}
}

func testRules() Rules {
	return Rules{
		Roster: RosterRules{
			Budget:    100.0,
			SquadSize: 15,
			PositionCounts: map[catalog.Position]int{
				catalog.Goalkeeper: 2,
				catalog.Defender:   5,
				catalog.Midfielder: 5,
				catalog.Forward:    3,
			},
			MaxPerClub: 3,
		},
		Lineup: LineupRules{
			Size: 11,
			PositionBounds: map[catalog.Position]PositionBound{
				catalog.Goalkeeper: {Exact: true, Count: 1},
				catalog.Defender:   {Count: 3},
				catalog.Midfielder: {Count: 2},
				catalog.Forward:    {Count: 1},
			},
		},
	}
}

func loadTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(testRecords(), catalog.DeriveConfig{FormWeight: 2.0})
	require.NoError(t, err)
	return cat
}

func TestPipelineEndToEnd(t *testing.T) {
	cat := loadTestCatalog(t)
	rules := testRules()

	res, err := New(solver.Options{}).Run(context.Background(), cat, rules)
	require.NoError(t, err)

	// Squad: exactly 15 with the exact position counts and within budget.
	require.Len(t, res.Squad, 15)
	counts := map[catalog.Position]int{}
	clubs := map[string]int{}
	var cost float64
	for _, p := range res.Squad {
		counts[p.Position]++
		clubs[p.Club]++
		cost += p.Price
	}
	assert.Equal(t, 2, counts[catalog.Goalkeeper])
	assert.Equal(t, 5, counts[catalog.Defender])
	assert.Equal(t, 5, counts[catalog.Midfielder])
	assert.Equal(t, 3, counts[catalog.Forward])
	assert.LessOrEqual(t, cost, rules.Roster.Budget+1e-9)
	assert.InDelta(t, cost, res.SquadCost, 1e-9)
	for club, n := range clubs {
		assert.LessOrEqual(t, n, rules.Roster.MaxPerClub, "club %s", club)
	}

	// Lineup: 11 squad members satisfying the formation bounds.
	require.Len(t, res.Lineup, 11)
	lineupCounts := map[catalog.Position]int{}
	squadIDs := map[int]bool{}
	for _, p := range res.Squad {
		squadIDs[p.ID] = true
	}
	for _, p := range res.Lineup {
		lineupCounts[p.Position]++
		assert.True(t, squadIDs[p.ID], "lineup member %d not in squad", p.ID)
	}
	assert.Equal(t, 1, lineupCounts[catalog.Goalkeeper])
	assert.GreaterOrEqual(t, lineupCounts[catalog.Defender], 3)
	assert.GreaterOrEqual(t, lineupCounts[catalog.Midfielder], 2)
	assert.GreaterOrEqual(t, lineupCounts[catalog.Forward], 1)

	// Captain: highest expected points in the lineup.
	for _, p := range res.Lineup {
		assert.LessOrEqual(t, p.ExpectedPoints, res.Captain.ExpectedPoints)
	}

	assert.Equal(t, solver.StatusOptimal, res.SquadStatus)
	assert.Equal(t, solver.StatusOptimal, res.LineupStatus)
}

func TestPipelineDeterminism(t *testing.T) {
	cat := loadTestCatalog(t)
	rules := testRules()
	p := New(solver.Options{})

	first, err := p.Run(context.Background(), cat, rules)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), cat, rules)
	require.NoError(t, err)

	assert.Equal(t, first.Squad, second.Squad)
	assert.Equal(t, first.Lineup, second.Lineup)
	assert.Equal(t, first.Captain, second.Captain)
}

func TestPipelineInfeasibleBudget(t *testing.T) {
	cat := loadTestCatalog(t)
	rules := testRules()
	rules.Roster.Budget = 10.0 // cannot afford any 15-player squad

	res, err := New(solver.Options{}).Run(context.Background(), cat, rules)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, solver.ErrInfeasible)
}

func TestPipelineRejectsBadRulesBeforeSolving(t *testing.T) {
	cat := loadTestCatalog(t)
	rules := testRules()
	rules.Roster.PositionCounts[catalog.Forward] = 9 // exact counts now sum past 15

	res, err := New(solver.Options{}).Run(context.Background(), cat, rules)
	assert.Nil(t, res)
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestPickCaptainTieBreaksOnLowestID(t *testing.T) {
	lineup := []catalog.Player{
		{ID: 7, Name: "Late", ExpectedPoints: 12.0},
		{ID: 3, Name: "Early", ExpectedPoints: 12.0},
		{ID: 9, Name: "Lesser", ExpectedPoints: 11.5},
	}
	captain := pickCaptain(lineup)
	assert.Equal(t, 3, captain.ID)
}

func TestBuildSquadModelRows(t *testing.T) {
	cat := loadTestCatalog(t)
	m, err := BuildSquadModel(cat.Players(), testRules().Roster)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, c := range m.Constraints() {
		names[c.Name] = true
	}
	assert.True(t, names["budget"])
	assert.True(t, names["squad_size"])
	assert.True(t, names["position_Goalkeeper"])
	assert.True(t, names["position_Forward"])
	// Arsenal fields four candidates so its cap can bind; Fulham fields
	// three and needs no row.
	assert.True(t, names["club_Arsenal"])
	assert.False(t, names["club_Fulham"])
}
