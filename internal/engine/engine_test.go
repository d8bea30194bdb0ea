package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/rules"
	"github.com/sims1253/kataphraktus/internal/world"
)

const (
	utInfantry  campaign.UnitTypeID = 1
	utCavalry   campaign.UnitTypeID = 2
	utFreeLance campaign.UnitTypeID = 3
)

// testMap builds a straight road of n flatland hexes with ids 1..n, each
// holding a small settlement.
func testMap(n int) *world.Map {
	hexes := make([]*world.Hex, 0, n)
	for i := 0; i < n; i++ {
		hexes = append(hexes, &world.Hex{
			ID:         world.HexID(i + 1),
			Coord:      world.HexCoord{Q: i, R: 0},
			Terrain:    world.TerrainFlatland,
			Settlement: 2,
			HasRoad:    true,
		})
	}
	return world.NewMap(hexes, nil, nil)
}

type fixture struct {
	c   *campaign.Campaign
	eng *Engine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	c := campaign.New(1, "test campaign", testMap(12), 5)
	c.UnitTypes[utInfantry] = &campaign.UnitType{
		ID: utInfantry, Name: "spearmen", Category: "infantry",
		BattleMultiplier: 1.0, CanTravelOffroad: true,
	}
	c.UnitTypes[utCavalry] = &campaign.UnitType{
		ID: utCavalry, Name: "horse", Category: "cavalry",
		BattleMultiplier: 1.5, CanTravelOffroad: true,
	}
	c.UnitTypes[utFreeLance] = &campaign.UnitType{
		ID: utFreeLance, Name: "free lances", Category: "infantry",
		BattleMultiplier: 1.5, CanTravelOffroad: true, Mercenary: true,
	}
	return &fixture{c: c, eng: New(rules.Default(), opts...)}
}

// addArmy creates a faction, commander, and army at the hex with the given
// composition, and recomputes its logistics.
func (f *fixture) addArmy(hex world.HexID, infantry, cavalry, wagons int) *campaign.Army {
	fid := f.c.NextFaction()
	f.c.Factions[fid] = &campaign.Faction{ID: fid, Name: "faction"}

	cid := f.c.NextCommander()
	f.c.Commanders[cid] = &campaign.Commander{
		ID: cid, Name: "commander", Faction: fid, Hex: hex,
		Status: campaign.CommanderActive,
	}

	aid := f.c.NextArmy()
	a := &campaign.Army{
		ID: aid, Commander: cid, Hex: hex, Status: campaign.ArmyIdle,
		MoraleCurrent: 9, MoraleResting: 9, MoraleMax: 12,
		HarriedOnDay: -1, LastBattleDay: -1,
		MovementPointsRemaining: 1.0,
	}
	if infantry > 0 {
		a.Detachments = append(a.Detachments, &campaign.Detachment{
			ID: f.c.NextDetachment(), UnitType: utInfantry, Soldiers: infantry, Wagons: wagons,
		})
	}
	if cavalry > 0 {
		a.Detachments = append(a.Detachments, &campaign.Detachment{
			ID: f.c.NextDetachment(), UnitType: utCavalry, Soldiers: cavalry,
		})
	}
	f.c.Armies[aid] = a
	f.eng.RecomputeLogistics(f.c, a)
	a.SuppliesCurrent = a.SuppliesCapacity / 2
	return a
}

func (f *fixture) commanderOf(a *campaign.Army) *campaign.Commander {
	return f.c.Commanders[a.Commander]
}

// submit runs an order through SubmitOrder with a fixed id so replays of the
// same fixture stay comparable.
func (f *fixture) submit(t *testing.T, a *campaign.Army, params campaign.OrderParams) *campaign.Order {
	t.Helper()
	var aid campaign.ArmyID
	cid := campaign.CommanderID(0)
	if a != nil {
		aid = a.ID
		cid = a.Commander
	}
	o := campaign.NewOrder(cid, aid, params)
	o.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(len(f.c.Orders) + 1)})
	_, err := f.eng.SubmitOrder(f.c, o)
	require.NoError(t, err)
	return o
}

func TestAdvanceValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.eng.Advance(f.c, 0)
	var verr *campaign.ValidationError
	assert.ErrorAs(t, err, &verr)

	f.c.Status = campaign.StatusCompleted
	_, err = f.eng.Advance(f.c, 1)
	var serr *campaign.InvalidStateError
	assert.ErrorAs(t, err, &serr)
}

func TestAdvanceRollsWeatherOncePerDay(t *testing.T) {
	f := newFixture(t)
	snap, err := f.eng.Advance(f.c, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Day)
	assert.Equal(t, 3, f.c.CurrentDay)
	assert.Equal(t, campaign.Morning, snap.Part)
	assert.Equal(t, campaign.Morning, f.c.Part)
	for day := 0; day < 3; day++ {
		assert.Contains(t, f.c.Weather, day)
	}

	weatherRolls := 0
	for _, e := range f.eng.AuditLog(0) {
		if e.Subsystem == "weather" {
			weatherRolls++
		}
	}
	assert.Equal(t, 3, weatherRolls)
}

func TestAdvanceDeterministicReplay(t *testing.T) {
	run := func() ([]byte, []int) {
		f := newFixture(t)
		a := f.addArmy(1, 4000, 1000, 10)
		f.submit(t, a, campaign.MoveParams{Legs: []campaign.MoveLeg{
			{ToHex: 2, DistanceMiles: 6, OnRoad: true},
			{ToHex: 3, DistanceMiles: 6, OnRoad: true},
		}})
		_, err := f.eng.Advance(f.c, 5)
		require.NoError(t, err)

		state, err := json.Marshal(f.c)
		require.NoError(t, err)
		var totals []int
		for _, e := range f.eng.AuditLog(0) {
			totals = append(totals, e.Total)
		}
		return state, totals
	}

	stateA, rollsA := run()
	stateB, rollsB := run()
	assert.Equal(t, rollsA, rollsB, "audit trail diverged between replays")
	assert.Equal(t, string(stateA), string(stateB), "campaign state diverged between replays")
}

func TestAdvanceAbortsOnInvariantViolation(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.LootCarried = -5

	_, err := f.eng.Advance(f.c, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative loot")
}

func TestWeeklyResetClearsMarchCounters(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.DaysMarchedThisWeek = 5
	a.ForcedMarchDays = 2
	f.c.CurrentDay = 7

	f.eng.beginDay(f.c)
	assert.Equal(t, 0, a.DaysMarchedThisWeek)
	assert.Equal(t, 0, a.ForcedMarchDays)
	assert.Equal(t, 8, a.MoraleCurrent, "a week of forced marching costs morale")
}

func TestStartOfDayFlags(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.SuppliesCurrent = 0
	a.LastBattleDay = -1
	a.MovementPointsRemaining = -0.4
	f.c.CurrentDay = 4

	f.eng.startOfDayFlags(f.c)
	assert.True(t, a.Undersupplied)
	assert.False(t, a.SickOrExhausted)
	assert.InDelta(t, 0.6, a.MovementPointsRemaining, 1e-9, "marching debt carries over")

	a.LastBattleDay = 3
	f.eng.startOfDayFlags(f.c)
	assert.True(t, a.SickOrExhausted, "day after battle counts as exhausted")
	assert.InDelta(t, 1.0, a.MovementPointsRemaining, 1e-9, "points cap at one day")
}
