package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/world"
)

// carveCoastline turns the fixture's line map into a short coastal run:
// coast at the ends, open water between.
func (f *fixture) carveCoastline(from, to world.HexID) {
	f.c.Map.Hexes[from].Terrain = world.TerrainCoast
	f.c.Map.Hexes[to].Terrain = world.TerrainCoast
	for id := from + 1; id < to; id++ {
		f.c.Map.Hexes[id].Terrain = world.TerrainWater
	}
}

func (f *fixture) addShip(hex world.HexID, faction campaign.FactionID) *campaign.Ship {
	const stCoaster = campaign.ShipTypeID(1)
	if _, ok := f.c.ShipTypes[stCoaster]; !ok {
		f.c.ShipTypes[stCoaster] = &campaign.ShipType{
			ID: stCoaster, Name: "coaster", CapacitySoldiers: 2000,
			CapacityCavalry: 200, CapacitySupplies: 20000, CanSea: true,
		}
	}
	id := f.c.NextShip()
	ship := &campaign.Ship{
		ID: id, Type: stCoaster, ControllingFaction: faction,
		Hex: hex, Status: campaign.ShipDocked,
	}
	f.c.Ships[id] = ship
	return ship
}

func TestEmbarkAndDisembark(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 100, 0)
	ship := f.addShip(1, f.commanderOf(a).Faction)

	o := f.submit(t, a, campaign.EmbarkParams{Ship: ship.ID})
	f.eng.dispatchDue(f.c)
	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, campaign.ArmyEmbarked, a.Status)
	assert.Equal(t, ship.ID, a.EmbarkedOn)
	assert.Equal(t, a.ID, ship.EmbarkedArmy)
	assert.Equal(t, campaign.ShipTransport, ship.Status)

	o = f.submit(t, a, campaign.DisembarkParams{Ship: ship.ID})
	f.eng.dispatchDue(f.c)
	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, campaign.ArmyIdle, a.Status)
	assert.Equal(t, campaign.ArmyID(0), ship.EmbarkedArmy)
	assert.Equal(t, campaign.ShipDocked, ship.Status)
	assert.Equal(t, ship.Hex, a.Hex)
	assert.Equal(t, ship.Hex, f.commanderOf(a).Hex)
}

func TestEmbarkCapacity(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)

	t.Run("too much foot", func(t *testing.T) {
		a := f.addArmy(1, 3000, 0, 0)
		ship := f.addShip(1, f.commanderOf(a).Faction)
		_, err := f.eng.resolveEmbark(f.c, a, campaign.EmbarkParams{Ship: ship.ID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "berths")
	})

	t.Run("too much horse", func(t *testing.T) {
		a := f.addArmy(1, 100, 500, 0)
		ship := f.addShip(1, f.commanderOf(a).Faction)
		_, err := f.eng.resolveEmbark(f.c, a, campaign.EmbarkParams{Ship: ship.ID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stalls")
	})
}

func TestEmbarkRequiresSharedHex(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 0, 0)
	ship := f.addShip(5, f.commanderOf(a).Faction)

	_, err := f.eng.resolveEmbark(f.c, a, campaign.EmbarkParams{Ship: ship.ID})
	var route *campaign.InvalidRouteError
	require.ErrorAs(t, err, &route)
}

func TestEmbarkLoadedShipRefused(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	first := f.addArmy(1, 1000, 0, 0)
	second := f.addArmy(1, 1000, 0, 0)
	ship := f.addShip(1, f.commanderOf(first).Faction)

	_, err := f.eng.resolveEmbark(f.c, first, campaign.EmbarkParams{Ship: ship.ID})
	require.NoError(t, err)
	_, err = f.eng.resolveEmbark(f.c, second, campaign.EmbarkParams{Ship: ship.ID})
	var state *campaign.InvalidStateError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, "loaded", state.State)
}

func TestDisembarkAtSeaRefused(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 0, 0)
	ship := f.addShip(1, f.commanderOf(a).Faction)

	_, err := f.eng.resolveEmbark(f.c, a, campaign.EmbarkParams{Ship: ship.ID})
	require.NoError(t, err)
	ship.TravelDaysLeft = 0.5
	ship.Route = []world.HexID{5}

	_, err = f.eng.resolveDisembark(f.c, a, campaign.DisembarkParams{Ship: ship.ID})
	var state *campaign.InvalidStateError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, "at sea", state.State)
}

func TestNavalMoveSetsCourse(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 0, 0)
	ship := f.addShip(1, f.commanderOf(a).Faction)

	res, err := f.eng.resolveNavalMove(f.c, campaign.NavalMoveParams{
		Ship: ship.ID, Route: []world.HexID{5},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	// 4 sea hexes at 6 miles each, 48 miles per day.
	assert.InDelta(t, 0.5, ship.TravelDaysLeft, 1e-9)
	assert.Equal(t, campaign.ShipSailing, ship.Status)
	assert.Equal(t, []world.HexID{5}, ship.Route)
}

func TestNavalMoveHostileWatersAreSlower(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 0, 0)
	enemy := f.addArmy(9, 1000, 0, 0)
	ship := f.addShip(1, f.commanderOf(a).Faction)
	f.c.State(5).ControllingFaction = f.commanderOf(enemy).Faction

	_, err := f.eng.resolveNavalMove(f.c, campaign.NavalMoveParams{
		Ship: ship.ID, Route: []world.HexID{5},
	})
	require.NoError(t, err)
	assert.InDelta(t, 24.0/36.0, ship.TravelDaysLeft, 1e-9)
}

func TestNavalMoveRejectsLandRoute(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 0, 0)
	ship := f.addShip(1, f.commanderOf(a).Faction)

	// Hex 8 is still flatland.
	_, err := f.eng.resolveNavalMove(f.c, campaign.NavalMoveParams{
		Ship: ship.ID, Route: []world.HexID{8},
	})
	var route *campaign.InvalidRouteError
	require.ErrorAs(t, err, &route)
}

func TestNavalMoveWhileUnderWayRefused(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 0, 0)
	ship := f.addShip(1, f.commanderOf(a).Faction)
	ship.TravelDaysLeft = 0.25

	_, err := f.eng.resolveNavalMove(f.c, campaign.NavalMoveParams{
		Ship: ship.ID, Route: []world.HexID{5},
	})
	var state *campaign.InvalidStateError
	require.ErrorAs(t, err, &state)
}

func TestAdvanceShipsLandsArrivals(t *testing.T) {
	f := newFixture(t)
	f.carveCoastline(1, 5)
	a := f.addArmy(1, 1000, 0, 0)
	ship := f.addShip(1, f.commanderOf(a).Faction)

	_, err := f.eng.resolveEmbark(f.c, a, campaign.EmbarkParams{Ship: ship.ID})
	require.NoError(t, err)
	_, err = f.eng.resolveNavalMove(f.c, campaign.NavalMoveParams{
		Ship: ship.ID, Route: []world.HexID{5},
	})
	require.NoError(t, err)
	assert.Equal(t, campaign.ShipTransport, ship.Status, "a loaded ship stays in transport status")

	f.eng.advanceShips(f.c)
	assert.InDelta(t, 0.25, ship.TravelDaysLeft, 1e-9)
	assert.Equal(t, world.HexID(1), a.Hex, "no landfall mid-passage")

	f.eng.advanceShips(f.c)
	assert.Zero(t, ship.TravelDaysLeft)
	assert.Equal(t, world.HexID(5), ship.Hex)
	assert.Empty(t, ship.Route)
	assert.Equal(t, world.HexID(5), a.Hex)
	assert.Equal(t, world.HexID(5), f.commanderOf(a).Hex)
}
