package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/dice"
	"github.com/sims1253/kataphraktus/internal/world"
)

// settle populates a hex with levy-worthy population under the faction's
// control.
func (f *fixture) settle(hex world.HexID, faction campaign.FactionID, pop int, goodCountry bool) {
	f.c.Map.Hexes[hex].Settlement = pop
	f.c.Map.Hexes[hex].GoodCountry = goodCountry
	f.c.State(hex).ControllingFaction = faction
}

func TestRaiseArmyMusterLifecycle(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 500, 0, 0)
	faction := f.commanderOf(a).Faction
	sh := f.addStronghold(3, campaign.StrongholdCity, faction)
	newCmd := f.addCommander(faction, 0)

	f.settle(2, faction, 150, false)
	f.settle(3, faction, 150, false)
	f.settle(4, faction, 150, true)

	o := campaign.NewOrder(a.Commander, 0, campaign.RaiseArmyParams{
		Stronghold: sh.ID, NewCommander: newCmd.ID,
		InfantryType: utInfantry, CavalryType: utCavalry,
	})
	_, err := f.eng.SubmitOrder(f.c, o)
	require.NoError(t, err)
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderExecuting, o.Status, "the muster takes a month")
	require.Len(t, f.c.Projects, 1)
	project := f.c.Projects[campaign.ProjectID(1)]
	assert.Equal(t, 400, project.Infantry, "450 levied foot rounds down to full hundreds")
	assert.Equal(t, 37, project.Cavalry, "horse country sends a quarter mounted")
	assert.Equal(t, 7, project.Wagons)
	assert.Equal(t, 109, project.Noncombatants)
	assert.Equal(t, []world.HexID{2, 3, 4}, project.SourceHexes)
	assert.Equal(t, f.c.CurrentDay+30, project.CompletesOnDay)
	assert.Equal(t, project.CompletesOnDay, o.ExecuteDay, "the order sleeps until completion")

	for _, id := range project.SourceHexes {
		assert.Equal(t, f.c.CurrentDay, f.c.State(id).LastRecruitedDay)
	}

	// Mid-muster dispatches do nothing but wait.
	f.c.CurrentDay += 10
	f.eng.dispatchDue(f.c)
	assert.Equal(t, campaign.OrderExecuting, o.Status)

	f.c.CurrentDay = project.CompletesOnDay
	f.eng.dispatchDue(f.c)
	require.Equal(t, campaign.OrderCompleted, o.Status)
	require.True(t, project.Completed)

	raised := f.c.ArmyOf(newCmd.ID)
	require.NotNil(t, raised)
	assert.Equal(t, sh.Hex, raised.Hex, "rally defaults to the stronghold hex")
	assert.Equal(t, sh.Hex, newCmd.Hex)
	assert.Equal(t, 437, raised.TotalSoldiers())
	assert.Equal(t, raised.DailyConsumption*14, raised.SuppliesCurrent, "two weeks of supplies on hand")
}

func TestRaiseArmyTappedHexCanRevolt(t *testing.T) {
	// Roll 1 trips the revolt in the tapped hex, roll 4 sizes the rebels.
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{1, 4}}))
	a := f.addArmy(1, 500, 0, 0)
	faction := f.commanderOf(a).Faction
	sh := f.addStronghold(3, campaign.StrongholdCity, faction)
	newCmd := f.addCommander(faction, 0)

	f.settle(2, faction, 300, false)
	f.settle(4, faction, 300, false)
	f.c.State(2).LastRecruitedDay = 0
	f.c.CurrentDay = 5

	o := campaign.NewOrder(a.Commander, 0, campaign.RaiseArmyParams{
		Stronghold: sh.ID, NewCommander: newCmd.ID, InfantryType: utInfantry,
	})
	_, err := f.eng.SubmitOrder(f.c, o)
	require.NoError(t, err)
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderExecuting, o.Status)
	project := f.c.Projects[campaign.ProjectID(1)]
	assert.True(t, project.RevoltOccurred)
	assert.Equal(t, []world.HexID{4}, project.SourceHexes, "the risen hex sends no men")
	assert.Equal(t, 300, project.Infantry)

	var rebels *campaign.Army
	for _, cand := range f.c.Armies {
		if cand.ID != a.ID {
			rebels = cand
		}
	}
	require.NotNil(t, rebels)
	assert.Equal(t, 2000, rebels.TotalSoldiers())
	assert.Equal(t, world.HexID(2), rebels.Hex)
}

func TestRaiseArmyForeignStrongholdRefused(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 500, 0, 0)
	enemy := f.addArmy(9, 500, 0, 0)
	sh := f.addStronghold(3, campaign.StrongholdTown, f.commanderOf(enemy).Faction)
	newCmd := f.addCommander(f.commanderOf(a).Faction, 0)

	o := campaign.NewOrder(a.Commander, 0, campaign.RaiseArmyParams{
		Stronghold: sh.ID, NewCommander: newCmd.ID, InfantryType: utInfantry,
	})
	_, err := f.eng.resolveRaiseArmy(f.c, o, o.Params.(campaign.RaiseArmyParams))
	var auth *campaign.AuthorizationError
	require.ErrorAs(t, err, &auth)
}

func TestRaiseArmyDuplicateProjectRejected(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 500, 0, 0)
	faction := f.commanderOf(a).Faction
	sh := f.addStronghold(3, campaign.StrongholdCity, faction)
	newCmd := f.addCommander(faction, 0)
	f.settle(2, faction, 300, false)

	first := campaign.NewOrder(a.Commander, 0, campaign.RaiseArmyParams{
		Stronghold: sh.ID, NewCommander: newCmd.ID, InfantryType: utInfantry,
	})
	_, err := f.eng.SubmitOrder(f.c, first)
	require.NoError(t, err)
	f.eng.dispatchDue(f.c)
	require.Equal(t, campaign.OrderExecuting, first.Status)

	second := campaign.NewOrder(a.Commander, 0, campaign.RaiseArmyParams{
		Stronghold: sh.ID, NewCommander: newCmd.ID, InfantryType: utInfantry,
	})
	_, err = f.eng.SubmitOrder(f.c, second)
	var conflict *campaign.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCatchmentSplitsBetweenStrongholds(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 500, 0, 0)
	faction := f.commanderOf(a).Faction
	town := f.addStronghold(2, campaign.StrongholdTown, faction)
	city := f.addStronghold(6, campaign.StrongholdCity, faction)

	// Hex 3 sits nearer the town, hex 5 nearer the city. Hex 4 is
	// equidistant and the city outranks the town.
	f.settle(3, faction, 100, false)
	f.settle(5, faction, 100, false)
	f.settle(4, faction, 100, false)

	assert.Equal(t, []world.HexID{3}, f.eng.catchmentHexes(f.c, town))
	assert.ElementsMatch(t, []world.HexID{4, 5}, f.eng.catchmentHexes(f.c, city))
}

func TestAdvanceRecruitmentTicksProgress(t *testing.T) {
	f := newFixture(t)
	project := &campaign.RecruitmentProject{
		ID: f.c.NextProject(), CompletesOnDay: f.c.CurrentDay + 30,
	}
	f.c.Projects[project.ID] = project

	f.eng.advanceRecruitment(f.c)
	f.eng.advanceRecruitment(f.c)
	assert.Equal(t, 2, project.Progress)

	project.Completed = true
	f.eng.advanceRecruitment(f.c)
	assert.Equal(t, 2, project.Progress, "finished musters stop ticking")
}
