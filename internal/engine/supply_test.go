package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/dice"
	"github.com/sims1253/kataphraktus/internal/world"
)

func TestRecomputeLogistics(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 10000, 2000, 100)

	assert.Equal(t, 3000, a.Noncombatants, "a quarter of the soldiers in followers")
	// (10000+3000)*15 + 2000*75 + 100*1000
	assert.Equal(t, 445000, a.SuppliesCapacity)
	// (10000+3000)*1 + 2000*10 + 100*10
	assert.Equal(t, 34000, a.DailyConsumption)
	// Foot column dominates: 13000/5000 miles.
	assert.InDelta(t, 2.6, a.ColumnLengthMiles, 1e-9)
}

func TestRecomputeLogisticsTraits(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 10000, 0, 0)
	cmd := f.commanderOf(a)

	cmd.Traits = []string{campaign.TraitSpartan}
	f.eng.RecomputeLogistics(f.c, a)
	assert.Equal(t, 1250, a.Noncombatants, "spartans carry half the followers")

	cmd.Traits = []string{campaign.TraitLogistician}
	f.eng.RecomputeLogistics(f.c, a)
	base := (10000 + 2500) * 15
	assert.Equal(t, base*120/100, a.SuppliesCapacity, "logisticians stretch capacity a fifth")
	assert.InDelta(t, 1.25, a.ColumnLengthMiles, 1e-9, "and halve the column")
}

func TestForageGathersSupplies(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(2, 1000, 0, 0)
	a.SuppliesCurrent = 0

	o := f.submit(t, a, campaign.ForageParams{Hexes: []world.HexID{2}})
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, 1000, a.SuppliesCurrent, "settlement 2 yields 2x500")
	assert.Equal(t, campaign.ArmyForaging, a.Status)
	st := f.c.State(2)
	assert.Equal(t, 4, st.ForagesRemaining)
	assert.Equal(t, f.c.CurrentDay, st.LastForagedDay)
}

func TestForageRespectsRangeAndExhaustion(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	t.Run("out of range", func(t *testing.T) {
		o := f.submit(t, a, campaign.ForageParams{Hexes: []world.HexID{9}})
		f.eng.dispatchDue(f.c)
		assert.Equal(t, campaign.OrderFailed, o.Status)
	})

	t.Run("torched hex", func(t *testing.T) {
		f.c.State(2).Torched = true
		o := f.submit(t, a, campaign.ForageParams{Hexes: []world.HexID{2}})
		f.eng.dispatchDue(f.c)
		assert.Equal(t, campaign.OrderFailed, o.Status)
	})

	t.Run("exhausted hex", func(t *testing.T) {
		f.c.State(1).ForagesRemaining = 0
		o := f.submit(t, a, campaign.ForageParams{Hexes: []world.HexID{1}})
		f.eng.dispatchDue(f.c)
		assert.Equal(t, campaign.OrderFailed, o.Status)
	})
}

func TestForageClampsAtCapacity(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 100, 0, 0)
	a.SuppliesCurrent = a.SuppliesCapacity - 1

	o := f.submit(t, a, campaign.ForageParams{Hexes: []world.HexID{1}})
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, a.SuppliesCapacity, a.SuppliesCurrent)
}

func TestTorchBurnsReach(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(3, 1000, 500, 0)

	o := f.submit(t, a, campaign.TorchParams{Hexes: []world.HexID{3}})
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, campaign.ArmyTorching, a.Status)
	// Reach 2 with cavalry: hexes 1..5 on the line all burn.
	for _, id := range []world.HexID{1, 2, 3, 4, 5} {
		st := f.c.State(id)
		assert.True(t, st.Torched, "hex %d", id)
		assert.Equal(t, 0, st.ForagesRemaining, "hex %d", id)
	}
	assert.False(t, f.c.State(6).Torched)
}

func TestTorchRevoltSpawnsRebels(t *testing.T) {
	// First roll 1 trips the revolt chance of 1; second roll sizes the rebel
	// band at 6x500.
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{1, 6}}))
	a := f.addArmy(3, 1000, 0, 0)
	armies := len(f.c.Armies)

	o := f.submit(t, a, campaign.TorchParams{Hexes: []world.HexID{3}})
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderCompleted, o.Status)
	require.Len(t, f.c.Armies, armies+1, "a rebel army rose")
	var rebel *campaign.Army
	for _, cand := range f.c.Armies {
		if cand.ID != a.ID {
			rebel = cand
		}
	}
	require.NotNil(t, rebel)
	assert.Equal(t, 3000, rebel.TotalSoldiers())
}

func TestSupplyTransfer(t *testing.T) {
	f := newFixture(t)
	giver := f.addArmy(1, 1000, 0, 0)
	taker := f.addArmy(1, 1000, 0, 0)
	taker.SuppliesCurrent = 0

	o := f.submit(t, giver, campaign.SupplyTransferParams{TargetArmy: taker.ID, Amount: 500})
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, 500, taker.SuppliesCurrent)
	assert.False(t, o.Result.Partial)
}

func TestSupplyTransferPartial(t *testing.T) {
	f := newFixture(t)
	giver := f.addArmy(1, 1000, 0, 0)
	giver.SuppliesCurrent = 100
	taker := f.addArmy(1, 1000, 0, 0)
	taker.SuppliesCurrent = 0

	o := f.submit(t, giver, campaign.SupplyTransferParams{TargetArmy: taker.ID, Amount: 500})
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, 100, taker.SuppliesCurrent, "clamped to what the giver had")
	assert.Equal(t, 0, giver.SuppliesCurrent)
	assert.True(t, o.Result.Partial)
}

func TestSupplyTransferRequiresSameHex(t *testing.T) {
	f := newFixture(t)
	giver := f.addArmy(1, 1000, 0, 0)
	taker := f.addArmy(4, 1000, 0, 0)

	o := f.submit(t, giver, campaign.SupplyTransferParams{TargetArmy: taker.ID, Amount: 500})
	f.eng.dispatchDue(f.c)
	assert.Equal(t, campaign.OrderFailed, o.Status)
}

func TestConsumeDailySupplies(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.SuppliesCurrent = a.DailyConsumption * 2

	f.eng.consumeDailySupplies(f.c)
	assert.Equal(t, a.DailyConsumption, a.SuppliesCurrent)
	assert.Equal(t, 0, a.DaysWithoutSupplies)
}

func TestStarvationErodesMoraleAndDissolves(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.SuppliesCurrent = 0

	f.eng.consumeDailySupplies(f.c)
	assert.Equal(t, 1, a.DaysWithoutSupplies)
	assert.Equal(t, 8, a.MoraleCurrent)

	a.DaysWithoutSupplies = 13
	f.eng.consumeDailySupplies(f.c)
	assert.NotContains(t, f.c.Armies, a.ID, "two starving weeks dissolve the army")
}

func TestRestRestoresMorale(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.MoraleCurrent = 5
	a.ForcedMarchDays = 2

	o := f.submit(t, a, campaign.RestParams{DurationDays: 3})
	f.eng.dispatchDue(f.c)

	require.Equal(t, campaign.OrderCompleted, o.Status)
	assert.Equal(t, campaign.ArmyResting, a.Status)
	assert.Equal(t, 9, a.MoraleCurrent, "rest restores morale to resting level")
	assert.Equal(t, 0, a.ForcedMarchDays)
	assert.Equal(t, 3, a.RestDaysRemaining)
}

func TestForageRange(t *testing.T) {
	f := newFixture(t)
	foot := f.addArmy(1, 1000, 0, 0)
	horse := f.addArmy(1, 1000, 500, 0)

	assert.Equal(t, 1, f.eng.forageRange(f.c, foot))
	assert.Equal(t, 2, f.eng.forageRange(f.c, horse))

	f.c.Weather[f.c.CurrentDay] = &campaign.Weather{Day: f.c.CurrentDay, Severity: "very_bad"}
	assert.Equal(t, 0, f.eng.forageRange(f.c, horse))

	f.commanderOf(horse).Traits = []string{campaign.TraitRanger}
	assert.Equal(t, 2, f.eng.forageRange(f.c, horse), "rangers see through the rain")
}
