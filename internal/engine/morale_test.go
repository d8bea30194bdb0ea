package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/dice"
)

func TestAdjustMoraleClamps(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	f.eng.adjustMorale(a, -20)
	assert.Equal(t, 2, a.MoraleCurrent, "morale never falls below the floor")

	f.eng.adjustMorale(a, 20)
	assert.Equal(t, 12, a.MoraleCurrent, "morale never rises above the army max")
}

func TestMoraleCheckPassesAtOrUnderMorale(t *testing.T) {
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{9}}))
	a := f.addArmy(1, 1000, 0, 0)

	ok, detail := f.eng.moraleCheck(f.c, a, "test")
	assert.True(t, ok)
	assert.Empty(t, detail)
}

func TestMoraleCheckFailureConsequences(t *testing.T) {
	t.Run("mass desertion on 3", func(t *testing.T) {
		f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{3}}))
		a := f.addArmy(1, 1000, 0, 0)
		a.MoraleCurrent = 2

		ok, detail := f.eng.moraleCheck(f.c, a, "test")
		assert.False(t, ok)
		assert.Contains(t, detail, "mass desertion")
		assert.Equal(t, 700, a.TotalSoldiers())
	})

	t.Run("major desertion on 5", func(t *testing.T) {
		f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{5}}))
		a := f.addArmy(1, 1000, 0, 0)
		a.MoraleCurrent = 2

		_, detail := f.eng.moraleCheck(f.c, a, "test")
		assert.Contains(t, detail, "major desertion")
		assert.Equal(t, 800, a.TotalSoldiers())
	})

	t.Run("single defection on 7", func(t *testing.T) {
		f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{7}}))
		a := f.addArmy(1, 1000, 500, 0)
		a.MoraleCurrent = 2
		before := len(a.Detachments)

		_, detail := f.eng.moraleCheck(f.c, a, "test")
		assert.Contains(t, detail, "defected")
		assert.Len(t, a.Detachments, before-1)
	})

	t.Run("desertion on 8", func(t *testing.T) {
		f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{8}}))
		a := f.addArmy(1, 1000, 0, 0)
		a.MoraleCurrent = 2

		_, detail := f.eng.moraleCheck(f.c, a, "test")
		assert.Contains(t, detail, "desertion")
		assert.Equal(t, 900, a.TotalSoldiers())
	})

	t.Run("temporary departure on 11", func(t *testing.T) {
		// Consequence 11, then 2d6 absence length of 5.
		f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{11, 5}}))
		a := f.addArmy(1, 1000, 0, 0)
		a.MoraleCurrent = 2

		_, detail := f.eng.moraleCheck(f.c, a, "test")
		assert.Contains(t, detail, "departs temporarily")
		d := a.Detachments[0]
		assert.Equal(t, f.c.CurrentDay+5, d.AwayUntilDay)
		assert.True(t, d.Away(f.c.CurrentDay))
	})

	t.Run("camp followers swell on 10", func(t *testing.T) {
		f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{10}}))
		a := f.addArmy(1, 1000, 0, 0)
		a.MoraleCurrent = 2
		nc := a.Noncombatants

		_, detail := f.eng.moraleCheck(f.c, a, "test")
		assert.Contains(t, detail, "camp followers")
		assert.Equal(t, nc+50, a.Noncombatants)
	})

	t.Run("grumbling on 12", func(t *testing.T) {
		f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{12}}))
		a := f.addArmy(1, 1000, 0, 0)
		a.MoraleCurrent = 2

		_, detail := f.eng.moraleCheck(f.c, a, "test")
		assert.Equal(t, "grumbling, no consequence", detail)
		assert.Equal(t, 1000, a.TotalSoldiers())
	})
}

func TestPoetSoftensConsequence(t *testing.T) {
	// A failed 6 would splinter the army; the poet bumps it to an 8, a
	// plain 10 percent desertion.
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{6}}))
	a := f.addArmy(1, 1000, 0, 0)
	a.MoraleCurrent = 2
	f.commanderOf(a).Traits = []string{campaign.TraitPoet}

	_, detail := f.eng.moraleCheck(f.c, a, "test")
	assert.Contains(t, detail, "desertion")
	assert.Len(t, a.Detachments, 1, "no detachment left outright")
	assert.Equal(t, 900, a.TotalSoldiers())
}

func TestVeteranAvertsMutiny(t *testing.T) {
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{2}}))
	a := f.addArmy(1, 1000, 0, 0)
	a.MoraleCurrent = 2
	f.commanderOf(a).Traits = []string{campaign.TraitVeteran}

	ok, detail := f.eng.moraleCheck(f.c, a, "test")
	assert.False(t, ok)
	assert.Contains(t, detail, "averted by veteran")
	require.Len(t, a.Detachments, 1)
	assert.Equal(t, 1000, a.TotalSoldiers())
}

func TestMutinyDefectsDetachments(t *testing.T) {
	// Consequence 2, then one near-certain defection check per detachment.
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{2, 20, 20}}))
	a := f.addArmy(1, 1000, 500, 0)
	a.MoraleCurrent = 2

	_, detail := f.eng.moraleCheck(f.c, a, "test")
	assert.Contains(t, detail, "mutiny")
	assert.Empty(t, a.Detachments)
	assert.Equal(t, 0, a.TotalSoldiers())
	assert.Equal(t, 0, a.DailyConsumption, "logistics recomputed after the defections")
}
