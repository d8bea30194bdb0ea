package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/dice"
)

func TestHireMercenaries(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	contract, err := f.eng.HireMercenaries(f.c, a, "White Company", utFreeLance, 600)
	require.NoError(t, err)

	assert.Equal(t, 6, contract.DailyUpkeep, "1 loot per 100 foot per day")
	assert.Equal(t, campaign.ContractActive, contract.Status)
	assert.Equal(t, a.ID, contract.Army)
	assert.Equal(t, 1600, a.TotalSoldiers())

	var company *campaign.Detachment
	for _, d := range a.Detachments {
		if d.Name == "White Company" {
			company = d
		}
	}
	require.NotNil(t, company)
	assert.Equal(t, 600, company.Soldiers)
}

func TestHireMercenariesCavalryUpkeep(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	contract, err := f.eng.HireMercenaries(f.c, a, "Stradioti", utCavalry, 400)
	require.NoError(t, err)
	assert.Equal(t, 12, contract.DailyUpkeep, "3 loot per 100 horse per day")
}

func TestHireMercenariesMinimumUpkeep(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	contract, err := f.eng.HireMercenaries(f.c, a, "Forlorn Hope", utFreeLance, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, contract.DailyUpkeep, "even a handful wants a coin a day")
}

func TestPayMercenariesFromLoot(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.LootCarried = 100
	contract, err := f.eng.HireMercenaries(f.c, a, "White Company", utFreeLance, 600)
	require.NoError(t, err)
	f.c.CurrentDay = 3

	f.eng.payMercenaries(f.c)
	assert.Equal(t, 94, a.LootCarried)
	assert.Equal(t, 0, contract.DaysUnpaid)
	assert.Equal(t, 3, contract.LastUpkeepDay)
	assert.Equal(t, 9, a.MoraleCurrent)
}

func TestUnpaidMercenariesSourMorale(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	a.LootCarried = 0
	contract, err := f.eng.HireMercenaries(f.c, a, "White Company", utFreeLance, 600)
	require.NoError(t, err)

	f.eng.payMercenaries(f.c)
	assert.Equal(t, 1, contract.DaysUnpaid)
	assert.Equal(t, 8, a.MoraleCurrent)
	assert.Equal(t, campaign.ContractActive, contract.Status, "inside the grace period")
	assert.Equal(t, 1600, a.TotalSoldiers())
}

func TestMercenariesDesertPastGrace(t *testing.T) {
	// A 6 on the desertion die and the company walks.
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{6}}))
	a := f.addArmy(1, 1000, 0, 0)
	a.LootCarried = 0
	contract, err := f.eng.HireMercenaries(f.c, a, "White Company", utFreeLance, 600)
	require.NoError(t, err)
	contract.DaysUnpaid = 3

	f.eng.payMercenaries(f.c)
	assert.Equal(t, campaign.ContractDeserted, contract.Status)
	assert.Equal(t, 1000, a.TotalSoldiers(), "only the company left")
	for _, d := range a.Detachments {
		assert.NotEqual(t, "White Company", d.Name)
	}
}

func TestMercenariesMayStayPastGrace(t *testing.T) {
	// Anything under a 6 and the company grumbles but stays.
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{3}}))
	a := f.addArmy(1, 1000, 0, 0)
	a.LootCarried = 0
	contract, err := f.eng.HireMercenaries(f.c, a, "White Company", utFreeLance, 600)
	require.NoError(t, err)
	contract.DaysUnpaid = 5

	f.eng.payMercenaries(f.c)
	assert.Equal(t, campaign.ContractActive, contract.Status)
	assert.Equal(t, 1600, a.TotalSoldiers())
	assert.Equal(t, 6, contract.DaysUnpaid)
}

func TestContractTerminatesWithDeadArmy(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	contract, err := f.eng.HireMercenaries(f.c, a, "White Company", utFreeLance, 600)
	require.NoError(t, err)

	delete(f.c.Armies, a.ID)
	f.eng.payMercenaries(f.c)
	assert.Equal(t, campaign.ContractTerminated, contract.Status)
}

func TestHireMercenariesValidation(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	_, err := f.eng.HireMercenaries(f.c, a, "Ghost Company", campaign.UnitTypeID(99), 100)
	var notFound *campaign.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = f.eng.HireMercenaries(f.c, a, "Empty Company", utFreeLance, 0)
	var invalid *campaign.ValidationError
	require.ErrorAs(t, err, &invalid)
}
