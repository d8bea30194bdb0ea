package engine

import (
	"fmt"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// HireMercenaries attaches a company to an army under a daily-upkeep
// contract. The company arrives as a ready detachment.
func (e *Engine) HireMercenaries(c *campaign.Campaign, army *campaign.Army, companyName string, unitType campaign.UnitTypeID, soldiers int) (*campaign.MercenaryContract, error) {
	ut, ok := c.UnitTypes[unitType]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "unit type", ID: unitType}
	}
	if soldiers <= 0 {
		return nil, &campaign.ValidationError{Field: "soldiers", Reason: "company must have soldiers"}
	}

	perHead := e.rules.Mercenaries.InfantryUpkeepPerDay
	if ut.Category == "cavalry" {
		perHead = e.rules.Mercenaries.CavalryUpkeepPerDay
	}
	upkeep := soldiers * perHead / 100
	if upkeep < 1 {
		upkeep = 1
	}

	army.Detachments = append(army.Detachments, &campaign.Detachment{
		ID: c.NextDetachment(), UnitType: unitType, Soldiers: soldiers, Name: companyName,
	})
	e.RecomputeLogistics(c, army)

	id := c.NextContract()
	contract := &campaign.MercenaryContract{
		ID:            id,
		Commander:     army.Commander,
		Army:          army.ID,
		CompanyName:   companyName,
		DailyUpkeep:   upkeep,
		StartDay:      c.CurrentDay,
		LastUpkeepDay: c.CurrentDay,
		Status:        campaign.ContractActive,
	}
	c.Contracts[id] = contract
	return contract, nil
}

// payMercenaries settles every active contract from its army's loot at the
// end of the day. Companies left unpaid sour the whole army's mood and,
// past the grace period, roll to desert.
func (e *Engine) payMercenaries(c *campaign.Campaign) {
	ids := make([]campaign.ContractID, 0, len(c.Contracts))
	for id := range c.Contracts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		contract := c.Contracts[id]
		if contract.Status != campaign.ContractActive {
			continue
		}
		army := c.Armies[contract.Army]
		if army == nil {
			contract.Status = campaign.ContractTerminated
			continue
		}

		if army.LootCarried >= contract.DailyUpkeep {
			army.LootCarried -= contract.DailyUpkeep
			contract.LastUpkeepDay = c.CurrentDay
			contract.DaysUnpaid = 0
			continue
		}

		contract.DaysUnpaid++
		e.adjustMorale(army, -e.rules.Mercenaries.MoralePenaltyUnpaid)
		if contract.DaysUnpaid <= e.rules.Mercenaries.GraceDaysWithoutPay {
			continue
		}

		merc := e.rules.Mercenaries
		check, err := e.rec(c).Check("mercenaries", seed(c, fmt.Sprintf("desertion:%d", contract.ID)),
			float64(merc.DesertionChanceNumerator)/float64(merc.DesertionChanceDenominator),
			fmt.Sprintf("1d%d", merc.DesertionChanceDenominator), nil,
			fmt.Sprintf("company %s deserts army %d", contract.CompanyName, army.ID))
		if err != nil || !check.Success {
			continue
		}

		for _, did := range detachmentIDs(army) {
			d := army.Detachment(did)
			ut := c.UnitTypes[d.UnitType]
			if ut != nil && ut.Mercenary || d.Name == contract.CompanyName {
				removeDetachment(army, did)
			}
		}
		e.RecomputeLogistics(c, army)
		contract.Status = campaign.ContractDeserted
		e.logger.Info("mercenaries deserted", "campaign", c.ID, "contract", contract.ID, "army", army.ID)
	}
}
