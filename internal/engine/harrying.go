package engine

import (
	"fmt"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// resolveHarry sends detached riders against a nearby column. Success kills,
// burns, or steals in proportion to the detachment's strength; failure costs
// the raiders a share of their own. A harried army crawls and cannot rest
// for the remainder of the day.
func (e *Engine) resolveHarry(c *campaign.Campaign, a *campaign.Army, p campaign.HarryParams) (*campaign.OrderResult, error) {
	target, ok := c.Armies[p.TargetArmy]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "army", ID: p.TargetArmy}
	}
	if c.Map.HexDistance(a.Hex, target.Hex) > 1 {
		return nil, &campaign.InvalidRouteError{Reason: "target column is out of striking range"}
	}

	detached := 0
	modifier := 0
	var raiders []*campaign.Detachment
	for _, id := range p.Detachments {
		d := a.Detachment(id)
		if d == nil {
			return nil, &campaign.NotFoundError{Kind: "detachment", ID: id}
		}
		if d.Away(c.CurrentDay) {
			return nil, &campaign.InvalidStateError{Kind: "detachment", ID: id, State: "away", Action: "harry"}
		}
		raiders = append(raiders, d)
		detached += d.Soldiers
		ut := c.UnitTypes[d.UnitType]
		if ut == nil {
			continue
		}
		if ut.Category == "cavalry" {
			modifier = maxOf(modifier, 2)
		} else if ut.Skirmisher {
			modifier = maxOf(modifier, 1)
		}
	}
	if detached == 0 {
		return nil, &campaign.ValidationError{Field: "detachments", Reason: "raiding party has no soldiers"}
	}

	threshold := e.rules.Harrying.BaseSuccessThreshold + modifier
	if threshold > 6 {
		threshold = 6
	}
	roll, err := e.rec(c).Roll("harrying", seed(c, fmt.Sprintf("harry:%d:%d", a.ID, target.ID)),
		"1d6", nil, map[string]int{"threshold": threshold},
		fmt.Sprintf("harry attempt by army %d against army %d", a.ID, target.ID))
	if err != nil {
		return nil, err
	}

	a.Status = campaign.ArmyHarrying
	objective := p.Objective
	if objective == "" {
		objective = campaign.HarryKill
	}

	if roll.Total > threshold {
		lost := 0
		for _, d := range raiders {
			cut := int(float64(d.Soldiers) * e.rules.Harrying.FailureLossFraction)
			d.Soldiers -= cut
			lost += cut
		}
		e.RecomputeLogistics(c, a)
		return &campaign.OrderResult{
			Detail: fmt.Sprintf("raid beaten off, %d raiders lost", lost),
		}, nil
	}

	// The column is caught either way: half pace and no rest today.
	target.HarriedOnDay = c.CurrentDay
	target.HarriedPenalty = 0.5

	var detail string
	switch objective {
	case campaign.HarryBurn:
		burn, err := e.rec(c).Roll("harrying", seed(c, fmt.Sprintf("harry_burn:%d:%d", a.ID, target.ID)),
			"2d6", nil, map[string]int{"modifier": modifier},
			fmt.Sprintf("supplies torched in army %d's train", target.ID))
		if err != nil {
			return nil, err
		}
		burned := detached * (burn.Total + modifier)
		if burned > target.SuppliesCurrent {
			burned = target.SuppliesCurrent
		}
		target.SuppliesCurrent -= burned
		detail = fmt.Sprintf("burned %d supplies in army %d's train", burned, target.ID)
	case campaign.HarrySteal:
		steal, err := e.rec(c).Roll("harrying", seed(c, fmt.Sprintf("harry_steal:%d:%d", a.ID, target.ID)),
			"1d6", nil, map[string]int{"modifier": modifier},
			fmt.Sprintf("plunder taken from army %d", target.ID))
		if err != nil {
			return nil, err
		}
		want := detached * (steal.Total + modifier)
		loot := minOf(want, target.LootCarried)
		target.LootCarried -= loot
		a.LootCarried += loot
		supplies := minOf(want-loot, target.SuppliesCurrent)
		target.SuppliesCurrent -= supplies
		a.SuppliesCurrent += supplies
		if a.SuppliesCurrent > a.SuppliesCapacity {
			a.SuppliesCurrent = a.SuppliesCapacity
		}
		detail = fmt.Sprintf("took %d loot and %d supplies from army %d", loot, supplies, target.ID)
	case campaign.HarryIntimidate:
		e.adjustMorale(target, -1)
		detail = fmt.Sprintf("shadowed army %d, nerves fraying", target.ID)
	default:
		kills := int(float64(detached) * e.rules.Harrying.KillFraction)
		killed := e.inflictLosses(c, target, kills)
		detail = fmt.Sprintf("cut down %d of army %d's soldiers", killed, target.ID)
	}

	return &campaign.OrderResult{Detail: detail}, nil
}

// inflictLosses spreads a fixed number of casualties across the target's
// detachments in id order.
func (e *Engine) inflictLosses(c *campaign.Campaign, a *campaign.Army, total int) int {
	remaining := total
	for _, id := range detachmentIDs(a) {
		if remaining <= 0 {
			break
		}
		d := a.Detachment(id)
		cut := minOf(remaining, d.Soldiers)
		d.Soldiers -= cut
		remaining -= cut
	}
	e.RecomputeLogistics(c, a)
	return total - remaining
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b int) int {
	if a < b {
		return a
	}
	return b
}
