package engine

import (
	"fmt"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/world"
)

// Composition aggregates what an army is made of, split the way the supply
// rules need it.
type Composition struct {
	Infantry      int
	Cavalry       int
	Wagons        int
	Engines       int
	Noncombatants int
	HasCavalry    bool
	CavalryOnly   bool
	CanOffroad    bool
}

// composition tallies an army's detachments against the unit type catalog.
// Departed detachments do not count.
func (e *Engine) composition(c *campaign.Campaign, a *campaign.Army) Composition {
	comp := Composition{CavalryOnly: true, CanOffroad: true}
	for _, d := range a.Detachments {
		if d.Away(c.CurrentDay) {
			continue
		}
		ut := c.UnitTypes[d.UnitType]
		cavalry := ut != nil && ut.Category == "cavalry"
		if cavalry {
			comp.Cavalry += d.Soldiers
			comp.HasCavalry = true
		} else {
			comp.Infantry += d.Soldiers
			comp.CavalryOnly = false
			if ut != nil && ut.Skirmisher {
				comp.HasCavalry = true
			}
		}
		if ut != nil && !ut.CanTravelOffroad {
			comp.CanOffroad = false
		}
		comp.Wagons += d.Wagons
		comp.Engines += d.Engines
	}
	if comp.Infantry == 0 && comp.Cavalry == 0 {
		comp.CavalryOnly = false
	}
	comp.Noncombatants = a.Noncombatants
	return comp
}

// RecomputeLogistics refreshes the derived fields of an army after its
// detachments change: noncombatant count, carrying capacity, daily
// consumption, and column length. Supplies are clamped to the new capacity.
func (e *Engine) RecomputeLogistics(c *campaign.Campaign, a *campaign.Army) {
	sup := e.rules.Supply
	comp := e.composition(c, a)
	cmd := c.Commanders[a.Commander]

	ratio := sup.BaseNoncombatantRatio
	if cmd != nil && cmd.HasTrait(campaign.TraitSpartan) {
		ratio = sup.SpartanRatio
	}
	a.Noncombatants = int(float64(comp.Infantry+comp.Cavalry) * ratio)
	comp.Noncombatants = a.Noncombatants

	capacity := (comp.Infantry+comp.Noncombatants)*sup.InfantryCapacity +
		comp.Cavalry*sup.CavalryCapacity +
		comp.Wagons*sup.WagonCapacity
	if cmd != nil && cmd.HasTrait(campaign.TraitLogistician) {
		capacity = int(float64(capacity) * 1.20)
	}
	a.SuppliesCapacity = capacity

	a.DailyConsumption = (comp.Infantry+comp.Noncombatants)*sup.InfantryConsumption +
		comp.Cavalry*sup.CavalryConsumption +
		comp.Wagons*sup.WagonConsumption

	// Column stretches 1 mile per 5000 infantry and noncombatants, 2000
	// cavalry, or 50 wagons, whichever component is longest.
	infantryMiles := float64(comp.Infantry+comp.Noncombatants) / 5000.0
	cavalryMiles := float64(comp.Cavalry) / 2000.0
	wagonMiles := float64(comp.Wagons) / 50.0
	column := infantryMiles
	if cavalryMiles > column {
		column = cavalryMiles
	}
	if wagonMiles > column {
		column = wagonMiles
	}
	if cmd != nil && cmd.HasTrait(campaign.TraitLogistician) {
		column *= 0.5
	}
	a.ColumnLengthMiles = column

	if a.SuppliesCurrent > a.SuppliesCapacity {
		a.SuppliesCurrent = a.SuppliesCapacity
	}
}

// forageRange computes how far from its hex an army can forage or torch.
func (e *Engine) forageRange(c *campaign.Campaign, a *campaign.Army) int {
	vis := e.rules.Visibility
	comp := e.composition(c, a)
	cmd := c.Commanders[a.Commander]

	r := vis.BaseRadius
	if comp.HasCavalry {
		r += vis.CavalryBonus
		if cmd != nil && cmd.HasTrait(campaign.TraitOutrider) {
			r += vis.OutriderBonus
		}
	}

	penalty := 0
	switch c.TodaysWeather().Severity {
	case "bad":
		penalty = vis.BadWeatherPenalty
	case "very_bad":
		penalty = vis.VeryBadWeatherPenalty
	}
	if cmd != nil && cmd.HasTrait(campaign.TraitRanger) {
		penalty = 0
	}
	r -= penalty
	if r < 0 {
		r = 0
	}
	return r
}

func (e *Engine) resolveForage(c *campaign.Campaign, a *campaign.Army, p campaign.ForageParams) (*campaign.OrderResult, error) {
	if a.EmbarkedOn != 0 {
		return nil, &campaign.InvalidStateError{Kind: "army", ID: a.ID, State: string(a.Status), Action: "forage"}
	}
	reach := e.forageRange(c, a)
	cmd := c.Commanders[a.Commander]

	gained := 0
	var foraged []world.HexID
	events := make([]map[string]any, 0, len(p.Hexes))
	for _, id := range p.Hexes {
		hx := c.Map.Hex(id)
		if hx == nil {
			events = append(events, map[string]any{"hex": id, "skipped": "hex not found"})
			continue
		}
		if c.Map.HexDistance(a.Hex, id) > reach {
			events = append(events, map[string]any{"hex": id, "skipped": "out of range"})
			continue
		}
		st := c.State(id)
		if st.Torched {
			events = append(events, map[string]any{"hex": id, "skipped": "torched"})
			continue
		}
		if st.ForagesRemaining <= 0 {
			events = append(events, map[string]any{"hex": id, "skipped": "forage exhausted"})
			continue
		}
		if hx.Settlement <= 0 {
			events = append(events, map[string]any{"hex": id, "skipped": "no settlement"})
			continue
		}

		if e.checkUnrest(c, a, id, "forage") {
			e.spawnRebels(c, a.Hex, id)
			events = append(events, map[string]any{"hex": id, "revolt": true})
		}

		yield := hx.Settlement * e.rules.Supply.ForagingMultiplier
		if cmd != nil && cmd.HasTrait(campaign.TraitRaider) {
			yield = int(float64(yield) * 1.10)
		}
		st.ForagesRemaining--
		st.LastForagedDay = c.CurrentDay
		gained += yield
		foraged = append(foraged, id)
		events = append(events, map[string]any{"hex": id, "supplies": yield})
	}

	if len(foraged) == 0 {
		return nil, fmt.Errorf("no hex could be foraged")
	}
	a.SuppliesCurrent += gained
	if a.SuppliesCurrent > a.SuppliesCapacity {
		a.SuppliesCurrent = a.SuppliesCapacity
	}
	a.Status = campaign.ArmyForaging
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("foraged %d supplies from %d hexes", gained, len(foraged)),
		Events: events,
	}, nil
}

func (e *Engine) resolveTorch(c *campaign.Campaign, a *campaign.Army, p campaign.TorchParams) (*campaign.OrderResult, error) {
	if a.EmbarkedOn != 0 {
		return nil, &campaign.InvalidStateError{Kind: "army", ID: a.ID, State: string(a.Status), Action: "torch"}
	}
	reach := e.forageRange(c, a)

	var torched []world.HexID
	events := make([]map[string]any, 0, len(p.Hexes))
	for _, id := range p.Hexes {
		if c.Map.Hex(id) == nil {
			events = append(events, map[string]any{"hex": id, "skipped": "hex not found"})
			continue
		}
		if c.Map.HexDistance(a.Hex, id) > reach {
			events = append(events, map[string]any{"hex": id, "skipped": "out of range"})
			continue
		}

		if e.checkUnrest(c, a, id, "torch") {
			e.spawnRebels(c, a.Hex, id)
			events = append(events, map[string]any{"hex": id, "revolt": true})
		}

		// Torching scorches the target and everything in burn reach.
		for _, burned := range c.Map.HexesInRange(id, reach) {
			st := c.State(burned)
			st.Torched = true
			st.ForagesRemaining = 0
			st.LastTorchedDay = c.CurrentDay
		}
		torched = append(torched, id)
		events = append(events, map[string]any{"hex": id, "torched": true})
	}

	if len(torched) == 0 {
		return nil, fmt.Errorf("no hex could be torched")
	}
	a.Status = campaign.ArmyTorching
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("torched %d hexes", len(torched)),
		Events: events,
	}, nil
}

// checkUnrest rolls for a local revolt when an army strips a hex. Torching
// always risks revolt; repeat foraging risks it only inside the cooldown.
func (e *Engine) checkUnrest(c *campaign.Campaign, a *campaign.Army, hex world.HexID, action string) bool {
	sup := e.rules.Supply
	st := c.State(hex)

	chance := sup.TorchRevoltChance
	if action == "forage" {
		if st.LastForagedDay < 0 || c.CurrentDay-st.LastForagedDay > sup.RevoltCooldownDays {
			return false
		}
		chance = sup.ForageRevoltChanceRepeat
	}

	cmd := c.Commanders[a.Commander]
	if cmd != nil {
		if c.TerritoryFor(cmd.Faction, hex) == campaign.TerritoryHostile {
			chance += sup.RevoltHostileModifier
		}
		if cmd.HasTrait(campaign.TraitHonorable) && chance > 0 {
			chance--
		}
	}
	if chance <= 0 {
		return false
	}

	roll, err := e.rec(c).Roll("revolt", seed(c, fmt.Sprintf("revolt:%s:%d", action, hex)),
		"1d6", nil, map[string]int{"chance": chance},
		fmt.Sprintf("revolt check for %s at hex %d", action, hex))
	if err != nil {
		return false
	}
	return roll.Total <= chance
}

// spawnRebels raises a rebel force at the stripped hex: a fresh faction, a
// rebel commander, and an infantry army sized by a scaled d20.
func (e *Engine) spawnRebels(c *campaign.Campaign, near world.HexID, at world.HexID) *campaign.Army {
	rec := e.rules.Recruitment

	roll, err := e.rec(c).Roll("revolt", seed(c, fmt.Sprintf("rebels:%d", at)),
		fmt.Sprintf("1d%d", rec.RevoltInfantryDieSize), nil, nil,
		fmt.Sprintf("rebel muster size at hex %d", at))
	if err != nil {
		return nil
	}
	soldiers := roll.Total * rec.RevoltInfantryMultiplier
	if soldiers < rec.RevoltInfantryMultiplier {
		soldiers = rec.RevoltInfantryMultiplier
	}

	fid := c.NextFaction()
	c.Factions[fid] = &campaign.Faction{ID: fid, Name: fmt.Sprintf("Rebels of hex %d", at)}

	cid := c.NextCommander()
	c.Commanders[cid] = &campaign.Commander{
		ID: cid, Name: fmt.Sprintf("Rebel leader %d", cid),
		Faction: fid, Hex: at, Status: campaign.CommanderActive,
	}

	var infantryType campaign.UnitTypeID
	for id, ut := range c.UnitTypes {
		if ut.Category == "infantry" && (infantryType == 0 || id < infantryType) {
			infantryType = id
		}
	}

	aid := c.NextArmy()
	army := &campaign.Army{
		ID: aid, Commander: cid, Hex: at, Status: campaign.ArmyIdle,
		Detachments: []*campaign.Detachment{{
			ID: c.NextDetachment(), UnitType: infantryType, Soldiers: soldiers,
		}},
		MoraleCurrent: e.rules.Morale.DefaultResting,
		MoraleResting: e.rules.Morale.DefaultResting,
		MoraleMax:     e.rules.Morale.DefaultMax,
		HarriedOnDay:  -1,
		LastBattleDay: -1,
	}
	c.Armies[aid] = army
	e.RecomputeLogistics(c, army)
	army.SuppliesCurrent = army.DailyConsumption * rec.InitialSupplyDays
	if army.SuppliesCurrent > army.SuppliesCapacity {
		army.SuppliesCurrent = army.SuppliesCapacity
	}

	e.logger.Info("revolt", "campaign", c.ID, "hex", at, "soldiers", soldiers, "faction", fid)
	return army
}

func (e *Engine) resolveSupplyTransfer(c *campaign.Campaign, a *campaign.Army, p campaign.SupplyTransferParams) (*campaign.OrderResult, error) {
	target, ok := c.Armies[p.TargetArmy]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "army", ID: p.TargetArmy}
	}
	if target.Hex != a.Hex {
		return nil, &campaign.InvalidRouteError{Reason: "armies must share a hex to transfer supplies"}
	}

	amount := p.Amount
	if amount > a.SuppliesCurrent {
		amount = a.SuppliesCurrent
	}
	if space := target.SuppliesCapacity - target.SuppliesCurrent; amount > space {
		amount = space
	}
	if amount <= 0 {
		return nil, fmt.Errorf("no supplies could be transferred")
	}
	a.SuppliesCurrent -= amount
	target.SuppliesCurrent += amount
	return &campaign.OrderResult{
		Detail:  fmt.Sprintf("transferred %d supplies to army %d", amount, target.ID),
		Partial: amount < p.Amount,
	}, nil
}

func (e *Engine) resolveRest(c *campaign.Campaign, a *campaign.Army, p campaign.RestParams) (*campaign.OrderResult, error) {
	if a.HarriedOnDay == c.CurrentDay {
		return nil, &campaign.InvalidStateError{Kind: "army", ID: a.ID, State: "harried", Action: "rest"}
	}
	if a.EmbarkedOn != 0 {
		return nil, &campaign.InvalidStateError{Kind: "army", ID: a.ID, State: string(a.Status), Action: "rest"}
	}
	a.Status = campaign.ArmyResting
	a.RestDaysRemaining = p.DurationDays
	a.ForcedMarchDays = 0
	if a.MoraleCurrent < a.MoraleResting {
		a.MoraleCurrent = a.MoraleResting
	}
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("resting for %d days", p.DurationDays),
	}, nil
}

// consumeDailySupplies is the end-of-day supply drain. Armies that cannot
// cover consumption go hungry: morale drops and the starvation counter runs
// toward dissolution.
func (e *Engine) consumeDailySupplies(c *campaign.Campaign) {
	for _, a := range c.Armies {
		if a.DailyConsumption <= 0 {
			continue
		}
		if a.SuppliesCurrent >= a.DailyConsumption {
			a.SuppliesCurrent -= a.DailyConsumption
			a.DaysWithoutSupplies = 0
			continue
		}
		a.SuppliesCurrent = 0
		a.DaysWithoutSupplies++
		e.adjustMorale(a, -e.rules.Morale.StarvationLossPerDay)
		if a.DaysWithoutSupplies >= e.rules.Morale.StarvationDissolutionDays {
			e.logger.Warn("army dissolved by starvation", "campaign", c.ID, "army", a.ID)
			delete(c.Armies, a.ID)
		}
	}
}

// startOfDayFlags recomputes the morning condition flags on every army.
func (e *Engine) startOfDayFlags(c *campaign.Campaign) {
	for _, a := range c.Armies {
		a.Undersupplied = a.SuppliesCurrent < a.DailyConsumption || a.DaysWithoutSupplies > 0
		a.SickOrExhausted = a.LastBattleDay == c.CurrentDay-1 ||
			a.ForcedMarchDays >= 3 ||
			a.DaysWithoutSupplies > 0
		// A fresh day of marching; debt from an over-long leg carries over.
		a.MovementPointsRemaining += 1.0
		if a.MovementPointsRemaining > 1.0 {
			a.MovementPointsRemaining = 1.0
		}
		if a.HarriedOnDay == c.CurrentDay-1 {
			a.HarriedPenalty = 0
		}
		if a.RestDaysRemaining > 0 {
			a.RestDaysRemaining--
			if a.RestDaysRemaining == 0 && a.Status == campaign.ArmyResting {
				a.Status = campaign.ArmyIdle
			}
		}
		// Departed detachments rejoin once their absence runs out.
		for _, d := range a.Detachments {
			if d.AwayUntilDay > 0 && c.CurrentDay >= d.AwayUntilDay {
				d.AwayUntilDay = 0
			}
		}
	}
}
