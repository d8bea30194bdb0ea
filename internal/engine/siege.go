package engine

import (
	"fmt"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

func (e *Engine) resolveBesiege(c *campaign.Campaign, a *campaign.Army, p campaign.BesiegeParams) (*campaign.OrderResult, error) {
	sh, ok := c.Strongholds[p.Stronghold]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "stronghold", ID: p.Stronghold}
	}
	if a.Hex != sh.Hex {
		return nil, &campaign.InvalidRouteError{Reason: "army must stand on the stronghold's hex to besiege it"}
	}
	cmd := c.Commanders[a.Commander]
	if cmd != nil && sh.ControllingFaction == cmd.Faction {
		return nil, &campaign.InvalidStateError{Kind: "stronghold", ID: sh.ID, State: "friendly", Action: "besiege"}
	}

	engines := p.SiegeEngines
	if carried := a.TotalEngines(); engines == 0 {
		engines = carried
	}

	if s := c.SiegeAt(sh.ID); s != nil {
		if s.HasAttacker(a.ID) {
			return nil, &campaign.ConflictError{Reason: fmt.Sprintf("army %d already besieges stronghold %d", a.ID, sh.ID)}
		}
		s.Attackers = append(s.Attackers, a.ID)
		s.Engines += engines
		a.Status = campaign.ArmyBesieging
		return &campaign.OrderResult{Detail: fmt.Sprintf("joined siege of %s", sh.Name)}, nil
	}

	id := c.NextSiege()
	c.Sieges[id] = &campaign.Siege{
		ID:           id,
		Stronghold:   sh.ID,
		Attackers:    []campaign.ArmyID{a.ID},
		DefenderArmy: sh.GarrisonArmy,
		StartedOnDay: c.CurrentDay,
		Engines:      engines,
		Status:       campaign.SiegeOngoing,
	}
	if sh.CurrentThreshold == 0 && !sh.GatesOpen {
		sh.CurrentThreshold = sh.Threshold
	}
	a.Status = campaign.ArmyBesieging
	e.logger.Info("siege laid", "campaign", c.ID, "stronghold", sh.ID, "army", a.ID)
	return &campaign.OrderResult{Detail: fmt.Sprintf("laid siege to %s", sh.Name)}, nil
}

func (e *Engine) resolveAssault(c *campaign.Campaign, a *campaign.Army, p campaign.AssaultParams) (*campaign.OrderResult, error) {
	sh, ok := c.Strongholds[p.Stronghold]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "stronghold", ID: p.Stronghold}
	}
	if a.Hex != sh.Hex {
		return nil, &campaign.InvalidRouteError{Reason: "army must stand on the stronghold's hex to assault it"}
	}

	defender := c.Armies[sh.GarrisonArmy]
	if defender == nil {
		// Unheld walls fall without a fight.
		e.captureStronghold(c, a, sh, p.Pillage)
		return &campaign.OrderResult{Detail: fmt.Sprintf("occupied undefended %s", sh.Name)}, nil
	}

	defMod := p.DefenderModifier + sh.DefensiveBonus
	if sh.GatesOpen {
		defMod = p.DefenderModifier
	}
	atk := &BattleSide{Army: a, Modifier: p.AttackerModifier - e.rules.Battle.AssaultAttackerPenalty, FixedRoll: p.AttackerFixedRoll}
	def := &BattleSide{Army: defender, Modifier: defMod, FixedRoll: p.DefenderFixedRoll}

	result, err := e.resolveBattle(c, atk, def, fmt.Sprintf("assault:%d", sh.ID))
	if err != nil {
		return nil, err
	}

	// Storming the walls bleeds both sides beyond the field schedule.
	extra := e.rules.Battle.AssaultLossFraction
	e.shrinkArmy(c, a, extra)
	e.shrinkArmy(c, defender, extra)

	if s := c.SiegeAt(sh.ID); s != nil {
		s.Modifiers = append(s.Modifiers, campaign.ThresholdModifier{Kind: "attacked"})
	}

	if result.Winner != atk {
		return &campaign.OrderResult{
			Detail: fmt.Sprintf("assault on %s repelled, margin %d", sh.Name, result.Margin),
		}, nil
	}

	events := e.captureStronghold(c, a, sh, p.Pillage)
	e.checkDefenderEscape(c, defender, sh)
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("stormed %s, margin %d", sh.Name, result.Margin),
		Events: events,
	}, nil
}

// captureStronghold hands a fallen stronghold to the attacker: control
// flips, gates open, the attacker garrisons it, and captured supplies are
// rolled down by how long the place held out.
func (e *Engine) captureStronghold(c *campaign.Campaign, a *campaign.Army, sh *campaign.Stronghold, pillage bool) []map[string]any {
	cmd := c.Commanders[a.Commander]
	var faction campaign.FactionID
	if cmd != nil {
		faction = cmd.Faction
	}

	weeks := 0
	if s := c.SiegeAt(sh.ID); s != nil {
		weeks = s.WeeksElapsed
		s.Status = campaign.SiegeSuccessfulAssault
	}

	sh.ControllingFaction = faction
	sh.GatesOpen = true
	sh.CurrentThreshold = 0
	sh.GarrisonArmy = a.ID
	a.Status = campaign.ArmyGarrisoned

	st := c.State(sh.Hex)
	st.ControllingFaction = faction
	st.LastControlChangeDay = c.CurrentDay

	var multiplier, ncRatio = 10000, 0.10
	switch sh.Kind {
	case campaign.StrongholdCity:
		multiplier, ncRatio = 100000, 0.15
	case campaign.StrongholdFortress:
		multiplier, ncRatio = 1000, 0.05
	}

	roll, err := e.rec(c).Roll("siege", seed(c, fmt.Sprintf("capture_supplies:%d", sh.ID)),
		"1d6", nil, map[string]int{"weeks_besieged": -weeks},
		fmt.Sprintf("captured supplies at %s", sh.Name))
	supplies := 0
	if err == nil {
		pips := roll.Total - weeks
		if pips > 0 {
			supplies = pips * multiplier
		}
	}
	sh.SuppliesHeld += supplies

	followers := int(float64(a.TotalSoldiers()) * ncRatio)
	a.Noncombatants += followers

	events := []map[string]any{{
		"stronghold": sh.ID, "captured": true, "supplies_found": supplies, "camp_followers": followers,
	}}

	if pillage {
		takenLoot := sh.LootHeld / 2
		takenSupplies := sh.SuppliesHeld / 2
		sh.LootHeld -= takenLoot
		sh.SuppliesHeld -= takenSupplies
		a.LootCarried += takenLoot
		a.SuppliesCurrent += takenSupplies
		if a.SuppliesCurrent > a.SuppliesCapacity {
			a.SuppliesCurrent = a.SuppliesCapacity
		}
		e.adjustMorale(a, 2)
		events = append(events, map[string]any{
			"pillaged": true, "loot": takenLoot, "supplies": takenSupplies,
		})
	} else {
		// Held in check before the spoils; discipline strains.
		if ok, consequence := e.moraleCheck(c, a, fmt.Sprintf("restraint:%d", sh.ID)); !ok {
			events = append(events, map[string]any{"discipline": consequence})
		}
	}
	return events
}

// checkDefenderEscape rolls whether the beaten garrison commander slips out.
func (e *Engine) checkDefenderEscape(c *campaign.Campaign, defender *campaign.Army, sh *campaign.Stronghold) {
	cmd := c.Commanders[defender.Commander]
	if cmd == nil || cmd.Status != campaign.CommanderActive {
		return
	}
	roll, err := e.rec(c).Roll("siege", seed(c, fmt.Sprintf("escape:%d", cmd.ID)),
		"1d6", nil, nil, fmt.Sprintf("escape attempt by commander %d", cmd.ID))
	if err != nil {
		return
	}
	if roll.Total <= e.rules.Battle.CommanderEscapeThreshold {
		cmd.Status = campaign.CommanderEscaped
	} else {
		cmd.Status = campaign.CommanderCaptured
		cmd.CapturedBy = sh.ControllingFaction
	}
}

// advanceSieges grinds every ongoing siege forward one day-part. The
// threshold falls strictly every part; engines speed the fall. Hitting zero
// captures the stronghold for the senior besieger. At each full week the
// recorded event modifiers fold in and the defenders risk a gates roll.
func (e *Engine) advanceSieges(c *campaign.Campaign) {
	for _, id := range siegeIDs(c) {
		s := c.Sieges[id]
		if s.Status != campaign.SiegeOngoing {
			continue
		}
		sh := c.Strongholds[s.Stronghold]
		if sh == nil {
			s.Status = campaign.SiegeLifted
			continue
		}
		if len(e.presentAttackers(c, s, sh)) == 0 {
			s.Status = campaign.SiegeLifted
			e.logger.Info("siege lifted", "campaign", c.ID, "stronghold", sh.ID)
			continue
		}

		rate := 1 + s.Engines
		sh.CurrentThreshold -= rate
		if sh.CurrentThreshold < 0 {
			sh.CurrentThreshold = 0
		}

		if c.Part == campaign.Night {
			days := c.CurrentDay - s.StartedOnDay + 1
			if days > 0 && days%e.rules.Siege.AdvanceIntervalDays == 0 {
				s.WeeksElapsed++
				e.applyWeeklySiegeEvents(c, s, sh)
			}
		}

		if sh.CurrentThreshold == 0 && s.Status == campaign.SiegeOngoing {
			e.concludeSiege(c, s, sh)
		}
	}
}

// applyWeeklySiegeEvents folds the week's recorded modifiers into the
// threshold and rolls whether the garrison opens the gates.
func (e *Engine) applyWeeklySiegeEvents(c *campaign.Campaign, s *campaign.Siege, sh *campaign.Stronghold) {
	adjust := e.rules.Siege.WeeklyModifier
	for _, m := range s.Modifiers {
		switch m.Kind {
		case "disease":
			adjust += e.rules.Siege.DiseaseModifier
		case "resupply":
			adjust += e.rules.Siege.ResupplyModifier
		case "attacked":
			adjust += e.rules.Siege.AttackedModifier
		default:
			adjust += m.Value
		}
	}
	s.Modifiers = s.Modifiers[:0]
	sh.CurrentThreshold += adjust
	if sh.CurrentThreshold < 0 {
		sh.CurrentThreshold = 0
	}

	roll, err := e.rec(c).Roll("siege", seed(c, fmt.Sprintf("gates:%d:%d", sh.ID, s.WeeksElapsed)),
		"2d6", nil, map[string]int{"threshold": sh.CurrentThreshold},
		fmt.Sprintf("gates roll at %s, week %d", sh.Name, s.WeeksElapsed))
	if err == nil && roll.Total > sh.CurrentThreshold {
		// The garrison gives up the walls; the caller concludes the siege
		// when it sees the spent threshold.
		sh.GatesOpen = true
		sh.CurrentThreshold = 0
	}
}

// concludeSiege hands the stronghold to the senior besieging army once the
// defense is spent.
func (e *Engine) concludeSiege(c *campaign.Campaign, s *campaign.Siege, sh *campaign.Stronghold) {
	attackers := e.presentAttackers(c, s, sh)
	if len(attackers) == 0 {
		s.Status = campaign.SiegeLifted
		return
	}
	lead := attackers[0]
	e.captureStronghold(c, c.Armies[lead], sh, false)
	s.Status = campaign.SiegeGatesOpened
	if defender := c.Armies[s.DefenderArmy]; defender != nil {
		e.checkDefenderEscape(c, defender, sh)
	}
	e.logger.Info("stronghold fell", "campaign", c.ID, "stronghold", sh.ID, "to_army", lead)
}

// presentAttackers returns besieging armies still on the stronghold hex, in
// id order.
func (e *Engine) presentAttackers(c *campaign.Campaign, s *campaign.Siege, sh *campaign.Stronghold) []campaign.ArmyID {
	present := make([]campaign.ArmyID, 0, len(s.Attackers))
	for _, id := range s.Attackers {
		if a := c.Armies[id]; a != nil && a.Hex == sh.Hex {
			present = append(present, id)
		}
	}
	sort.Slice(present, func(i, j int) bool { return present[i] < present[j] })
	return present
}

// siegeIDs returns siege ids in id order for deterministic iteration.
func siegeIDs(c *campaign.Campaign) []campaign.SiegeID {
	ids := make([]campaign.SiegeID, 0, len(c.Sieges))
	for id := range c.Sieges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
