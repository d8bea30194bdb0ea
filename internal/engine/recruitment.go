package engine

import (
	"fmt"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/world"
)

// resolveRaiseArmy starts a muster at a stronghold, or, when the order
// carries a project continuation, completes it once the muster period has
// run. The first invocation sizes the levy from the stronghold's catchment
// hexes, risks revolts in recently tapped ones, and reschedules the order
// for the completion day.
func (e *Engine) resolveRaiseArmy(c *campaign.Campaign, o *campaign.Order, p campaign.RaiseArmyParams) (*campaign.OrderResult, error) {
	if p.Project != 0 {
		project, ok := c.Projects[p.Project]
		if !ok {
			return nil, &campaign.NotFoundError{Kind: "recruitment project", ID: p.Project}
		}
		if c.CurrentDay < project.CompletesOnDay {
			return &campaign.OrderResult{Detail: inProgressDetail}, nil
		}
		return e.completeMuster(c, project)
	}

	sh, ok := c.Strongholds[p.Stronghold]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "stronghold", ID: p.Stronghold}
	}
	cmd := c.Commanders[o.Commander]
	if cmd == nil || sh.ControllingFaction != cmd.Faction {
		return nil, &campaign.AuthorizationError{Faction: cmd.Faction, Subject: fmt.Sprintf("stronghold %d", sh.ID)}
	}
	if active := c.ActiveProjectFor(sh.ID, p.NewCommander); active != nil {
		return nil, &campaign.ConflictError{
			Reason: fmt.Sprintf("recruitment project %d already active", active.ID),
		}
	}

	catchment := e.catchmentHexes(c, sh)
	infantry, cavalry, wagons := 0, 0, 0
	events := make([]map[string]any, 0, len(catchment))
	var sources []world.HexID
	revolted := false

	for _, hexID := range catchment {
		hx := c.Map.Hex(hexID)
		st := c.State(hexID)

		if st.LastRecruitedDay >= 0 && c.CurrentDay-st.LastRecruitedDay <= e.rules.Recruitment.CooldownDays {
			if e.checkRecruitmentRevolt(c, st) {
				e.spawnRebels(c, sh.Hex, hexID)
				events = append(events, map[string]any{"hex": hexID, "revolt": true})
				revolted = true
				continue
			}
		}

		infantry += hx.Settlement
		if hx.GoodCountry {
			cavalry += int(float64(hx.Settlement) * 0.25)
			wagons += int(float64(hx.Settlement) * 0.05)
		}
		st.LastRecruitedDay = c.CurrentDay
		sources = append(sources, hexID)
		events = append(events, map[string]any{"hex": hexID, "levy": hx.Settlement})
	}

	// Round the foot down to full hundreds; smaller drafts never march.
	infantry = infantry / 100 * 100
	if infantry <= 0 {
		return nil, fmt.Errorf("catchment of stronghold %d yields no levy", sh.ID)
	}

	rallyHex := p.RallyHex
	if rallyHex == 0 {
		rallyHex = sh.Hex
	}

	id := c.NextProject()
	project := &campaign.RecruitmentProject{
		ID:             id,
		Stronghold:     sh.ID,
		Faction:        cmd.Faction,
		Commander:      p.NewCommander,
		RallyHex:       rallyHex,
		StartedOnDay:   c.CurrentDay,
		CompletesOnDay: c.CurrentDay + e.rules.Recruitment.MusterDurationDays,
		Infantry:       infantry,
		Cavalry:        cavalry,
		Wagons:         wagons,
		Noncombatants:  int(float64(infantry+cavalry) * e.rules.Supply.BaseNoncombatantRatio),
		SourceHexes:    sources,
		InfantryType:   p.InfantryType,
		CavalryType:    p.CavalryType,
		ArmyName:       p.ArmyName,
		PendingOrder:   o.ID,
		RevoltOccurred: revolted,
	}
	c.Projects[id] = project

	p.Project = id
	o.Params = p
	o.ExecuteDay = project.CompletesOnDay
	o.ExecutePart = campaign.Morning

	e.logger.Info("muster begun", "campaign", c.ID, "stronghold", sh.ID,
		"infantry", infantry, "cavalry", cavalry, "completes_on", project.CompletesOnDay)
	return &campaign.OrderResult{Detail: inProgressDetail, Events: events}, nil
}

// completeMuster spawns the raised army at the rally hex.
func (e *Engine) completeMuster(c *campaign.Campaign, project *campaign.RecruitmentProject) (*campaign.OrderResult, error) {
	if project.Completed {
		return nil, &campaign.InvalidStateError{Kind: "recruitment project", ID: project.ID, State: "completed", Action: "complete"}
	}
	project.Completed = true
	project.Progress = e.rules.Recruitment.MusterDurationDays

	id := c.NextArmy()
	army := &campaign.Army{
		ID:        id,
		Commander: project.Commander,
		Hex:       project.RallyHex,
		Status:    campaign.ArmyIdle,
		MoraleCurrent: e.rules.Morale.DefaultResting,
		MoraleResting: e.rules.Morale.DefaultResting,
		MoraleMax:     e.rules.Morale.DefaultMax,
		HarriedOnDay:  -1,
		LastBattleDay: -1,
	}
	army.Detachments = append(army.Detachments, &campaign.Detachment{
		ID: c.NextDetachment(), UnitType: project.InfantryType,
		Soldiers: project.Infantry, Wagons: project.Wagons, Name: project.ArmyName,
	})
	if project.Cavalry > 0 && project.CavalryType != 0 {
		army.Detachments = append(army.Detachments, &campaign.Detachment{
			ID: c.NextDetachment(), UnitType: project.CavalryType, Soldiers: project.Cavalry,
		})
	}
	c.Armies[id] = army

	e.RecomputeLogistics(c, army)
	army.SuppliesCurrent = army.DailyConsumption * e.rules.Recruitment.InitialSupplyDays
	if army.SuppliesCurrent > army.SuppliesCapacity {
		army.SuppliesCurrent = army.SuppliesCapacity
	}

	if cmd := c.Commanders[project.Commander]; cmd != nil && cmd.Hex == 0 {
		cmd.Hex = project.RallyHex
	}

	e.logger.Info("muster complete", "campaign", c.ID, "project", project.ID, "army", id)
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("army %d mustered at hex %d with %d foot and %d horse",
			id, project.RallyHex, project.Infantry, project.Cavalry),
	}, nil
}

// catchmentHexes returns the settled hexes of the stronghold's faction whose
// nearest stronghold is this one. Ties between strongholds at equal distance
// go to the stronger class, then the lower id.
func (e *Engine) catchmentHexes(c *campaign.Campaign, sh *campaign.Stronghold) []world.HexID {
	var out []world.HexID
	for id, hx := range c.Map.Hexes {
		if hx.Settlement <= 0 {
			continue
		}
		if c.State(id).ControllingFaction != sh.ControllingFaction {
			continue
		}
		if e.nearestStronghold(c, id, sh.ControllingFaction) == sh.ID {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func strongholdPriority(k campaign.StrongholdKind) int {
	switch k {
	case campaign.StrongholdFortress:
		return 3
	case campaign.StrongholdCity:
		return 2
	default:
		return 1
	}
}

func (e *Engine) nearestStronghold(c *campaign.Campaign, hex world.HexID, faction campaign.FactionID) campaign.StrongholdID {
	best := campaign.StrongholdID(0)
	bestDist, bestPrio := 0, 0
	for _, sh := range c.Strongholds {
		if sh.ControllingFaction != faction {
			continue
		}
		d := c.Map.HexDistance(hex, sh.Hex)
		prio := strongholdPriority(sh.Kind)
		switch {
		case best == 0,
			d < bestDist,
			d == bestDist && prio > bestPrio,
			d == bestDist && prio == bestPrio && sh.ID < best:
			best, bestDist, bestPrio = sh.ID, d, prio
		}
	}
	return best
}

// checkRecruitmentRevolt rolls whether a recently tapped hex rises instead
// of sending men. Recently conquered hexes are twice as likely to rise.
func (e *Engine) checkRecruitmentRevolt(c *campaign.Campaign, st *campaign.HexState) bool {
	chance := e.rules.Recruitment.RevoltChance
	if c.CurrentDay-st.LastControlChangeDay <= e.rules.Recruitment.RecentlyConqueredDays && st.LastControlChangeDay > 0 {
		chance *= 2
	}
	roll, err := e.rec(c).Roll("recruitment", seed(c, fmt.Sprintf("levy_revolt:%d", st.Hex)),
		"1d6", nil, map[string]int{"chance": chance},
		fmt.Sprintf("levy revolt check at hex %d", st.Hex))
	if err != nil {
		return false
	}
	return roll.Total <= chance
}

// advanceRecruitment runs nightly, ticking progress on active musters.
func (e *Engine) advanceRecruitment(c *campaign.Campaign) {
	for _, p := range c.Projects {
		if !p.Completed && c.CurrentDay < p.CompletesOnDay {
			p.Progress++
		}
	}
}
