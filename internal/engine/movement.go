package engine

import (
	"fmt"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// resolveMove advances an army along its legs as far as its remaining
// movement allows. Legs it cannot afford stay queued: the order remains
// executing and resumes on later ticks until the route is done.
func (e *Engine) resolveMove(c *campaign.Campaign, a *campaign.Army, p campaign.MoveParams, o *campaign.Order) (*campaign.OrderResult, error) {
	if a.EmbarkedOn != 0 {
		return nil, &campaign.InvalidStateError{Kind: "army", ID: a.ID, State: string(a.Status), Action: "move"}
	}
	comp := e.composition(c, a)
	mode := p.Mode
	if mode == "" {
		mode = campaign.MoveStandard
	}
	if mode == campaign.MoveNight && comp.Wagons > 0 {
		return nil, &campaign.InvalidRouteError{Reason: "wagon trains cannot march at night"}
	}

	events := make([]map[string]any, 0, len(p.Legs))
	completed := 0
	wrongFork := false
	for _, leg := range p.Legs {
		if next := c.Map.Hex(leg.ToHex); next == nil {
			return nil, &campaign.InvalidRouteError{Reason: fmt.Sprintf("hex %d does not exist", leg.ToHex)}
		}
		if !leg.OnRoad {
			if comp.Wagons > 0 {
				return nil, &campaign.InvalidRouteError{Reason: "wagon trains cannot leave the road"}
			}
			if !comp.CanOffroad {
				return nil, &campaign.InvalidRouteError{Reason: "army contains units that cannot travel off-road"}
			}
		}
		if leg.HasRiverFord && comp.Wagons > 0 {
			return nil, &campaign.InvalidRouteError{Reason: "wagon trains cannot cross fords"}
		}

		rate := e.dailyMiles(c, a, comp, mode, leg.OnRoad, leg.IsNight)
		if rate <= 0 {
			return nil, &campaign.InvalidRouteError{
				Reason: fmt.Sprintf("no %s movement possible off-road at night", mode),
			}
		}
		cost := leg.DistanceMiles / float64(rate)
		if leg.HasRiverFord {
			// Fording stalls half a day for every mile of foot column.
			infantryMiles := float64(comp.Infantry+comp.Noncombatants) / 5000.0
			cost += infantryMiles * 0.5
		}
		if a.HarriedOnDay == c.CurrentDay && a.HarriedPenalty > 0 && a.MovementPointsRemaining > a.HarriedPenalty {
			a.MovementPointsRemaining = a.HarriedPenalty
		}
		// A leg costing more than a full day is paid from a fresh day and
		// carries the balance as marching debt into the next.
		if cost > a.MovementPointsRemaining && !(cost > 1.0 && a.MovementPointsRemaining >= 1.0) {
			break
		}

		dest := leg.ToHex
		if leg.HasFork && e.misdirected(c, a, leg, mode) {
			dest = leg.AlternateHex
			wrongFork = true
			events = append(events, map[string]any{"hex": dest, "wrong_fork": true})
		}
		a.MovementPointsRemaining -= cost
		a.Hex = dest
		if cmd := c.Commanders[a.Commander]; cmd != nil {
			cmd.Hex = dest
		}
		completed++
		events = append(events, map[string]any{"hex": dest, "cost": cost})

		if dest != leg.ToHex {
			// Off the planned route; the rest of the legs no longer apply.
			break
		}
	}

	switch mode {
	case campaign.MoveForced:
		a.Status = campaign.ArmyForcedMarch
		a.ForcedMarchDays += 1
	case campaign.MoveNight:
		a.Status = campaign.ArmyNightMarch
	default:
		a.Status = campaign.ArmyMarching
	}
	a.DaysMarchedThisWeek++

	if completed == 0 || (completed < len(p.Legs) && !wrongFork) {
		// Drop the finished legs and resume the march next morning.
		p.Legs = p.Legs[completed:]
		o.Params = p
		o.ExecuteDay = c.CurrentDay + 1
		o.ExecutePart = campaign.Morning
		return &campaign.OrderResult{Detail: inProgressDetail, Partial: true, Events: events}, nil
	}
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("arrived at hex %d after %d legs", a.Hex, completed),
		Events: events,
	}, nil
}

// dailyMiles computes the army's marching rate in miles per day for a leg.
func (e *Engine) dailyMiles(c *campaign.Campaign, a *campaign.Army, comp Composition, mode campaign.MovementMode, onRoad, night bool) int {
	mv := e.rules.Movement

	var rate int
	switch {
	case mode == campaign.MoveNight || night:
		if !onRoad {
			return 0
		}
		rate = mv.NightMilesPerDay
		if mode == campaign.MoveForced {
			rate = mv.NightForcedMilesPerDay
		}
	case mode == campaign.MoveForced:
		if onRoad {
			rate = mv.RoadForcedMilesPerDay
		} else {
			rate = mv.OffroadForcedMilesPerDay
		}
		if comp.CavalryOnly {
			rate *= mv.CavalryForcedMultiplier
		}
	default:
		if onRoad {
			rate = mv.RoadStandardMilesPerDay
		} else {
			rate = mv.OffroadStandardMilesPerDay
		}
	}

	if a.ColumnLengthMiles > mv.ColumnLengthThreshold {
		capped := mv.ColumnCappedStandardSpeed
		if mode == campaign.MoveForced {
			capped = mv.ColumnCappedForcedSpeed
		}
		if rate > capped {
			rate = capped
		}
	}

	weather := c.TodaysWeather().MovementModifier()
	if weather != 0 {
		cmd := c.Commanders[a.Commander]
		if cmd == nil || !cmd.HasTrait(campaign.TraitRanger) {
			rate += weather
		}
	}
	if rate < 0 {
		rate = 0
	}
	return rate
}

// misdirected rolls whether a column takes the wrong branch at a fork.
// Night marches misread forks more often than daytime off-road ones.
func (e *Engine) misdirected(c *campaign.Campaign, a *campaign.Army, leg campaign.MoveLeg, mode campaign.MovementMode) bool {
	mv := e.rules.Movement
	chance := 0
	if mode == campaign.MoveNight || leg.IsNight {
		chance = mv.NightWrongForkChance
	} else if !leg.OnRoad {
		chance = mv.OffroadWrongForkChance
	}
	if chance <= 0 {
		return false
	}
	roll, err := e.rec(c).Roll("movement", seed(c, fmt.Sprintf("fork:%d:%d", a.ID, leg.ToHex)),
		"1d6", nil, map[string]int{"chance": chance},
		fmt.Sprintf("fork misdirection for army %d toward hex %d", a.ID, leg.ToHex))
	if err != nil {
		return false
	}
	return roll.Total <= chance
}
