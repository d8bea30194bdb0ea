package engine

import (
	"fmt"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/world"
)

func (e *Engine) resolveEmbark(c *campaign.Campaign, a *campaign.Army, p campaign.EmbarkParams) (*campaign.OrderResult, error) {
	ship, ok := c.Ships[p.Ship]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "ship", ID: p.Ship}
	}
	if ship.Hex != a.Hex {
		return nil, &campaign.InvalidRouteError{Reason: "army and ship must share a hex to embark"}
	}
	if ship.EmbarkedArmy != 0 {
		return nil, &campaign.InvalidStateError{Kind: "ship", ID: ship.ID, State: "loaded", Action: "embark"}
	}
	if a.EmbarkedOn != 0 {
		return nil, &campaign.InvalidStateError{Kind: "army", ID: a.ID, State: "embarked", Action: "embark"}
	}

	st := c.ShipTypeOf(ship)
	comp := e.composition(c, a)
	if st != nil {
		if comp.Infantry+comp.Noncombatants > st.CapacitySoldiers {
			return nil, &campaign.ValidationError{Field: "ship", Reason: "not enough berths for the army's foot"}
		}
		if comp.Cavalry > st.CapacityCavalry {
			return nil, &campaign.ValidationError{Field: "ship", Reason: "not enough stalls for the army's horse"}
		}
	}

	ship.EmbarkedArmy = a.ID
	ship.Status = campaign.ShipTransport
	a.EmbarkedOn = ship.ID
	a.Status = campaign.ArmyEmbarked
	return &campaign.OrderResult{Detail: fmt.Sprintf("army %d embarked on ship %d", a.ID, ship.ID)}, nil
}

func (e *Engine) resolveDisembark(c *campaign.Campaign, a *campaign.Army, p campaign.DisembarkParams) (*campaign.OrderResult, error) {
	ship, ok := c.Ships[p.Ship]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "ship", ID: p.Ship}
	}
	if ship.EmbarkedArmy != a.ID || a.EmbarkedOn != ship.ID {
		return nil, &campaign.InvalidStateError{Kind: "army", ID: a.ID, State: "ashore", Action: "disembark"}
	}
	if ship.Status == campaign.ShipSailing || ship.TravelDaysLeft > 0 {
		return nil, &campaign.InvalidStateError{Kind: "ship", ID: ship.ID, State: "at sea", Action: "disembark"}
	}

	ship.EmbarkedArmy = 0
	if ship.Status == campaign.ShipTransport {
		ship.Status = campaign.ShipDocked
	}
	a.EmbarkedOn = 0
	a.Hex = ship.Hex
	a.Status = campaign.ArmyIdle
	if cmd := c.Commanders[a.Commander]; cmd != nil {
		cmd.Hex = ship.Hex
	}
	return &campaign.OrderResult{Detail: fmt.Sprintf("army %d disembarked at hex %d", a.ID, ship.Hex)}, nil
}

func (e *Engine) resolveNavalMove(c *campaign.Campaign, p campaign.NavalMoveParams) (*campaign.OrderResult, error) {
	ship, ok := c.Ships[p.Ship]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "ship", ID: p.Ship}
	}
	if ship.TravelDaysLeft > 0 {
		return nil, &campaign.InvalidStateError{Kind: "ship", ID: ship.ID, State: "at sea", Action: "set course"}
	}

	hexes, valid := c.Map.ValidateSeaRoute(ship.Hex, p.Route)
	if !valid {
		return nil, &campaign.InvalidRouteError{Reason: "route leaves navigable water"}
	}

	speed := e.rules.Naval.FriendlyMilesPerDay
	dest := p.Route[len(p.Route)-1]
	if c.TerritoryFor(ship.ControllingFaction, dest) == campaign.TerritoryHostile {
		speed = e.rules.Naval.HostileMilesPerDay
	}

	miles := hexes * world.HexMiles
	ship.Route = p.Route
	ship.TravelDaysLeft = float64(miles) / float64(speed)
	if ship.EmbarkedArmy == 0 {
		ship.Status = campaign.ShipSailing
	}
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("ship %d under way, %d miles to hex %d", ship.ID, miles, dest),
	}, nil
}

// advanceShips moves every ship under way forward by a quarter day and
// lands arrivals.
func (e *Engine) advanceShips(c *campaign.Campaign) {
	ids := make([]campaign.ShipID, 0, len(c.Ships))
	for id := range c.Ships {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		ship := c.Ships[id]
		if ship.TravelDaysLeft <= 0 || len(ship.Route) == 0 {
			continue
		}
		ship.TravelDaysLeft -= campaign.PartFraction
		if ship.TravelDaysLeft > 0 {
			continue
		}
		ship.TravelDaysLeft = 0
		dest := ship.Route[len(ship.Route)-1]
		ship.Hex = dest
		ship.Route = nil
		if ship.Status == campaign.ShipSailing {
			ship.Status = campaign.ShipDocked
		}
		if army := c.Armies[ship.EmbarkedArmy]; army != nil {
			army.Hex = dest
			if cmd := c.Commanders[army.Commander]; cmd != nil {
				cmd.Hex = dest
			}
		}
		e.logger.Debug("ship arrived", "campaign", c.ID, "ship", ship.ID, "hex", dest)
	}
}
