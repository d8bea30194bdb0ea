package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/world"
)

// resolveSendMessage dispatches a courier. Travel time and the interception
// outcome are both fixed at dispatch; the tick engine only finalizes
// delivery when the due tick arrives.
func (e *Engine) resolveSendMessage(c *campaign.Campaign, sender campaign.CommanderID, a *campaign.Army, p campaign.SendMessageParams) (*campaign.OrderResult, error) {
	from := c.Commanders[sender]
	to := c.Commanders[p.Recipient]
	if to == nil {
		return nil, &campaign.NotFoundError{Kind: "commander", ID: p.Recipient}
	}

	origin := from.Hex
	if a != nil {
		origin = a.Hex
	}
	if origin == 0 || to.Hex == 0 {
		return nil, &campaign.InvalidRouteError{Reason: "courier has no known origin or destination"}
	}

	territory := p.Territory
	if territory == "" {
		territory = e.courierTerritory(c, from.Faction, origin, to.Hex)
	}
	speed, num, den := e.courierProfile(territory)

	miles := float64(c.Map.HexDistance(origin, to.Hex) * world.HexMiles)
	travelDays := math.Max(1, math.Ceil(miles/float64(speed)))

	id := c.NextMessage()
	msg := &campaign.Message{
		ID:         id,
		Sender:     sender,
		Recipient:  p.Recipient,
		Content:    p.Content,
		Territory:  territory,
		SentDay:    c.CurrentDay,
		SentPart:   c.Part,
		TravelDays: travelDays,
		Status:     campaign.MessageInTransit,
	}
	c.Messages[id] = msg

	check, err := e.rec(c).Check("messaging", seed(c, fmt.Sprintf("intercept:%d", id)),
		float64(num)/float64(den), fmt.Sprintf("1d%d", den), nil,
		fmt.Sprintf("courier %d through %s territory", id, territory))
	if err != nil {
		return nil, err
	}
	if !check.Success {
		msg.Status = campaign.MessageIntercepted
		msg.DeliveryDay = -1
		msg.FailureReason = fmt.Sprintf("courier lost in %s territory", territory)
		return &campaign.OrderResult{
			Detail: fmt.Sprintf("courier dispatched to commander %d", p.Recipient),
			Events: []map[string]any{{"message": id, "intercepted": true}},
		}, nil
	}

	msg.DeliveryDay = c.CurrentDay + int(travelDays)
	msg.DeliveryPart = c.Part
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("courier dispatched to commander %d, due day %d", p.Recipient, msg.DeliveryDay),
		Events: []map[string]any{{"message": id, "travel_days": travelDays}},
	}, nil
}

// courierProfile returns miles per day and success odds for a territory.
func (e *Engine) courierProfile(t campaign.Territory) (speed, numerator, denominator int) {
	msg := e.rules.Messaging
	switch t {
	case campaign.TerritoryHostile:
		return msg.HostileMilesPerDay, msg.HostileSuccessNumerator, msg.HostileSuccessDenominator
	case campaign.TerritoryNeutral:
		return msg.NeutralMilesPerDay, msg.NeutralSuccessNumerator, msg.NeutralSuccessDenominator
	default:
		return msg.FriendlyMilesPerDay, msg.FriendlySuccessNumerator, msg.FriendlySuccessDenominator
	}
}

// courierTerritory takes the worst classification of the two endpoints,
// since the courier must cross both.
func (e *Engine) courierTerritory(c *campaign.Campaign, faction campaign.FactionID, from, to world.HexID) campaign.Territory {
	a := c.TerritoryFor(faction, from)
	b := c.TerritoryFor(faction, to)
	if a == campaign.TerritoryHostile || b == campaign.TerritoryHostile {
		return campaign.TerritoryHostile
	}
	if a == campaign.TerritoryNeutral || b == campaign.TerritoryNeutral {
		return campaign.TerritoryNeutral
	}
	return campaign.TerritoryFriendly
}

// deliverDueMessages finalizes every in-transit message whose computed
// delivery tick has arrived.
func (e *Engine) deliverDueMessages(c *campaign.Campaign) int {
	ids := make([]campaign.MessageID, 0, len(c.Messages))
	for id := range c.Messages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	delivered := 0
	for _, id := range ids {
		m := c.Messages[id]
		if !m.DueAt(c.CurrentDay, c.Part) {
			continue
		}
		recipient := c.Commanders[m.Recipient]
		if recipient == nil || recipient.Status == campaign.CommanderDead {
			m.Status = campaign.MessageUndeliverable
			m.FailureReason = "recipient gone"
			continue
		}
		m.Status = campaign.MessageDelivered
		m.Delivered = true
		delivered++
		e.logger.Debug("message delivered", "campaign", c.ID, "message", m.ID, "recipient", m.Recipient)
	}
	return delivered
}
