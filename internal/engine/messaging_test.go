package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/dice"
	"github.com/sims1253/kataphraktus/internal/world"
)

func (f *fixture) addCommander(faction campaign.FactionID, hex world.HexID) *campaign.Commander {
	id := f.c.NextCommander()
	cmd := &campaign.Commander{
		ID: id, Name: "courier target", Faction: faction, Hex: hex,
		Status: campaign.CommanderActive,
	}
	f.c.Commanders[id] = cmd
	return cmd
}

func TestSendMessageTravelTime(t *testing.T) {
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{20}}))
	a := f.addArmy(1, 1000, 0, 0)
	to := f.addCommander(f.commanderOf(a).Faction, 12)

	res, err := f.eng.resolveSendMessage(f.c, a.Commander, a, campaign.SendMessageParams{
		Recipient: to.ID, Content: "hold the line", Territory: campaign.TerritoryFriendly,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, f.c.Messages, 1)
	var msg *campaign.Message
	for _, m := range f.c.Messages {
		msg = m
	}
	assert.Equal(t, campaign.MessageInTransit, msg.Status)
	// 11 hexes at 6 miles against 48 miles per day through friendly land.
	assert.InDelta(t, 2.0, msg.TravelDays, 1e-9)
	assert.Equal(t, f.c.CurrentDay+2, msg.DeliveryDay)
	assert.Equal(t, f.c.Part, msg.DeliveryPart)
}

func TestSendMessageNeverFasterThanADay(t *testing.T) {
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{20}}))
	a := f.addArmy(1, 1000, 0, 0)
	to := f.addCommander(f.commanderOf(a).Faction, 2)

	_, err := f.eng.resolveSendMessage(f.c, a.Commander, a, campaign.SendMessageParams{
		Recipient: to.ID, Content: "march at dawn", Territory: campaign.TerritoryFriendly,
	})
	require.NoError(t, err)
	for _, m := range f.c.Messages {
		assert.InDelta(t, 1.0, m.TravelDays, 1e-9)
	}
}

func TestSendMessageInterception(t *testing.T) {
	// A 1 on the 1d20 misses the 19-in-20 friendly odds.
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{1}}))
	a := f.addArmy(1, 1000, 0, 0)
	to := f.addCommander(f.commanderOf(a).Faction, 5)

	res, err := f.eng.resolveSendMessage(f.c, a.Commander, a, campaign.SendMessageParams{
		Recipient: to.ID, Content: "the pass is open", Territory: campaign.TerritoryFriendly,
	})
	require.NoError(t, err, "interception is an outcome, not a resolver error")
	require.NotNil(t, res)

	for _, m := range f.c.Messages {
		assert.Equal(t, campaign.MessageIntercepted, m.Status)
		assert.Equal(t, -1, m.DeliveryDay)
		assert.Contains(t, m.FailureReason, "friendly")
	}

	// An intercepted courier never delivers.
	f.c.CurrentDay += 10
	assert.Equal(t, 0, f.eng.deliverDueMessages(f.c))
}

func TestCourierTerritoryTakesTheWorst(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	us := f.commanderOf(a).Faction
	them := f.addArmy(9, 1000, 0, 0)

	assert.Equal(t, campaign.TerritoryNeutral,
		f.eng.courierTerritory(f.c, us, 1, 9), "unclaimed land is neutral")

	f.c.State(1).ControllingFaction = us
	f.c.State(9).ControllingFaction = us
	assert.Equal(t, campaign.TerritoryFriendly, f.eng.courierTerritory(f.c, us, 1, 9))

	f.c.State(9).ControllingFaction = f.commanderOf(them).Faction
	assert.Equal(t, campaign.TerritoryHostile, f.eng.courierTerritory(f.c, us, 1, 9))
}

func TestCourierProfile(t *testing.T) {
	f := newFixture(t)

	speed, num, den := f.eng.courierProfile(campaign.TerritoryFriendly)
	assert.Equal(t, []int{48, 19, 20}, []int{speed, num, den})

	speed, num, den = f.eng.courierProfile(campaign.TerritoryNeutral)
	assert.Equal(t, []int{42, 11, 12}, []int{speed, num, den})

	speed, num, den = f.eng.courierProfile(campaign.TerritoryHostile)
	assert.Equal(t, []int{36, 5, 6}, []int{speed, num, den})
}

func TestDeliverDueMessages(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	to := f.addCommander(f.commanderOf(a).Faction, 4)

	due := &campaign.Message{
		ID: f.c.NextMessage(), Sender: a.Commander, Recipient: to.ID,
		Content: "now", Status: campaign.MessageInTransit,
		DeliveryDay: f.c.CurrentDay, DeliveryPart: f.c.Part,
	}
	later := &campaign.Message{
		ID: f.c.NextMessage(), Sender: a.Commander, Recipient: to.ID,
		Content: "later", Status: campaign.MessageInTransit,
		DeliveryDay: f.c.CurrentDay + 3, DeliveryPart: f.c.Part,
	}
	f.c.Messages[due.ID] = due
	f.c.Messages[later.ID] = later

	assert.Equal(t, 1, f.eng.deliverDueMessages(f.c))
	assert.Equal(t, campaign.MessageDelivered, due.Status)
	assert.True(t, due.Delivered)
	assert.Equal(t, campaign.MessageInTransit, later.Status)
}

func TestDeliverToDeadRecipient(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	to := f.addCommander(f.commanderOf(a).Faction, 4)
	to.Status = campaign.CommanderDead

	msg := &campaign.Message{
		ID: f.c.NextMessage(), Sender: a.Commander, Recipient: to.ID,
		Content: "too late", Status: campaign.MessageInTransit,
		DeliveryDay: f.c.CurrentDay, DeliveryPart: f.c.Part,
	}
	f.c.Messages[msg.ID] = msg

	assert.Equal(t, 0, f.eng.deliverDueMessages(f.c))
	assert.Equal(t, campaign.MessageUndeliverable, msg.Status)
	assert.Equal(t, "recipient gone", msg.FailureReason)
}

func TestSendMessageOrderWithoutArmy(t *testing.T) {
	f := newFixture(t, WithRollSource(&dice.Scripted{Totals: []int{20}}))
	a := f.addArmy(1, 1000, 0, 0)
	to := f.addCommander(f.commanderOf(a).Faction, 3)

	o := campaign.NewOrder(a.Commander, 0, campaign.SendMessageParams{
		Recipient: to.ID, Content: "ride", Territory: campaign.TerritoryFriendly,
	})
	_, err := f.eng.SubmitOrder(f.c, o)
	require.NoError(t, err)
	cmd := f.commanderOf(a)
	assert.Contains(t, cmd.OrderQueue, o.ID, "armyless orders queue on the commander")

	f.eng.dispatchDue(f.c)
	assert.Equal(t, campaign.OrderCompleted, o.Status)
	assert.NotContains(t, cmd.OrderQueue, o.ID)
	assert.Len(t, f.c.Messages, 1)
}
