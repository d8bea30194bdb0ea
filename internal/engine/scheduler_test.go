package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/world"
)

func TestSubmitOrderValidation(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	t.Run("nil params", func(t *testing.T) {
		_, err := f.eng.SubmitOrder(f.c, &campaign.Order{Commander: a.Commander})
		var verr *campaign.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("type mismatch", func(t *testing.T) {
		o := campaign.NewOrder(a.Commander, a.ID, campaign.RestParams{DurationDays: 1})
		o.Type = campaign.OrderMove
		_, err := f.eng.SubmitOrder(f.c, o)
		var verr *campaign.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("struct validation", func(t *testing.T) {
		o := campaign.NewOrder(a.Commander, a.ID, campaign.RestParams{DurationDays: 0})
		_, err := f.eng.SubmitOrder(f.c, o)
		var verr *campaign.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("unknown commander", func(t *testing.T) {
		o := campaign.NewOrder(999, a.ID, campaign.RestParams{DurationDays: 1})
		_, err := f.eng.SubmitOrder(f.c, o)
		var nerr *campaign.NotFoundError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "commander", nerr.Kind)
	})

	t.Run("army required", func(t *testing.T) {
		o := campaign.NewOrder(a.Commander, 0, campaign.RestParams{DurationDays: 1})
		_, err := f.eng.SubmitOrder(f.c, o)
		var verr *campaign.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("foreign army", func(t *testing.T) {
		other := f.addArmy(2, 500, 0, 0)
		o := campaign.NewOrder(a.Commander, other.ID, campaign.RestParams{DurationDays: 1})
		_, err := f.eng.SubmitOrder(f.c, o)
		var aerr *campaign.AuthorizationError
		assert.ErrorAs(t, err, &aerr)
	})

	t.Run("missing reference", func(t *testing.T) {
		o := campaign.NewOrder(a.Commander, a.ID, campaign.BesiegeParams{Stronghold: 42})
		_, err := f.eng.SubmitOrder(f.c, o)
		var nerr *campaign.NotFoundError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "stronghold", nerr.Kind)
	})
}

func TestSubmitOrderQueues(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	o := f.submit(t, a, campaign.RestParams{DurationDays: 2})
	assert.Equal(t, campaign.OrderPending, o.Status)
	assert.Contains(t, a.OrderQueue, o.ID)
	assert.Contains(t, f.c.Orders, o.ID)

	second := f.submit(t, a, campaign.RestParams{DurationDays: 1})
	assert.Greater(t, second.Seq, o.Seq, "submission order assigns rising sequence numbers")
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	o := f.submit(t, a, campaign.RestParams{DurationDays: 2})

	cancelled, err := f.eng.CancelOrder(f.c, o.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.OrderCancelled, cancelled.Status)
	assert.NotContains(t, a.OrderQueue, o.ID)

	// A terminal order cannot be cancelled again.
	_, err = f.eng.CancelOrder(f.c, o.ID)
	var serr *campaign.InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "cancel", serr.Action)

	_, err = f.eng.CancelOrder(f.c, campaign.NewOrderID())
	var nerr *campaign.NotFoundError
	assert.ErrorAs(t, err, &nerr)
}

func TestDispatchOrdering(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)

	low := f.submit(t, a, campaign.ForageParams{Hexes: []world.HexID{1}})
	high := f.submit(t, a, campaign.RestParams{DurationDays: 1})
	high.Priority = 10

	f.eng.dispatchDue(f.c)

	// Both resolved this part. The rest order ran first on priority, so the
	// forage order resolved last and left the army foraging.
	assert.True(t, low.Status.Terminal())
	assert.True(t, high.Status.Terminal())
	assert.Equal(t, campaign.ArmyForaging, a.Status)
	assert.True(t, a.RestDaysRemaining > 0, "rest order did resolve")
}

func TestDeferredOrderWaits(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	o := f.submit(t, a, campaign.RestParams{DurationDays: 1})
	o.ExecuteDay = 2
	o.ExecutePart = campaign.Evening

	f.eng.dispatchDue(f.c)
	assert.Equal(t, campaign.OrderPending, o.Status)

	f.c.CurrentDay = 2
	f.c.Part = campaign.Midday
	f.eng.dispatchDue(f.c)
	assert.Equal(t, campaign.OrderPending, o.Status, "not yet at the scheduled part")

	f.c.Part = campaign.Evening
	f.eng.dispatchDue(f.c)
	assert.Equal(t, campaign.OrderCompleted, o.Status)
}

func TestFailedResolverMarksOrderFailed(t *testing.T) {
	f := newFixture(t)
	a := f.addArmy(1, 1000, 0, 0)
	// Resting the same day the army was harried is forbidden.
	a.HarriedOnDay = f.c.CurrentDay

	o := f.submit(t, a, campaign.RestParams{DurationDays: 1})
	f.eng.dispatchDue(f.c)

	assert.Equal(t, campaign.OrderFailed, o.Status)
	require.NotNil(t, o.Result)
	assert.Contains(t, o.Result.Detail, "cannot rest")
	assert.NotContains(t, a.OrderQueue, o.ID)
}
