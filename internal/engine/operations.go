package engine

import (
	"fmt"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// resolveLaunchOperation starts a covert mission or presses on with one
// already underway. Simple and standard missions resolve on the spot;
// complex ones run for several days before the success roll.
func (e *Engine) resolveLaunchOperation(c *campaign.Campaign, o *campaign.Order, p campaign.LaunchOperationParams) (*campaign.OrderResult, error) {
	if p.Operation != 0 {
		op, ok := c.Operations[p.Operation]
		if !ok {
			return nil, &campaign.NotFoundError{Kind: "operation", ID: p.Operation}
		}
		return e.continueOperation(c, op)
	}

	if p.Type == "" {
		return nil, &campaign.ValidationError{Field: "type", Reason: "new operations need a mission type"}
	}
	cost := p.LootCost
	if cost == 0 {
		cost = e.rules.Operations.DefaultLootCost
	}

	// The agent network is paid from the commander's army chest.
	army := c.ArmyOf(o.Commander)
	if army == nil || army.LootCarried < cost {
		return nil, fmt.Errorf("operation needs %d loot on hand", cost)
	}
	army.LootCarried -= cost

	complexity := p.Complexity
	if complexity == "" {
		complexity = "standard"
	}
	id := c.NextOperation()
	op := &campaign.Operation{
		ID:                 id,
		Commander:          o.Commander,
		Type:               p.Type,
		Target:             p.Target,
		Complexity:         complexity,
		Territory:          p.Territory,
		DifficultyModifier: p.DifficultyModifier,
		LootCost:           cost,
		LootPaid:           true,
		StartedOnDay:       c.CurrentDay,
		Outcome:            campaign.OpPending,
	}
	c.Operations[id] = op

	if complexity == "complex" {
		op.Outcome = campaign.OpOngoing
		op.TicksRemaining = e.rules.Operations.MultiTickComplexDays
		p.Operation = id
		o.Params = p
		return &campaign.OrderResult{
			Detail: inProgressDetail,
			Events: []map[string]any{{"operation": id, "days_remaining": op.TicksRemaining}},
		}, nil
	}
	return e.rollOperation(c, op)
}

func (e *Engine) continueOperation(c *campaign.Campaign, op *campaign.Operation) (*campaign.OrderResult, error) {
	switch op.Outcome {
	case campaign.OpOngoing:
		if op.TicksRemaining > 0 {
			return &campaign.OrderResult{Detail: inProgressDetail}, nil
		}
		return e.rollOperation(c, op)
	case campaign.OpSucceeded, campaign.OpFailed:
		return &campaign.OrderResult{
			Detail: fmt.Sprintf("operation %d already %s", op.ID, op.Outcome),
		}, nil
	default:
		return e.rollOperation(c, op)
	}
}

// rollOperation makes the 2d6 success check against the mission's computed
// target number.
func (e *Engine) rollOperation(c *campaign.Campaign, op *campaign.Operation) (*campaign.OrderResult, error) {
	ops := e.rules.Operations

	modifier := op.DifficultyModifier
	switch op.Complexity {
	case "simple":
		modifier += ops.SimpleModifier
	case "complex":
		modifier += ops.ComplexModifier
	}
	if op.Territory == campaign.TerritoryHostile {
		modifier += ops.HostileTerritoryModifier
	}

	target := ops.BaseSuccessTarget - modifier
	if target < 2 {
		target = 2
	}
	if target > 12 {
		target = 12
	}

	roll, err := e.rec(c).Roll("operations", seed(c, fmt.Sprintf("operation:%d", op.ID)),
		"2d6", nil, map[string]int{"target": target, "modifier": modifier},
		fmt.Sprintf("%s operation %d success check", op.Type, op.ID))
	if err != nil {
		return nil, err
	}

	if roll.Total >= target {
		op.Outcome = campaign.OpSucceeded
		op.Result = map[string]any{"roll": roll.Total, "target": target}
		return &campaign.OrderResult{
			Detail: fmt.Sprintf("%s operation succeeded (%d vs %d)", op.Type, roll.Total, target),
			Events: []map[string]any{{"operation": op.ID, "succeeded": true}},
		}, nil
	}
	op.Outcome = campaign.OpFailed
	op.Result = map[string]any{"roll": roll.Total, "target": target}
	return &campaign.OrderResult{
		Detail: fmt.Sprintf("%s operation failed (%d vs %d)", op.Type, roll.Total, target),
		Events: []map[string]any{{"operation": op.ID, "succeeded": false}},
	}, nil
}

// advanceOperations burns one day off every ongoing multi-day operation.
// Runs at the night boundary.
func (e *Engine) advanceOperations(c *campaign.Campaign) {
	for _, op := range c.Operations {
		if op.Outcome == campaign.OpOngoing && op.TicksRemaining > 0 {
			op.TicksRemaining--
		}
	}
}
