package engine

import (
	"fmt"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// BattleSide is one army's inputs and outputs for a single engagement.
type BattleSide struct {
	Army      *campaign.Army
	Modifier  int
	FixedRoll *int

	Roll       int
	Total      int
	Casualties int
	MoraleLoss int
	Routed     bool
}

// BattleResult is the resolved outcome of one engagement.
type BattleResult struct {
	Attacker *BattleSide
	Defender *BattleSide
	// Winner is nil on a stand-off after the defender's tie advantage.
	Winner            *BattleSide
	Loser             *BattleSide
	Margin            int
	CommanderCaptured campaign.CommanderID
}

// resolveBattle runs one 2d6 engagement between two sides. Ties go to the
// defender. The casualty schedule scales with the margin of victory; the
// loser also checks for rout and commander capture.
func (e *Engine) resolveBattle(c *campaign.Campaign, attacker, defender *BattleSide, context string) (*BattleResult, error) {
	rec := e.rec(c)

	sides := []struct {
		label string
		side  *BattleSide
	}{{"attacker", attacker}, {"defender", defender}}
	for _, s := range sides {
		label, side := s.label, s.side
		mods := e.battleModifiers(c, side.Army)
		mods["order"] = side.Modifier
		roll, err := rec.Roll("battle", seed(c, fmt.Sprintf("battle:%s:%s:%d", context, label, side.Army.ID)),
			"2d6", side.FixedRoll, mods,
			fmt.Sprintf("%s roll for army %d", label, side.Army.ID))
		if err != nil {
			return nil, err
		}
		side.Roll = roll.Total
		side.Total = roll.Total
		for _, m := range mods {
			side.Total += m
		}
		side.Army.LastBattleDay = c.CurrentDay
		side.Army.Status = campaign.ArmyInBattle
	}

	// Numeric advantage favors the larger force.
	ratioBonus := e.numericBonus(attacker.Army.PresentSoldiers(c.CurrentDay), defender.Army.PresentSoldiers(c.CurrentDay))
	if ratioBonus > 0 {
		attacker.Total += ratioBonus
	} else {
		defender.Total -= ratioBonus
	}

	result := &BattleResult{Attacker: attacker, Defender: defender}
	switch {
	case attacker.Total > defender.Total:
		result.Winner, result.Loser = attacker, defender
		result.Margin = attacker.Total - defender.Total
	case defender.Total > attacker.Total:
		result.Winner, result.Loser = defender, attacker
		result.Margin = defender.Total - attacker.Total
	default:
		// Defender holds the field on a tie.
		result.Winner, result.Loser = defender, attacker
		result.Margin = 0
	}

	winLoss, loseLoss, winMorale, loseMorale := casualtySchedule(result.Margin)
	e.applyCasualties(c, result.Winner, winLoss, winMorale)
	e.applyCasualties(c, result.Loser, loseLoss, loseMorale)

	if result.Loser.Army.MoraleCurrent <= e.rules.Battle.RoutThreshold {
		result.Loser.Routed = true
		e.routArmy(c, result.Loser.Army, context)
	}

	if captured := e.checkCommanderCapture(c, result, context); captured != 0 {
		result.CommanderCaptured = captured
	}
	return result, nil
}

// battleModifiers builds the standing modifiers for one army: morale offset,
// and exhaustion.
func (e *Engine) battleModifiers(c *campaign.Campaign, a *campaign.Army) map[string]int {
	mods := make(map[string]int)
	moraleOffset := (a.MoraleCurrent - a.MoraleResting) / 2
	if moraleOffset > 2 {
		moraleOffset = 2
	}
	if moraleOffset < -2 {
		moraleOffset = -2
	}
	if moraleOffset != 0 {
		mods["morale"] = moraleOffset
	}
	if a.SickOrExhausted {
		mods["exhaustion"] = -1
	}
	return mods
}

// numericBonus converts a strength ratio into a flat roll bonus, one pip per
// tenth of advantage past even strength.
func (e *Engine) numericBonus(attackers, defenders int) int {
	if defenders <= 0 {
		return 0
	}
	ratio := float64(attackers) / float64(defenders)
	if ratio >= 1 {
		return int((ratio - 1) / e.rules.Battle.NumericBonusRatio)
	}
	return -int((1/ratio - 1) / e.rules.Battle.NumericBonusRatio)
}

// casualtySchedule maps margin of victory to loss fractions and morale
// shifts for winner and loser.
func casualtySchedule(margin int) (winLoss, loseLoss float64, winMorale, loseMorale int) {
	switch {
	case margin >= 6:
		return 0.05, 0.20, 2, -2
	case margin >= 4:
		return 0.05, 0.15, 2, -2
	case margin >= 2:
		return 0.05, 0.10, 1, -2
	case margin >= 1:
		return 0.10, 0.10, 0, -1
	default:
		return 0.05, 0.05, -1, 0
	}
}

func (e *Engine) applyCasualties(c *campaign.Campaign, side *BattleSide, fraction float64, morale int) {
	side.Casualties = e.shrinkArmy(c, side.Army, fraction)
	side.MoraleLoss = morale
	e.adjustMorale(side.Army, morale)
}

// routArmy retreats a broken army 1d6 hexes toward nowhere in particular and
// spills a share of its supplies on the road.
func (e *Engine) routArmy(c *campaign.Campaign, a *campaign.Army, context string) {
	a.Status = campaign.ArmyRouted
	rec := e.rec(c)

	hexes, err := rec.Roll("battle", seed(c, fmt.Sprintf("rout:%d:%s", a.ID, context)),
		"1d6", nil, nil, fmt.Sprintf("rout distance for army %d", a.ID))
	if err == nil {
		dest := a.Hex
		for i := 0; i < hexes.Total; i++ {
			neighbors := c.Map.Neighbors(dest)
			if len(neighbors) == 0 {
				break
			}
			dest = neighbors[0]
			for _, n := range neighbors[1:] {
				if n < dest {
					dest = n
				}
			}
		}
		a.Hex = dest
		if cmd := c.Commanders[a.Commander]; cmd != nil {
			cmd.Hex = dest
		}
	}

	loss, err := rec.Roll("battle", seed(c, fmt.Sprintf("rout_supplies:%d:%s", a.ID, context)),
		fmt.Sprintf("1d%d", e.rules.Battle.RetreatSupplyLossDie), nil, nil,
		fmt.Sprintf("supply loss on rout for army %d", a.ID))
	if err == nil {
		pct := loss.Total * e.rules.Battle.RetreatSupplyLossMultiplier
		a.SuppliesCurrent -= a.SuppliesCurrent * pct / 100
		if a.SuppliesCurrent < 0 {
			a.SuppliesCurrent = 0
		}
	}
}

// checkCommanderCapture rolls for the losing commander falling into enemy
// hands after a heavy defeat.
func (e *Engine) checkCommanderCapture(c *campaign.Campaign, r *BattleResult, context string) campaign.CommanderID {
	var chance int
	switch {
	case r.Margin >= 6:
		chance = e.rules.Battle.CaptureChanceMajor
	case r.Margin >= 4:
		chance = e.rules.Battle.CaptureChanceMinor
	default:
		return 0
	}

	loserCmd := c.Commanders[r.Loser.Army.Commander]
	winnerCmd := c.Commanders[r.Winner.Army.Commander]
	if loserCmd == nil {
		return 0
	}
	roll, err := e.rec(c).Roll("battle", seed(c, fmt.Sprintf("capture:%d:%s", loserCmd.ID, context)),
		"1d6", nil, map[string]int{"chance": chance},
		fmt.Sprintf("capture check for commander %d", loserCmd.ID))
	if err != nil || roll.Total > chance {
		return 0
	}
	loserCmd.Status = campaign.CommanderCaptured
	if winnerCmd != nil {
		loserCmd.CapturedBy = winnerCmd.Faction
	}
	e.logger.Info("commander captured", "campaign", c.ID, "commander", loserCmd.ID, "context", context)
	return loserCmd.ID
}
