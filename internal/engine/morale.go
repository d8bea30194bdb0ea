package engine

import (
	"fmt"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// adjustMorale shifts an army's morale, clamped between the floor and the
// army's maximum.
func (e *Engine) adjustMorale(a *campaign.Army, delta int) {
	a.MoraleCurrent += delta
	if a.MoraleCurrent < e.rules.Morale.Floor {
		a.MoraleCurrent = e.rules.Morale.Floor
	}
	if a.MoraleCurrent > a.MoraleMax {
		a.MoraleCurrent = a.MoraleMax
	}
}

// moraleCheck rolls 2d6 against the army's current morale. A roll at or
// under morale passes; on failure the same roll indexes the consequence
// table, so low rolls that still fail bring the worst outcomes.
func (e *Engine) moraleCheck(c *campaign.Campaign, a *campaign.Army, context string) (bool, string) {
	roll, err := e.rec(c).Roll("morale", seed(c, fmt.Sprintf("morale:%d:%s", a.ID, context)),
		"2d6", nil, map[string]int{"morale": a.MoraleCurrent},
		fmt.Sprintf("morale check for army %d (%s)", a.ID, context))
	if err != nil {
		return true, ""
	}
	if roll.Total <= a.MoraleCurrent {
		return true, ""
	}

	consequence := roll.Total
	cmd := c.Commanders[a.Commander]
	if cmd != nil && cmd.HasTrait(campaign.TraitPoet) {
		consequence += 2
		if consequence > 12 {
			consequence = 12
		}
	}
	return false, e.applyMoraleConsequence(c, a, consequence)
}

// applyMoraleConsequence plays out the failure table keyed by the 2d6 roll.
// Veterans never mutiny or split.
func (e *Engine) applyMoraleConsequence(c *campaign.Campaign, a *campaign.Army, roll int) string {
	cmd := c.Commanders[a.Commander]
	veteran := cmd != nil && cmd.HasTrait(campaign.TraitVeteran)

	switch roll {
	case 2:
		if veteran {
			return "mutiny averted by veteran commander"
		}
		// Mutiny: each detachment defects with near certainty.
		defected := 0
		for _, id := range detachmentIDs(a) {
			ok, err := e.rec(c).Check("morale", seed(c, fmt.Sprintf("mutiny:%d:%d", a.ID, id)),
				19.0/20.0, "1d20", nil,
				fmt.Sprintf("detachment %d defects in mutiny", id))
			if err == nil && ok.Success {
				removeDetachment(a, id)
				defected++
			}
		}
		e.RecomputeLogistics(c, a)
		return fmt.Sprintf("mutiny: %d detachments defected", defected)
	case 3:
		lost := e.shrinkArmy(c, a, 0.30)
		return fmt.Sprintf("mass desertion: %d soldiers gone", lost)
	case 4:
		if veteran {
			return "defections averted by veteran commander"
		}
		n := e.rollDefections(c, a, "1d6")
		return fmt.Sprintf("%d detachments defected", n)
	case 5:
		lost := e.shrinkArmy(c, a, 0.20)
		return fmt.Sprintf("major desertion: %d soldiers gone", lost)
	case 6:
		if veteran {
			return "army held together by veteran commander"
		}
		// Army splinters: each detachment leaves on a coin-weight d6.
		left := 0
		for _, id := range detachmentIDs(a) {
			r, err := e.rec(c).Roll("morale", seed(c, fmt.Sprintf("split:%d:%d", a.ID, id)),
				"1d6", nil, nil, fmt.Sprintf("detachment %d splinters", id))
			if err == nil && r.Total <= 3 {
				removeDetachment(a, id)
				left++
			}
		}
		e.RecomputeLogistics(c, a)
		return fmt.Sprintf("army splinters: %d detachments left", left)
	case 7:
		n := e.rollDefections(c, a, "1d1")
		return fmt.Sprintf("%d detachment defected", n)
	case 8:
		lost := e.shrinkArmy(c, a, 0.10)
		return fmt.Sprintf("desertion: %d soldiers gone", lost)
	case 9:
		n := e.departDetachments(c, a, "1d6")
		return fmt.Sprintf("%d detachments depart temporarily", n)
	case 10:
		gained := int(float64(a.TotalSoldiers()) * 0.05)
		a.Noncombatants += gained
		return fmt.Sprintf("camp followers swell by %d", gained)
	case 11:
		n := e.departDetachments(c, a, "1d1")
		return fmt.Sprintf("%d detachment departs temporarily", n)
	default:
		return "grumbling, no consequence"
	}
}

// rollDefections removes up to NdM random detachments permanently.
func (e *Engine) rollDefections(c *campaign.Campaign, a *campaign.Army, notation string) int {
	count := 1
	if notation != "1d1" {
		r, err := e.rec(c).Roll("morale", seed(c, fmt.Sprintf("defections:%d", a.ID)),
			notation, nil, nil, fmt.Sprintf("defection count for army %d", a.ID))
		if err != nil {
			return 0
		}
		count = r.Total
	}
	ids := detachmentIDs(a)
	if count > len(ids) {
		count = len(ids)
	}
	for _, id := range ids[:count] {
		removeDetachment(a, id)
	}
	e.RecomputeLogistics(c, a)
	return count
}

// departDetachments marks up to NdM detachments as away for 2d6 days.
func (e *Engine) departDetachments(c *campaign.Campaign, a *campaign.Army, notation string) int {
	count := 1
	if notation != "1d1" {
		r, err := e.rec(c).Roll("morale", seed(c, fmt.Sprintf("departures:%d", a.ID)),
			notation, nil, nil, fmt.Sprintf("departure count for army %d", a.ID))
		if err != nil {
			return 0
		}
		count = r.Total
	}
	ids := detachmentIDs(a)
	if count > len(ids) {
		count = len(ids)
	}
	departed := 0
	for _, id := range ids[:count] {
		days, err := e.rec(c).Roll("morale", seed(c, fmt.Sprintf("departure_days:%d:%d", a.ID, id)),
			"2d6", nil, nil, fmt.Sprintf("detachment %d absence length", id))
		if err != nil {
			continue
		}
		if d := a.Detachment(id); d != nil {
			d.AwayUntilDay = c.CurrentDay + days.Total
			departed++
		}
	}
	return departed
}

// shrinkArmy removes a fraction of every detachment's soldiers.
func (e *Engine) shrinkArmy(c *campaign.Campaign, a *campaign.Army, fraction float64) int {
	lost := 0
	for _, d := range a.Detachments {
		cut := int(float64(d.Soldiers) * fraction)
		d.Soldiers -= cut
		lost += cut
	}
	e.RecomputeLogistics(c, a)
	return lost
}

// detachmentIDs returns detachment ids in id order so consequence handling
// is deterministic regardless of slice history.
func detachmentIDs(a *campaign.Army) []campaign.DetachmentID {
	ids := make([]campaign.DetachmentID, 0, len(a.Detachments))
	for _, d := range a.Detachments {
		ids = append(ids, d.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func removeDetachment(a *campaign.Army, id campaign.DetachmentID) {
	for i, d := range a.Detachments {
		if d.ID == id {
			a.Detachments = append(a.Detachments[:i], a.Detachments[i+1:]...)
			return
		}
	}
}
