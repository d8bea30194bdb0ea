package engine

import (
	"fmt"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// Snapshot summarizes campaign state after an Advance call.
type Snapshot struct {
	Day           int              `json:"day"`
	Part          campaign.DayPart `json:"part"`
	Season        campaign.Season  `json:"season"`
	Armies        int              `json:"armies"`
	PendingOrders int              `json:"pending_orders"`
}

func takeSnapshot(c *campaign.Campaign) *Snapshot {
	s := &Snapshot{Day: c.CurrentDay, Part: c.Part, Season: c.Season, Armies: len(c.Armies)}
	for _, o := range c.Orders {
		if o.Status == campaign.OrderPending {
			s.PendingOrders++
		}
	}
	return s
}

// Advance runs the campaign forward by whole days, four parts per day. Each
// part delivers due messages, moves ships, dispatches due orders, and
// grinds sieges; the night boundary closes out the day with supply drain,
// mercenary pay, and muster progress, and the next morning rolls weather
// and start-of-day conditions. The commit callback, when set, runs after
// every completed day.
func (e *Engine) Advance(c *campaign.Campaign, days int) (*Snapshot, error) {
	if days < 1 {
		return nil, &campaign.ValidationError{Field: "days", Reason: "must advance at least one day"}
	}
	if c.Status != campaign.StatusActive {
		return nil, &campaign.InvalidStateError{Kind: "campaign", ID: c.ID, State: c.Status, Action: "advance"}
	}

	for d := 0; d < days; d++ {
		for range campaign.DayParts {
			if c.Part == campaign.Morning {
				e.beginDay(c)
			}

			e.deliverDueMessages(c)
			e.advanceShips(c)
			e.dispatchDue(c)
			e.advanceSieges(c)

			if err := e.checkInvariants(c); err != nil {
				return nil, fmt.Errorf("day %d %s: %w", c.CurrentDay, c.Part, err)
			}

			if c.Part == campaign.Night {
				e.endDay(c)
			}
			next, rollover := campaign.NextPart(c.Part)
			c.Part = next
			if rollover {
				c.CurrentDay++
			}
		}
		if e.commit != nil {
			if err := e.commit(c); err != nil {
				return nil, fmt.Errorf("commit day %d: %w", c.CurrentDay, err)
			}
		}
	}
	return takeSnapshot(c), nil
}

// beginDay runs the morning bookkeeping: weather, weekly counters, and army
// condition flags.
func (e *Engine) beginDay(c *campaign.Campaign) {
	e.rollWeather(c)
	if c.CurrentDay > 0 && c.CurrentDay%7 == 0 {
		for _, a := range c.Armies {
			a.DaysMarchedThisWeek = 0
			if a.ForcedMarchDays > 0 {
				e.adjustMorale(a, -e.rules.Morale.ForcedMarchLossPerWeek)
				a.ForcedMarchDays = 0
			}
		}
	}
	e.startOfDayFlags(c)
	e.logger.Debug("day begins", "campaign", c.ID, "day", c.CurrentDay, "weather", c.TodaysWeather().Severity)
}

// endDay runs the night boundary: the day's supplies are eaten, mercenaries
// paid, musters and operations advanced.
func (e *Engine) endDay(c *campaign.Campaign) {
	e.consumeDailySupplies(c)
	e.payMercenaries(c)
	e.advanceRecruitment(c)
	e.advanceOperations(c)
}

// seasonWeather maps a season to the d100 band for bad and very bad days.
// Everything above the second bound is clear enough to ignore.
var seasonWeather = map[campaign.Season][2]int{
	campaign.Spring: {40, 45}, // 40% bad, 5% very bad
	campaign.Summer: {20, 25},
	campaign.Fall:   {45, 50},
	campaign.Winter: {55, 65},
}

// rollWeather draws the day's weather once, at morning.
func (e *Engine) rollWeather(c *campaign.Campaign) {
	if _, ok := c.Weather[c.CurrentDay]; ok {
		return
	}
	roll, err := e.rec(c).Roll("weather", seed(c, "weather"), "1d100", nil, nil,
		fmt.Sprintf("weather for day %d", c.CurrentDay))
	if err != nil {
		return
	}
	bands := seasonWeather[c.Season]
	severity := "clear"
	switch {
	case roll.Total <= bands[0]:
		severity = "bad"
	case roll.Total <= bands[1]:
		severity = "very_bad"
	}
	c.Weather[c.CurrentDay] = &campaign.Weather{Day: c.CurrentDay, Severity: severity}
}

// checkInvariants guards the state properties that must hold after every
// part. A violation aborts the tick so the snapshot is inspectable.
func (e *Engine) checkInvariants(c *campaign.Campaign) error {
	for _, a := range c.Armies {
		if a.SuppliesCurrent < 0 {
			return fmt.Errorf("army %d has negative supplies", a.ID)
		}
		if a.SuppliesCurrent > a.SuppliesCapacity {
			return fmt.Errorf("army %d supplies exceed capacity", a.ID)
		}
		if a.LootCarried < 0 {
			return fmt.Errorf("army %d has negative loot", a.ID)
		}
	}
	for _, sh := range c.Strongholds {
		if sh.CurrentThreshold < 0 {
			return fmt.Errorf("stronghold %d threshold below zero", sh.ID)
		}
	}
	return nil
}
