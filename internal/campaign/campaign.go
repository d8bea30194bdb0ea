// Package campaign defines the entities of a running campaign: the arenas of
// armies, commanders, strongholds, ships, orders, and projects that the rules
// engine mutates tick by tick. Cross-references between entities are stored
// as ids, never as pointers, so a campaign can be snapshotted cheaply.
package campaign

import (
	"github.com/sims1253/kataphraktus/internal/world"
)

// CampaignID identifies a campaign; it also seeds the campaign's roll source.
type CampaignID int64

// DayPart is one of the four sub-divisions of a simulated day.
type DayPart string

const (
	Morning DayPart = "morning"
	Midday  DayPart = "midday"
	Evening DayPart = "evening"
	Night   DayPart = "night"
)

// DayParts lists the parts in tick order.
var DayParts = [4]DayPart{Morning, Midday, Evening, Night}

// PartIndex returns the position of p in the day cycle (0-3), or -1.
func PartIndex(p DayPart) int {
	for i, dp := range DayParts {
		if dp == p {
			return i
		}
	}
	return -1
}

// NextPart returns the part following p and whether the day rolled over.
func NextPart(p DayPart) (DayPart, bool) {
	idx := PartIndex(p)
	next := (idx + 1) % len(DayParts)
	return DayParts[next], next == 0
}

// PartFraction is the share of a day covered by one part.
const PartFraction = 1.0 / 4.0

// Season of the in-world calendar.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// Status values for a campaign.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusPaused    = "paused"
)

// HexState is the mutable per-campaign state of one map tile. The static
// topology stays in world.Map; everything the rules change lives here.
type HexState struct {
	Hex                  world.HexID `json:"hex_id"`
	ControllingFaction   FactionID   `json:"controlling_faction"` // 0 = uncontrolled
	ForagesRemaining     int         `json:"forages_remaining"`
	Torched              bool        `json:"torched"`
	LastForagedDay       int         `json:"last_foraged_day"`   // -1 = never
	LastTorchedDay       int         `json:"last_torched_day"`   // -1 = never
	LastRecruitedDay     int         `json:"last_recruited_day"` // -1 = never
	LastControlChangeDay int         `json:"last_control_change_day"`
}

// Weather is the rolled condition for one campaign day.
type Weather struct {
	Day      int    `json:"day"`
	Severity string `json:"severity"` // clear | bad | very_bad
}

// MovementModifier returns the miles-per-day penalty for the day's weather.
func (w Weather) MovementModifier() int {
	switch w.Severity {
	case "bad":
		return -1
	case "very_bad":
		return -2
	default:
		return 0
	}
}

// Campaign is the root aggregate: the single unit of mutation per tick.
type Campaign struct {
	ID         CampaignID `json:"id"`
	Name       string     `json:"name"`
	CurrentDay int        `json:"current_day"`
	Part       DayPart    `json:"current_part"`
	Season     Season     `json:"season"`
	Status     string     `json:"status"`

	Map      *world.Map               `json:"-"`
	HexState map[world.HexID]*HexState `json:"hex_state"`

	Factions   map[FactionID]*Faction               `json:"factions"`
	Commanders map[CommanderID]*Commander           `json:"commanders"`
	Armies     map[ArmyID]*Army                     `json:"armies"`
	UnitTypes  map[UnitTypeID]*UnitType             `json:"unit_types"`
	Strongholds map[StrongholdID]*Stronghold        `json:"strongholds"`
	Sieges     map[SiegeID]*Siege                   `json:"sieges"`
	ShipTypes  map[ShipTypeID]*ShipType             `json:"ship_types"`
	Ships      map[ShipID]*Ship                     `json:"ships"`
	Messages   map[MessageID]*Message               `json:"messages"`
	Operations map[OperationID]*Operation           `json:"operations"`
	Projects   map[ProjectID]*RecruitmentProject    `json:"projects"`
	Contracts  map[ContractID]*MercenaryContract    `json:"contracts"`
	Orders     map[OrderID]*Order                   `json:"orders"`
	Weather    map[int]*Weather                     `json:"weather"`

	// nextSeq hands out submission sequence numbers for order tie-breaks.
	NextSeq int64 `json:"next_seq"`
	// Entity id counters, one per arena.
	Counters Counters `json:"counters"`
}

// Counters tracks the next id for each entity arena.
type Counters struct {
	Faction   FactionID   `json:"faction"`
	Commander CommanderID `json:"commander"`
	Army      ArmyID      `json:"army"`
	Detachment DetachmentID `json:"detachment"`
	Siege     SiegeID     `json:"siege"`
	Message   MessageID   `json:"message"`
	Operation OperationID `json:"operation"`
	Project   ProjectID   `json:"project"`
	Contract  ContractID  `json:"contract"`
	Ship      ShipID      `json:"ship"`
}

// New creates an empty campaign over a map, with every hex uncontrolled and
// its seasonal forage budget filled.
func New(id CampaignID, name string, m *world.Map, foragesPerSeason int) *Campaign {
	c := &Campaign{
		ID:          id,
		Name:        name,
		CurrentDay:  0,
		Part:        Morning,
		Season:      Spring,
		Status:      StatusActive,
		Map:         m,
		HexState:    make(map[world.HexID]*HexState, len(m.Hexes)),
		Factions:    make(map[FactionID]*Faction),
		Commanders:  make(map[CommanderID]*Commander),
		Armies:      make(map[ArmyID]*Army),
		UnitTypes:   make(map[UnitTypeID]*UnitType),
		Strongholds: make(map[StrongholdID]*Stronghold),
		Sieges:      make(map[SiegeID]*Siege),
		ShipTypes:   make(map[ShipTypeID]*ShipType),
		Ships:       make(map[ShipID]*Ship),
		Messages:    make(map[MessageID]*Message),
		Operations:  make(map[OperationID]*Operation),
		Projects:    make(map[ProjectID]*RecruitmentProject),
		Contracts:   make(map[ContractID]*MercenaryContract),
		Orders:      make(map[OrderID]*Order),
		Weather:     make(map[int]*Weather),
	}
	for id := range m.Hexes {
		c.HexState[id] = &HexState{
			Hex:              id,
			ForagesRemaining: foragesPerSeason,
			LastForagedDay:   -1,
			LastTorchedDay:   -1,
			LastRecruitedDay: -1,
		}
	}
	return c
}

// State returns the mutable state record for a hex, creating it on demand so
// loaded snapshots with sparse state still behave.
func (c *Campaign) State(id world.HexID) *HexState {
	st, ok := c.HexState[id]
	if !ok {
		st = &HexState{Hex: id, LastForagedDay: -1, LastTorchedDay: -1, LastRecruitedDay: -1}
		c.HexState[id] = st
	}
	return st
}

// TodaysWeather returns the weather rolled for the current day, defaulting
// to clear when none was generated.
func (c *Campaign) TodaysWeather() Weather {
	if w, ok := c.Weather[c.CurrentDay]; ok {
		return *w
	}
	return Weather{Day: c.CurrentDay, Severity: "clear"}
}

// Territory classifies a hex from an acting faction's point of view.
type Territory string

const (
	TerritoryFriendly Territory = "friendly"
	TerritoryNeutral  Territory = "neutral"
	TerritoryHostile  Territory = "hostile"
)

// TerritoryFor classifies the hex for a faction based on control.
func (c *Campaign) TerritoryFor(faction FactionID, hex world.HexID) Territory {
	st := c.State(hex)
	switch st.ControllingFaction {
	case 0:
		return TerritoryNeutral
	case faction:
		return TerritoryFriendly
	default:
		return TerritoryHostile
	}
}

// SiegeAt returns the active siege against a stronghold, if any.
func (c *Campaign) SiegeAt(id StrongholdID) *Siege {
	for _, s := range c.Sieges {
		if s.Stronghold == id && s.Status == SiegeOngoing {
			return s
		}
	}
	return nil
}

// ActiveProjectFor returns the unfinished recruitment project for a
// stronghold/commander pair, if one exists.
func (c *Campaign) ActiveProjectFor(stronghold StrongholdID, commander CommanderID) *RecruitmentProject {
	for _, p := range c.Projects {
		if p.Stronghold == stronghold && p.Commander == commander && !p.Completed {
			return p
		}
	}
	return nil
}
