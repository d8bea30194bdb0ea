package campaign

import "github.com/sims1253/kataphraktus/internal/world"

// StrongholdKind classifies a stronghold; the kind sets the starting siege
// threshold and capture yields.
type StrongholdKind string

const (
	StrongholdTown     StrongholdKind = "town"
	StrongholdCity     StrongholdKind = "city"
	StrongholdFortress StrongholdKind = "fortress"
)

// Stronghold is a fortified settlement bound to a hex.
type Stronghold struct {
	ID                 StrongholdID   `json:"id"`
	Name               string         `json:"name"`
	Hex                world.HexID    `json:"hex"`
	Kind               StrongholdKind `json:"kind"`
	ControllingFaction FactionID      `json:"controlling_faction"` // 0 = unheld
	DefensiveBonus     int            `json:"defensive_bonus"`
	Threshold          int            `json:"threshold"`         // full defensive capacity
	CurrentThreshold   int            `json:"current_threshold"` // remaining capacity under siege
	GatesOpen          bool           `json:"gates_open"`
	GarrisonArmy       ArmyID         `json:"garrison_army"` // 0 = ungarrisoned
	SuppliesHeld       int            `json:"supplies_held"`
	LootHeld           int            `json:"loot_held"`
}

// SiegeStatus tracks the lifecycle of a siege.
type SiegeStatus string

const (
	SiegeOngoing           SiegeStatus = "ongoing"
	SiegeGatesOpened       SiegeStatus = "gates_opened"
	SiegeSuccessfulAssault SiegeStatus = "successful_assault"
	SiegeLifted            SiegeStatus = "lifted"
)

// ThresholdModifier is a one-week adjustment to siege progression, recorded
// by events like disease outbreaks or resupply runs.
type ThresholdModifier struct {
	Kind  string `json:"kind"` // disease | resupply | attacked | custom
	Value int    `json:"value,omitempty"`
}

// Siege is an active investment of a stronghold.
type Siege struct {
	ID           SiegeID             `json:"id"`
	Stronghold   StrongholdID        `json:"stronghold"`
	Attackers    []ArmyID            `json:"attackers"`
	DefenderArmy ArmyID              `json:"defender_army"` // 0 = garrison only
	StartedOnDay int                 `json:"started_on_day"`
	WeeksElapsed int                 `json:"weeks_elapsed"`
	Engines      int                 `json:"engines"`
	Modifiers    []ThresholdModifier `json:"modifiers,omitempty"`
	Status       SiegeStatus         `json:"status"`
}

// HasAttacker reports whether the army is already among the besiegers.
func (s *Siege) HasAttacker(id ArmyID) bool {
	for _, a := range s.Attackers {
		if a == id {
			return true
		}
	}
	return false
}
