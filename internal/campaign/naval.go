package campaign

import "github.com/sims1253/kataphraktus/internal/world"

// NavalStatus tracks what a ship is currently doing.
type NavalStatus string

const (
	ShipDocked    NavalStatus = "docked"
	ShipSailing   NavalStatus = "sailing"
	ShipTransport NavalStatus = "transporting"
)

// ShipType is catalog data for a hull class.
type ShipType struct {
	ID               ShipTypeID `json:"id"`
	Name             string     `json:"name"`
	CapacitySoldiers int        `json:"capacity_soldiers"`
	CapacityCavalry  int        `json:"capacity_cavalry"`
	CapacitySupplies int        `json:"capacity_supplies"`
	DailyCostLoot    int        `json:"daily_cost_loot"`
	CanSea           bool       `json:"can_sea"`
	CanRiver         bool       `json:"can_river"`
}

// Ship is a single vessel or flotilla acting as one unit.
type Ship struct {
	ID                 ShipID        `json:"id"`
	Type               ShipTypeID    `json:"type"`
	ControllingFaction FactionID     `json:"controlling_faction"`
	Hex                world.HexID   `json:"hex"`
	Status             NavalStatus   `json:"status"`
	EmbarkedArmy       ArmyID        `json:"embarked_army"` // 0 = empty
	Route              []world.HexID `json:"route,omitempty"`
	TravelDaysLeft     float64       `json:"travel_days_left"`
}

// ShipTypeOf resolves a ship's catalog entry.
func (c *Campaign) ShipTypeOf(s *Ship) *ShipType {
	return c.ShipTypes[s.Type]
}
