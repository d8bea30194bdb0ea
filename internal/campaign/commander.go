package campaign

import "github.com/sims1253/kataphraktus/internal/world"

// Trait names recognized by the rules. Traits are free-form strings on a
// commander; these constants cover the ones resolvers check for.
const (
	TraitRanger     = "ranger"     // ignores weather penalties
	TraitLogistician = "logistician" // +20% capacity, half column length
	TraitSpartan    = "spartan"    // half noncombatant ratio
	TraitRaider     = "raider"     // +10% forage yield
	TraitOutrider   = "outrider"   // +1 forage radius with cavalry
	TraitPoet       = "poet"       // +2 on morale consequence rolls
	TraitVeteran    = "veteran"    // never mutinies
	TraitHonorable  = "honorable"  // -1 revolt chance
)

// CommanderStatus tracks what has happened to a commander.
type CommanderStatus string

const (
	CommanderActive   CommanderStatus = "active"
	CommanderCaptured CommanderStatus = "captured"
	CommanderEscaped  CommanderStatus = "escaped"
	CommanderDead     CommanderStatus = "dead"
)

// Commander is a player's (or NPC's) avatar: owns at most one army and can
// send messages and launch operations.
type Commander struct {
	ID      CommanderID     `json:"id"`
	Name    string          `json:"name"`
	Faction FactionID       `json:"faction"`
	Hex     world.HexID     `json:"hex"` // last known location; 0 = unknown
	Status  CommanderStatus `json:"status"`
	Traits  []string        `json:"traits,omitempty"`

	CapturedBy FactionID `json:"captured_by,omitempty"`

	// Pending order ids for orders issued without an acting army.
	OrderQueue []OrderID `json:"order_queue,omitempty"`
}

// HasTrait reports whether the commander carries the named trait.
func (c *Commander) HasTrait(name string) bool {
	for _, t := range c.Traits {
		if t == name {
			return true
		}
	}
	return false
}

// Faction controls territory and commanders.
type Faction struct {
	ID    FactionID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// ArmyOf returns the army commanded by the given commander, or nil.
func (c *Campaign) ArmyOf(id CommanderID) *Army {
	for _, a := range c.Armies {
		if a.Commander == id {
			return a
		}
	}
	return nil
}

// Commands reports whether the commander controls the army.
func (c *Campaign) Commands(commander CommanderID, army ArmyID) bool {
	a, ok := c.Armies[army]
	return ok && a.Commander == commander
}
