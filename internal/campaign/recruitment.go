package campaign

import "github.com/sims1253/kataphraktus/internal/world"

// RecruitmentProject is an army being mustered at a stronghold. Progress
// advances once per day; completion spawns an Army at the rally hex.
type RecruitmentProject struct {
	ID             ProjectID     `json:"id"`
	Stronghold     StrongholdID  `json:"stronghold"`
	Faction        FactionID     `json:"faction"`
	Commander      CommanderID   `json:"commander"`
	RallyHex       world.HexID   `json:"rally_hex"`
	StartedOnDay   int           `json:"started_on_day"`
	CompletesOnDay int           `json:"completes_on_day"`
	Progress       int           `json:"progress"`
	Infantry       int           `json:"infantry"`
	Cavalry        int           `json:"cavalry"`
	Wagons         int           `json:"wagons"`
	Noncombatants  int           `json:"noncombatants"`
	SourceHexes    []world.HexID `json:"source_hexes,omitempty"`
	InfantryType   UnitTypeID    `json:"infantry_type"`
	CavalryType    UnitTypeID    `json:"cavalry_type,omitempty"`
	ArmyName       string        `json:"army_name,omitempty"`
	PendingOrder   OrderID       `json:"pending_order"`
	RevoltOccurred bool          `json:"revolt_occurred"`
	Completed      bool          `json:"completed"`
}

// Remaining reports how many muster days are left as of the given day.
func (p *RecruitmentProject) Remaining(day int) int {
	if day >= p.CompletesOnDay {
		return 0
	}
	return p.CompletesOnDay - day
}
