package campaign

import "github.com/sims1253/kataphraktus/internal/world"

// ArmyStatus captures what an army spent its day doing.
type ArmyStatus string

const (
	ArmyIdle        ArmyStatus = "idle"
	ArmyMarching    ArmyStatus = "marching"
	ArmyForcedMarch ArmyStatus = "forced_march"
	ArmyNightMarch  ArmyStatus = "night_march"
	ArmyResting     ArmyStatus = "resting"
	ArmyForaging    ArmyStatus = "foraging"
	ArmyTorching    ArmyStatus = "torching"
	ArmyBesieging   ArmyStatus = "besieging"
	ArmyInBattle    ArmyStatus = "in_battle"
	ArmyHarrying    ArmyStatus = "harrying"
	ArmyRouted      ArmyStatus = "routed"
	ArmyGarrisoned  ArmyStatus = "garrisoned"
	ArmyEmbarked    ArmyStatus = "embarked"
)

// UnitType is a catalog entry describing a detachment type.
type UnitType struct {
	ID               UnitTypeID `json:"id"`
	Name             string     `json:"name"`
	Category         string     `json:"category"` // infantry | cavalry
	BattleMultiplier float64    `json:"battle_multiplier"`
	CanTravelOffroad bool       `json:"can_travel_offroad"`
	Skirmisher       bool       `json:"skirmisher"` // counts as cavalry for foraging and harrying
	Mercenary        bool       `json:"mercenary"`
}

// Detachment is a sub-unit of an army that can be tasked independently.
type Detachment struct {
	ID       DetachmentID `json:"id"`
	UnitType UnitTypeID   `json:"unit_type"`
	Soldiers int          `json:"soldiers"`
	Wagons   int          `json:"wagons"`
	Engines  int          `json:"engines"` // siege engines carried
	Name     string       `json:"name,omitempty"`

	// AwayUntilDay marks a detachment that has temporarily departed after a
	// morale failure. It rejoins when the campaign day passes this value.
	AwayUntilDay int `json:"away_until_day,omitempty"`
}

// Away reports whether the detachment is absent on the given day.
func (d *Detachment) Away(day int) bool {
	return d.AwayUntilDay > 0 && day < d.AwayUntilDay
}

// Army is a force under one commander, made of detachments.
type Army struct {
	ID        ArmyID      `json:"id"`
	Commander CommanderID `json:"commander"`
	Hex       world.HexID `json:"hex"`
	Status    ArmyStatus  `json:"status"`

	Detachments []*Detachment `json:"detachments"`

	MoraleCurrent int `json:"morale_current"`
	MoraleResting int `json:"morale_resting"`
	MoraleMax     int `json:"morale_max"`

	SuppliesCurrent  int `json:"supplies_current"`
	SuppliesCapacity int `json:"supplies_capacity"`
	DailyConsumption int `json:"daily_consumption"`
	LootCarried      int `json:"loot_carried"`

	MovementPointsRemaining float64 `json:"movement_points_remaining"` // fraction of a day's march left
	ForcedMarchDays         float64 `json:"forced_march_days"`
	DaysMarchedThisWeek     int     `json:"days_marched_this_week"`
	DaysWithoutSupplies     int     `json:"days_without_supplies"`

	Noncombatants     int     `json:"noncombatants"`
	ColumnLengthMiles float64 `json:"column_length_miles"`

	RestDaysRemaining int     `json:"rest_days_remaining"`
	EmbarkedOn        ShipID  `json:"embarked_on"` // 0 = ashore
	HarriedOnDay      int     `json:"harried_on_day"` // -1 = never
	HarriedPenalty    float64 `json:"harried_penalty"`

	// Start-of-day condition flags, recomputed each morning.
	Undersupplied   bool `json:"undersupplied"`
	SickOrExhausted bool `json:"sick_or_exhausted"`
	LastBattleDay   int  `json:"last_battle_day"` // -1 = never

	// Pending order ids in submission order; the scheduler sorts by
	// dispatch key when popping.
	OrderQueue []OrderID `json:"order_queue"`
}

// TotalSoldiers returns the soldier count across all detachments.
func (a *Army) TotalSoldiers() int {
	total := 0
	for _, d := range a.Detachments {
		total += d.Soldiers
	}
	return total
}

// PresentSoldiers counts soldiers in detachments that have not temporarily
// departed as of the given day.
func (a *Army) PresentSoldiers(day int) int {
	total := 0
	for _, d := range a.Detachments {
		if !d.Away(day) {
			total += d.Soldiers
		}
	}
	return total
}

// TotalWagons returns the wagon count across all detachments.
func (a *Army) TotalWagons() int {
	total := 0
	for _, d := range a.Detachments {
		total += d.Wagons
	}
	return total
}

// TotalEngines returns the siege engine count across all detachments.
func (a *Army) TotalEngines() int {
	total := 0
	for _, d := range a.Detachments {
		total += d.Engines
	}
	return total
}

// Detachment returns the detachment with the given id, or nil.
func (a *Army) Detachment(id DetachmentID) *Detachment {
	for _, d := range a.Detachments {
		if d.ID == id {
			return d
		}
	}
	return nil
}
