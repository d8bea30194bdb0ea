package campaign

import "github.com/sims1253/kataphraktus/internal/world"

// OrderType is the closed set of commands a commander can issue.
type OrderType string

const (
	OrderMove            OrderType = "move"
	OrderRest            OrderType = "rest"
	OrderForage          OrderType = "forage"
	OrderTorch           OrderType = "torch"
	OrderSupplyTransfer  OrderType = "supply_transfer"
	OrderBesiege         OrderType = "besiege"
	OrderAssault         OrderType = "assault"
	OrderEmbark          OrderType = "embark"
	OrderDisembark       OrderType = "disembark"
	OrderNavalMove       OrderType = "naval_move"
	OrderSendMessage     OrderType = "send_message"
	OrderLaunchOperation OrderType = "launch_operation"
	OrderRaiseArmy       OrderType = "raise_army"
	OrderHarry           OrderType = "harry"
)

// OrderStatus is the order lifecycle. Transitions only move forward:
// pending -> executing -> {completed, failed, cancelled}. Cancelled can also
// be reached straight from pending.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderExecuting OrderStatus = "executing"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderCompleted, OrderFailed, OrderCancelled:
		return true
	}
	return false
}

// OrderParams is the tagged union of per-type order parameters. Each
// parameter struct declares its own type tag so the scheduler can match
// exhaustively without reflection.
type OrderParams interface {
	OrderType() OrderType
}

// OrderResult captures the outcome of a resolved order.
type OrderResult struct {
	Detail  string           `json:"detail,omitempty"`
	Partial bool             `json:"partial,omitempty"`
	Events  []map[string]any `json:"events,omitempty"`
}

// Order is a scheduled command. ExecuteDay < 0 means "as soon as reached in
// the queue"; ExecutePart is ignored when ExecuteDay is unset.
type Order struct {
	ID          OrderID      `json:"id"`
	Commander   CommanderID  `json:"commander"`
	Army        ArmyID       `json:"army,omitempty"` // 0 = no acting army
	Type        OrderType    `json:"type"`
	Params      OrderParams  `json:"params"`
	ExecuteDay  int          `json:"execute_day"` // -1 = unscheduled
	ExecutePart DayPart      `json:"execute_part,omitempty"`
	Priority    int          `json:"priority"`
	Seq         int64        `json:"seq"` // submission order, tie-break
	IssuedDay   int          `json:"issued_day"`
	Status      OrderStatus  `json:"status"`
	Result      *OrderResult `json:"result,omitempty"`
}

// NewOrder builds an unscheduled pending order for the given commander and
// optional acting army. Callers adjust ExecuteDay/ExecutePart/Priority before
// submission when they want the order deferred.
func NewOrder(commander CommanderID, army ArmyID, params OrderParams) *Order {
	return &Order{
		ID:         NewOrderID(),
		Commander:  commander,
		Army:       army,
		Type:       params.OrderType(),
		Params:     params,
		ExecuteDay: -1,
		Status:     OrderPending,
	}
}

// MovementMode selects the pace of a movement order.
type MovementMode string

const (
	MoveStandard MovementMode = "standard"
	MoveForced   MovementMode = "forced"
	MoveNight    MovementMode = "night"
)

// MoveLeg is one hex-to-hex segment of a movement order.
type MoveLeg struct {
	ToHex         world.HexID `json:"to_hex" validate:"required"`
	DistanceMiles float64     `json:"distance_miles" validate:"gt=0"`
	OnRoad        bool        `json:"on_road"`
	HasRiverFord  bool        `json:"has_river_ford"`
	IsNight       bool        `json:"is_night"`
	HasFork       bool        `json:"has_fork"`
	AlternateHex  world.HexID `json:"alternate_hex,omitempty" validate:"required_if=HasFork true"`
}

type MoveParams struct {
	Legs            []MoveLeg    `json:"legs" validate:"required,min=1,dive"`
	Mode            MovementMode `json:"mode,omitempty" validate:"omitempty,oneof=standard forced night"`
	WeatherModifier int          `json:"weather_modifier,omitempty"`
}

func (MoveParams) OrderType() OrderType { return OrderMove }

type RestParams struct {
	DurationDays int `json:"duration_days" validate:"min=1"`
}

func (RestParams) OrderType() OrderType { return OrderRest }

type ForageParams struct {
	Hexes []world.HexID `json:"hexes" validate:"required,min=1"`
}

func (ForageParams) OrderType() OrderType { return OrderForage }

type TorchParams struct {
	Hexes []world.HexID `json:"hexes" validate:"required,min=1"`
}

func (TorchParams) OrderType() OrderType { return OrderTorch }

type SupplyTransferParams struct {
	TargetArmy ArmyID `json:"target_army" validate:"required"`
	Amount     int    `json:"amount" validate:"gt=0"`
}

func (SupplyTransferParams) OrderType() OrderType { return OrderSupplyTransfer }

type BesiegeParams struct {
	Stronghold   StrongholdID `json:"stronghold" validate:"required"`
	SiegeEngines int          `json:"siege_engines" validate:"min=0"`
}

func (BesiegeParams) OrderType() OrderType { return OrderBesiege }

// AssaultParams carries optional fixed rolls so an assault can be replayed
// with a known outcome.
type AssaultParams struct {
	Stronghold        StrongholdID `json:"stronghold" validate:"required"`
	AttackerModifier  int          `json:"attacker_modifier,omitempty"`
	DefenderModifier  int          `json:"defender_modifier,omitempty"`
	AttackerFixedRoll *int         `json:"attacker_fixed_roll,omitempty" validate:"omitempty,min=2,max=12"`
	DefenderFixedRoll *int         `json:"defender_fixed_roll,omitempty" validate:"omitempty,min=2,max=12"`
	Pillage           bool         `json:"pillage,omitempty"`
}

func (AssaultParams) OrderType() OrderType { return OrderAssault }

type EmbarkParams struct {
	Ship ShipID `json:"ship" validate:"required"`
}

func (EmbarkParams) OrderType() OrderType { return OrderEmbark }

type DisembarkParams struct {
	Ship ShipID `json:"ship" validate:"required"`
}

func (DisembarkParams) OrderType() OrderType { return OrderDisembark }

type NavalMoveParams struct {
	Ship  ShipID        `json:"ship" validate:"required"`
	Route []world.HexID `json:"route" validate:"required,min=1"`
}

func (NavalMoveParams) OrderType() OrderType { return OrderNavalMove }

type SendMessageParams struct {
	Recipient CommanderID `json:"recipient" validate:"required"`
	Content   string      `json:"content" validate:"required"`
	Territory Territory   `json:"territory,omitempty" validate:"omitempty,oneof=friendly neutral hostile"`
}

func (SendMessageParams) OrderType() OrderType { return OrderSendMessage }

// LaunchOperationParams starts a covert mission, or resumes one when
// Operation references an existing continuation.
type LaunchOperationParams struct {
	Operation          OperationID    `json:"operation,omitempty"` // 0 = start new
	Type               OperationType  `json:"type,omitempty" validate:"omitempty,oneof=intelligence sabotage assassination"`
	Target             map[string]any `json:"target,omitempty"`
	Complexity         string         `json:"complexity,omitempty" validate:"omitempty,oneof=simple standard complex"`
	Territory          Territory      `json:"territory,omitempty" validate:"omitempty,oneof=friendly neutral hostile"`
	DifficultyModifier int            `json:"difficulty_modifier,omitempty"`
	LootCost           int            `json:"loot_cost,omitempty" validate:"min=0"`
}

func (LaunchOperationParams) OrderType() OrderType { return OrderLaunchOperation }

// RaiseArmyParams starts a recruitment project, or, when Project is set,
// continues one already underway.
type RaiseArmyParams struct {
	Stronghold   StrongholdID `json:"stronghold" validate:"required"`
	NewCommander CommanderID  `json:"new_commander" validate:"required"`
	InfantryType UnitTypeID   `json:"infantry_type" validate:"required"`
	CavalryType  UnitTypeID   `json:"cavalry_type,omitempty"`
	RallyHex     world.HexID  `json:"rally_hex,omitempty"` // 0 = stronghold hex
	ArmyName     string       `json:"army_name,omitempty"`
	Project      ProjectID    `json:"project,omitempty"` // 0 = start new
}

func (RaiseArmyParams) OrderType() OrderType { return OrderRaiseArmy }

// HarryObjective selects what harrying detachments try to achieve.
type HarryObjective string

const (
	HarryKill        HarryObjective = "kill"
	HarryBurn        HarryObjective = "burn"
	HarrySteal       HarryObjective = "steal"
	HarryIntimidate  HarryObjective = "intimidate"
)

type HarryParams struct {
	TargetArmy  ArmyID          `json:"target_army" validate:"required"`
	Detachments []DetachmentID  `json:"detachments" validate:"required,min=1"`
	Objective   HarryObjective  `json:"objective,omitempty" validate:"omitempty,oneof=kill burn steal intimidate"`
}

func (HarryParams) OrderType() OrderType { return OrderHarry }
