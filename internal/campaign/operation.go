package campaign

// OperationType classifies a covert mission.
type OperationType string

const (
	OpIntelligence  OperationType = "intelligence"
	OpSabotage      OperationType = "sabotage"
	OpAssassination OperationType = "assassination"
)

// OperationOutcome is the terminal result of an operation attempt.
type OperationOutcome string

const (
	OpPending   OperationOutcome = "pending"
	OpOngoing   OperationOutcome = "ongoing"
	OpSucceeded OperationOutcome = "succeeded"
	OpFailed    OperationOutcome = "failed"
)

// Operation is a covert mission. Missions with complexity beyond "simple"
// span multiple ticks; the operation id doubles as the continuation id a
// later launch_operation order uses to resume it.
type Operation struct {
	ID                 OperationID      `json:"id"`
	Commander          CommanderID      `json:"commander"`
	Type               OperationType    `json:"type"`
	Target             map[string]any   `json:"target,omitempty"`
	Complexity         string           `json:"complexity"`
	Territory          Territory        `json:"territory"`
	DifficultyModifier int              `json:"difficulty_modifier"`
	LootCost           int              `json:"loot_cost"`
	LootPaid           bool             `json:"loot_paid"`
	StartedOnDay       int              `json:"started_on_day"`
	TicksRemaining     int              `json:"ticks_remaining"`
	Outcome            OperationOutcome `json:"outcome"`
	Result             map[string]any   `json:"result,omitempty"`
}
