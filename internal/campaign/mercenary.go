package campaign

// ContractStatus tracks a mercenary hire.
type ContractStatus string

const (
	ContractActive     ContractStatus = "active"
	ContractTerminated ContractStatus = "terminated"
	ContractDeserted   ContractStatus = "deserted"
)

// MercenaryContract binds a hired company to an employing commander. Upkeep
// is drawn from the army's loot each day; companies left unpaid too long
// desert.
type MercenaryContract struct {
	ID            ContractID     `json:"id"`
	Commander     CommanderID    `json:"commander"`
	Army          ArmyID         `json:"army"` // 0 = not yet attached
	CompanyName   string         `json:"company_name"`
	DailyUpkeep   int            `json:"daily_upkeep"`
	StartDay      int            `json:"start_day"`
	LastUpkeepDay int            `json:"last_upkeep_day"`
	DaysUnpaid    int            `json:"days_unpaid"`
	Status        ContractStatus `json:"status"`
}
