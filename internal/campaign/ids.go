package campaign

import "github.com/google/uuid"

// Typed arena ids. All cross-entity references use these, never pointers.
type (
	FactionID    int64
	CommanderID  int64
	ArmyID       int64
	DetachmentID int64
	UnitTypeID   int64
	StrongholdID int64
	SiegeID      int64
	ShipTypeID   int64
	ShipID       int64
	MessageID    int64
	OperationID  int64
	ProjectID    int64
	ContractID   int64
)

// OrderID identifies a submitted order. Orders are minted by callers as well
// as by the engine, so they carry UUIDs instead of arena counters.
type OrderID = uuid.UUID

// NewOrderID mints a fresh order id.
func NewOrderID() OrderID {
	return uuid.New()
}

// ParseOrderID parses the canonical string form of an order id.
func ParseOrderID(s string) (OrderID, error) {
	return uuid.Parse(s)
}

// NextFaction allocates the next faction id.
func (c *Campaign) NextFaction() FactionID {
	c.Counters.Faction++
	return c.Counters.Faction
}

// NextCommander allocates the next commander id.
func (c *Campaign) NextCommander() CommanderID {
	c.Counters.Commander++
	return c.Counters.Commander
}

// NextArmy allocates the next army id.
func (c *Campaign) NextArmy() ArmyID {
	c.Counters.Army++
	return c.Counters.Army
}

// NextDetachment allocates the next detachment id.
func (c *Campaign) NextDetachment() DetachmentID {
	c.Counters.Detachment++
	return c.Counters.Detachment
}

// NextSiege allocates the next siege id.
func (c *Campaign) NextSiege() SiegeID {
	c.Counters.Siege++
	return c.Counters.Siege
}

// NextMessage allocates the next message id.
func (c *Campaign) NextMessage() MessageID {
	c.Counters.Message++
	return c.Counters.Message
}

// NextOperation allocates the next operation id.
func (c *Campaign) NextOperation() OperationID {
	c.Counters.Operation++
	return c.Counters.Operation
}

// NextProject allocates the next recruitment project id.
func (c *Campaign) NextProject() ProjectID {
	c.Counters.Project++
	return c.Counters.Project
}

// NextContract allocates the next mercenary contract id.
func (c *Campaign) NextContract() ContractID {
	c.Counters.Contract++
	return c.Counters.Contract
}

// NextShip allocates the next ship id.
func (c *Campaign) NextShip() ShipID {
	c.Counters.Ship++
	return c.Counters.Ship
}
