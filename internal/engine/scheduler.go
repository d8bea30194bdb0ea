package engine

import (
	"fmt"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
)

// SubmitOrder validates an order and queues it as pending. The order's
// parameters must match its type; the issuing commander must exist and must
// control the acting army; referenced entities must exist. Validation
// failures are returned as the error taxonomy of the campaign package and
// the order never enters the queue.
func (e *Engine) SubmitOrder(c *campaign.Campaign, o *campaign.Order) (campaign.OrderID, error) {
	if o.Params == nil {
		return campaign.OrderID{}, &campaign.ValidationError{Reason: "order has no parameters"}
	}
	if o.Type == "" {
		o.Type = o.Params.OrderType()
	}
	if o.Type != o.Params.OrderType() {
		return campaign.OrderID{}, &campaign.ValidationError{
			Field:  "type",
			Reason: fmt.Sprintf("order type %q does not match parameters for %q", o.Type, o.Params.OrderType()),
		}
	}
	if !knownOrderType(o.Type) {
		return campaign.OrderID{}, &campaign.ValidationError{
			Field:  "type",
			Reason: fmt.Sprintf("unrecognized order type %q", o.Type),
		}
	}
	if err := e.validate.Struct(o.Params); err != nil {
		return campaign.OrderID{}, &campaign.ValidationError{Reason: err.Error()}
	}

	commander, ok := c.Commanders[o.Commander]
	if !ok {
		return campaign.OrderID{}, &campaign.NotFoundError{Kind: "commander", ID: o.Commander}
	}

	if requiresArmy(o.Type) && o.Army == 0 {
		return campaign.OrderID{}, &campaign.ValidationError{
			Field:  "army",
			Reason: fmt.Sprintf("%s order requires an acting army", o.Type),
		}
	}
	var army *campaign.Army
	if o.Army != 0 {
		army, ok = c.Armies[o.Army]
		if !ok {
			return campaign.OrderID{}, &campaign.NotFoundError{Kind: "army", ID: o.Army}
		}
		if army.Commander != o.Commander {
			return campaign.OrderID{}, &campaign.AuthorizationError{
				Faction: commander.Faction,
				Subject: fmt.Sprintf("army %d", o.Army),
			}
		}
	}

	if err := e.checkReferences(c, o); err != nil {
		return campaign.OrderID{}, err
	}

	if o.ID == (campaign.OrderID{}) {
		o.ID = campaign.NewOrderID()
	}
	o.Status = campaign.OrderPending
	o.IssuedDay = c.CurrentDay
	o.Seq = c.NextSeq
	c.NextSeq++
	c.Orders[o.ID] = o
	if army != nil {
		army.OrderQueue = append(army.OrderQueue, o.ID)
	} else {
		commander.OrderQueue = append(commander.OrderQueue, o.ID)
	}

	e.logger.Debug("order submitted",
		"campaign", c.ID, "order", o.ID, "type", o.Type, "commander", o.Commander)
	return o.ID, nil
}

// checkReferences verifies that entities named in the parameters exist, and
// enforces submit-time conflicts like duplicate recruitment projects.
func (e *Engine) checkReferences(c *campaign.Campaign, o *campaign.Order) error {
	switch p := o.Params.(type) {
	case campaign.SupplyTransferParams:
		if _, ok := c.Armies[p.TargetArmy]; !ok {
			return &campaign.NotFoundError{Kind: "army", ID: p.TargetArmy}
		}
	case campaign.BesiegeParams:
		if _, ok := c.Strongholds[p.Stronghold]; !ok {
			return &campaign.NotFoundError{Kind: "stronghold", ID: p.Stronghold}
		}
	case campaign.AssaultParams:
		if _, ok := c.Strongholds[p.Stronghold]; !ok {
			return &campaign.NotFoundError{Kind: "stronghold", ID: p.Stronghold}
		}
	case campaign.EmbarkParams:
		if _, ok := c.Ships[p.Ship]; !ok {
			return &campaign.NotFoundError{Kind: "ship", ID: p.Ship}
		}
	case campaign.DisembarkParams:
		if _, ok := c.Ships[p.Ship]; !ok {
			return &campaign.NotFoundError{Kind: "ship", ID: p.Ship}
		}
	case campaign.NavalMoveParams:
		if _, ok := c.Ships[p.Ship]; !ok {
			return &campaign.NotFoundError{Kind: "ship", ID: p.Ship}
		}
	case campaign.SendMessageParams:
		if _, ok := c.Commanders[p.Recipient]; !ok {
			return &campaign.NotFoundError{Kind: "commander", ID: p.Recipient}
		}
	case campaign.HarryParams:
		if _, ok := c.Armies[p.TargetArmy]; !ok {
			return &campaign.NotFoundError{Kind: "army", ID: p.TargetArmy}
		}
	case campaign.RaiseArmyParams:
		if _, ok := c.Strongholds[p.Stronghold]; !ok {
			return &campaign.NotFoundError{Kind: "stronghold", ID: p.Stronghold}
		}
		if _, ok := c.Commanders[p.NewCommander]; !ok {
			return &campaign.NotFoundError{Kind: "commander", ID: p.NewCommander}
		}
		if _, ok := c.UnitTypes[p.InfantryType]; !ok {
			return &campaign.NotFoundError{Kind: "unit type", ID: p.InfantryType}
		}
		if p.Project == 0 {
			if active := c.ActiveProjectFor(p.Stronghold, p.NewCommander); active != nil {
				return &campaign.ConflictError{
					Reason: fmt.Sprintf("recruitment project %d already active for this stronghold and commander", active.ID),
				}
			}
		} else if _, ok := c.Projects[p.Project]; !ok {
			return &campaign.NotFoundError{Kind: "recruitment project", ID: p.Project}
		}
	case campaign.LaunchOperationParams:
		if p.Operation != 0 {
			if _, ok := c.Operations[p.Operation]; !ok {
				return &campaign.NotFoundError{Kind: "operation", ID: p.Operation}
			}
		}
	}
	return nil
}

// CancelOrder moves a pending or executing order to cancelled.
func (e *Engine) CancelOrder(c *campaign.Campaign, id campaign.OrderID) (*campaign.Order, error) {
	o, ok := c.Orders[id]
	if !ok {
		return nil, &campaign.NotFoundError{Kind: "order", ID: id}
	}
	if o.Status.Terminal() {
		return nil, &campaign.InvalidStateError{
			Kind: "order", ID: id, State: string(o.Status), Action: "cancel",
		}
	}
	o.Status = campaign.OrderCancelled
	e.removeFromQueues(c, o)
	return o, nil
}

// dispatchDue executes every order due at the campaign's current day and
// part, in dispatch-key order. Resolver failures become failed orders and
// never abort the tick.
func (e *Engine) dispatchDue(c *campaign.Campaign) {
	due := make([]*campaign.Order, 0)
	for _, o := range c.Orders {
		if o.Status != campaign.OrderPending && o.Status != campaign.OrderExecuting {
			continue
		}
		if orderDue(o, c.CurrentDay, c.Part) {
			due = append(due, o)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i], due[j]
		ad, bd := effectiveDay(a, c.CurrentDay), effectiveDay(b, c.CurrentDay)
		if ad != bd {
			return ad < bd
		}
		ap, bp := effectivePart(a, c.Part), effectivePart(b, c.Part)
		if ap != bp {
			return ap < bp
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.Seq < b.Seq
	})

	for _, o := range due {
		e.runOrder(c, o)
	}
}

func orderDue(o *campaign.Order, day int, part campaign.DayPart) bool {
	if o.ExecuteDay < 0 {
		return true
	}
	if o.ExecuteDay < day {
		return true
	}
	return o.ExecuteDay == day && campaign.PartIndex(o.ExecutePart) <= campaign.PartIndex(part)
}

func effectiveDay(o *campaign.Order, now int) int {
	if o.ExecuteDay < 0 {
		return now
	}
	return o.ExecuteDay
}

func effectivePart(o *campaign.Order, now campaign.DayPart) int {
	if o.ExecuteDay < 0 || campaign.PartIndex(o.ExecutePart) < 0 {
		return campaign.PartIndex(now)
	}
	return campaign.PartIndex(o.ExecutePart)
}

// runOrder routes one order to its resolver. A panic inside a resolver is
// converted into a failed order result.
func (e *Engine) runOrder(c *campaign.Campaign, o *campaign.Order) {
	o.Status = campaign.OrderExecuting

	defer func() {
		if r := recover(); r != nil {
			o.Status = campaign.OrderFailed
			o.Result = &campaign.OrderResult{Detail: fmt.Sprintf("internal resolver error: %v", r)}
			e.logger.Error("resolver panic", "campaign", c.ID, "order", o.ID, "type", o.Type, "panic", r)
		}
		if o.Status.Terminal() {
			e.removeFromQueues(c, o)
		}
	}()

	var army *campaign.Army
	if o.Army != 0 {
		var ok bool
		army, ok = c.Armies[o.Army]
		if !ok {
			o.Status = campaign.OrderFailed
			o.Result = &campaign.OrderResult{Detail: fmt.Sprintf("army %d no longer exists", o.Army)}
			return
		}
	}

	var result *campaign.OrderResult
	var err error
	switch p := o.Params.(type) {
	case campaign.MoveParams:
		result, err = e.resolveMove(c, army, p, o)
	case campaign.RestParams:
		result, err = e.resolveRest(c, army, p)
	case campaign.ForageParams:
		result, err = e.resolveForage(c, army, p)
	case campaign.TorchParams:
		result, err = e.resolveTorch(c, army, p)
	case campaign.SupplyTransferParams:
		result, err = e.resolveSupplyTransfer(c, army, p)
	case campaign.BesiegeParams:
		result, err = e.resolveBesiege(c, army, p)
	case campaign.AssaultParams:
		result, err = e.resolveAssault(c, army, p)
	case campaign.EmbarkParams:
		result, err = e.resolveEmbark(c, army, p)
	case campaign.DisembarkParams:
		result, err = e.resolveDisembark(c, army, p)
	case campaign.NavalMoveParams:
		result, err = e.resolveNavalMove(c, p)
	case campaign.SendMessageParams:
		result, err = e.resolveSendMessage(c, o.Commander, army, p)
	case campaign.LaunchOperationParams:
		result, err = e.resolveLaunchOperation(c, o, p)
	case campaign.RaiseArmyParams:
		result, err = e.resolveRaiseArmy(c, o, p)
	case campaign.HarryParams:
		result, err = e.resolveHarry(c, army, p)
	default:
		err = &campaign.ValidationError{Reason: fmt.Sprintf("unrecognized order type %q", o.Type)}
	}

	switch {
	case err != nil:
		o.Status = campaign.OrderFailed
		o.Result = &campaign.OrderResult{Detail: err.Error()}
	case result != nil && result.Detail == inProgressDetail:
		// Multi-tick orders stay executing and re-dispatch later.
		o.Status = campaign.OrderExecuting
		o.Result = result
	default:
		o.Status = campaign.OrderCompleted
		o.Result = result
	}
}

// inProgressDetail marks a resolver result whose order should stay
// executing until a later tick.
const inProgressDetail = "in progress"

func (e *Engine) removeFromQueues(c *campaign.Campaign, o *campaign.Order) {
	if a, ok := c.Armies[o.Army]; ok {
		a.OrderQueue = removeID(a.OrderQueue, o.ID)
	}
	if cmd, ok := c.Commanders[o.Commander]; ok {
		cmd.OrderQueue = removeID(cmd.OrderQueue, o.ID)
	}
}

func removeID(queue []campaign.OrderID, id campaign.OrderID) []campaign.OrderID {
	for i, q := range queue {
		if q == id {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

func knownOrderType(t campaign.OrderType) bool {
	switch t {
	case campaign.OrderMove, campaign.OrderRest, campaign.OrderForage, campaign.OrderTorch,
		campaign.OrderSupplyTransfer, campaign.OrderBesiege, campaign.OrderAssault,
		campaign.OrderEmbark, campaign.OrderDisembark, campaign.OrderNavalMove,
		campaign.OrderSendMessage, campaign.OrderLaunchOperation, campaign.OrderRaiseArmy,
		campaign.OrderHarry:
		return true
	}
	return false
}

func requiresArmy(t campaign.OrderType) bool {
	switch t {
	case campaign.OrderMove, campaign.OrderRest, campaign.OrderForage, campaign.OrderTorch,
		campaign.OrderSupplyTransfer, campaign.OrderBesiege, campaign.OrderAssault,
		campaign.OrderEmbark, campaign.OrderDisembark, campaign.OrderHarry:
		return true
	}
	return false
}
