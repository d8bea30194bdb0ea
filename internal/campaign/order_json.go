package campaign

import (
	"encoding/json"
	"fmt"
)

// orderJSON is the wire form of an Order: the params field is decoded
// against the declared type, keeping the tagged union intact across
// snapshot round-trips.
type orderJSON struct {
	ID          OrderID         `json:"id"`
	Commander   CommanderID     `json:"commander"`
	Army        ArmyID          `json:"army,omitempty"`
	Type        OrderType       `json:"type"`
	Params      json.RawMessage `json:"params"`
	ExecuteDay  int             `json:"execute_day"`
	ExecutePart DayPart         `json:"execute_part,omitempty"`
	Priority    int             `json:"priority"`
	Seq         int64           `json:"seq"`
	IssuedDay   int             `json:"issued_day"`
	Status      OrderStatus     `json:"status"`
	Result      *OrderResult    `json:"result,omitempty"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if o.Params != nil {
		b, err := json.Marshal(o.Params)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(orderJSON{
		ID: o.ID, Commander: o.Commander, Army: o.Army, Type: o.Type, Params: raw,
		ExecuteDay: o.ExecuteDay, ExecutePart: o.ExecutePart, Priority: o.Priority,
		Seq: o.Seq, IssuedDay: o.IssuedDay, Status: o.Status, Result: o.Result,
	})
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var w orderJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	o.ID = w.ID
	o.Commander = w.Commander
	o.Army = w.Army
	o.Type = w.Type
	o.ExecuteDay = w.ExecuteDay
	o.ExecutePart = w.ExecutePart
	o.Priority = w.Priority
	o.Seq = w.Seq
	o.IssuedDay = w.IssuedDay
	o.Status = w.Status
	o.Result = w.Result

	if len(w.Params) == 0 {
		o.Params = nil
		return nil
	}
	params, err := decodeParams(w.Type, w.Params)
	if err != nil {
		return err
	}
	o.Params = params
	return nil
}

func decodeParams(t OrderType, raw json.RawMessage) (OrderParams, error) {
	switch t {
	case OrderMove:
		var p MoveParams
		return unmarshalInto(raw, &p)
	case OrderRest:
		var p RestParams
		return unmarshalInto(raw, &p)
	case OrderForage:
		var p ForageParams
		return unmarshalInto(raw, &p)
	case OrderTorch:
		var p TorchParams
		return unmarshalInto(raw, &p)
	case OrderSupplyTransfer:
		var p SupplyTransferParams
		return unmarshalInto(raw, &p)
	case OrderBesiege:
		var p BesiegeParams
		return unmarshalInto(raw, &p)
	case OrderAssault:
		var p AssaultParams
		return unmarshalInto(raw, &p)
	case OrderEmbark:
		var p EmbarkParams
		return unmarshalInto(raw, &p)
	case OrderDisembark:
		var p DisembarkParams
		return unmarshalInto(raw, &p)
	case OrderNavalMove:
		var p NavalMoveParams
		return unmarshalInto(raw, &p)
	case OrderSendMessage:
		var p SendMessageParams
		return unmarshalInto(raw, &p)
	case OrderLaunchOperation:
		var p LaunchOperationParams
		return unmarshalInto(raw, &p)
	case OrderRaiseArmy:
		var p RaiseArmyParams
		return unmarshalInto(raw, &p)
	case OrderHarry:
		var p HarryParams
		return unmarshalInto(raw, &p)
	}
	return nil, fmt.Errorf("unknown order type %q", t)
}

func unmarshalInto[P OrderParams](raw json.RawMessage, p *P) (OrderParams, error) {
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return *p, nil
}
