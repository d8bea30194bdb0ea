package campaign

// MessageStatus tracks a courier dispatch.
type MessageStatus string

const (
	MessageInTransit   MessageStatus = "in_transit"
	MessageDelivered   MessageStatus = "delivered"
	MessageIntercepted MessageStatus = "intercepted"
	MessageUndeliverable MessageStatus = "undeliverable"
)

// Message is a courier-borne dispatch between commanders. Delivery timing is
// fixed at dispatch; the tick engine finalizes delivery when the computed
// day and part arrive.
type Message struct {
	ID             MessageID     `json:"id"`
	Sender         CommanderID   `json:"sender"`
	Recipient      CommanderID   `json:"recipient"`
	Content        string        `json:"content"`
	Territory      Territory     `json:"territory"`
	SentDay        int           `json:"sent_day"`
	SentPart       DayPart       `json:"sent_part"`
	TravelDays     float64       `json:"travel_days"`
	DeliveryDay    int           `json:"delivery_day"` // -1 when intercepted
	DeliveryPart   DayPart       `json:"delivery_part,omitempty"`
	Status         MessageStatus `json:"status"`
	Delivered      bool          `json:"delivered"`
	FailureReason  string        `json:"failure_reason,omitempty"`
}

// DueAt reports whether the message should be delivered at the given tick.
func (m *Message) DueAt(day int, part DayPart) bool {
	if m.Status != MessageInTransit || m.DeliveryDay < 0 {
		return false
	}
	if day > m.DeliveryDay {
		return true
	}
	return day == m.DeliveryDay && PartIndex(part) >= PartIndex(m.DeliveryPart)
}
