package order

import "time"

// PlacedEvent is emitted after an order and its invoice have been committed.
type PlacedEvent struct {
	OrderID    string
	CustomerID string
	InvoiceID  string
	Total      string
	OccurredAt time.Time
}

func (PlacedEvent) EventName() string { return "order.placed" }

func NewPlacedEvent(o *Order, invoiceID string) PlacedEvent {
	return PlacedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		InvoiceID:  invoiceID,
		Total:      o.Total().String(),
		OccurredAt: time.Now().UTC(),
	}
}
