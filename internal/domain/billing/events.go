package billing

import "time"

// InvoicePaidEvent is emitted after a payment transaction commits.
type InvoicePaidEvent struct {
	InvoiceID  string
	OrderID    string
	CustomerID string
	PaymentID  string
	Amount     string
	OccurredAt time.Time
}

func (InvoicePaidEvent) EventName() string { return "invoice.paid" }

func NewInvoicePaidEvent(inv *Invoice, p *Payment) InvoicePaidEvent {
	return InvoicePaidEvent{
		InvoiceID:  inv.ID,
		OrderID:    inv.OrderID,
		CustomerID: p.CustomerID,
		PaymentID:  p.ID,
		Amount:     p.Amount.String(),
		OccurredAt: time.Now().UTC(),
	}
}
