package shipment

import "time"

// CreatedEvent is emitted after a shipment row is committed. The auto-advance
// progressor subscribes to it.
type CreatedEvent struct {
	ShipmentID     string
	OrderID        string
	TrackingNumber string
	OccurredAt     time.Time
}

func (CreatedEvent) EventName() string { return "shipment.created" }

func NewCreatedEvent(s *Shipment) CreatedEvent {
	return CreatedEvent{
		ShipmentID:     s.ID,
		OrderID:        s.OrderID,
		TrackingNumber: s.TrackingNumber,
		OccurredAt:     time.Now().UTC(),
	}
}

// DeliveredEvent is emitted when a shipment reaches delivered.
type DeliveredEvent struct {
	ShipmentID  string
	OrderID     string
	DeliveredAt time.Time
	OccurredAt  time.Time
}

func (DeliveredEvent) EventName() string { return "shipment.delivered" }

func NewDeliveredEvent(s *Shipment) DeliveredEvent {
	deliveredAt := time.Now().UTC()
	if s.ActualDelivery != nil {
		deliveredAt = *s.ActualDelivery
	}
	return DeliveredEvent{
		ShipmentID:  s.ID,
		OrderID:     s.OrderID,
		DeliveredAt: deliveredAt,
		OccurredAt:  time.Now().UTC(),
	}
}
