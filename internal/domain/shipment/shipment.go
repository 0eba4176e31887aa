package shipment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("shipment: not found")
	ErrOrderNotPaid  = errors.New("shipment: order has not been paid")
	ErrAlreadyExists = errors.New("shipment: order already has a shipment")

	// ErrInvalidTransition is the sentinel matched by errors.Is; the concrete
	// error names the offending statuses.
	ErrInvalidTransition = errors.New("shipment: invalid status transition")
)

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition shipment from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

const (
	// DefaultCarrier is the fixed simulated carrier.
	DefaultCarrier = "AWE Express"
	// EstimatedDeliveryDays is added to the creation time for the estimate.
	EstimatedDeliveryDays = 5
)

// Shipment tracks a paid order through the carrier lifecycle, 1:1 with its order.
type Shipment struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	OrderID           string     `gorm:"size:36;uniqueIndex;not null" json:"order_id"`
	TrackingNumber    string     `gorm:"size:50;uniqueIndex;not null" json:"tracking_number"`
	Status            Status     `gorm:"size:32;not null;default:pending" json:"status"`
	Carrier           string     `gorm:"size:100;not null" json:"carrier"`
	EstimatedDelivery time.Time  `gorm:"not null" json:"estimated_delivery"`
	ActualDelivery    *time.Time `json:"actual_delivery,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func New(id, orderID, trackingNumber string, now time.Time) *Shipment {
	return &Shipment{
		ID:                id,
		OrderID:           orderID,
		TrackingNumber:    trackingNumber,
		Status:            StatusPending,
		Carrier:           DefaultCarrier,
		EstimatedDelivery: now.Add(EstimatedDeliveryDays * 24 * time.Hour),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// TransitionTo applies the state machine rules and, on delivery, stamps the
// actual delivery time.
func (s *Shipment) TransitionTo(next Status, now time.Time) error {
	if err := s.Status.CanTransitionTo(next); err != nil {
		return err
	}
	s.Status = next
	s.UpdatedAt = now
	if next == StatusDelivered {
		t := now
		s.ActualDelivery = &t
	}
	return nil
}
