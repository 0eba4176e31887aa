package shipment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/domain/event"
	"github.com/awemart/awemart/internal/domain/order"
	domshipment "github.com/awemart/awemart/internal/domain/shipment"
	"github.com/awemart/awemart/internal/observability"
	"github.com/awemart/awemart/internal/observability/logctx"
)

// IDGenerator produces shipment ids and tracking numbers.
type IDGenerator interface {
	NewID() string
	TrackingNumber() string
}

// Service creates shipments for paid orders and drives them through the
// status lifecycle.
type Service struct {
	db        *gorm.DB
	idGen     IDGenerator
	publisher event.Publisher
	log       observability.Logger
}

func NewService(db *gorm.DB, idGen IDGenerator, publisher event.Publisher, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		db:        db,
		idGen:     idGen,
		publisher: publisher,
		log:       logger.With(observability.F("component", "shipment_service")),
	}
}

// Create registers a shipment for a paid order. Orders that are unpaid or
// already shipped are rejected.
func (s *Service) Create(ctx context.Context, orderID string) (*domshipment.Shipment, error) {
	var ord order.Order
	err := s.db.WithContext(ctx).First(&ord, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("shipment: load order: %w", err)
	}
	if !ord.IsPaid() {
		return nil, domshipment.ErrOrderNotPaid
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domshipment.Shipment{}).
		Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("shipment: check existing: %w", err)
	}
	if count > 0 {
		return nil, domshipment.ErrAlreadyExists
	}

	sh := domshipment.New(s.idGen.NewID(), orderID, s.idGen.TrackingNumber(), time.Now().UTC())
	if err := s.db.WithContext(ctx).Create(sh).Error; err != nil {
		return nil, fmt.Errorf("shipment: create: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("shipment_created",
		observability.F("shipment_id", sh.ID),
		observability.F("order_id", orderID),
		observability.F("tracking_number", sh.TrackingNumber),
	)

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, domshipment.NewCreatedEvent(sh))
	}
	return sh, nil
}

// UpdateStatus applies an explicit status transition. Reaching delivered
// stamps the actual delivery time and cascades the order status.
func (s *Service) UpdateStatus(ctx context.Context, shipmentID string, next domshipment.Status) (*domshipment.Shipment, error) {
	var sh domshipment.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ferr := tx.First(&sh, "id = ?", shipmentID).Error; ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return domshipment.ErrNotFound
			}
			return fmt.Errorf("shipment: load: %w", ferr)
		}

		if terr := sh.TransitionTo(next, time.Now().UTC()); terr != nil {
			return terr
		}

		updates := map[string]any{
			"status":     sh.Status,
			"updated_at": sh.UpdatedAt,
		}
		if sh.ActualDelivery != nil {
			updates["actual_delivery"] = *sh.ActualDelivery
		}
		if uerr := tx.Model(&domshipment.Shipment{}).Where("id = ?", sh.ID).Updates(updates).Error; uerr != nil {
			return fmt.Errorf("shipment: update: %w", uerr)
		}

		if next == domshipment.StatusDelivered {
			if uerr := tx.Model(&order.Order{}).
				Where("id = ?", sh.OrderID).
				Update("status", order.StatusDelivered).Error; uerr != nil {
				return fmt.Errorf("shipment: cascade order status: %w", uerr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromOr(ctx, s.log).Info("shipment_status_updated",
		observability.F("shipment_id", sh.ID),
		observability.F("status", string(sh.Status)),
	)

	if next == domshipment.StatusDelivered && s.publisher != nil {
		_ = s.publisher.Publish(ctx, domshipment.NewDeliveredEvent(&sh))
	}
	return &sh, nil
}

// AdvanceOnce moves the shipment one step along the forward progression.
// It reports done when no further advancement is possible: terminal status,
// or the shipment is gone. Neither case is an error; scheduled advancements
// are fire-and-forget and must tolerate both.
func (s *Service) AdvanceOnce(ctx context.Context, shipmentID string) (done bool, err error) {
	var sh domshipment.Shipment
	ferr := s.db.WithContext(ctx).First(&sh, "id = ?", shipmentID).Error
	if errors.Is(ferr, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if ferr != nil {
		return false, fmt.Errorf("shipment: load: %w", ferr)
	}
	if sh.Status.IsTerminal() {
		return true, nil
	}

	next, ok := sh.Status.Next()
	if !ok {
		return true, nil
	}
	if _, uerr := s.UpdateStatus(ctx, shipmentID, next); uerr != nil {
		// A concurrent explicit transition may have won; stop quietly.
		if errors.Is(uerr, domshipment.ErrInvalidTransition) || errors.Is(uerr, domshipment.ErrNotFound) {
			return true, nil
		}
		return false, uerr
	}
	return next == domshipment.StatusDelivered, nil
}

// Snapshot is the read-only tracking projection.
type Snapshot struct {
	TrackingNumber    string             `json:"tracking_number"`
	Status            domshipment.Status `json:"status"`
	Carrier           string             `json:"carrier"`
	EstimatedDelivery time.Time          `json:"estimated_delivery"`
	ActualDelivery    *time.Time         `json:"actual_delivery,omitempty"`
	OrderID           string             `json:"order_id"`
}

// Track looks a shipment up by its customer-facing tracking number.
func (s *Service) Track(ctx context.Context, trackingNumber string) (*Snapshot, error) {
	var sh domshipment.Shipment
	err := s.db.WithContext(ctx).First(&sh, "tracking_number = ?", trackingNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domshipment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("shipment: track: %w", err)
	}
	return &Snapshot{
		TrackingNumber:    sh.TrackingNumber,
		Status:            sh.Status,
		Carrier:           sh.Carrier,
		EstimatedDelivery: sh.EstimatedDelivery,
		ActualDelivery:    sh.ActualDelivery,
		OrderID:           sh.OrderID,
	}, nil
}

// Get returns a shipment by id.
func (s *Service) Get(ctx context.Context, shipmentID string) (*domshipment.Shipment, error) {
	var sh domshipment.Shipment
	err := s.db.WithContext(ctx).First(&sh, "id = ?", shipmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domshipment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("shipment: load: %w", err)
	}
	return &sh, nil
}
