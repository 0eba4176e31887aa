// Package orders is the read-side collaborator for order history and invoice
// lookups; placement lives in the checkout package.
package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/domain/billing"
	"github.com/awemart/awemart/internal/domain/order"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListForCustomer returns the customer's orders, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	var orders []order.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	return orders, nil
}

// Get returns the order when it belongs to the customer; admin callers pass
// an empty customerID to skip the ownership filter.
func (s *Service) Get(ctx context.Context, customerID, orderID string) (*order.Order, error) {
	var ord order.Order
	q := s.db.WithContext(ctx).Preload("Lines")
	if customerID != "" {
		q = q.Where("customer_id = ?", customerID)
	}
	err := q.First(&ord, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: get: %w", err)
	}
	return &ord, nil
}

// GetInvoice returns the invoice attached to the order.
func (s *Service) GetInvoice(ctx context.Context, customerID, orderID string) (*billing.Invoice, error) {
	if _, err := s.Get(ctx, customerID, orderID); err != nil {
		return nil, err
	}
	var inv billing.Invoice
	err := s.db.WithContext(ctx).First(&inv, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, billing.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: get invoice: %w", err)
	}
	return &inv, nil
}
