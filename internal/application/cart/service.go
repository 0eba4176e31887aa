package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domcart "github.com/awemart/awemart/internal/domain/cart"
	"github.com/awemart/awemart/internal/domain/catalog"
	"github.com/awemart/awemart/internal/observability"
)

// Service owns the cart-line entities for each customer.
type Service struct {
	db    *gorm.DB
	idGen IDGenerator
	log   observability.Logger
}

type IDGenerator interface {
	NewID() string
}

func NewService(db *gorm.DB, idGen IDGenerator, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		db:    db,
		idGen: idGen,
		log:   logger.With(observability.F("component", "cart_service")),
	}
}

// Get returns the customer's cart, creating an empty one on first use.
func (s *Service) Get(ctx context.Context, customerID string) (*domcart.Cart, error) {
	var c domcart.Cart
	err := s.db.WithContext(ctx).
		Preload("Lines.Product").
		First(&c, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = domcart.Cart{ID: s.idGen.NewID(), CustomerID: customerID}
		if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
			return nil, fmt.Errorf("cart: create: %w", err)
		}
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	return &c, nil
}

// AddItem merges quantity into an existing line for the product, or creates
// one. The merge is additive; use UpdateItem for an exact set.
func (s *Service) AddItem(ctx context.Context, customerID, productID string, quantity int) (*domcart.Cart, error) {
	if quantity <= 0 {
		return nil, domcart.ErrInvalidQuantity
	}

	var product catalog.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load product: %w", err)
	}

	c, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var line domcart.Line
	err = s.db.WithContext(ctx).First(&line, "cart_id = ? AND product_id = ?", c.ID, productID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = domcart.Line{CartID: c.ID, ProductID: productID, Quantity: quantity}
		if err := s.db.WithContext(ctx).Create(&line).Error; err != nil {
			return nil, fmt.Errorf("cart: add line: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("cart: load line: %w", err)
	default:
		line.Quantity += quantity
		if err := s.db.WithContext(ctx).Model(&line).UpdateColumn("quantity", line.Quantity).Error; err != nil {
			return nil, fmt.Errorf("cart: merge line: %w", err)
		}
	}

	return s.Get(ctx, customerID)
}

// UpdateItem sets the line quantity exactly; zero or negative deletes the line.
func (s *Service) UpdateItem(ctx context.Context, customerID, productID string, quantity int) (*domcart.Cart, error) {
	c, line, err := s.findLine(ctx, customerID, productID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.db.WithContext(ctx).Delete(line).Error; err != nil {
			return nil, fmt.Errorf("cart: delete line: %w", err)
		}
	} else {
		if err := s.db.WithContext(ctx).Model(line).UpdateColumn("quantity", quantity).Error; err != nil {
			return nil, fmt.Errorf("cart: update line: %w", err)
		}
	}

	return s.Get(ctx, c.CustomerID)
}

// RemoveItem deletes the line for the product.
func (s *Service) RemoveItem(ctx context.Context, customerID, productID string) (*domcart.Cart, error) {
	c, line, err := s.findLine(ctx, customerID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(line).Error; err != nil {
		return nil, fmt.Errorf("cart: remove line: %w", err)
	}
	return s.Get(ctx, c.CustomerID)
}

// Clear removes every line from the customer's cart.
func (s *Service) Clear(ctx context.Context, customerID string) error {
	c, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("cart_id = ?", c.ID).Delete(&domcart.Line{}).Error; err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

func (s *Service) findLine(ctx context.Context, customerID, productID string) (*domcart.Cart, *domcart.Line, error) {
	var c domcart.Cart
	err := s.db.WithContext(ctx).First(&c, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, domcart.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cart: load: %w", err)
	}

	var line domcart.Line
	err = s.db.WithContext(ctx).First(&line, "cart_id = ? AND product_id = ?", c.ID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, domcart.ErrLineNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cart: load line: %w", err)
	}
	return &c, &line, nil
}
