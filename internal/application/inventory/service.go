package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/domain/catalog"
	"github.com/awemart/awemart/internal/observability"
	"github.com/awemart/awemart/internal/observability/logctx"
)

// Service is the exclusive owner of per-product stock counts. Nothing else in
// the codebase writes the stock column.
type Service struct {
	db  *gorm.DB
	log observability.Logger
}

func NewService(db *gorm.DB, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		db:  db,
		log: logger.With(observability.F("component", "inventory_service")),
	}
}

// GetStock returns the current stock count for a product.
func (s *Service) GetStock(ctx context.Context, productID string) (int, error) {
	var product catalog.Product
	err := s.db.WithContext(ctx).Select("id", "stock").First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, catalog.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("inventory: get stock: %w", err)
	}
	return product.Stock, nil
}

// SetStock overwrites the stock count. Negative quantities are rejected.
func (s *Service) SetStock(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity < 0 {
		return 0, catalog.ErrInvalidStock
	}
	res := s.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", quantity)
	if res.Error != nil {
		return 0, fmt.Errorf("inventory: set stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, catalog.ErrNotFound
	}
	logctx.FromOr(ctx, s.log).Info("stock_set",
		observability.F("product_id", productID),
		observability.F("stock", quantity),
	)
	return quantity, nil
}

// AdjustStock applies a relative stock change. The guard against driving the
// counter negative runs inside the UPDATE itself, so concurrent adjustments
// against the same product cannot lose updates or double-reserve units.
func (s *Service) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	if err := Adjust(s.db.WithContext(ctx), productID, delta); err != nil {
		return 0, err
	}
	stock, err := s.GetStock(ctx, productID)
	if err != nil {
		return 0, err
	}
	logctx.FromOr(ctx, s.log).Info("stock_adjusted",
		observability.F("product_id", productID),
		observability.F("delta", delta),
		observability.F("stock", stock),
	)
	return stock, nil
}

// Adjust performs the atomic conditional stock update on the given handle,
// which may be a transaction. Callers holding a transaction (order placement)
// go through here so stock mutation stays in one place.
func Adjust(tx *gorm.DB, productID string, delta int) error {
	res := tx.Model(&catalog.Product{}).
		Where("id = ? AND stock + ? >= 0", productID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("inventory: adjust stock: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the product is gone or the guard rejected it.
	var product catalog.Product
	err := tx.Select("id", "name", "stock").First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("inventory: adjust stock recheck: %w", err)
	}
	return &catalog.InsufficientStockError{
		ProductID: product.ID,
		Name:      product.Name,
		Available: product.Stock,
		Requested: -delta,
	}
}

// StockItem is a row in the inventory listing.
type StockItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// AllStock lists stock counts for every product.
func (s *Service) AllStock(ctx context.Context) ([]StockItem, error) {
	var items []StockItem
	err := s.db.WithContext(ctx).Model(&catalog.Product{}).
		Select("id as product_id", "name", "stock").
		Order("name").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("inventory: list stock: %w", err)
	}
	return items, nil
}
