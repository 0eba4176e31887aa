package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awemart/awemart/internal/domain/catalog"
)

var (
	ErrNotFound        = errors.New("cart: not found")
	ErrLineNotFound    = errors.New("cart: line not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
	ErrEmpty           = errors.New("cart: cart is empty")
)

// Cart is the single mutable basket each customer owns. Lines are unique per
// product; totals are derived from current product prices, never frozen.
type Cart struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	CustomerID string    `gorm:"size:36;uniqueIndex;not null" json:"customer_id"`
	Lines      []Line    `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Line struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    string           `gorm:"size:36;not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID string           `gorm:"size:36;not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Product   *catalog.Product `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int              `gorm:"not null" json:"quantity"`
}

// Subtotal is quantity times the product's current price.
func (l Line) Subtotal() decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums line subtotals at current prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is the total number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }
