package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("catalog: product not found")
	ErrCategoryNotFound = errors.New("catalog: category not found")
	ErrInvalidPrice     = errors.New("catalog: price must be zero or greater")
	ErrInvalidStock     = errors.New("catalog: stock must be zero or greater")

	// ErrInsufficientStock is the sentinel matched by errors.Is; the concrete
	// error carries the available/requested figures.
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// InsufficientStockError reports a stock reservation that would drive the
// counter negative.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Category groups products. The id is derived from the name with whitespace
// stripped and lowercased, so "Home Office" and "homeoffice" collide on purpose.
type Category struct {
	ID          string `gorm:"primaryKey;size:255" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

var whitespace = regexp.MustCompile(`\s+`)

func NewCategory(name, description string) *Category {
	return &Category{
		ID:          CategoryID(name),
		Name:        name,
		Description: description,
	}
}

func CategoryID(name string) string {
	return strings.ToLower(whitespace.ReplaceAllString(name, ""))
}

// Product is the catalog entry and the inventory ledger's unit of account.
// Stock is mandatory and non-negative; it is mutated only through the
// inventory service, never assigned directly elsewhere.
type Product struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"size:255" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CategoryID  *string         `gorm:"size:255" json:"category_id,omitempty"`
	Category    *Category       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewProduct(id, name, description string, price decimal.Decimal, stock int) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	now := time.Now().UTC()
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
