package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrMissingShipping = errors.New("order: all shipping fields are required")
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// ShippingInfo is the address snapshot captured at placement time,
// independent of later profile changes.
type ShippingInfo struct {
	FullName   string `gorm:"column:shipping_full_name;size:255;not null" json:"full_name"`
	Address    string `gorm:"column:shipping_address;size:512;not null" json:"address"`
	City       string `gorm:"column:shipping_city;size:100;not null" json:"city"`
	PostalCode string `gorm:"column:shipping_postal_code;size:20;not null" json:"postal_code"`
}

func (s ShippingInfo) Validate() error {
	for _, v := range []string{s.FullName, s.Address, s.City, s.PostalCode} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingShipping
		}
	}
	return nil
}

// Order is immutable after creation except for status, payment status and the
// shipment back-reference.
type Order struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	CustomerID    string        `gorm:"size:36;index;not null" json:"customer_id"`
	Status        Status        `gorm:"size:32;not null;default:processing" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:pending" json:"payment_status"`
	Shipping      ShippingInfo  `gorm:"embedded" json:"shipping"`
	Lines         []Line        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Line copies the product reference, quantity and the unit price current at
// placement time. The price is never recomputed afterwards.
type Line struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string          `gorm:"size:36;index;not null" json:"order_id"`
	ProductID string          `gorm:"size:36;not null" json:"product_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums the frozen line prices, independent of current catalog prices.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (o *Order) IsPaid() bool { return o.PaymentStatus == PaymentPaid }
