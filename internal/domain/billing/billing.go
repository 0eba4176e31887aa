package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
	ErrAlreadyPaid     = errors.New("billing: invoice has already been paid")
)

// InvoiceDueDays is how long after placement an invoice falls due.
const InvoiceDueDays = 7

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is the amount-due record generated at order placement, 1:1 with its
// order. It moves to paid only through a successful payment.
type Invoice struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	OrderID       string          `gorm:"size:36;uniqueIndex;not null" json:"order_id"`
	InvoiceNumber string          `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_due"`
	Status        InvoiceStatus   `gorm:"size:20;not null;default:pending" json:"status"`
	DueDate       time.Time       `gorm:"not null" json:"due_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsOverdue is derived: still pending and past the due date.
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoicePending && now.After(i.DueDate)
}

func NewInvoice(id, orderID, number string, amountDue decimal.Decimal, now time.Time) *Invoice {
	return &Invoice{
		ID:            id,
		OrderID:       orderID,
		InvoiceNumber: number,
		AmountDue:     amountDue,
		Status:        InvoicePending,
		DueDate:       now.Add(InvoiceDueDays * 24 * time.Hour),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records a wallet debit against an invoice. An invoice accepts only
// one successful payment; the status re-check inside the payment transaction
// enforces that.
type Payment struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID     string          `gorm:"size:36;index;not null" json:"invoice_id"`
	CustomerID    string          `gorm:"size:36;index;not null" json:"customer_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        PaymentStatus   `gorm:"size:20;not null;default:pending" json:"status"`
	TransactionID string          `gorm:"size:100;uniqueIndex;not null" json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// Receipt is the proof-of-payment record, 1:1 with its payment.
type Receipt struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	PaymentID     string          `gorm:"size:36;uniqueIndex;not null" json:"payment_id"`
	ReceiptNumber string          `gorm:"size:50;uniqueIndex;not null" json:"receipt_number"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	CreatedAt     time.Time       `json:"created_at"`
}
