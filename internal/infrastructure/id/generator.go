package id

import (
	"strings"

	"github.com/google/uuid"
)

// Generator produces entity ids and the human-readable document tokens.
type Generator interface {
	NewID() string
	InvoiceNumber() string
	TransactionID() string
	ReceiptNumber() string
	TrackingNumber() string
}

type uuidGenerator struct{}

func NewUUIDGenerator() Generator { return uuidGenerator{} }

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Document tokens keep their historical shapes: a short prefix followed by
// uppercased hex from a fresh UUID.
func (uuidGenerator) InvoiceNumber() string  { return token("INV", 8) }
func (uuidGenerator) TransactionID() string  { return token("TXN", 10) }
func (uuidGenerator) ReceiptNumber() string  { return token("RCP", 8) }
func (uuidGenerator) TrackingNumber() string { return token("TRK", 12) }

func token(prefix string, n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(hex[:n])
}
