package customer

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("customer: not found")
	ErrUsernameTaken = errors.New("customer: username already taken")

	// ErrInsufficientFunds is the sentinel matched by errors.Is; the concrete
	// error carries the required/available figures.
	ErrInsufficientFunds = errors.New("customer: insufficient wallet balance")
)

// InsufficientFundsError reports a wallet debit larger than the balance.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: required %s, available %s", e.Required, e.Available)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// Role gates the elevated endpoints. Ownership of the taxonomy belongs to the
// auth collaborator; services only compare values.
type Role string

const (
	RoleCustomer          Role = "customer"
	RoleAdmin             Role = "admin"
	RoleShipmentManager   Role = "shipment_manager"
	RoleStatisticsManager Role = "statistics_manager"
	RoleInventoryManager  Role = "inventory_manager"
)

// Customer carries the wallet balance, the sole payment instrument.
type Customer struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	Username     string          `gorm:"size:255;uniqueIndex;not null" json:"username"`
	PasswordHash string          `gorm:"size:255;not null" json:"-"`
	Role         Role            `gorm:"size:32;not null;default:customer" json:"role"`
	Wallet       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"wallet"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func New(id, username, passwordHash string, role Role) *Customer {
	now := time.Now().UTC()
	return &Customer{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Wallet:       decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
