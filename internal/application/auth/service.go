// Package auth is the thin authentication collaborator: credential storage
// and principal lookup. It is intentionally minimal; the pipeline only needs
// "authenticate credentials → principal with a role".
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/domain/customer"
)

var ErrInvalidCredentials = errors.New("auth: invalid credentials")

type IDGenerator interface {
	NewID() string
}

type Service struct {
	db    *gorm.DB
	idGen IDGenerator
}

func NewService(db *gorm.DB, idGen IDGenerator) *Service {
	return &Service{db: db, idGen: idGen}
}

// Signup registers a new customer-role account.
func (s *Service) Signup(ctx context.Context, username, password string) (*customer.Customer, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&customer.Customer{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("auth: check username: %w", err)
	}
	if count > 0 {
		return nil, customer.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	cust := customer.New(s.idGen.NewID(), username, string(hash), customer.RoleCustomer)
	if err := s.db.WithContext(ctx).Create(cust).Error; err != nil {
		return nil, fmt.Errorf("auth: create customer: %w", err)
	}
	return cust, nil
}

// Login verifies the credentials and returns the principal.
func (s *Service) Login(ctx context.Context, username, password string) (*customer.Customer, error) {
	var cust customer.Customer
	err := s.db.WithContext(ctx).First(&cust, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load customer: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cust.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &cust, nil
}

// Principal resolves a customer id to the account, for the request middleware.
func (s *Service) Principal(ctx context.Context, customerID string) (*customer.Customer, error) {
	var cust customer.Customer
	err := s.db.WithContext(ctx).First(&cust, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load principal: %w", err)
	}
	return &cust, nil
}
