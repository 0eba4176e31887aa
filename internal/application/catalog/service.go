// Package catalog is the thin browse/maintain collaborator over the product
// and category tables.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domcatalog "github.com/awemart/awemart/internal/domain/catalog"
)

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

func (s *Service) ListProducts(ctx context.Context) ([]domcatalog.Product, error) {
	var products []domcatalog.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domcatalog.Product, error) {
	var product domcatalog.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domcatalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get product: %w", err)
	}
	return &product, nil
}

func (s *Service) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, stock int, categoryID *string) (*domcatalog.Product, error) {
	product, err := domcatalog.NewProduct(s.idGen.NewID(), name, description, price, stock)
	if err != nil {
		return nil, err
	}
	if categoryID != nil && *categoryID != "" {
		var cat domcatalog.Category
		if err := s.db.WithContext(ctx).First(&cat, "id = ?", *categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domcatalog.ErrCategoryNotFound
			}
			return nil, fmt.Errorf("catalog: load category: %w", err)
		}
		product.CategoryID = categoryID
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("catalog: create product: %w", err)
	}
	return product, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domcatalog.Category, error) {
	var categories []domcatalog.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("catalog: list categories: %w", err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*domcatalog.Category, error) {
	cat := domcatalog.NewCategory(name, description)
	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, fmt.Errorf("catalog: create category: %w", err)
	}
	return cat, nil
}
