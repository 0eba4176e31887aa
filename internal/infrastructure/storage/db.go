package storage

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/awemart/awemart/internal/domain/billing"
	"github.com/awemart/awemart/internal/domain/cart"
	"github.com/awemart/awemart/internal/domain/catalog"
	"github.com/awemart/awemart/internal/domain/customer"
	"github.com/awemart/awemart/internal/domain/order"
	"github.com/awemart/awemart/internal/domain/shipment"
)

// Open connects to the configured database and runs migrations.
// driver is "sqlite" or "mysql"; dsn is driver-specific.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		// Enforce FK integrity; sqlite has it off by default.
		dialector = sqlite.Open(dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storage: unwrap sql db: %w", err)
	}
	if driver == "mysql" {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// sqlite allows a single writer; one connection avoids busy errors
		// and gives every transaction a consistent view.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for every aggregate.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&customer.Customer{},
		&cart.Cart{},
		&cart.Line{},
		&order.Order{},
		&order.Line{},
		&billing.Invoice{},
		&billing.Payment{},
		&billing.Receipt{},
		&shipment.Shipment{},
	)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}
