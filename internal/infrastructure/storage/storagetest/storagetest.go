// Package storagetest opens throwaway in-memory databases for package tests.
package storagetest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/infrastructure/storage"
)

// Open returns a migrated in-memory sqlite handle scoped to the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := storage.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
