package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appinventory "github.com/awemart/awemart/internal/application/inventory"
	"github.com/awemart/awemart/internal/domain/catalog"
	"github.com/awemart/awemart/internal/infrastructure/storage/storagetest"
)

func seedProduct(t *testing.T, db *gorm.DB, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(uuid.NewString(), "Widget", "", decimal.RequireFromString("9.99"), stock)
	require.NoError(t, err)
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestGetSetStock(t *testing.T) {
	db := storagetest.Open(t)
	svc := appinventory.NewService(db, nil)
	ctx := context.Background()
	p := seedProduct(t, db, 3)

	stock, err := svc.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stock)

	stock, err = svc.SetStock(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, stock)

	_, err = svc.SetStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, catalog.ErrInvalidStock)

	_, err = svc.GetStock(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.SetStock(ctx, "nope", 5)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestAdjustStock(t *testing.T) {
	db := storagetest.Open(t)
	svc := appinventory.NewService(db, nil)
	ctx := context.Background()
	p := seedProduct(t, db, 5)

	stock, err := svc.AdjustStock(ctx, p.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 3, stock)

	stock, err = svc.AdjustStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	_, err = svc.AdjustStock(ctx, "nope", 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	db := storagetest.Open(t)
	svc := appinventory.NewService(db, nil)
	ctx := context.Background()
	p := seedProduct(t, db, 2)

	_, err := svc.AdjustStock(ctx, p.ID, -3)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrInsufficientStock)

	var se *catalog.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 3, se.Requested)

	// The rejected adjustment must not have touched the counter.
	stock, err := svc.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestAdjustStockConcurrentNeverGoesNegative(t *testing.T) {
	db := storagetest.Open(t)
	svc := appinventory.NewService(db, nil)
	ctx := context.Background()
	p := seedProduct(t, db, 10)

	const workers = 25
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustStock(ctx, p.ID, -1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
	}
	assert.Equal(t, 10, succeeded)

	stock, err := svc.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestAllStock(t *testing.T) {
	db := storagetest.Open(t)
	svc := appinventory.NewService(db, nil)
	ctx := context.Background()

	a, err := catalog.NewProduct(uuid.NewString(), "Anvil", "", decimal.NewFromInt(40), 1)
	require.NoError(t, err)
	b, err := catalog.NewProduct(uuid.NewString(), "Bucket", "", decimal.NewFromInt(5), 8)
	require.NoError(t, err)
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)

	items, err := svc.AllStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Anvil", items[0].Name)
	assert.Equal(t, 1, items[0].Stock)
	assert.Equal(t, "Bucket", items[1].Name)
	assert.Equal(t, 8, items[1].Stock)
}
