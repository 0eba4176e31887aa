package cart_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appcart "github.com/awemart/awemart/internal/application/cart"
	domcart "github.com/awemart/awemart/internal/domain/cart"
	"github.com/awemart/awemart/internal/domain/catalog"
	"github.com/awemart/awemart/internal/infrastructure/id"
	"github.com/awemart/awemart/internal/infrastructure/storage/storagetest"
)

func newService(t *testing.T) (*appcart.Service, *gorm.DB) {
	t.Helper()
	db := storagetest.Open(t)
	return appcart.NewService(db, id.NewUUIDGenerator(), nil), db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(uuid.NewString(), name, "", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestGetCreatesEmptyCartOnFirstUse(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	c, err := svc.Get(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, "cust-1", c.CustomerID)

	again, err := svc.Get(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID, "one cart per customer")
}

func TestAddItemMergesQuantity(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Mug", "4.50", 10)

	c, err := svc.AddItem(ctx, "cust-1", p.ID, 2)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	c, err = svc.AddItem(ctx, "cust-1", p.ID, 3)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1, "same product merges into one line")
	assert.Equal(t, 5, c.Lines[0].Quantity)
	assert.Equal(t, 5, c.ItemCount())
	assert.True(t, c.Total().Equal(decimal.RequireFromString("22.50")), "got %s", c.Total())
}

func TestAddItemValidation(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Mug", "4.50", 10)

	_, err := svc.AddItem(ctx, "cust-1", p.ID, 0)
	assert.ErrorIs(t, err, domcart.ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, "cust-1", p.ID, -2)
	assert.ErrorIs(t, err, domcart.ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, "cust-1", "nope", 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateItemSetsExactQuantity(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Mug", "4.50", 10)

	_, err := svc.AddItem(ctx, "cust-1", p.ID, 5)
	require.NoError(t, err)

	c, err := svc.UpdateItem(ctx, "cust-1", p.ID, 2)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	// Zero or negative removes the line instead of keeping a dead entry.
	c, err = svc.UpdateItem(ctx, "cust-1", p.ID, 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = svc.UpdateItem(ctx, "cust-1", p.ID, 1)
	assert.ErrorIs(t, err, domcart.ErrLineNotFound)
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	a := seedProduct(t, db, "Mug", "4.50", 10)
	b := seedProduct(t, db, "Kettle", "19.99", 10)

	_, err := svc.AddItem(ctx, "cust-1", a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "cust-1", b.ID, 2)
	require.NoError(t, err)

	c, err := svc.RemoveItem(ctx, "cust-1", a.ID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, b.ID, c.Lines[0].ProductID)

	_, err = svc.RemoveItem(ctx, "cust-1", a.ID)
	assert.ErrorIs(t, err, domcart.ErrLineNotFound)

	require.NoError(t, svc.Clear(ctx, "cust-1"))
	c, err = svc.Get(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCartsAreIsolatedPerCustomer(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Mug", "4.50", 10)

	_, err := svc.AddItem(ctx, "cust-1", p.ID, 3)
	require.NoError(t, err)

	other, err := svc.Get(ctx, "cust-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}
