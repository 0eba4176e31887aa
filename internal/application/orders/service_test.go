package orders_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apporders "github.com/awemart/awemart/internal/application/orders"
	"github.com/awemart/awemart/internal/domain/billing"
	"github.com/awemart/awemart/internal/domain/order"
	"github.com/awemart/awemart/internal/infrastructure/storage/storagetest"
)

func seedOrderWithInvoice(t *testing.T, db *gorm.DB, customerID string) (*order.Order, *billing.Invoice) {
	t.Helper()
	ord := &order.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Shipping: order.ShippingInfo{
			FullName: "Aye Chan", Address: "12 Market St", City: "Yangon", PostalCode: "11181",
		},
		Lines: []order.Line{
			{ProductID: uuid.NewString(), Name: "Mug", Quantity: 2, Price: decimal.RequireFromString("4.50")},
		},
	}
	require.NoError(t, db.Create(ord).Error)
	inv := billing.NewInvoice(uuid.NewString(), ord.ID, "INV"+uuid.NewString()[:8], ord.Total(), ord.CreatedAt)
	require.NoError(t, db.Create(inv).Error)
	return ord, inv
}

func TestListForCustomer(t *testing.T) {
	db := storagetest.Open(t)
	svc := apporders.NewService(db)
	ctx := context.Background()

	seedOrderWithInvoice(t, db, "cust-1")
	seedOrderWithInvoice(t, db, "cust-1")
	seedOrderWithInvoice(t, db, "cust-2")

	got, err := svc.ListForCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, o := range got {
		assert.Equal(t, "cust-1", o.CustomerID)
		assert.NotEmpty(t, o.Lines, "lines are preloaded")
	}

	empty, err := svc.ListForCustomer(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetEnforcesOwnership(t *testing.T) {
	db := storagetest.Open(t)
	svc := apporders.NewService(db)
	ctx := context.Background()
	ord, _ := seedOrderWithInvoice(t, db, "cust-1")

	got, err := svc.Get(ctx, "cust-1", ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, got.ID)

	_, err = svc.Get(ctx, "cust-2", ord.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)

	// Empty customer id skips the ownership filter (admin path).
	got, err = svc.Get(ctx, "", ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, got.ID)
}

func TestGetInvoice(t *testing.T) {
	db := storagetest.Open(t)
	svc := apporders.NewService(db)
	ctx := context.Background()
	ord, inv := seedOrderWithInvoice(t, db, "cust-1")

	got, err := svc.GetInvoice(ctx, "cust-1", ord.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.True(t, got.AmountDue.Equal(decimal.RequireFromString("9.00")))

	_, err = svc.GetInvoice(ctx, "cust-2", ord.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)

	// Order without an invoice row.
	orphan := &order.Order{ID: uuid.NewString(), CustomerID: "cust-1", Shipping: order.ShippingInfo{
		FullName: "A", Address: "B", City: "C", PostalCode: "D",
	}}
	require.NoError(t, db.Create(orphan).Error)
	_, err = svc.GetInvoice(ctx, "cust-1", orphan.ID)
	assert.ErrorIs(t, err, billing.ErrInvoiceNotFound)
}
