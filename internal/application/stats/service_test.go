package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appstats "github.com/awemart/awemart/internal/application/stats"
	"github.com/awemart/awemart/internal/domain/order"
	domshipment "github.com/awemart/awemart/internal/domain/shipment"
	"github.com/awemart/awemart/internal/infrastructure/storage/storagetest"
)

func seedOrder(t *testing.T, db *gorm.DB, lines []order.Line) *order.Order {
	t.Helper()
	ord := &order.Order{
		ID:         uuid.NewString(),
		CustomerID: uuid.NewString(),
		Shipping: order.ShippingInfo{
			FullName: "A", Address: "B", City: "C", PostalCode: "D",
		},
		Lines: lines,
	}
	require.NoError(t, db.Create(ord).Error)
	return ord
}

func TestOrderAnalytics(t *testing.T) {
	db := storagetest.Open(t)
	svc := appstats.NewService(db)
	ctx := context.Background()

	mugID, kettleID := uuid.NewString(), uuid.NewString()
	seedOrder(t, db, []order.Line{
		{ProductID: mugID, Name: "Mug", Quantity: 3, Price: decimal.RequireFromString("4.50")},
	})
	seedOrder(t, db, []order.Line{
		{ProductID: mugID, Name: "Mug", Quantity: 2, Price: decimal.RequireFromString("4.50")},
		{ProductID: kettleID, Name: "Kettle", Quantity: 1, Price: decimal.RequireFromString("19.99")},
	})

	got, err := svc.OrderAnalytics(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, got.TotalOrders)
	// 5 mugs at 4.50 plus one kettle at 19.99.
	assert.True(t, got.TotalSales.Equal(decimal.RequireFromString("42.49")), "got %s", got.TotalSales)

	require.Len(t, got.TopProducts, 2)
	assert.Equal(t, mugID, got.TopProducts[0].ProductID)
	assert.Equal(t, 5, got.TopProducts[0].TotalSold)
	assert.Equal(t, kettleID, got.TopProducts[1].ProductID)
	assert.Equal(t, 1, got.TopProducts[1].TotalSold)
}

func TestOrderAnalyticsEmpty(t *testing.T) {
	db := storagetest.Open(t)
	svc := appstats.NewService(db)

	got, err := svc.OrderAnalytics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.TotalOrders)
	assert.True(t, got.TotalSales.IsZero())
	assert.Empty(t, got.TopProducts)
}

func TestShipmentDashboard(t *testing.T) {
	db := storagetest.Open(t)
	svc := appstats.NewService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	statuses := []domshipment.Status{
		domshipment.StatusPending,
		domshipment.StatusPending,
		domshipment.StatusInTransit,
		domshipment.StatusDelivered,
	}
	for i, st := range statuses {
		ord := seedOrder(t, db, nil)
		sh := domshipment.New(uuid.NewString(), ord.ID, "TRK"+uuid.NewString()[:12], now.Add(time.Duration(i)*time.Second))
		sh.Status = st
		require.NoError(t, db.Create(sh).Error)
	}

	got, err := svc.ShipmentDashboard(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 4, got.TotalShipments)
	assert.EqualValues(t, 2, got.StatusCounts["pending"])
	assert.EqualValues(t, 1, got.StatusCounts["in_transit"])
	assert.EqualValues(t, 1, got.StatusCounts["delivered"])
	require.Len(t, got.RecentShipments, 4)
	// Newest first.
	assert.Equal(t, domshipment.StatusDelivered, got.RecentShipments[0].Status)
}
