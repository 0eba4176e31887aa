package shipment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appshipment "github.com/awemart/awemart/internal/application/shipment"
	"github.com/awemart/awemart/internal/domain/event"
	"github.com/awemart/awemart/internal/domain/order"
	domshipment "github.com/awemart/awemart/internal/domain/shipment"
	"github.com/awemart/awemart/internal/infrastructure/id"
	"github.com/awemart/awemart/internal/infrastructure/storage/storagetest"
)

func newService(t *testing.T) (*appshipment.Service, *gorm.DB) {
	t.Helper()
	db := storagetest.Open(t)
	return appshipment.NewService(db, id.NewUUIDGenerator(), nil, nil), db
}

func seedOrder(t *testing.T, db *gorm.DB, payStatus order.PaymentStatus) *order.Order {
	t.Helper()
	ord := &order.Order{
		ID:            uuid.NewString(),
		CustomerID:    uuid.NewString(),
		Status:        order.StatusProcessing,
		PaymentStatus: payStatus,
		Shipping: order.ShippingInfo{
			FullName: "Aye Chan", Address: "12 Market St", City: "Yangon", PostalCode: "11181",
		},
	}
	require.NoError(t, db.Create(ord).Error)
	return ord
}

func TestCreateRequiresPaidOrder(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	unpaid := seedOrder(t, db, order.PaymentPending)
	_, err := svc.Create(ctx, unpaid.ID)
	assert.ErrorIs(t, err, domshipment.ErrOrderNotPaid)

	_, err = svc.Create(ctx, "nope")
	assert.ErrorIs(t, err, order.ErrNotFound)

	paid := seedOrder(t, db, order.PaymentPaid)
	sh, err := svc.Create(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domshipment.StatusPending, sh.Status)
	assert.Equal(t, domshipment.DefaultCarrier, sh.Carrier)
	assert.Regexp(t, `^TRK[0-9A-F]{12}$`, sh.TrackingNumber)

	// One shipment per order.
	_, err = svc.Create(ctx, paid.ID)
	assert.ErrorIs(t, err, domshipment.ErrAlreadyExists)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ord := seedOrder(t, db, order.PaymentPaid)
	sh, err := svc.Create(ctx, ord.ID)
	require.NoError(t, err)

	sh, err = svc.UpdateStatus(ctx, sh.ID, domshipment.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domshipment.StatusProcessing, sh.Status)

	// Skipping intermediate states forward is allowed.
	sh, err = svc.UpdateStatus(ctx, sh.ID, domshipment.StatusOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, domshipment.StatusOutForDelivery, sh.Status)

	// Backward is not.
	_, err = svc.UpdateStatus(ctx, sh.ID, domshipment.StatusShipped)
	assert.ErrorIs(t, err, domshipment.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, "nope", domshipment.StatusShipped)
	assert.ErrorIs(t, err, domshipment.ErrNotFound)
}

func TestUpdateStatusDeliveredCascades(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ord := seedOrder(t, db, order.PaymentPaid)
	sh, err := svc.Create(ctx, ord.ID)
	require.NoError(t, err)

	sh, err = svc.UpdateStatus(ctx, sh.ID, domshipment.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domshipment.StatusDelivered, sh.Status)
	require.NotNil(t, sh.ActualDelivery)

	var stored domshipment.Shipment
	require.NoError(t, db.First(&stored, "id = ?", sh.ID).Error)
	assert.NotNil(t, stored.ActualDelivery)

	var updated order.Order
	require.NoError(t, db.First(&updated, "id = ?", ord.ID).Error)
	assert.Equal(t, order.StatusDelivered, updated.Status)

	// Delivered is terminal; nothing leaves it.
	_, err = svc.UpdateStatus(ctx, sh.ID, domshipment.StatusFailed)
	assert.ErrorIs(t, err, domshipment.ErrInvalidTransition)
}

func TestUpdateStatusFailedIsTerminal(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ord := seedOrder(t, db, order.PaymentPaid)
	sh, err := svc.Create(ctx, ord.ID)
	require.NoError(t, err)

	sh, err = svc.UpdateStatus(ctx, sh.ID, domshipment.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, domshipment.StatusFailed, sh.Status)
	assert.Nil(t, sh.ActualDelivery)

	_, err = svc.UpdateStatus(ctx, sh.ID, domshipment.StatusDelivered)
	assert.ErrorIs(t, err, domshipment.ErrInvalidTransition)
}

func TestTrack(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ord := seedOrder(t, db, order.PaymentPaid)
	sh, err := svc.Create(ctx, ord.ID)
	require.NoError(t, err)

	snap, err := svc.Track(ctx, sh.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, sh.TrackingNumber, snap.TrackingNumber)
	assert.Equal(t, domshipment.StatusPending, snap.Status)
	assert.Equal(t, ord.ID, snap.OrderID)
	assert.Nil(t, snap.ActualDelivery)

	_, err = svc.Track(ctx, "TRKUNKNOWN00")
	assert.ErrorIs(t, err, domshipment.ErrNotFound)
}

func TestAdvanceOnceWalksToDelivered(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ord := seedOrder(t, db, order.PaymentPaid)
	sh, err := svc.Create(ctx, ord.ID)
	require.NoError(t, err)

	steps := 0
	for {
		done, err := svc.AdvanceOnce(ctx, sh.ID)
		require.NoError(t, err)
		steps++
		if done {
			break
		}
		require.Less(t, steps, 10, "progression must terminate")
	}
	assert.Equal(t, 5, steps)

	got, err := svc.Get(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, domshipment.StatusDelivered, got.Status)

	// Terminal shipments and vanished shipments both read as done.
	done, err := svc.AdvanceOnce(ctx, sh.ID)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = svc.AdvanceOnce(ctx, "nope")
	require.NoError(t, err)
	assert.True(t, done)
}

// recordingSubscriber captures the handler the progressor registers so the
// test can invoke it directly instead of running a bus.
type recordingSubscriber struct {
	handler event.Handler
}

func (r *recordingSubscriber) Subscribe(_ string, h event.Handler) { r.handler = h }

func TestProgressorDrivesShipmentToDelivered(t *testing.T) {
	db := storagetest.Open(t)
	svc := appshipment.NewService(db, id.NewUUIDGenerator(), nil, nil)
	ord := seedOrder(t, db, order.PaymentPaid)
	ctx := context.Background()

	sh, err := svc.Create(ctx, ord.ID)
	require.NoError(t, err)

	p := appshipment.NewProgressor(svc, 2*time.Millisecond, nil)
	sub := &recordingSubscriber{}
	p.Start(ctx, sub)
	defer p.Stop()

	// Feed the created event straight to the registered handler.
	require.NotNil(t, sub.handler)
	require.NoError(t, sub.handler(ctx, domshipment.NewCreatedEvent(sh)))

	require.Eventually(t, func() bool {
		got, err := svc.Get(ctx, sh.ID)
		return err == nil && got.Status == domshipment.StatusDelivered
	}, 5*time.Second, 5*time.Millisecond)
}
