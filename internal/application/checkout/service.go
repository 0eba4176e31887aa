package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/application/inventory"
	"github.com/awemart/awemart/internal/domain/billing"
	domcart "github.com/awemart/awemart/internal/domain/cart"
	"github.com/awemart/awemart/internal/domain/catalog"
	"github.com/awemart/awemart/internal/domain/event"
	"github.com/awemart/awemart/internal/domain/order"
	"github.com/awemart/awemart/internal/observability"
	"github.com/awemart/awemart/internal/observability/logctx"
)

const (
	useCasePlaceOrder = "checkout.place_order"
	spanPrefix        = "UC."
	publishTimeout    = 300 * time.Millisecond
)

// IDGenerator produces order/invoice ids and the invoice number token.
type IDGenerator interface {
	NewID() string
	InvoiceNumber() string
}

// Service is the order placement orchestrator: it turns a populated cart into
// an immutable order plus invoice, reserving stock and clearing the cart as
// one atomic unit.
type Service struct {
	db        *gorm.DB
	idGen     IDGenerator
	publisher event.Publisher
	obs       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewService(db *gorm.DB, idGen IDGenerator, publisher event.Publisher, obs observability.Observability) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		db:           db,
		idGen:        idGen,
		publisher:    publisher,
		obs:          obs,
		log:          obs.Logger().With(observability.F("component", "checkout_service")),
		reqCounter:   obs.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: obs.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Result carries the committed order with its invoice back to the caller.
type Result struct {
	Order   *order.Order     `json:"order"`
	Invoice *billing.Invoice `json:"invoice"`
}

// PlaceOrder validates the cart and shipping info, then executes the
// placement transaction. Every write (order, order lines, stock decrements,
// invoice, cart clear) commits together or not at all.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, shipping order.ShippingInfo) (_ *Result, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCasePlaceOrder))

	ctx, span := s.obs.Tracer().Start(ctx, spanPrefix+"PlaceOrder",
		attribute.String("use_case", useCasePlaceOrder),
		attribute.String("order.customer_id", customerID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCasePlaceOrder),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat,
			observability.L("use_case", useCasePlaceOrder),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if err := shipping.Validate(); err != nil {
		outcome, statusText = "error", "SHIPPING_INCOMPLETE"
		return nil, err
	}

	c, err := s.loadCart(ctx, customerID)
	if err != nil {
		outcome, statusText = "error", "CART_LOAD_FAILED"
		return nil, err
	}
	if c.IsEmpty() {
		outcome, statusText = "error", "CART_EMPTY"
		return nil, domcart.ErrEmpty
	}

	// Pre-check every line so a doomed placement aborts before reserving
	// anything. The transaction below re-checks under the atomic update.
	for _, line := range c.Lines {
		if line.Product == nil {
			outcome, statusText = "error", "PRODUCT_MISSING"
			return nil, catalog.ErrNotFound
		}
		if line.Product.Stock < line.Quantity {
			outcome, statusText = "error", "INSUFFICIENT_STOCK"
			return nil, &catalog.InsufficientStockError{
				ProductID: line.ProductID,
				Name:      line.Product.Name,
				Available: line.Product.Stock,
				Requested: line.Quantity,
			}
		}
	}

	now := time.Now().UTC()
	ord := &order.Order{
		ID:            s.idGen.NewID(),
		CustomerID:    customerID,
		Status:        order.StatusProcessing,
		PaymentStatus: order.PaymentPending,
		Shipping:      shipping,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, line := range c.Lines {
		ord.Lines = append(ord.Lines, order.Line{
			ProductID: line.ProductID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			Price:     line.Product.Price, // frozen at placement time
		})
	}
	inv := billing.NewInvoice(s.idGen.NewID(), ord.ID, s.idGen.InvoiceNumber(), ord.Total(), now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ord).Error; err != nil {
			return fmt.Errorf("checkout: create order: %w", err)
		}
		for _, line := range c.Lines {
			if err := inventory.Adjust(tx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("checkout: create invoice: %w", err)
		}
		if err := tx.Where("cart_id = ?", c.ID).Delete(&domcart.Line{}).Error; err != nil {
			return fmt.Errorf("checkout: clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInsufficientStock):
			outcome, statusText = "error", "INSUFFICIENT_STOCK"
		case errors.Is(err, catalog.ErrNotFound):
			outcome, statusText = "error", "PRODUCT_MISSING"
		default:
			outcome, statusText = "error", "TX_FAILED"
		}
		return nil, err
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if pubErr := s.publisher.Publish(pubCtx, order.NewPlacedEvent(ord, inv.ID)); pubErr != nil {
			span.RecordError(pubErr)
			logger.Warn("event_publish_failed",
				observability.F("event", "order.placed"),
				observability.F("order_id", ord.ID),
				observability.F("error", pubErr.Error()),
			)
		}
		cancel()
	}

	span.SetAttributes(
		attribute.String("order.id", ord.ID),
		attribute.String("invoice.number", inv.InvoiceNumber),
	)
	return &Result{Order: ord, Invoice: inv}, nil
}

func (s *Service) loadCart(ctx context.Context, customerID string) (*domcart.Cart, error) {
	var c domcart.Cart
	err := s.db.WithContext(ctx).
		Preload("Lines.Product").
		First(&c, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No cart yet is the same as an empty one.
		return &domcart.Cart{CustomerID: customerID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkout: load cart: %w", err)
	}
	return &c, nil
}
