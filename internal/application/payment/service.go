package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/domain/billing"
	"github.com/awemart/awemart/internal/domain/customer"
	"github.com/awemart/awemart/internal/domain/event"
	"github.com/awemart/awemart/internal/domain/order"
	"github.com/awemart/awemart/internal/observability"
	"github.com/awemart/awemart/internal/observability/logctx"
)

const (
	useCasePayInvoice = "payment.pay_invoice"
	spanPrefix        = "UC."
	publishTimeout    = 300 * time.Millisecond
)

// IDGenerator produces payment/receipt ids and their document tokens.
type IDGenerator interface {
	NewID() string
	TransactionID() string
	ReceiptNumber() string
}

// Service debits a customer's wallet against an invoice, producing a payment
// record and a receipt.
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
		log:          obs.Logger().With(observability.F("component", "payment_service")),
		reqCounter:   obs.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: obs.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Result carries the records created by a successful payment.
type Result struct {
	Payment *billing.Payment `json:"payment"`
	Receipt *billing.Receipt `json:"receipt"`
	Invoice *billing.Invoice `json:"invoice"`
	OrderID string           `json:"order_id"`
}

// PayInvoice debits the wallet by the invoice's amount due and marks the
// invoice and order paid, all inside one transaction. The invoice status
// flip uses a conditional update so two concurrent attempts cannot both
// succeed, and the wallet debit re-checks the balance the same way.
func (s *Service) PayInvoice(ctx context.Context, customerID, invoiceID string) (_ *Result, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCasePayInvoice))

	ctx, span := s.obs.Tracer().Start(ctx, spanPrefix+"PayInvoice",
		attribute.String("use_case", useCasePayInvoice),
		attribute.String("invoice.id", invoiceID),
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
			observability.L("use_case", useCasePayInvoice),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat,
			observability.L("use_case", useCasePayInvoice),
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

	var result *Result
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv billing.Invoice
		if ferr := tx.First(&inv, "id = ?", invoiceID).Error; ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return billing.ErrInvoiceNotFound
			}
			return fmt.Errorf("payment: load invoice: %w", ferr)
		}

		var ord order.Order
		if ferr := tx.First(&ord, "id = ?", inv.OrderID).Error; ferr != nil {
			return fmt.Errorf("payment: load order: %w", ferr)
		}
		if ord.CustomerID != customerID {
			// Invoices of other customers are invisible, not forbidden.
			return billing.ErrInvoiceNotFound
		}

		if inv.Status == billing.InvoicePaid {
			return billing.ErrAlreadyPaid
		}

		var cust customer.Customer
		if ferr := tx.First(&cust, "id = ?", customerID).Error; ferr != nil {
			return fmt.Errorf("payment: load customer: %w", ferr)
		}
		if cust.Wallet.LessThan(inv.AmountDue) {
			return &customer.InsufficientFundsError{
				Required:  inv.AmountDue,
				Available: cust.Wallet,
			}
		}

		// Atomic guard against a concurrent payment of the same invoice.
		res := tx.Model(&billing.Invoice{}).
			Where("id = ? AND status <> ?", inv.ID, billing.InvoicePaid).
			Update("status", billing.InvoicePaid)
		if res.Error != nil {
			return fmt.Errorf("payment: mark invoice paid: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return billing.ErrAlreadyPaid
		}

		// Same guard on the wallet: the debit only lands if the balance
		// still covers the amount due.
		res = tx.Model(&customer.Customer{}).
			Where("id = ? AND wallet >= ?", customerID, inv.AmountDue).
			UpdateColumn("wallet", gorm.Expr("wallet - ?", inv.AmountDue))
		if res.Error != nil {
			return fmt.Errorf("payment: debit wallet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &customer.InsufficientFundsError{
				Required:  inv.AmountDue,
				Available: cust.Wallet,
			}
		}

		now := time.Now().UTC()
		pay := &billing.Payment{
			ID:            s.idGen.NewID(),
			InvoiceID:     inv.ID,
			CustomerID:    customerID,
			Amount:        inv.AmountDue,
			Status:        billing.PaymentCompleted,
			TransactionID: s.idGen.TransactionID(),
			CreatedAt:     now,
			CompletedAt:   &now,
		}
		if cerr := tx.Create(pay).Error; cerr != nil {
			return fmt.Errorf("payment: create payment: %w", cerr)
		}

		if uerr := tx.Model(&order.Order{}).
			Where("id = ?", ord.ID).
			Update("payment_status", order.PaymentPaid).Error; uerr != nil {
			return fmt.Errorf("payment: mark order paid: %w", uerr)
		}

		receipt := &billing.Receipt{
			ID:            s.idGen.NewID(),
			PaymentID:     pay.ID,
			ReceiptNumber: s.idGen.ReceiptNumber(),
			AmountPaid:    pay.Amount,
			CreatedAt:     now,
		}
		if cerr := tx.Create(receipt).Error; cerr != nil {
			return fmt.Errorf("payment: create receipt: %w", cerr)
		}

		inv.Status = billing.InvoicePaid
		result = &Result{Payment: pay, Receipt: receipt, Invoice: &inv, OrderID: ord.ID}
		return nil
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, billing.ErrInvoiceNotFound):
			outcome, statusText = "error", "INVOICE_NOT_FOUND"
		case errors.Is(txErr, billing.ErrAlreadyPaid):
			outcome, statusText = "error", "ALREADY_PAID"
		case errors.Is(txErr, customer.ErrInsufficientFunds):
			outcome, statusText = "error", "INSUFFICIENT_FUNDS"
		default:
			outcome, statusText = "error", "TX_FAILED"
		}
		return nil, txErr
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if pubErr := s.publisher.Publish(pubCtx, billing.NewInvoicePaidEvent(result.Invoice, result.Payment)); pubErr != nil {
			span.RecordError(pubErr)
			logger.Warn("event_publish_failed",
				observability.F("event", "invoice.paid"),
				observability.F("invoice_id", result.Invoice.ID),
				observability.F("error", pubErr.Error()),
			)
		}
		cancel()
	}

	span.SetAttributes(
		attribute.String("payment.transaction_id", result.Payment.TransactionID),
		attribute.String("order.id", result.OrderID),
	)
	return result, nil
}
