package settlement

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"puntoventa-be/internal/card"
	"puntoventa-be/internal/invoice"
	"puntoventa-be/internal/logger"
	"puntoventa-be/internal/numbering"
	"puntoventa-be/internal/order"
	"puntoventa-be/internal/payment"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service drives an order from pending to paid and produces its invoice.
//
// Payment success is irreversible while invoice issuance can be retried
// independently: once the atomic core commits, any later failure surfaces an
// error that directs re-issuance, never re-payment.
type Service interface {
	Settle(ctx context.Context, orderID int64, instrument payment.Instrument) (*invoice.Invoice, error)

	// IssueInvoice issues the invoice for an already-paid order that is
	// missing one, the operator-facing recovery path.
	IssueInvoice(ctx context.Context, orderID int64) (*invoice.Invoice, error)

	// StampInvoice sends the persisted invoice to the renderer and records
	// the stamping timestamp on first success.
	StampInvoice(ctx context.Context, invoiceID int64) ([]byte, error)
}

type Config struct {
	CaptureTimeout time.Duration
	StoreRetries   int
	StoreBackoff   time.Duration
}

type service struct {
	orders   order.Repository
	payments payment.Repository
	gateway  payment.Gateway
	numbers  numbering.Authority
	invoices invoice.Repository
	renderer invoice.Renderer
	cfg      Config
	now      func() time.Time
	tracer   trace.Tracer
}

func NewService(
	orders order.Repository,
	payments payment.Repository,
	gateway payment.Gateway,
	numbers numbering.Authority,
	invoices invoice.Repository,
	renderer invoice.Renderer,
	cfg Config,
	now func() time.Time,
) Service {
	if now == nil {
		now = time.Now
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = 5 * time.Second
	}
	return &service{
		orders:   orders,
		payments: payments,
		gateway:  gateway,
		numbers:  numbers,
		invoices: invoices,
		renderer: renderer,
		cfg:      cfg,
		now:      now,
		tracer:   otel.Tracer("puntoventa/settlement"),
	}
}

func (s *service) Settle(ctx context.Context, orderID int64, instrument payment.Instrument) (*invoice.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.Settle",
		trace.WithAttributes(attribute.Int64("order.id", orderID)),
	)
	defer span.End()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "settlement"),
		zap.Int64("order_id", orderID),
	)

	// 1. Instrument gate, before any order lookup. No state is touched.
	if !card.Validate(instrument.CardNumber, instrument.CVV) {
		log.Warn("invalid payment instrument")
		settlementsTotal.WithLabelValues("invalid_instrument").Inc()
		return nil, ErrInvalidInstrument
	}

	// 2. Load and check the order.
	ord, err := s.orders.BeginSettlement(ctx, orderID)
	if errors.Is(err, order.ErrAlreadyPaid) {
		return s.resumeIfUninvoiced(ctx, orderID)
	}
	if err != nil {
		settlementsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// 3. Open a payment attempt at the order total.
	pay := &payment.Payment{
		OrderID:   ord.ID,
		Method:    payment.MethodCreditCard,
		Amount:    ord.Total,
		Status:    payment.StatusProcessing,
		CreatedAt: s.now().UTC(),
	}
	if err := s.payments.Create(ctx, pay); err != nil {
		log.Error("failed to create payment", zap.Error(err))
		settlementsTotal.WithLabelValues("store_error").Inc()
		return nil, wrapTransient(err)
	}

	log = log.With(zap.Int64("payment_id", pay.ID))

	// 4. External capture with a bounded wait. A timeout or cancellation is
	// a decline, never an ambiguous success.
	captureCtx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	start := time.Now()
	err = s.gateway.Capture(captureCtx, payment.CaptureRequest{
		OrderID:    ord.ID,
		Amount:     ord.Total,
		Instrument: instrument,
	})
	cancel()
	captureDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		log.Warn("payment capture failed", zap.Error(err))
		s.resolveDeclined(ctx, pay.ID)
		settlementsTotal.WithLabelValues("declined").Inc()
		return nil, fmt.Errorf("%w: %v", payment.ErrDeclined, err)
	}

	// 5. Atomic core: approve payment, decrement stock, mark paid.
	paidAt := s.now().UTC()
	err = s.finalizeWithRetry(ctx, ord.ID, pay.ID, paidAt)
	if errors.Is(err, order.ErrAlreadyPaid) {
		// A concurrent settlement won the row lock. This attempt's payment
		// must not stay open; exactly one payment is ever approved.
		log.Info("lost settlement race, declining this attempt")
		s.resolveDeclined(ctx, pay.ID)
		settlementsTotal.WithLabelValues("already_paid").Inc()
		return nil, order.ErrAlreadyPaid
	}
	if err != nil {
		log.Error("settlement transaction failed", zap.Error(err))
		s.resolveDeclined(ctx, pay.ID)
		settlementsTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}

	ord.Status = order.StatusPaid
	ord.PaidAt = &paidAt

	log.Info("order paid", zap.Int64("total", ord.Total))
	settlementsTotal.WithLabelValues("paid").Inc()

	// 6. Issuance. The order is paid whatever happens from here on.
	return s.issue(ctx, ord)
}

// resumeIfUninvoiced handles a settle call on an already-paid order: if its
// invoice exists the call is a duplicate, otherwise settlement re-enters at
// issuance only. No new payment is attempted in either case.
func (s *service) resumeIfUninvoiced(ctx context.Context, orderID int64) (*invoice.Invoice, error) {
	_, err := s.invoices.GetByOrder(ctx, orderID)
	if err == nil {
		settlementsTotal.WithLabelValues("already_paid").Inc()
		return nil, order.ErrAlreadyPaid
	}
	if !errors.Is(err, invoice.ErrInvoiceNotFound) {
		return nil, wrapTransient(err)
	}

	logger.FromCtx(ctx).Info("order paid but uninvoiced, resuming at issuance",
		zap.Int64("order_id", orderID),
	)

	ord, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, ord)
}

func (s *service) IssueInvoice(ctx context.Context, orderID int64) (*invoice.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.IssueInvoice",
		trace.WithAttributes(attribute.Int64("order.id", orderID)),
	)
	defer span.End()

	ord, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if ord.Status != order.StatusPaid {
		return nil, ErrOrderNotPaid
	}

	if _, err := s.invoices.GetByOrder(ctx, orderID); err == nil {
		return nil, invoice.ErrInvoiceExists
	} else if !errors.Is(err, invoice.ErrInvoiceNotFound) {
		return nil, err
	}

	return s.issue(ctx, ord)
}

// issue allocates numbering and persists the invoice with a value copy of
// the order's lines. On a lost issuance race the winner's invoice is
// returned; the allocated number is abandoned (the sequence is gap-tolerant).
func (s *service) issue(ctx context.Context, ord *order.Order) (*invoice.Invoice, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "settlement"),
		zap.Int64("order_id", ord.ID),
	)

	number, err := s.numbers.NextInvoiceNumber(ctx)
	if err != nil {
		settlementsTotal.WithLabelValues("numbering_exhausted").Inc()
		return nil, issuanceErr(ord.ID, err)
	}

	folio, err := s.numbers.NextFolio(ctx)
	if err != nil {
		settlementsTotal.WithLabelValues("numbering_exhausted").Inc()
		return nil, issuanceErr(ord.ID, err)
	}

	items := make([]invoice.InvoiceItem, 0, len(ord.Items))
	for _, line := range ord.Items {
		items = append(items, invoice.InvoiceItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	inv := &invoice.Invoice{
		OrderID:       ord.ID,
		InvoiceNumber: number,
		Folio:         folio,
		Series:        invoice.DefaultSeries,
		FiscalUUID:    uuid.New().String(),
		PlaceOfIssue:  invoice.DefaultPlaceOfIssue,
		PaymentMethod: invoice.PaymentMethodPUE,
		PaymentForm:   invoice.PaymentFormCard,
		Total:         ord.Total,
		IssuedAt:      s.now().UTC(),
		Items:         items,
	}

	err = s.invoices.Create(ctx, inv)
	if errors.Is(err, invoice.ErrInvoiceExists) {
		log.Info("invoice already issued concurrently, returning existing")
		return s.invoices.GetByOrder(ctx, ord.ID)
	}
	if err != nil {
		log.Error("failed to persist invoice", zap.Error(err))
		return nil, issuanceErr(ord.ID, err)
	}

	log.Info("invoice issued",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int64("folio", inv.Folio),
	)
	invoicesIssued.Inc()

	return inv, nil
}

func (s *service) StampInvoice(ctx context.Context, invoiceID int64) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.StampInvoice",
		trace.WithAttributes(attribute.Int64("invoice.id", invoiceID)),
	)
	defer span.End()

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	customer, merchant, err := s.invoices.GetParties(ctx, inv.OrderID)
	if err != nil {
		return nil, err
	}

	docBytes, err := s.renderer.Render(ctx, invoice.RenderRequest{
		Invoice:  inv,
		Customer: customer,
		Merchant: merchant,
	})
	if err != nil {
		return nil, err
	}

	if inv.StampedAt == nil {
		if err := s.invoices.MarkStamped(ctx, inv.ID, s.now().UTC()); err != nil {
			logger.FromCtx(ctx).Error("failed to record stamping timestamp",
				zap.Int64("invoice_id", inv.ID),
				zap.Error(err),
			)
		}
	}

	return docBytes, nil
}

// finalizeWithRetry retries the atomic core on transient store failures with
// linear backoff. Domain rejections pass through untouched.
func (s *service) finalizeWithRetry(ctx context.Context, orderID, paymentID int64, paidAt time.Time) error {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.StoreRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.cfg.StoreBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := s.orders.FinalizePayment(ctx, orderID, paymentID, paidAt)
		if err == nil || !isTransient(err) {
			return err
		}

		lastErr = err
		logger.FromCtx(ctx).Warn("transient store failure during settlement, retrying",
			zap.Int64("order_id", orderID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

// resolveDeclined closes an open payment attempt. It deliberately survives
// caller cancellation so a cancelled request cannot leave a payment stuck in
// processing. The decline is guarded on PROCESSING: if a finalize commit
// landed but its ack was lost, the retry observes the order paid and ends up
// here, and the approval written by that commit must stand.
func (s *service) resolveDeclined(ctx context.Context, paymentID int64) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.payments.DeclineIfProcessing(dctx, paymentID); err != nil {
		logger.FromCtx(ctx).Error("failed to decline payment",
			zap.Int64("payment_id", paymentID),
			zap.Error(err),
		)
	}
}

// issuanceErr marks an error that happened after the order was paid. The
// caller must retry invoice issuance, not payment.
func issuanceErr(orderID int64, err error) error {
	return fmt.Errorf("order %d is paid but invoice issuance failed, retry issuance: %w", orderID, err)
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "08000", "08003", "08006", "57P01":
			return true
		}
	}
	return false
}

func wrapTransient(err error) error {
	if isTransient(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
