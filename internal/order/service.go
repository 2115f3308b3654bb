package order

import (
	"context"
	"errors"
	"time"

	"puntoventa-be/internal/logger"

	"go.uber.org/zap"
)

// NewItem is one requested order line. The unit price is the price being
// charged now; it is stored on the line and never re-read from the catalog.
type NewItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

type Service interface {
	CreateOrder(ctx context.Context, customerID, merchantID int64, items []NewItem) (*Order, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]*Order, error)
	CancelOrder(ctx context.Context, orderID int64) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the order service. The clock is injected so tests can
// pin timestamps.
func NewService(repo Repository, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}
}

func (s *service) CreateOrder(ctx context.Context, customerID, merchantID int64, items []NewItem) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int64("customer_id", customerID),
		zap.Int("item_count", len(items)),
	)

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderItems := make([]OrderItem, 0, len(items))
	var total int64

	for _, item := range items {
		if item.Quantity <= 0 {
			log.Warn("invalid quantity", zap.Int64("product_id", item.ProductID))
			return nil, errors.New("quantity must be greater than zero")
		}
		if item.UnitPrice < 0 {
			log.Warn("negative unit price", zap.Int64("product_id", item.ProductID))
			return nil, errors.New("unit price must not be negative")
		}

		orderItems = append(orderItems, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
		total += item.Quantity * item.UnitPrice
	}

	o := &Order{
		CustomerID: customerID,
		MerchantID: merchantID,
		Status:     StatusPending,
		Total:      total,
		CreatedAt:  s.now().UTC(),
		Items:      orderItems,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("total", o.Total),
	)

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

func (s *service) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]*Order, error) {
	return s.repo.ListOrdersByCustomer(ctx, customerID)
}

func (s *service) CancelOrder(ctx context.Context, orderID int64) error {
	return s.repo.CancelOrder(ctx, orderID)
}
