package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"puntoventa-be/internal/inventory"
	"puntoventa-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]*Order, error)

	// BeginSettlement loads the order for the orchestrator after checking it
	// is still payable. Read-only; the binding check happens again under the
	// row lock in FinalizePayment.
	BeginSettlement(ctx context.Context, orderID int64) (*Order, error)

	// FinalizePayment is the atomic core of settlement: under a row lock on
	// the order it approves the payment, applies every stock decrement and
	// flips the order to paid. All of it commits or none of it does.
	FinalizePayment(ctx context.Context, orderID, paymentID int64, paidAt time.Time) error

	CancelOrder(ctx context.Context, orderID int64) error
}

type repository struct {
	db     *sql.DB
	ledger inventory.Ledger
}

func NewRepository(db *sql.DB, ledger inventory.Ledger) Repository {
	return &repository{db: db, ledger: ledger}
}

func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, merchant_id, status, total, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		o.CustomerID,
		o.MerchantID,
		o.Status,
		o.Total,
		o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	return nil
}

func (r *repository) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, merchant_id, status, total, created_at, paid_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.CustomerID, &o.MerchantID, &o.Status, &o.Total, &o.CreatedAt, &o.PaidAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, r.db.QueryContext, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repository) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, merchant_id, status, total, created_at, paid_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.MerchantID, &o.Status, &o.Total, &o.CreatedAt, &o.PaidAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

func (r *repository) BeginSettlement(ctx context.Context, orderID int64) (*Order, error) {
	o, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch o.Status {
	case StatusPaid:
		return nil, ErrAlreadyPaid
	case StatusCancelled:
		return nil, ErrOrderCancelled
	}

	if len(o.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	return o, nil
}

func (r *repository) FinalizePayment(ctx context.Context, orderID, paymentID int64, paidAt time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FinalizePayment"),
		zap.Int64("order_id", orderID),
		zap.Int64("payment_id", paymentID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback settlement transaction", zap.Error(rbErr))
			}
		}
	}()

	// Row lock: no two settlements of the same order may run this section
	// concurrently. The status re-check under the lock is the hard guard;
	// BeginSettlement's check was only optimistic.
	var status OrderStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("lock order: %w", err)
	}

	switch {
	case status == StatusPaid:
		return ErrAlreadyPaid
	case status == StatusCancelled:
		return ErrOrderCancelled
	case !CanTransition(status, StatusPaid):
		return ErrInvalidTransition
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments SET status = 'APPROVED' WHERE id = $1
	`, paymentID)
	if err != nil {
		return fmt.Errorf("approve payment: %w", err)
	}

	items, err := r.loadItems(ctx, tx.QueryContext, orderID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	decs := make([]inventory.Decrement, 0, len(items))
	for _, item := range items {
		decs = append(decs, inventory.Decrement{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := r.ledger.Apply(ctx, tx, orderID, decs); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, paid_at = $2 WHERE id = $3
	`, StatusPaid, paidAt, orderID)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	log.Info("settlement transaction committed")
	return nil
}

func (r *repository) CancelOrder(ctx context.Context, orderID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2 AND status = $3
	`, StatusCancelled, orderID, StatusPending)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

type queryFn func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func (r *repository) loadItems(ctx context.Context, query queryFn, orderID int64) ([]OrderItem, error) {
	rows, err := query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
