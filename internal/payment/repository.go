package payment

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	UpdateStatus(ctx context.Context, paymentID int64, status PaymentStatus) error

	// DeclineIfProcessing resolves an open capture attempt to DECLINED. A row
	// that is no longer PROCESSING is left untouched: a settlement whose
	// commit landed but whose ack was lost has already approved it, and that
	// approval must survive the caller's cleanup.
	DeclineIfProcessing(ctx context.Context, paymentID int64) error

	GetByID(ctx context.Context, paymentID int64) (*Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*Payment, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO payments (order_id, method, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		p.OrderID, p.Method, p.Amount, p.Status, p.CreatedAt,
	).Scan(&p.ID)
}

func (r *repository) UpdateStatus(ctx context.Context, paymentID int64, status PaymentStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1 WHERE id = $2
	`, status, paymentID)
	return err
}

func (r *repository) DeclineIfProcessing(ctx context.Context, paymentID int64) error {
	// Zero affected rows is fine: the payment was already resolved.
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1 WHERE id = $2 AND status = $3
	`, StatusDeclined, paymentID, StatusProcessing)
	return err
}

func (r *repository) GetByID(ctx context.Context, paymentID int64) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, method, amount, status, created_at
		FROM payments WHERE id = $1
	`, paymentID)

	var p Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID int64) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, method, amount, status, created_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}
