package dashboard

import (
	"context"
	"database/sql"
	"time"
)

// Summary is the merchant-facing sales rollup for a time window. All money
// values are centavos.
type Summary struct {
	TotalSales     int64            `json:"total_sales"`
	PaidOrders     int64            `json:"paid_orders"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	TopProducts    []ProductSales   `json:"top_products"`
}

type ProductSales struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
	Revenue   int64  `json:"revenue"`
}

type Repository interface {
	Summarize(ctx context.Context, merchantID int64, since time.Time) (*Summary, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const topProductsLimit = 5

func (r *repository) Summarize(ctx context.Context, merchantID int64, since time.Time) (*Summary, error) {
	s := &Summary{OrdersByStatus: make(map[string]int64)}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total) FILTER (WHERE status = 'PAID'), 0)
		FROM orders
		WHERE merchant_id = $1 AND created_at >= $2
		GROUP BY status
	`, merchantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count, paidTotal int64
		if err := rows.Scan(&status, &count, &paidTotal); err != nil {
			return nil, err
		}
		s.OrdersByStatus[status] = count
		if status == "PAID" {
			s.PaidOrders = count
			s.TotalSales = paidTotal
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, SUM(oi.quantity), SUM(oi.quantity * oi.unit_price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.merchant_id = $1 AND o.status = 'PAID' AND o.created_at >= $2
		GROUP BY p.id, p.name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $3
	`, merchantID, since, topProductsLimit)
	if err != nil {
		return nil, err
	}
	defer top.Close()

	for top.Next() {
		var ps ProductSales
		if err := top.Scan(&ps.ProductID, &ps.Name, &ps.Units, &ps.Revenue); err != nil {
			return nil, err
		}
		s.TopProducts = append(s.TopProducts, ps)
	}

	return s, top.Err()
}
