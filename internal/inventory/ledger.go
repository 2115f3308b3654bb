package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"puntoventa-be/internal/logger"

	"go.uber.org/zap"
)

// Decrement is one stock movement tied to an order line.
type Decrement struct {
	ProductID int64
	Quantity  int64
}

// Ledger applies the stock decrements of an order. Apply runs inside the
// settlement transaction so the decrements commit or roll back together with
// the order flipping to paid.
type Ledger interface {
	Apply(ctx context.Context, tx *sql.Tx, orderID int64, decs []Decrement) error
}

type ledger struct{}

func NewLedger() Ledger {
	return &ledger{}
}

const statusPaid = "PAID"

func (l *ledger) Apply(ctx context.Context, tx *sql.Tx, orderID int64, decs []Decrement) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "ledger"),
		zap.Int64("order_id", orderID),
		zap.Int("line_count", len(decs)),
	)

	// Idempotency guard: a retried settlement whose decrement already
	// committed sees the order as paid and must not subtract again.
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1`, orderID,
	).Scan(&status)
	if err != nil {
		return fmt.Errorf("read order status: %w", err)
	}

	if status == statusPaid {
		log.Info("stock already decremented for order, skipping")
		return nil
	}

	for _, d := range decs {
		// No sufficiency check: stock may go negative, oversell is
		// reconciled out of band.
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1
			WHERE id = $2
		`, d.Quantity, d.ProductID)
		if err != nil {
			return fmt.Errorf("decrement product %d: %w", d.ProductID, err)
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			return fmt.Errorf("product %d not found", d.ProductID)
		}
	}

	log.Debug("stock decrements applied")
	return nil
}
