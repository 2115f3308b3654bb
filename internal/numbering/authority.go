package numbering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"puntoventa-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Counter names backing invoice identity. Each is a single row in the
// counters table, bumped with one atomic statement so that concurrent
// issuance can never hand out the same value twice.
const (
	counterInvoiceNumber = "invoice_number"
	counterFolio         = "folio"
)

const maxAllocAttempts = 3

type Authority interface {
	NextInvoiceNumber(ctx context.Context) (string, error)
	NextFolio(ctx context.Context) (int64, error)
}

type authority struct {
	db     *sql.DB
	prefix string
}

func NewAuthority(db *sql.DB, prefix string) Authority {
	return &authority{db: db, prefix: prefix}
}

func (a *authority) NextInvoiceNumber(ctx context.Context) (string, error) {
	n, err := a.allocate(ctx, counterInvoiceNumber)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", a.prefix, n), nil
}

func (a *authority) NextFolio(ctx context.Context) (int64, error) {
	return a.allocate(ctx, counterFolio)
}

// allocate bumps the named counter and returns the new value. The upsert is
// self-seeding and serializes per counter row, so a read-modify-write race
// cannot occur. Conflicting allocations are retried a bounded number of
// times before the settlement is failed with ErrNumberingExhausted.
func (a *authority) allocate(ctx context.Context, name string) (int64, error) {
	const q = `
		INSERT INTO counters (name, value)
		VALUES ($1, 1)
		ON CONFLICT (name)
		DO UPDATE SET value = counters.value + 1
		RETURNING value
	`

	var lastErr error
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		var value int64
		err := a.db.QueryRowContext(ctx, q, name).Scan(&value)
		if err == nil {
			return value, nil
		}
		if !retryable(err) {
			return 0, fmt.Errorf("allocate %s: %w", name, err)
		}

		lastErr = err
		logger.FromCtx(ctx).Warn("counter allocation conflict, retrying",
			zap.String("counter", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	logger.FromCtx(ctx).Error("counter allocation gave up",
		zap.String("counter", name),
		zap.Error(lastErr),
	)
	return 0, ErrNumberingExhausted
}

func retryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "23505":
			// serialization failure, deadlock, unique violation
			return true
		}
	}
	return false
}
