package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type Repository interface {
	// Create persists the invoice and its item snapshot in one transaction.
	// The unique constraint on order_id makes one-invoice-per-order hold at
	// the store layer, independent of application logic.
	Create(ctx context.Context, inv *Invoice) error

	GetByID(ctx context.Context, invoiceID int64) (*Invoice, error)
	GetByOrder(ctx context.Context, orderID int64) (*Invoice, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*Invoice, error)

	// MarkStamped records the stamping timestamp, the only field an issued
	// invoice is allowed to change.
	MarkStamped(ctx context.Context, invoiceID int64, stampedAt time.Time) error

	GetParties(ctx context.Context, orderID int64) (customer, merchant Party, err error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, inv *Invoice) error {
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
		INSERT INTO invoices (
			order_id, invoice_number, folio, series, fiscal_uuid,
			place_of_issue, payment_method, payment_form, total, issued_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`,
		inv.OrderID,
		inv.InvoiceNumber,
		inv.Folio,
		inv.Series,
		inv.FiscalUUID,
		inv.PlaceOfIssue,
		inv.PaymentMethod,
		inv.PaymentForm,
		inv.Total,
		inv.IssuedAt,
	).Scan(&inv.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" &&
			strings.Contains(pqErr.Constraint, "order") {
			return ErrInvoiceExists
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i := range inv.Items {
		item := &inv.Items[i]
		item.InvoiceID = inv.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`,
			item.InvoiceID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	return nil
}

const invoiceColumns = `
	id, order_id, invoice_number, folio, series, fiscal_uuid,
	place_of_issue, payment_method, payment_form, total, issued_at, stamped_at
`

func (r *repository) GetByID(ctx context.Context, invoiceID int64) (*Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, invoiceID)
}

func (r *repository) GetByOrder(ctx context.Context, orderID int64) (*Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_id = $1`, orderID)
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (*Invoice, error) {
	var inv Invoice
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&inv.ID, &inv.OrderID, &inv.InvoiceNumber, &inv.Folio, &inv.Series,
		&inv.FiscalUUID, &inv.PlaceOfIssue, &inv.PaymentMethod, &inv.PaymentForm,
		&inv.Total, &inv.IssuedAt, &inv.StampedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, product_id, quantity, unit_price
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id
	`, inv.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.ProductID, &item.Quantity, &item.UnitPrice,
		); err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, item)
	}

	return &inv, rows.Err()
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]*Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			i.id, i.order_id, i.invoice_number, i.folio, i.series, i.fiscal_uuid,
			i.place_of_issue, i.payment_method, i.payment_form, i.total,
			i.issued_at, i.stamped_at
		FROM invoices i
		JOIN orders o ON o.id = i.order_id
		WHERE o.customer_id = $1
		ORDER BY i.issued_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.OrderID, &inv.InvoiceNumber, &inv.Folio, &inv.Series,
			&inv.FiscalUUID, &inv.PlaceOfIssue, &inv.PaymentMethod, &inv.PaymentForm,
			&inv.Total, &inv.IssuedAt, &inv.StampedAt,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}

	return invoices, rows.Err()
}

func (r *repository) MarkStamped(ctx context.Context, invoiceID int64, stampedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET stamped_at = $1 WHERE id = $2 AND stamped_at IS NULL
	`, stampedAt, invoiceID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) GetParties(ctx context.Context, orderID int64) (Party, Party, error) {
	var customer, merchant Party
	err := r.db.QueryRowContext(ctx, `
		SELECT
			c.name, COALESCE(c.rfc, ''), COALESCE(c.tax_regime, ''),
			m.name, COALESCE(m.rfc, '')
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		JOIN merchants m ON m.id = o.merchant_id
		WHERE o.id = $1
	`, orderID).Scan(
		&customer.Name, &customer.RFC, &customer.TaxRegime,
		&merchant.Name, &merchant.RFC,
	)
	if err != nil {
		return Party{}, Party{}, err
	}
	return customer, merchant, nil
}
