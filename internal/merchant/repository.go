package merchant

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, m *Merchant) error
	FindByEmail(ctx context.Context, email string) (*Merchant, error)
	GetByID(ctx context.Context, merchantID int64) (*Merchant, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Merchant) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO merchants (name, email, password, rfc, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		m.Name, m.Email, m.Password, m.RFC, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" &&
			strings.Contains(pqErr.Constraint, "email") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Merchant, error) {
	return r.getOne(ctx, `
		SELECT id, name, email, password, COALESCE(rfc, ''), created_at
		FROM merchants WHERE email = $1
	`, email)
}

func (r *repository) GetByID(ctx context.Context, merchantID int64) (*Merchant, error) {
	return r.getOne(ctx, `
		SELECT id, name, email, password, COALESCE(rfc, ''), created_at
		FROM merchants WHERE id = $1
	`, merchantID)
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (*Merchant, error) {
	var m Merchant
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&m.ID, &m.Name, &m.Email, &m.Password, &m.RFC, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMerchantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
