package product

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT id, name, price, stock, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock", "created_at"}).
			AddRow(7, "Cafe Americano", 2499, 10, time.Now()).
			AddRow(8, "Croissant", 1800, -2, time.Now()))

	products, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Cafe Americano", products[0].Name)

	// Oversold items surface as-is; the catalog never hides negative stock.
	assert.Equal(t, int64(-2), products[1].Stock)
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, price, stock, created_at`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock", "created_at"}).
				AddRow(7, "Cafe Americano", 2499, 10, time.Now()))

		p, err := repo.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(2499), p.Price)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, price, stock, created_at`).
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock", "created_at"}))

		_, err := repo.GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET name = \$1, price = \$2 WHERE id = \$3`).
			WithArgs("Cafe Grande", int64(2999), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), 7, "Cafe Grande", 2999))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET name = \$1, price = \$2 WHERE id = \$3`).
			WithArgs("Cafe Grande", int64(2999), int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), 404, "Cafe Grande", 2999)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	p := &Product{Name: "Cafe Americano", Price: 2499, Stock: 10, CreatedAt: time.Now()}

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs(p.Name, p.Price, p.Stock, p.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(7), p.ID)
}
