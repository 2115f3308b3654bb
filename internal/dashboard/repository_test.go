package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Summarize(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT status, COUNT`).
		WithArgs(int64(2), since).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "paid_total"}).
			AddRow("PAID", 3, 14994).
			AddRow("PENDING", 2, 0).
			AddRow("CANCELLED", 1, 0))

	mock.ExpectQuery(`SELECT p.id, p.name`).
		WithArgs(int64(2), since, topProductsLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "units", "revenue"}).
			AddRow(7, "Cafe Americano", 6, 14994))

	s, err := repo.Summarize(context.Background(), 2, since)
	require.NoError(t, err)

	assert.Equal(t, int64(14994), s.TotalSales)
	assert.Equal(t, int64(3), s.PaidOrders)
	assert.Equal(t, int64(2), s.OrdersByStatus["PENDING"])
	require.Len(t, s.TopProducts, 1)
	assert.Equal(t, "Cafe Americano", s.TopProducts[0].Name)
	assert.Equal(t, int64(6), s.TopProducts[0].Units)
}

func TestRepository_Summarize_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	since := time.Now()

	mock.ExpectQuery(`SELECT status, COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "paid_total"}))
	mock.ExpectQuery(`SELECT p.id, p.name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "units", "revenue"}))

	s, err := repo.Summarize(context.Background(), 2, since)
	require.NoError(t, err)
	assert.Zero(t, s.TotalSales)
	assert.Empty(t, s.TopProducts)
}
