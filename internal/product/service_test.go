package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetAll(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	if ps, ok := args.Get(0).([]Product); ok {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, productID int64) (*Product, error) {
	args := m.Called(ctx, productID)
	if p, ok := args.Get(0).(*Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Product) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 7
	}
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, productID int64, name string, price int64) error {
	return m.Called(ctx, productID, name, price).Error(0)
}

func TestService_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Product) bool {
			return p.Name == "Cafe Americano" && p.Price == 2499 && p.Stock == 10
		})).Return(nil)

		p, err := svc.Create(context.Background(), "Cafe Americano", 2499, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.ID)
	})

	t.Run("EmptyName", func(t *testing.T) {
		svc := NewService(new(MockRepository))
		_, err := svc.Create(context.Background(), "", 2499, 10)
		assert.Error(t, err)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		svc := NewService(new(MockRepository))
		_, err := svc.Create(context.Background(), "Cafe", -1, 10)
		assert.Error(t, err)
	})
}

func TestService_Update(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Update", mock.Anything, int64(7), "Cafe Grande", int64(2999)).Return(nil)
	repo.On("GetByID", mock.Anything, int64(7)).
		Return(&Product{ID: 7, Name: "Cafe Grande", Price: 2999, Stock: 10}, nil)

	p, err := svc.Update(context.Background(), 7, "Cafe Grande", 2999)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Grande", p.Name)
}
