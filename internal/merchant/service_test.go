package merchant

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

func (m *MockRepository) Create(ctx context.Context, mer *Merchant) error {
	args := m.Called(ctx, mer)
	if args.Error(0) == nil {
		mer.ID = 42
	}
	return args.Error(0)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*Merchant, error) {
	args := m.Called(ctx, email)
	if mer, ok := args.Get(0).(*Merchant); ok {
		return mer, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, merchantID int64) (*Merchant, error) {
	args := m.Called(ctx, merchantID)
	if mer, ok := args.Get(0).(*Merchant); ok {
		return mer, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestService_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, testSecret)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(m *Merchant) bool {
			return m.Email == "tienda@example.com" &&
				m.Password != "hunter2hunter2" // stored hashed
		})).Return(nil)

		token, m, err := svc.Register(context.Background(), "Tienda Centro", "tienda@example.com", "hunter2hunter2", "TCE850505YYY")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, int64(42), m.ID)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, testSecret)

		_, _, err := svc.Register(context.Background(), "Tienda", "tienda@example.com", "short", "")
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, testSecret)

		repo.On("Create", mock.Anything, mock.Anything).Return(ErrEmailExists)

		_, _, err := svc.Register(context.Background(), "Tienda", "tienda@example.com", "hunter2hunter2", "")
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestService_Login(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)

	stored := &Merchant{ID: 42, Email: "tienda@example.com", Password: hash}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, testSecret)

		repo.On("FindByEmail", mock.Anything, "tienda@example.com").Return(stored, nil)

		token, m, err := svc.Login(context.Background(), "tienda@example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, int64(42), m.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, testSecret)

		repo.On("FindByEmail", mock.Anything, "tienda@example.com").Return(stored, nil)

		_, _, err := svc.Login(context.Background(), "tienda@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, testSecret)

		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrMerchantNotFound)

		// The caller cannot distinguish a missing account from a bad password.
		_, _, err := svc.Login(context.Background(), "ghost@example.com", "hunter2hunter2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
