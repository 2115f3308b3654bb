package product

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, productID int64) (*Product, error)
	Create(ctx context.Context, name string, price, stock int64) (*Product, error)
	Update(ctx context.Context, productID int64, name string, price int64) (*Product, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) Get(ctx context.Context, productID int64) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

func (s *service) Create(ctx context.Context, name string, price, stock int64) (*Product, error) {
	if name == "" {
		return nil, errors.New("product name is required")
	}
	if price < 0 {
		return nil, errors.New("price must not be negative")
	}
	if stock < 0 {
		return nil, errors.New("initial stock must not be negative")
	}

	p := &Product{
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, productID int64, name string, price int64) (*Product, error) {
	if name == "" {
		return nil, errors.New("product name is required")
	}
	if price < 0 {
		return nil, errors.New("price must not be negative")
	}

	if err := s.repo.Update(ctx, productID, name, price); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, productID)
}
