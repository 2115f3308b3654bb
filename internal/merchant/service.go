package merchant

import (
	"context"
	"errors"
	"time"

	"puntoventa-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, name, email, password, rfc string) (string, *Merchant, error)
	Login(ctx context.Context, email, password string) (string, *Merchant, error)
	GetByID(ctx context.Context, merchantID int64) (*Merchant, error)
}

type service struct {
	repo      Repository
	jwtSecret string
	now       func() time.Time
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, jwtSecret: jwtSecret, now: time.Now}
}

func (s *service) Register(ctx context.Context, name, email, password, rfc string) (string, *Merchant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	if name == "" || email == "" {
		return "", nil, errors.New("name and email are required")
	}
	if len(password) < 8 {
		return "", nil, errors.New("password must be at least 8 characters")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	m := &Merchant{
		Name:      name,
		Email:     email,
		Password:  hashed,
		RFC:       rfc,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		log.Error("failed to create merchant", zap.String("email", email), zap.Error(err))
		return "", nil, err
	}

	token, err := GenerateJWT(s.jwtSecret, m.ID, m.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("merchant_id", m.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("merchant registered",
		zap.Int64("merchant_id", m.ID),
		zap.String("email", email),
	)

	return token, m, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *Merchant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	m, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Warn("login for unknown email", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, m.Password) {
		log.Warn("login with wrong password", zap.Int64("merchant_id", m.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(s.jwtSecret, m.ID, m.Email)
	if err != nil {
		return "", nil, err
	}
	return token, m, nil
}

func (s *service) GetByID(ctx context.Context, merchantID int64) (*Merchant, error) {
	return s.repo.GetByID(ctx, merchantID)
}
