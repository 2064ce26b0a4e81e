package auth

import (
	"context"
	"errors"
	"time"

	authpkg "github.com/medicare-ai/aidoctor-backend/internal/auth"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/users"
)

// ErrInvalidCredentials covers unknown email and wrong password alike,
// so login responses cannot be used to probe registered addresses.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service implements signup, login and token resolution.
type Service struct {
	Repo     users.Repository
	Secret   string
	TokenTTL time.Duration
}

func NewService(repo users.Repository, secret string) *Service {
	return &Service{Repo: repo, Secret: secret, TokenTTL: authpkg.DefaultTokenTTL}
}

// Signup creates the account and returns a token immediately.
func (s *Service) Signup(ctx context.Context, name, email, password string) (string, error) {
	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		return "", users.ErrEmailTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return "", err
	}

	hash, err := authpkg.HashPassword(password)
	if err != nil {
		return "", err
	}
	id, err := s.Repo.Insert(ctx, &users.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return "", err
	}
	return authpkg.GenerateToken(id, s.Secret, s.TokenTTL)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.Repo.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !authpkg.VerifyPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return authpkg.GenerateToken(u.ID, s.Secret, s.TokenTTL)
}

// VerifyToken decodes a presented token to the user id it carries.
func (s *Service) VerifyToken(token string) (string, error) {
	claims, err := authpkg.ParseToken(token, s.Secret)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ResolveUser verifies the token and loads the full user record,
// failing when the referenced user no longer exists.
func (s *Service) ResolveUser(ctx context.Context, token string) (*users.User, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.FindByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, authpkg.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
