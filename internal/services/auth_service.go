package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cafe-service/internal/domain"
	"cafe-service/internal/metrics"
	"cafe-service/internal/repository"
	"cafe-service/internal/security"
)

type AuthService struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	log    *slog.Logger
}

func NewAuthService(users repository.UserRepository, hasher security.PasswordHasher, log *slog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, log: log}
}

// Register stores a new user with a hashed password. Both fields are
// trimmed first.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username, password, err := normalizeCredentials(username, password)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	metrics.Registrations.Inc()
	s.log.Info("new user registered", "username", u.Username, "user_id", u.ID)
	return u, nil
}

// Login returns ErrInvalidCredentials for both an unknown user and a wrong
// password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username, password, err := normalizeCredentials(username, password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !s.hasher.Verify(password, u.Password) {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.Logins.WithLabelValues("success").Inc()
	s.log.Info("user logged in", "username", u.Username)
	return u, nil
}

func normalizeCredentials(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", "", ErrMissingCredentials
	}
	return username, password, nil
}
