package repository

import (
	"context"
	"errors"

	"cafe-service/internal/domain"
)

var ErrDuplicateUsername = errors.New("username already exists")

type UserRepository interface {
	// CreateUser returns ErrDuplicateUsername when the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	// FindUserByUsername returns nil, nil when no user matches.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
