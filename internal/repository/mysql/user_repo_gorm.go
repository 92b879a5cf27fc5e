package mysql

import (
	"context"
	"errors"
	"fmt"

	"cafe-service/internal/domain"
	"cafe-service/internal/repository"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const errDupEntry = 1062

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u := &domain.User{Username: username, Password: passwordHash}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, repository.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return u, nil
}

func (r *userRepo) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return &u, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *driver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDupEntry
}
