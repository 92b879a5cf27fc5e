package mysql

import (
	"context"
	"errors"
	"fmt"

	"cafe-service/internal/domain"
	"cafe-service/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) InsertOrderLines(ctx context.Context, userID *uint64, username string, items []domain.LineItem, total decimal.Decimal) ([]domain.Order, error) {
	if len(items) == 0 {
		return nil, nil
	}

	rows := make([]domain.Order, len(items))
	for i, it := range items {
		rows[i] = domain.Order{
			UserID:   userID,
			Username: username,
			ItemName: it.Name,
			Price:    it.Price,
			Total:    total,
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
			return err
		}
		for _, o := range rows {
			if o.ID == 0 {
				return errors.New("insert failed to assign order IDs")
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert %d order lines for %q: %w", len(items), username, err)
	}
	return rows, nil
}

func (r *orderRepo) ListOrdersByUsername(ctx context.Context, username string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for %q: %w", username, err)
	}
	return out, nil
}
