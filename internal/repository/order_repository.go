package repository

import (
	"context"

	"cafe-service/internal/domain"

	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	// InsertOrderLines writes one row per item, all sharing username and
	// total. Either every row is stored or none is.
	InsertOrderLines(ctx context.Context, userID *uint64, username string, items []domain.LineItem, total decimal.Decimal) ([]domain.Order, error)
	// ListOrdersByUsername returns the user's rows newest first.
	ListOrdersByUsername(ctx context.Context, username string) ([]domain.Order, error)
}
