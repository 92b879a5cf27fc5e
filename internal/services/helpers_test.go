package services

import (
	"time"

	"cafe-service/internal/domain"
	"cafe-service/internal/util"

	"github.com/shopspring/decimal"
)

const (
	testUsername = "alice"
	testUserID   = uint64(7)
	testHash     = "$2a$10$hash"
)

var testLog = util.NopLogger()

func createMockUser() *domain.User {
	return &domain.User{ID: testUserID, Username: testUsername, Password: testHash, CreatedAt: time.Now()}
}

func createMockRows(userID *uint64, username string, total decimal.Decimal, items ...domain.LineItem) []domain.Order {
	now := time.Now()
	rows := make([]domain.Order, len(items))
	for i, it := range items {
		rows[i] = domain.Order{
			ID:        uint64(i + 1),
			UserID:    userID,
			Username:  username,
			ItemName:  it.Name,
			Price:     it.Price,
			Total:     total,
			CreatedAt: now,
		}
	}
	return rows
}

func latte() domain.LineItem {
	return domain.LineItem{Name: "Latte", Price: decimal.NewFromInt(50)}
}

func muffin() domain.LineItem {
	return domain.LineItem{Name: "Muffin", Price: decimal.NewFromInt(100)}
}
