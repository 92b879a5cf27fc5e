package mysql

import (
	"context"
	"errors"
	"testing"

	"cafe-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func items(pairs ...any) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.LineItem{
			Name:  pairs[i].(string),
			Price: decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	return out
}

func TestOrderRepo_InsertOrderLines_RegisteredUser(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	total := decimal.NewFromInt(450)
	rows, err := orders.InsertOrderLines(ctx, &alice.ID, "alice", items("Latte", 150, "Mocha", 200, "Cookie", 100), total)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	stored, err := orders.ListOrdersByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, o := range stored {
		assert.NotZero(t, o.ID)
		require.NotNil(t, o.UserID)
		assert.Equal(t, alice.ID, *o.UserID)
		assert.Equal(t, "alice", o.Username)
		assert.True(t, total.Equal(o.Total), "total %s", o.Total)
		assert.False(t, o.CreatedAt.IsZero())
	}
}

func TestOrderRepo_InsertOrderLines_Guest(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	_, err := orders.InsertOrderLines(ctx, nil, domain.GuestUsername, items("Espresso", 90), decimal.NewFromInt(90))
	require.NoError(t, err)

	stored, err := orders.ListOrdersByUsername(ctx, domain.GuestUsername)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].UserID)
	assert.Equal(t, "guest", stored[0].Username)
	assert.Equal(t, "Espresso", stored[0].ItemName)
	assert.True(t, decimal.NewFromInt(90).Equal(stored[0].Price))
}

func TestOrderRepo_InsertOrderLines_Empty(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)

	rows, err := orders.InsertOrderLines(context.Background(), nil, "alice", nil, decimal.Zero)
	require.NoError(t, err)
	assert.Empty(t, rows)

	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderRepo_InsertOrderLines_AllOrNothing(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)

	err := db.Callback().Create().After("gorm:create").Register("test:fail_orders", func(tx *gorm.DB) {
		if tx.Statement.Table == "orders" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = orders.InsertOrderLines(context.Background(), nil, "alice", items("Latte", 150, "Mocha", 200), decimal.NewFromInt(350))
	assert.ErrorContains(t, err, "disk full")

	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderRepo_ListOrdersByUsername_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	_, err := orders.InsertOrderLines(ctx, nil, "alice", items("Latte", 150), decimal.NewFromInt(150))
	require.NoError(t, err)
	_, err = orders.InsertOrderLines(ctx, nil, "alice", items("Mocha", 200, "Cookie", 100), decimal.NewFromInt(300))
	require.NoError(t, err)
	_, err = orders.InsertOrderLines(ctx, nil, "bob", items("Tea", 80), decimal.NewFromInt(80))
	require.NoError(t, err)

	stored, err := orders.ListOrdersByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Cookie", stored[0].ItemName)
	assert.Equal(t, "Mocha", stored[1].ItemName)
	assert.Equal(t, "Latte", stored[2].ItemName)
	for i := 1; i < len(stored); i++ {
		assert.False(t, stored[i].CreatedAt.After(stored[i-1].CreatedAt))
	}
}

func TestOrderRepo_ListOrdersByUsername_Unknown(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)

	stored, err := orders.ListOrdersByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Empty(t, stored)
}

func TestOrderRepo_UserDeletionNullsUserID(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	_, err = orders.InsertOrderLines(ctx, &alice.ID, "alice", items("Latte", 150), decimal.NewFromInt(150))
	require.NoError(t, err)

	require.NoError(t, db.Delete(&domain.User{}, alice.ID).Error)

	stored, err := orders.ListOrdersByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].UserID)
	assert.Equal(t, "alice", stored[0].Username)
}
