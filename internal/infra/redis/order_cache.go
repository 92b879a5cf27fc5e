package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cafe-service/internal/config"
	"cafe-service/internal/domain"

	"github.com/go-redis/redis/v8"
)

const (
	keyOrdersByUser = "orders:user:"
	keyOrdersGen    = "orders:gen:"

	// Outlives any cached history so a generation never resets while a
	// fill that read it could still be running.
	generationTTL = 24 * time.Hour
)

// OrderCache keeps each user's order history as one JSON blob, guarded by a
// per-user generation counter that every checkout bumps.
type OrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOrderCache(rdb *redis.Client, ttl time.Duration) *OrderCache {
	return &OrderCache{rdb: rdb, ttl: ttl}
}

// NewClient connects and pings; the caller owns Close.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Get reports a miss as ok=false with a nil error.
func (c *OrderCache) Get(ctx context.Context, username string) ([]domain.Order, bool, error) {
	b, err := c.rdb.Get(ctx, keyOrdersByUser+username).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var orders []domain.Order
	if err := json.Unmarshal(b, &orders); err != nil {
		return nil, false, fmt.Errorf("decode cached orders for %q: %w", username, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, true, nil
}

// Generation returns the user's invalidation counter, 0 if it was never
// bumped. Read it before loading the history you intend to Set.
func (c *OrderCache) Generation(ctx context.Context, username string) (int64, error) {
	n, err := c.rdb.Get(ctx, keyOrdersGen+username).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Set stores orders only while the user's generation still equals gen. It
// reports false, with a nil error, when an Invalidate got there first.
func (c *OrderCache) Set(ctx context.Context, username string, gen int64, orders []domain.Order) (bool, error) {
	b, err := json.Marshal(orders)
	if err != nil {
		return false, err
	}

	genKey := keyOrdersGen + username
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyOrdersByUser+username, b, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, genKey)
	if err == redis.TxFailedErr {
		return false, nil
	}
	return stored, err
}

// Invalidate bumps the generation and drops the cached history in one
// transaction, so fills that started earlier cannot store their result.
func (c *OrderCache) Invalidate(ctx context.Context, username string) error {
	genKey := keyOrdersGen + username
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, keyOrdersByUser+username)
		return nil
	})
	return err
}
