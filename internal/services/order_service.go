package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cafe-service/internal/domain"
	rabbit "cafe-service/internal/infra/rabbitmq"
	"cafe-service/internal/metrics"
	"cafe-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	publishTimeout = 5 * time.Second
	fillTimeout    = 5 * time.Second
)

// OrderHistoryCache is satisfied by redis.OrderCache. Set must refuse to
// store when the generation moved since it was read.
type OrderHistoryCache interface {
	Get(ctx context.Context, username string) ([]domain.Order, bool, error)
	Generation(ctx context.Context, username string) (int64, error)
	Set(ctx context.Context, username string, gen int64, orders []domain.Order) (bool, error)
	Invalidate(ctx context.Context, username string) error
}

// Checkout is one cart submission. Username is stored as given.
type Checkout struct {
	Username string
	Items    []domain.LineItem
	Total    decimal.Decimal
}

type OrderService struct {
	users     repository.UserRepository
	orders    repository.OrderRepository
	publisher rabbit.PublisherInterface
	cache     OrderHistoryCache
	history   singleflight.Group
	pending   sync.WaitGroup
	log       *slog.Logger
}

func NewOrderService(users repository.UserRepository, orders repository.OrderRepository, pub rabbit.PublisherInterface, log *slog.Logger) *OrderService {
	if pub == nil {
		pub = rabbit.NopPublisher{}
	}
	return &OrderService{
		users:     users,
		orders:    orders,
		publisher: pub,
		log:       log,
	}
}

func (s *OrderService) SetCache(c OrderHistoryCache) {
	s.cache = c
}

// SaveOrder stores one row per cart item under co.Username. A username
// other than "" or guest that matches a registered user also links the rows
// to that user's id.
func (s *OrderService) SaveOrder(ctx context.Context, co Checkout) ([]domain.Order, error) {
	if len(co.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range co.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, ErrInvalidItem
		}
	}

	username := co.Username

	var userID *uint64
	if username != "" && username != domain.GuestUsername {
		u, err := s.users.FindUserByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("resolve customer %q: %w", username, err)
		}
		if u != nil {
			id := u.ID
			userID = &id
		}
	}

	rows, err := s.orders.InsertOrderLines(ctx, userID, username, co.Items, co.Total)
	if err != nil {
		return nil, err
	}

	// Later readers must not join a fill that loaded the rows before this
	// insert.
	s.history.Forget(username)
	if s.cache != nil {
		if err := s.cache.Invalidate(context.WithoutCancel(ctx), username); err != nil {
			s.log.Warn("order history cache invalidate failed", "username", username, "error", err)
		}
	}

	customer := "guest"
	if userID != nil {
		customer = "registered"
	}
	metrics.Checkouts.WithLabelValues(customer).Inc()
	metrics.OrderLines.Add(float64(len(rows)))

	names := make([]string, len(co.Items))
	for i, it := range co.Items {
		names[i] = it.Name
	}
	s.log.Info("order saved", "username", username, "items", names, "total", co.Total.StringFixed(2))

	placedAt := time.Now()
	if len(rows) > 0 {
		placedAt = rows[0].CreatedAt
	}
	evt := domain.OrderPlacedEvent{
		CheckoutID: uuid.NewString(),
		Username:   username,
		UserID:     userID,
		Items:      names,
		ItemCount:  len(names),
		Total:      co.Total,
		PlacedAt:   placedAt,
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.publishOrderPlaced(evt)
	}()

	return rows, nil
}

// Drain waits for in-flight order events to be published, or for ctx.
func (s *OrderService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OrderService) publishOrderPlaced(evt domain.OrderPlacedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, domain.OrderPlacedPattern, evt); err != nil {
		s.log.Error("failed to publish order event", "checkout_id", evt.CheckoutID, "error", err)
		return
	}
	s.log.Debug("published order event", "checkout_id", evt.CheckoutID)
}

// GetOrders returns every row stored under username, newest first. The
// cache is consulted first when configured; any cache failure falls back
// to the database.
func (s *OrderService) GetOrders(ctx context.Context, username string) ([]domain.Order, error) {
	if s.cache == nil {
		return s.orders.ListOrdersByUsername(ctx, username)
	}

	cached, ok, err := s.cache.Get(ctx, username)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("order history cache read failed", "username", username, "error", err)
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	v, err, _ := s.history.Do(username, func() (any, error) {
		// Shared by every joined caller, so no single request may cancel it.
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		return s.fillHistory(fillCtx, username)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Order), nil
}

// fillHistory reads the generation before the rows, so a checkout that
// commits in between makes the cache refuse the stale list.
func (s *OrderService) fillHistory(ctx context.Context, username string) ([]domain.Order, error) {
	gen, genErr := s.cache.Generation(ctx, username)

	orders, err := s.orders.ListOrdersByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		s.log.Warn("order history cache generation read failed", "username", username, "error", genErr)
		return orders, nil
	}
	stored, err := s.cache.Set(ctx, username, gen, orders)
	switch {
	case err != nil:
		s.log.Warn("order history cache write failed", "username", username, "error", err)
	case !stored:
		s.log.Debug("order history changed during fill, not cached", "username", username)
	}
	return orders, nil
}
