package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderPlacedPattern = "order.placed"

type OrderPlacedEvent struct {
	CheckoutID string          `json:"checkoutId"`
	Username   string          `json:"username"`
	UserID     *uint64         `json:"userId"`
	Items      []string        `json:"items"`
	ItemCount  int             `json:"itemCount"`
	Total      decimal.Decimal `json:"total"`
	PlacedAt   time.Time       `json:"placedAt"`
}
