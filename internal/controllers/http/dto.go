package http

import (
	"cafe-service/internal/domain"

	"github.com/shopspring/decimal"
)

const timestampLayout = "2006-01-02 15:04:05"

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CredentialsResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

type ItemRequest struct {
	Name  string           `json:"name" binding:"required"`
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// SaveOrderRequest leaves emptiness of Items to the service so an empty
// cart gets its own message. An absent username means guest; an explicit
// one, even "", is kept as sent.
type SaveOrderRequest struct {
	Username *string         `json:"username"`
	Items    []ItemRequest   `json:"items" binding:"dive"`
	Total    decimal.Decimal `json:"total"`
}

func (r SaveOrderRequest) username() string {
	if r.Username == nil {
		return domain.GuestUsername
	}
	return *r.Username
}

func (r SaveOrderRequest) lineItems() []domain.LineItem {
	out := make([]domain.LineItem, len(r.Items))
	for i, it := range r.Items {
		out[i] = domain.LineItem{Name: it.Name, Price: *it.Price}
	}
	return out
}

type OrderResponse struct {
	ID        uint64  `json:"id"`
	UserID    *uint64 `json:"user_id"`
	Username  string  `json:"username"`
	ItemName  string  `json:"item_name"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	CreatedAt string  `json:"created_at"`
}

type OrdersResponse struct {
	Success bool            `json:"success"`
	Orders  []OrderResponse `json:"orders"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = OrderResponse{
			ID:        o.ID,
			UserID:    o.UserID,
			Username:  o.Username,
			ItemName:  o.ItemName,
			Price:     o.Price.InexactFloat64(),
			Total:     o.Total.InexactFloat64(),
			CreatedAt: o.CreatedAt.Format(timestampLayout),
		}
	}
	return out
}
