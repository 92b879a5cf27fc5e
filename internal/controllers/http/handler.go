package http

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cafe-service/internal/metrics"
	"cafe-service/internal/security"
	"cafe-service/internal/services"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var indexHTML []byte

const msgInternal = "Internal server error"

type Handler struct {
	auth   *services.AuthService
	orders *services.OrderService
	log    *slog.Logger
}

func NewHandler(auth *services.AuthService, orders *services.OrderService, log *slog.Logger) *Handler {
	return &Handler{auth: auth, orders: orders, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler())
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/save-order", h.SaveOrder)
	r.GET("/orders/:username", h.GetOrders)
}

func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Message: "Cafe API is running"})
}

func (h *Handler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, CredentialsResponse{Success: true, Message: "Registered successfully", Username: u.Username})
}

func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	u, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, CredentialsResponse{Success: true, Message: "Login successful", Username: u.Username})
}

func (h *Handler) SaveOrder(c *gin.Context) {
	var req SaveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	rows, err := h.orders.SaveOrder(c.Request.Context(), services.Checkout{
		Username: req.username(),
		Items:    req.lineItems(),
		Total:    req.Total,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Order saved! %d items stored.", len(rows)),
	})
}

func (h *Handler) GetOrders(c *gin.Context) {
	orders, err := h.orders.GetOrders(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, OrdersResponse{Success: true, Orders: toOrderResponses(orders)})
}

var errorStatus = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrMissingCredentials, http.StatusBadRequest, "Username and password required"},
	{security.ErrPasswordTooLong, http.StatusBadRequest, "Password is too long"},
	{services.ErrUsernameTaken, http.StatusConflict, "Username already taken"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	{services.ErrEmptyCart, http.StatusBadRequest, "Cart is empty"},
	{services.ErrInvalidItem, http.StatusBadRequest, "Every item needs a name"},
}

func (h *Handler) fail(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, MessageResponse{Message: e.message})
			return
		}
	}
	h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, MessageResponse{Message: msgInternal})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.log.Debug("rejected request body", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid request: " + err.Error()})
}
