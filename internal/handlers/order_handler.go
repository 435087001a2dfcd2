package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/doorcraft/backend/internal/middleware"
	"github.com/doorcraft/backend/internal/models"
	"github.com/doorcraft/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// IdempotencyHeader lets a dealer retry a placement without a second debit
const IdempotencyHeader = "Idempotency-Key"

// OrderPlacer is the part of services.OrderService the handlers use
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, dealerID, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, dealerID string, limit int) ([]models.Order, error)
	WalletBalance(ctx context.Context, dealerID string) (*models.DealerAccount, error)
}

// LabelRenderer produces the printable QR label for an order
type LabelRenderer interface {
	RenderOrderLabel(orderNumber string) ([]byte, error)
}

type OrderHandler struct {
	service   OrderPlacer
	labels    LabelRenderer
	validator *services.ValidationHelper
}

func NewOrderHandler(service OrderPlacer, labels LabelRenderer) *OrderHandler {
	return &OrderHandler{
		service:   service,
		labels:    labels,
		validator: services.NewValidationHelper(),
	}
}

// PlaceOrder places a priced order against the dealer's wallet
// @Summary Place order
// @Description Debit the dealer wallet, assign an order number and persist the order atomically
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Retry key, one order per key"
// @Param request body models.PlaceOrderRequest true "Order placement request"
// @Success 201 {object} object{success=bool,order=models.Order}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := middleware.DealerIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req models.PlaceOrderRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		log.Printf("[ORDERS] Invalid request body from dealer %s: %v", dealerID, err)
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	req.DealerID = dealerID
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if len(req.IdempotencyKey) > 128 {
		services.SendErrorResponse(w, "Idempotency-Key is too long", http.StatusBadRequest, nil)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"order":   order,
	})
}

// GetOrder returns one of the dealer's orders
// @Summary Get order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param orderNumber path string true "Order number"
// @Success 200 {object} models.Order
// @Failure 404 {object} services.ErrorResponse
// @Router /orders/{orderNumber} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := middleware.DealerIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	order, err := h.service.GetOrder(r.Context(), dealerID, chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// ListOrders returns the dealer's recent orders
// @Summary List orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of orders to return (default: 20, max: 100)"
// @Success 200 {object} object{orders=[]models.Order,count=int}
// @Router /orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := middleware.DealerIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Limit int `validate:"min=1,max=100"`
	}
	req.Limit = 20

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			services.SendErrorResponse(w, "Invalid limit", http.StatusBadRequest, nil)
			return
		}
		req.Limit = limit
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), dealerID, req.Limit)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}

// OrderLabel renders the QR label for an order
// @Summary Order label
// @Tags orders
// @Produce png
// @Security BearerAuth
// @Param orderNumber path string true "Order number"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /orders/{orderNumber}/label [get]
func (h *OrderHandler) OrderLabel(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := middleware.DealerIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	order, err := h.service.GetOrder(r.Context(), dealerID, chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	png, err := h.labels.RenderOrderLabel(order.OrderNumber)
	if err != nil {
		log.Printf("[ORDERS] Failed to render label for %s: %v", order.OrderNumber, err)
		services.SendErrorResponse(w, "Failed to render label", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(png)
}

// WalletBalance returns the dealer's prepaid balance
// @Summary Wallet balance
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DealerAccount
// @Router /wallet [get]
func (h *OrderHandler) WalletBalance(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := middleware.DealerIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	account, err := h.service.WalletBalance(r.Context(), dealerID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrderRequest) {
			services.SendErrorResponse(w, "Dealer account not found", http.StatusNotFound, nil)
			return
		}
		writeOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

// writeOrderError maps the placement error taxonomy onto HTTP responses
func writeOrderError(w http.ResponseWriter, err error) {
	var funds *services.InsufficientFundsError
	var invalid *services.InvalidOrderRequestError

	switch {
	case errors.As(err, &funds):
		services.WriteErrorResponse(w, http.StatusPaymentRequired, services.ErrorResponse{
			Error: "Insufficient balance",
			Code:  "INSUFFICIENT_FUNDS",
			Details: map[string]string{
				"required":  funds.Required.StringFixed(2),
				"available": funds.Available.StringFixed(2),
			},
		})
	case errors.As(err, &invalid):
		services.WriteErrorResponse(w, http.StatusBadRequest, services.ErrorResponse{
			Error: invalid.Reason,
			Code:  "INVALID_ORDER_REQUEST",
		})
	case errors.Is(err, services.ErrOrderNotFound):
		services.WriteErrorResponse(w, http.StatusNotFound, services.ErrorResponse{
			Error: "Order not found",
			Code:  "ORDER_NOT_FOUND",
		})
	case errors.Is(err, services.ErrTransientStorage):
		w.Header().Set("Retry-After", "1")
		services.WriteErrorResponse(w, http.StatusServiceUnavailable, services.ErrorResponse{
			Error: "Order service temporarily unavailable, please retry",
			Code:  "TRANSIENT_STORAGE_ERROR",
		})
	case errors.Is(err, services.ErrIntegrityViolation):
		services.WriteErrorResponse(w, http.StatusInternalServerError, services.ErrorResponse{
			Error: "Order could not be processed",
			Code:  "INTEGRITY_VIOLATION",
		})
	default:
		log.Printf("[ORDERS] Unclassified error: %v", err)
		services.WriteErrorResponse(w, http.StatusInternalServerError, services.ErrorResponse{
			Error: "Internal server error",
		})
	}
}
