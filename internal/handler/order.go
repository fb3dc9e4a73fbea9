package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/order"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc, validate: validator.New()}
}

type createOrderItem struct {
	ProductID   string `json:"product_id" validate:"required"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

type createOrderRequest struct {
	CustomerID    string            `json:"customer_id" validate:"required"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	Items         []createOrderItem `json:"items" validate:"required,min=1,dive"`
}

// Create handles POST /orders, the order submission workflow.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	o := &order.Order{
		CustomerID:    req.CustomerID,
		Status:        order.Status(req.Status),
		PaymentStatus: order.PaymentStatus(req.PaymentStatus),
		Items:         make([]order.Item, len(req.Items)),
	}
	for i, item := range req.Items {
		o.Items[i] = order.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
		}
	}

	result, err := h.svc.Create(r.Context(), o)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNoCustomer), errors.Is(err, order.ErrNoItems):
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Error().Err(err).Msg("handler: order creation failed")
			respondWithError(w, http.StatusBadGateway, "failed to create order")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GetByID handles GET /orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "id is required")
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Error().Err(err).Str("order_id", id).Msg("handler: failed to get order")
		respondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

// List handles GET /orders with an optional customer_id filter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context(), r.URL.Query().Get("customer_id"))
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list orders")
		respondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}
