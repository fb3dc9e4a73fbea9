package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/customer"
)

type CustomerHandler struct {
	svc      customer.Service
	validate *validator.Validate
}

func NewCustomerHandler(svc customer.Service) *CustomerHandler {
	return &CustomerHandler{svc: svc, validate: validator.New()}
}

type createCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list customers")
		respondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	respondWithJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		log.Error().Err(err).Str("customer_id", id).Msg("handler: failed to get customer")
		respondWithError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), &customer.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, customer.ErrEmailExists) {
			respondWithError(w, http.StatusConflict, "email already exists")
			return
		}
		log.Error().Err(err).Str("name", req.Name).Msg("handler: failed to create customer")
		respondWithError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}
