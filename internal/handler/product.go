package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/product"
)

// ProductHandler handles HTTP requests for the inventory grid.
type ProductHandler struct {
	svc      product.Service
	validate *validator.Validate
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc, validate: validator.New()}
}

type productRequest struct {
	Name              string `json:"name" validate:"required"`
	SKU               string `json:"sku" validate:"required"`
	Category          string `json:"category"`
	RetailCents       int64  `json:"retail_cents" validate:"gte=0"`
	WholesaleCents    int64  `json:"wholesale_cents" validate:"gte=0"`
	CreditCents       int64  `json:"credit_cents" validate:"gte=0"`
	StockQuantity     int64  `json:"stock_quantity" validate:"gte=0"`
	LowStockThreshold int64  `json:"low_stock_threshold" validate:"gte=0"`
}

func (r productRequest) toProduct() *product.Product {
	return &product.Product{
		Name:              r.Name,
		SKU:               r.SKU,
		Category:          r.Category,
		RetailCents:       r.RetailCents,
		WholesaleCents:    r.WholesaleCents,
		CreditCents:       r.CreditCents,
		StockQuantity:     r.StockQuantity,
		LowStockThreshold: r.LowStockThreshold,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	lowOnly := r.URL.Query().Get("low_stock") == "true"

	products, err := h.svc.List(r.Context(), lowOnly)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list products")
		respondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Error().Err(err).Str("product_id", id).Msg("handler: failed to get product")
		respondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p, err := h.svc.Create(r.Context(), req.toProduct())
	if err != nil {
		if errors.Is(err, product.ErrDuplicateSKU) {
			respondWithError(w, http.StatusConflict, "sku already exists")
			return
		}
		log.Error().Err(err).Str("sku", req.SKU).Msg("handler: failed to create product")
		respondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p := req.toProduct()
	p.ID = chi.URLParam(r, "id")

	if err := h.svc.Update(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, product.ErrDuplicateSKU):
			respondWithError(w, http.StatusConflict, "sku already exists")
		default:
			log.Error().Err(err).Str("product_id", p.ID).Msg("handler: failed to update product")
			respondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Error().Err(err).Str("product_id", id).Msg("handler: failed to delete product")
		respondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /products/export, streaming the table as a spreadsheet.
func (h *ProductHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)

	if err := product.ExportXLSX(r.Context(), h.svc, w); err != nil {
		log.Error().Err(err).Msg("handler: failed to export products")
		// Headers are already out; all we can do is drop the connection.
	}
}

// Import handles POST /products/import, a multipart upload with a "file"
// part holding the spreadsheet.
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file upload is required")
		return
	}
	defer file.Close()

	summary, err := product.ImportXLSX(r.Context(), h.svc, file)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to import products")
		respondWithError(w, http.StatusBadRequest, "failed to import spreadsheet")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
