package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/bonison01/shop3/internal/product"
)

type mockProductService struct {
	ListFunc        func(ctx context.Context, lowStockOnly bool) ([]product.Product, error)
	GetByIDFunc     func(ctx context.Context, id string) (*product.Product, error)
	CreateFunc      func(ctx context.Context, p *product.Product) (*product.Product, error)
	UpdateFunc      func(ctx context.Context, p *product.Product) error
	DeleteFunc      func(ctx context.Context, id string) error
	UpsertBySKUFunc func(ctx context.Context, products []product.Product) (*product.ImportSummary, error)
}

func (m *mockProductService) List(ctx context.Context, lowStockOnly bool) ([]product.Product, error) {
	return m.ListFunc(ctx, lowStockOnly)
}

func (m *mockProductService) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockProductService) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	return m.CreateFunc(ctx, p)
}

func (m *mockProductService) Update(ctx context.Context, p *product.Product) error {
	return m.UpdateFunc(ctx, p)
}

func (m *mockProductService) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockProductService) UpsertBySKU(ctx context.Context, products []product.Product) (*product.ImportSummary, error) {
	return m.UpsertBySKUFunc(ctx, products)
}

func newMockProductService() *mockProductService {
	return &mockProductService{
		ListFunc:    func(ctx context.Context, lowStockOnly bool) ([]product.Product, error) { return nil, nil },
		GetByIDFunc: func(ctx context.Context, id string) (*product.Product, error) { return nil, nil },
		CreateFunc:  func(ctx context.Context, p *product.Product) (*product.Product, error) { return p, nil },
		UpdateFunc:  func(ctx context.Context, p *product.Product) error { return nil },
		DeleteFunc:  func(ctx context.Context, id string) error { return nil },
		UpsertBySKUFunc: func(ctx context.Context, products []product.Product) (*product.ImportSummary, error) {
			return &product.ImportSummary{}, nil
		},
	}
}

func TestProductHandler_List_LowStockFlag(t *testing.T) {
	var gotLowOnly bool
	mockSvc := newMockProductService()
	mockSvc.ListFunc = func(ctx context.Context, lowStockOnly bool) ([]product.Product, error) {
		gotLowOnly = lowStockOnly
		return []product.Product{}, nil
	}

	h := NewProductHandler(mockSvc)
	req := httptest.NewRequest(http.MethodGet, "/products?low_stock=true", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotLowOnly)
}

func TestProductHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFunc     func(ctx context.Context, p *product.Product) (*product.Product, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"name":"Widget","sku":"WID-001","retail_cents":1250,"stock_quantity":10}`,
			createFunc: func(ctx context.Context, p *product.Product) (*product.Product, error) {
				p.ID = "p-1"
				return p, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing_sku",
			body:           `{"name":"Widget"}`,
			createFunc:     func(ctx context.Context, p *product.Product) (*product.Product, error) { return p, nil },
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "negative_price",
			body:           `{"name":"Widget","sku":"WID-001","retail_cents":-1}`,
			createFunc:     func(ctx context.Context, p *product.Product) (*product.Product, error) { return p, nil },
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "duplicate_sku",
			body: `{"name":"Widget","sku":"WID-001"}`,
			createFunc: func(ctx context.Context, p *product.Product) (*product.Product, error) {
				return nil, product.ErrDuplicateSKU
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := newMockProductService()
			mockSvc.CreateFunc = tt.createFunc

			h := NewProductHandler(mockSvc)
			r := chi.NewRouter()
			r.Post("/products", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestProductHandler_Delete_NotFound(t *testing.T) {
	mockSvc := newMockProductService()
	mockSvc.DeleteFunc = func(ctx context.Context, id string) error { return product.ErrNotFound }

	h := NewProductHandler(mockSvc)

	req := httptest.NewRequest(http.MethodDelete, "/products/missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	h.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_Import_MissingFile(t *testing.T) {
	h := NewProductHandler(newMockProductService())

	req := httptest.NewRequest(http.MethodPost, "/products/import", bytes.NewBufferString("not multipart"))
	w := httptest.NewRecorder()

	h.Import(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
