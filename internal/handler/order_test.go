package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/bonison01/shop3/internal/order"
)

type mockOrderService struct {
	CreateFunc  func(ctx context.Context, o *order.Order) (*order.Result, error)
	GetByIDFunc func(ctx context.Context, id string) (*order.Order, error)
	ListFunc    func(ctx context.Context, customerID string) ([]order.Order, error)
}

func (m *mockOrderService) Create(ctx context.Context, o *order.Order) (*order.Result, error) {
	return m.CreateFunc(ctx, o)
}

func (m *mockOrderService) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockOrderService) List(ctx context.Context, customerID string) ([]order.Order, error) {
	return m.ListFunc(ctx, customerID)
}

func TestOrderHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFunc     func(ctx context.Context, o *order.Order) (*order.Result, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success_with_warnings",
			body: `{"customer_id":"c-1","items":[{"product_id":"p-1","product_name":"Widget","quantity":2,"price_cents":100}]}`,
			createFunc: func(ctx context.Context, o *order.Order) (*order.Result, error) {
				return &order.Result{
					OrderID:    "o-1",
					TotalCents: 200,
					StockWarnings: []order.StockWarning{
						{ProductID: "p-1", Quantity: 2, Reason: "stock lookup failed"},
					},
				}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"order_id":"o-1","total_cents":200,"stock_warnings":[{"product_id":"p-1","quantity":2,"reason":"stock lookup failed"}],"stats_warning":false}`,
		},
		{
			name:           "invalid_json",
			body:           `{not json}`,
			createFunc:     func(ctx context.Context, o *order.Order) (*order.Result, error) { return nil, nil },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request body"}`,
		},
		{
			name:           "missing_customer",
			body:           `{"items":[{"product_id":"p-1","quantity":1,"price_cents":100}]}`,
			createFunc:     func(ctx context.Context, o *order.Order) (*order.Result, error) { return nil, nil },
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "empty_items",
			body:           `{"customer_id":"c-1","items":[]}`,
			createFunc:     func(ctx context.Context, o *order.Order) (*order.Result, error) { return nil, nil },
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "write_failure",
			body: `{"customer_id":"c-1","items":[{"product_id":"p-1","quantity":1,"price_cents":100}]}`,
			createFunc: func(ctx context.Context, o *order.Order) (*order.Result, error) {
				return nil, errors.New("order: failed to create order items: timeout")
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"failed to create order"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockOrderService{
				CreateFunc:  tt.createFunc,
				GetByIDFunc: func(ctx context.Context, id string) (*order.Order, error) { return nil, nil },
				ListFunc:    func(ctx context.Context, customerID string) ([]order.Order, error) { return nil, nil },
			}

			h := NewOrderHandler(mockSvc)
			r := chi.NewRouter()
			r.Post("/orders", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		getByIDFunc    func(ctx context.Context, id string) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			id:   "o-1",
			getByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
				return &order.Order{ID: "o-1", CustomerID: "c-1", Status: order.StatusPending, TotalCents: 200}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not_found",
			id:   "missing",
			getByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
				return nil, order.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockOrderService{
				CreateFunc:  func(ctx context.Context, o *order.Order) (*order.Result, error) { return nil, nil },
				GetByIDFunc: tt.getByIDFunc,
				ListFunc:    func(ctx context.Context, customerID string) ([]order.Order, error) { return nil, nil },
			}

			h := NewOrderHandler(mockSvc)

			req := httptest.NewRequest(http.MethodGet, "/orders/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			h.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_List_PassesCustomerFilter(t *testing.T) {
	var gotCustomerID string
	mockSvc := &mockOrderService{
		CreateFunc:  func(ctx context.Context, o *order.Order) (*order.Result, error) { return nil, nil },
		GetByIDFunc: func(ctx context.Context, id string) (*order.Order, error) { return nil, nil },
		ListFunc: func(ctx context.Context, customerID string) ([]order.Order, error) {
			gotCustomerID = customerID
			return []order.Order{}, nil
		},
	}

	h := NewOrderHandler(mockSvc)
	req := httptest.NewRequest(http.MethodGet, "/orders?customer_id=c-7", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c-7", gotCustomerID)
}
