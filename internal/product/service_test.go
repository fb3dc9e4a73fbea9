package product_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonison01/shop3/internal/backend"
	"github.com/bonison01/shop3/internal/backend/backendtest"
	"github.com/bonison01/shop3/internal/product"
)

func seedProducts(fake *backendtest.Fake) {
	fake.Seed("products",
		backend.Row{
			"id": "p-1", "name": "Widget", "sku": "WID-001", "category": "hardware",
			"retail_cents": int64(1250), "wholesale_cents": int64(900), "credit_cents": int64(1300),
			"stock_quantity": int64(3), "low_stock_threshold": int64(5),
		},
		backend.Row{
			"id": "p-2", "name": "Gadget", "sku": "GAD-001", "category": "hardware",
			"retail_cents": int64(4999), "wholesale_cents": int64(3500), "credit_cents": int64(5200),
			"stock_quantity": int64(40), "low_stock_threshold": int64(10),
		},
	)
}

func TestService_List(t *testing.T) {
	fake := backendtest.New()
	seedProducts(fake)
	svc := product.NewService(fake)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)

	want := []product.Product{
		{ID: "p-2", Name: "Gadget", SKU: "GAD-001", Category: "hardware", RetailCents: 4999, WholesaleCents: 3500, CreditCents: 5200, StockQuantity: 40, LowStockThreshold: 10},
		{ID: "p-1", Name: "Widget", SKU: "WID-001", Category: "hardware", RetailCents: 1250, WholesaleCents: 900, CreditCents: 1300, StockQuantity: 3, LowStockThreshold: 5},
	}
	if diff := cmp.Diff(want, all, cmpopts.IgnoreFields(product.Product{}, "LastUpdated")); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	low, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "p-1", low[0].ID)
	assert.True(t, low[0].LowStock())
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		product   *product.Product
		seed      bool
		wantErrIs error
	}{
		{
			name:    "success",
			product: &product.Product{Name: "Widget", SKU: "WID-002", RetailCents: 1000},
		},
		{
			name:      "missing_sku",
			product:   &product.Product{Name: "Widget"},
			wantErrIs: product.ErrInvalid,
		},
		{
			name:      "missing_name",
			product:   &product.Product{SKU: "WID-002"},
			wantErrIs: product.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := backendtest.New()
			svc := product.NewService(fake)

			created, err := svc.Create(context.Background(), tt.product)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Equal(t, 0, fake.Writes())
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.False(t, created.LastUpdated.IsZero())
			require.Len(t, fake.Table("products"), 1)
		})
	}
}

func TestService_Create_DuplicateSKU(t *testing.T) {
	fake := backendtest.New()
	fake.InsertErr["products"] = backend.ErrConflict
	svc := product.NewService(fake)

	_, err := svc.Create(context.Background(), &product.Product{Name: "Widget", SKU: "WID-001"})
	assert.ErrorIs(t, err, product.ErrDuplicateSKU)
}

func TestService_Update(t *testing.T) {
	fake := backendtest.New()
	seedProducts(fake)
	svc := product.NewService(fake)

	err := svc.Update(context.Background(), &product.Product{
		ID: "p-1", Name: "Widget v2", SKU: "WID-001", RetailCents: 1500, StockQuantity: 8,
	})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)
	assert.Equal(t, int64(1500), got.RetailCents)
	assert.Equal(t, int64(8), got.StockQuantity)

	err = svc.Update(context.Background(), &product.Product{ID: "missing", Name: "x", SKU: "y"})
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	fake := backendtest.New()
	seedProducts(fake)
	svc := product.NewService(fake)

	require.NoError(t, svc.Delete(context.Background(), "p-1"))
	assert.Len(t, fake.Table("products"), 1)

	assert.ErrorIs(t, svc.Delete(context.Background(), "p-1"), product.ErrNotFound)
}

func TestService_UpsertBySKU(t *testing.T) {
	fake := backendtest.New()
	seedProducts(fake)
	svc := product.NewService(fake)

	summary, err := svc.UpsertBySKU(context.Background(), []product.Product{
		{Name: "Widget renamed", SKU: "WID-001", RetailCents: 1400, StockQuantity: 12},
		{Name: "Sprocket", SKU: "SPR-001", RetailCents: 700},
		{SKU: "NO-NAME"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)

	rows := fake.Table("products")
	assert.Len(t, rows, 3)
	for _, row := range rows {
		if row.String("sku") == "WID-001" {
			assert.Equal(t, "Widget renamed", row.String("name"))
			assert.Equal(t, int64(12), row.Int("stock_quantity"))
		}
	}
}

func TestProduct_LowStock(t *testing.T) {
	assert.True(t, product.Product{StockQuantity: 5, LowStockThreshold: 5}.LowStock())
	assert.True(t, product.Product{StockQuantity: 0, LowStockThreshold: 0}.LowStock())
	assert.False(t, product.Product{StockQuantity: 6, LowStockThreshold: 5}.LowStock())
}
