package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/backend"
)

const tableProducts = "products"

var (
	ErrNotFound     = errors.New("product: not found")
	ErrDuplicateSKU = errors.New("product: sku already exists")
	ErrInvalid      = errors.New("product: name and sku are required")
)

type Service interface {
	List(ctx context.Context, lowStockOnly bool) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	// UpsertBySKU reconciles imported rows against the table: existing SKUs
	// are updated, unknown SKUs are created.
	UpsertBySKU(ctx context.Context, products []Product) (*ImportSummary, error)
}

type service struct {
	backend backend.Client
}

func NewService(client backend.Client) Service {
	return &service{backend: client}
}

func (s *service) List(ctx context.Context, lowStockOnly bool) ([]Product, error) {
	rows, err := s.backend.Select(ctx, tableProducts, backend.Filter{})
	if err != nil {
		return nil, fmt.Errorf("product: failed to list products: %w", err)
	}

	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		p := rowToProduct(row)
		if lowStockOnly && !p.LowStock() {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	return products, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	rows, err := s.backend.Select(ctx, tableProducts, backend.Filter{"id": id})
	if err != nil {
		return nil, fmt.Errorf("product: failed to fetch product %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	p := rowToProduct(rows[0])
	return &p, nil
}

func (s *service) Create(ctx context.Context, p *Product) (*Product, error) {
	if p.Name == "" || p.SKU == "" {
		return nil, ErrInvalid
	}

	p.LastUpdated = time.Now().UTC()
	id, err := s.backend.Insert(ctx, tableProducts, productToRow(p))
	if err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return nil, ErrDuplicateSKU
		}
		log.Error().Err(err).Str("sku", p.SKU).Msg("product: failed to create product")
		return nil, fmt.Errorf("product: failed to create product: %w", err)
	}
	p.ID = id
	return p, nil
}

func (s *service) Update(ctx context.Context, p *Product) error {
	if p.ID == "" {
		return ErrNotFound
	}
	if p.Name == "" || p.SKU == "" {
		return ErrInvalid
	}

	p.LastUpdated = time.Now().UTC()
	err := s.backend.Update(ctx, tableProducts, backend.Filter{"id": p.ID}, productToRow(p))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, backend.ErrConflict) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("product: failed to update product %s: %w", p.ID, err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.backend.Delete(ctx, tableProducts, backend.Filter{"id": id})
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("product: failed to delete product %s: %w", id, err)
	}
	return nil
}

func (s *service) UpsertBySKU(ctx context.Context, products []Product) (*ImportSummary, error) {
	summary := &ImportSummary{}

	for i := range products {
		p := &products[i]
		if p.SKU == "" || p.Name == "" {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: name and sku are required", i+1))
			continue
		}

		existing, err := s.backend.Select(ctx, tableProducts, backend.Filter{"sku": p.SKU}, "id")
		if err != nil {
			return nil, fmt.Errorf("product: failed to look up sku %s: %w", p.SKU, err)
		}

		p.LastUpdated = time.Now().UTC()
		if len(existing) > 0 {
			p.ID = existing[0].String("id")
			if err := s.backend.Update(ctx, tableProducts, backend.Filter{"id": p.ID}, productToRow(p)); err != nil {
				return nil, fmt.Errorf("product: failed to update sku %s: %w", p.SKU, err)
			}
			summary.Updated++
			continue
		}

		if _, err := s.backend.Insert(ctx, tableProducts, productToRow(p)); err != nil {
			return nil, fmt.Errorf("product: failed to insert sku %s: %w", p.SKU, err)
		}
		summary.Created++
	}

	log.Info().
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("product: import reconciled")
	return summary, nil
}

func rowToProduct(row backend.Row) Product {
	return Product{
		ID:                row.String("id"),
		Name:              row.String("name"),
		SKU:               row.String("sku"),
		Category:          row.String("category"),
		RetailCents:       row.Int("retail_cents"),
		WholesaleCents:    row.Int("wholesale_cents"),
		CreditCents:       row.Int("credit_cents"),
		StockQuantity:     row.Int("stock_quantity"),
		LowStockThreshold: row.Int("low_stock_threshold"),
		LastUpdated:       row.Time("last_updated"),
	}
}

func productToRow(p *Product) backend.Row {
	return backend.Row{
		"name":                p.Name,
		"sku":                 p.SKU,
		"category":            p.Category,
		"retail_cents":        p.RetailCents,
		"wholesale_cents":     p.WholesaleCents,
		"credit_cents":        p.CreditCents,
		"stock_quantity":      p.StockQuantity,
		"low_stock_threshold": p.LowStockThreshold,
		"last_updated":        p.LastUpdated,
	}
}
