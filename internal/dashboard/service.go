// Package dashboard computes the aggregate figures the dashboard UI shows.
// Rows are selected wholesale and aggregated in-process; there is no
// server-side aggregation in the backend contract.
package dashboard

import (
	"context"
	"fmt"

	"github.com/bonison01/shop3/internal/backend"
)

type Stats struct {
	TotalOrders      int64 `json:"total_orders"`
	PendingOrders    int64 `json:"pending_orders"`
	RevenueCents     int64 `json:"revenue_cents"`
	TotalProducts    int64 `json:"total_products"`
	LowStockProducts int64 `json:"low_stock_products"`
	TotalCustomers   int64 `json:"total_customers"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	backend backend.Client
}

func NewService(client backend.Client) Service {
	return &service{backend: client}
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	orders, err := s.backend.Select(ctx, "orders", backend.Filter{}, "status", "total_cents")
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to read orders: %w", err)
	}
	for _, row := range orders {
		stats.TotalOrders++
		stats.RevenueCents += row.Int("total_cents")
		if row.String("status") == "pending" {
			stats.PendingOrders++
		}
	}

	products, err := s.backend.Select(ctx, "products", backend.Filter{}, "stock_quantity", "low_stock_threshold")
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to read products: %w", err)
	}
	for _, row := range products {
		stats.TotalProducts++
		if row.Int("stock_quantity") <= row.Int("low_stock_threshold") {
			stats.LowStockProducts++
		}
	}

	customers, err := s.backend.Select(ctx, "customers", backend.Filter{}, "id")
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to read customers: %w", err)
	}
	stats.TotalCustomers = int64(len(customers))

	return stats, nil
}
