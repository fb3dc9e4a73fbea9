package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/backend"
)

const (
	tableOrders     = "orders"
	tableOrderItems = "order_items"
	tableProducts   = "products"
	tableCustomers  = "customers"

	procDecrement = "decrement"
	procAddAmount = "add_amount"
)

var (
	ErrNoCustomer = errors.New("order: customer is required")
	ErrNoItems    = errors.New("order: at least one item is required")
	ErrNotFound   = errors.New("order: not found")
)

type Service interface {
	Create(ctx context.Context, o *Order) (*Result, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, customerID string) ([]Order, error)
}

type service struct {
	backend backend.Client
}

func NewService(client backend.Client) Service {
	return &service{backend: client}
}

// Create runs the submission workflow: validate, write the order header,
// write the line items, then reconcile stock and customer statistics.
//
// The header and item writes are two independent requests with no
// transaction around them: if the item write fails the header is not
// rolled back. The two reconciliation stages are best-effort; their
// failures are returned as warnings on the Result, never as an error.
func (s *service) Create(ctx context.Context, o *Order) (*Result, error) {
	if o.CustomerID == "" {
		return nil, ErrNoCustomer
	}
	if len(o.Items) == 0 {
		return nil, ErrNoItems
	}

	var total int64
	for i := range o.Items {
		item := &o.Items[i]
		item.SubtotalCents = item.Quantity * item.PriceCents
		total += item.SubtotalCents
	}

	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentUnpaid
	}
	o.TotalCents = total
	o.CreatedAt = time.Now().UTC()

	orderID, err := s.backend.Insert(ctx, tableOrders, backend.Row{
		"customer_id":    o.CustomerID,
		"status":         string(o.Status),
		"payment_status": string(o.PaymentStatus),
		"total_cents":    o.TotalCents,
		"created_at":     o.CreatedAt,
	})
	if err != nil {
		log.Error().Err(err).Str("customer_id", o.CustomerID).Msg("order: failed to insert order header")
		return nil, fmt.Errorf("order: failed to create order: %w", err)
	}
	o.ID = orderID

	itemRows := make([]backend.Row, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = orderID
		itemRows[i] = backend.Row{
			"order_id":       orderID,
			"product_id":     item.ProductID,
			"product_name":   item.ProductName,
			"quantity":       item.Quantity,
			"price_cents":    item.PriceCents,
			"subtotal_cents": item.SubtotalCents,
		}
	}
	if err := s.backend.BulkInsert(ctx, tableOrderItems, itemRows); err != nil {
		// The header already written stays behind; there is no
		// transactional path across the two tables.
		log.Error().Err(err).Str("order_id", orderID).Msg("order: failed to insert order items")
		return nil, fmt.Errorf("order: failed to create order items: %w", err)
	}

	result := &Result{OrderID: orderID, TotalCents: total}
	result.StockWarnings = s.reconcileStock(ctx, o.Items)
	result.StatsWarning = s.reconcileCustomerStats(ctx, o.CustomerID, total)

	log.Info().
		Str("order_id", orderID).
		Str("customer_id", o.CustomerID).
		Int64("total_cents", total).
		Int("stock_warnings", len(result.StockWarnings)).
		Bool("stats_warning", result.StatsWarning).
		Msg("order: created")

	return result, nil
}

// reconcileStock adjusts product stock for each line item. The atomic
// decrement procedure is preferred; on error the item falls back to a
// read-modify-write that clamps stock at zero. Items are isolated: one
// item's failure never blocks the others.
func (s *service) reconcileStock(ctx context.Context, items []Item) []StockWarning {
	var warnings []StockWarning

	for _, item := range items {
		err := s.backend.CallProcedure(ctx, procDecrement, map[string]any{
			"id": item.ProductID,
			"x":  item.Quantity,
		})
		if err == nil {
			continue
		}
		log.Warn().Err(err).Str("product_id", item.ProductID).Msg("order: atomic stock decrement failed, falling back")

		rows, err := s.backend.Select(ctx, tableProducts, backend.Filter{"id": item.ProductID}, "stock_quantity")
		if err != nil || len(rows) == 0 {
			log.Warn().Err(err).Str("product_id", item.ProductID).Msg("order: stock fallback read failed, skipping item")
			warnings = append(warnings, StockWarning{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    "stock lookup failed",
			})
			continue
		}

		newStock := rows[0].Int("stock_quantity") - item.Quantity
		if newStock < 0 {
			newStock = 0
		}
		err = s.backend.Update(ctx, tableProducts, backend.Filter{"id": item.ProductID}, backend.Row{
			"stock_quantity": newStock,
			"last_updated":   time.Now().UTC(),
		})
		if err != nil {
			log.Warn().Err(err).Str("product_id", item.ProductID).Msg("order: stock fallback write failed")
			warnings = append(warnings, StockWarning{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    "stock write failed",
			})
		}
	}

	return warnings
}

// reconcileCustomerStats bumps the customer's order count and running
// spend, preferring the atomic procedure. Returns true when neither path
// succeeded.
func (s *service) reconcileCustomerStats(ctx context.Context, customerID string, totalCents int64) bool {
	err := s.backend.CallProcedure(ctx, procAddAmount, map[string]any{
		"id":     customerID,
		"amount": totalCents,
		"base":   int64(1),
	})
	if err == nil {
		return false
	}
	log.Warn().Err(err).Str("customer_id", customerID).Msg("order: atomic customer stats update failed, falling back")

	rows, err := s.backend.Select(ctx, tableCustomers, backend.Filter{"id": customerID}, "total_orders", "total_spent_cents")
	if err != nil || len(rows) == 0 {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("order: customer stats fallback read failed")
		return true
	}

	err = s.backend.Update(ctx, tableCustomers, backend.Filter{"id": customerID}, backend.Row{
		"total_orders":      rows[0].Int("total_orders") + 1,
		"total_spent_cents": rows[0].Int("total_spent_cents") + totalCents,
	})
	if err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("order: customer stats fallback write failed")
		return true
	}
	return false
}

func (s *service) GetByID(ctx context.Context, id string) (*Order, error) {
	rows, err := s.backend.Select(ctx, tableOrders, backend.Filter{"id": id})
	if err != nil {
		return nil, fmt.Errorf("order: failed to fetch order %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	o := rowToOrder(rows[0])

	itemRows, err := s.backend.Select(ctx, tableOrderItems, backend.Filter{"order_id": id})
	if err != nil {
		return nil, fmt.Errorf("order: failed to fetch items for order %s: %w", id, err)
	}
	o.Items = make([]Item, 0, len(itemRows))
	for _, row := range itemRows {
		o.Items = append(o.Items, rowToItem(row))
	}

	return &o, nil
}

func (s *service) List(ctx context.Context, customerID string) ([]Order, error) {
	filter := backend.Filter{}
	if customerID != "" {
		filter["customer_id"] = customerID
	}

	rows, err := s.backend.Select(ctx, tableOrders, filter)
	if err != nil {
		return nil, fmt.Errorf("order: failed to list orders: %w", err)
	}

	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, rowToOrder(row))
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func rowToOrder(row backend.Row) Order {
	return Order{
		ID:            row.String("id"),
		CustomerID:    row.String("customer_id"),
		Status:        Status(row.String("status")),
		PaymentStatus: PaymentStatus(row.String("payment_status")),
		TotalCents:    row.Int("total_cents"),
		CreatedAt:     row.Time("created_at"),
	}
}

func rowToItem(row backend.Row) Item {
	return Item{
		ID:            row.String("id"),
		OrderID:       row.String("order_id"),
		ProductID:     row.String("product_id"),
		ProductName:   row.String("product_name"),
		Quantity:      row.Int("quantity"),
		PriceCents:    row.Int("price_cents"),
		SubtotalCents: row.Int("subtotal_cents"),
	}
}
