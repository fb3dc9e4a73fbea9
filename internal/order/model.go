package order

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Item is one product-quantity-price entry within an order. SubtotalCents
// is computed when the order is submitted and never re-verified afterwards.
type Item struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int64  `json:"quantity"`
	PriceCents    int64  `json:"price_cents"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

type Order struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TotalCents    int64         `json:"total_cents"`
	Items         []Item        `json:"items,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// StockWarning reports a line item whose stock adjustment did not fully
// happen. The order itself is still considered created.
type StockWarning struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason"`
}

// Result is the outcome of a successful submission. Warnings surface
// best-effort reconciliation failures instead of discarding them.
type Result struct {
	OrderID       string         `json:"order_id"`
	TotalCents    int64          `json:"total_cents"`
	StockWarnings []StockWarning `json:"stock_warnings,omitempty"`
	StatsWarning  bool           `json:"stats_warning"`
}
