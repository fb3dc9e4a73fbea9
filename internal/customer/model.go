package customer

import "time"

// Customer carries contact details plus the order aggregates kept current
// by the order reconciler. The aggregates only ever grow: there is no
// decrement path when an order is cancelled.
type Customer struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	TotalOrders     int64     `json:"total_orders"`
	TotalSpentCents int64     `json:"total_spent_cents"`
	CreatedAt       time.Time `json:"created_at"`
}
