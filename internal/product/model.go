package product

import "time"

// Product is one inventory row. SKU is the unique business key used to
// reconcile spreadsheet imports. Prices are integer cents per tier.
type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku"`
	Category          string    `json:"category,omitempty"`
	RetailCents       int64     `json:"retail_cents"`
	WholesaleCents    int64     `json:"wholesale_cents"`
	CreditCents       int64     `json:"credit_cents"`
	StockQuantity     int64     `json:"stock_quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	LastUpdated       time.Time `json:"last_updated"`
}

// LowStock reports whether the product is at or below its threshold.
func (p Product) LowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

// ImportSummary is the outcome of a bulk spreadsheet import.
type ImportSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
