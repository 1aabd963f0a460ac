package domain

import "time"

type Product struct {
	ID           int
	Name         string
	Description  string
	Price        float64
	CostPrice    *float64
	StockOnHand  int
	MinimumStock int
	CategoryID   int
	IsActive     bool
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sellable derives whether the product can currently be sold. The manual
// Available flag lets staff pull a product from the menu while stock remains;
// zero stock forces unavailability no matter what the flag says.
func (p Product) Sellable() bool {
	return p.Available && p.IsActive && p.StockOnHand > 0
}

// BelowMinimum reports whether stock has reached the reorder threshold.
// Informational only; it never affects Sellable.
func (p Product) BelowMinimum() bool {
	return p.MinimumStock > 0 && p.StockOnHand <= p.MinimumStock
}
