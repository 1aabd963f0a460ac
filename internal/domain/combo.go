package domain

import "time"

type Combo struct {
	ID          int
	Name        string
	Description string
	Price       float64
	IsActive    bool
	IsFeatured  bool
	Items       []ComboItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ComboItem struct {
	ID         int
	ComboID    int
	ProductID  int
	Quantity   int
	IsOptional bool
	Position   int
}

// Available composes per-product availability into combo availability. A
// combo is sellable when every required item's product is sellable and has
// enough stock to cover the item's quantity. Optional items never block the
// combo. A combo with no required items follows its own IsActive flag alone.
func (c Combo) Available(products map[int]Product) bool {
	if !c.IsActive {
		return false
	}
	for _, item := range c.Items {
		if item.IsOptional {
			continue
		}
		p, ok := products[item.ProductID]
		if !ok {
			return false
		}
		if !p.Sellable() || p.StockOnHand < item.Quantity {
			return false
		}
	}
	return true
}

// ItemAvailable reports availability for a single combo item, used to flag
// optional items in the menu view without affecting the combo itself.
func (c Combo) ItemAvailable(item ComboItem, products map[int]Product) bool {
	p, ok := products[item.ProductID]
	if !ok {
		return false
	}
	return p.Sellable() && p.StockOnHand >= item.Quantity
}
