package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sellableProduct(id, stock int) Product {
	return Product{
		ID:          id,
		StockOnHand: stock,
		IsActive:    true,
		Available:   true,
	}
}

func TestCombo_Available_AllRequiredCovered(t *testing.T) {
	products := map[int]Product{
		1: sellableProduct(1, 20),
		2: sellableProduct(2, 5),
	}
	combo := Combo{
		IsActive: true,
		Items: []ComboItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}

	assert.True(t, combo.Available(products))
}

func TestCombo_Available_InactiveCombo(t *testing.T) {
	products := map[int]Product{1: sellableProduct(1, 20)}
	combo := Combo{
		IsActive: false,
		Items:    []ComboItem{{ProductID: 1, Quantity: 1}},
	}

	assert.False(t, combo.Available(products))
}

func TestCombo_Available_RequiredItemShortStock(t *testing.T) {
	products := map[int]Product{
		1: sellableProduct(1, 1),
	}
	combo := Combo{
		IsActive: true,
		Items:    []ComboItem{{ProductID: 1, Quantity: 2}},
	}

	assert.False(t, combo.Available(products))
}

func TestCombo_Available_FlipOnStockChange(t *testing.T) {
	products := map[int]Product{1: sellableProduct(1, 20)}
	combo := Combo{
		IsActive: true,
		Items:    []ComboItem{{ProductID: 1, Quantity: 2}},
	}

	assert.True(t, combo.Available(products))

	// Dropping the required product to zero flips the combo off.
	products[1] = sellableProduct(1, 0)
	assert.False(t, combo.Available(products))

	// Restoring stock flips it back.
	products[1] = sellableProduct(1, 10)
	assert.True(t, combo.Available(products))
}

func TestCombo_Available_OptionalItemNeverBlocks(t *testing.T) {
	products := map[int]Product{
		1: sellableProduct(1, 20),
		2: sellableProduct(2, 0), // optional, out of stock
	}
	combo := Combo{
		IsActive: true,
		Items: []ComboItem{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 1, IsOptional: true},
		},
	}

	assert.True(t, combo.Available(products))
}

func TestCombo_Available_RequiredProductMissing(t *testing.T) {
	combo := Combo{
		IsActive: true,
		Items:    []ComboItem{{ProductID: 99, Quantity: 1}},
	}

	assert.False(t, combo.Available(map[int]Product{}))
}

func TestCombo_Available_ManuallyUnavailableComponent(t *testing.T) {
	p := sellableProduct(1, 20)
	p.Available = false
	combo := Combo{
		IsActive: true,
		Items:    []ComboItem{{ProductID: 1, Quantity: 1}},
	}

	assert.False(t, combo.Available(map[int]Product{1: p}))
}

func TestCombo_Available_NoRequiredItems(t *testing.T) {
	combo := Combo{
		IsActive: true,
		Items:    []ComboItem{{ProductID: 2, Quantity: 1, IsOptional: true}},
	}

	assert.True(t, combo.Available(map[int]Product{}))
}

func TestCombo_ItemAvailable(t *testing.T) {
	products := map[int]Product{
		1: sellableProduct(1, 3),
	}
	combo := Combo{IsActive: true}

	assert.True(t, combo.ItemAvailable(ComboItem{ProductID: 1, Quantity: 3}, products))
	assert.False(t, combo.ItemAvailable(ComboItem{ProductID: 1, Quantity: 4}, products))
	assert.False(t, combo.ItemAvailable(ComboItem{ProductID: 2, Quantity: 1}, products))
}
