package service

import (
	"fogon/internal/domain"
	"fogon/internal/dto"
)

// BuildViews maps raw catalog state into the derived menu. It is recomputed
// from scratch on every rebuild; nothing here is incremental, so a partially
// applied update can never leak into the derived view.
func BuildViews(products []domain.Product, categories []domain.Category, combos []domain.Combo) ([]dto.ProductView, []dto.CategoryView, []dto.ComboView) {
	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	productViews := make([]dto.ProductView, 0, len(products))
	for _, p := range products {
		productViews = append(productViews, NewProductView(p))
	}

	categoryViews := make([]dto.CategoryView, 0, len(categories))
	for _, c := range categories {
		categoryViews = append(categoryViews, dto.CategoryView{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			DisplayOrder: c.DisplayOrder,
			IsActive:     c.IsActive,
		})
	}

	comboViews := make([]dto.ComboView, 0, len(combos))
	for _, c := range combos {
		items := make([]dto.ComboItemView, 0, len(c.Items))
		for _, item := range c.Items {
			items = append(items, dto.ComboItemView{
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				IsOptional:  item.IsOptional,
				IsAvailable: c.ItemAvailable(item, byID),
			})
		}
		comboViews = append(comboViews, dto.ComboView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Price:       c.Price,
			IsActive:    c.IsActive,
			IsFeatured:  c.IsFeatured,
			IsAvailable: c.Available(byID),
			Items:       items,
		})
	}

	return productViews, categoryViews, comboViews
}

func NewProductView(p domain.Product) dto.ProductView {
	return dto.ProductView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CostPrice:    p.CostPrice,
		StockOnHand:  p.StockOnHand,
		MinimumStock: p.MinimumStock,
		CategoryID:   p.CategoryID,
		IsActive:     p.IsActive,
		IsAvailable:  p.Sellable(),
		BelowMinimum: p.BelowMinimum(),
	}
}
