package dto

import "time"

// ProductView is a product with derived availability applied, as served in
// the menu and persisted inside the snapshot blob.
type ProductView struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	CostPrice    *float64 `json:"costPrice,omitempty"`
	StockOnHand  int      `json:"stockOnHand"`
	MinimumStock int      `json:"minimumStock"`
	CategoryID   int      `json:"categoryId"`
	IsActive     bool     `json:"isActive"`
	IsAvailable  bool     `json:"isAvailable"`
	BelowMinimum bool     `json:"belowMinimum"`
}

type CategoryView struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
	IsActive     bool   `json:"isActive"`
}

type ComboItemView struct {
	ProductID   int  `json:"productId"`
	Quantity    int  `json:"quantity"`
	IsOptional  bool `json:"isOptional"`
	IsAvailable bool `json:"isAvailable"`
}

type ComboView struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       float64         `json:"price"`
	IsActive    bool            `json:"isActive"`
	IsFeatured  bool            `json:"isFeatured"`
	IsAvailable bool            `json:"isAvailable"`
	Items       []ComboItemView `json:"items"`
}

type MenuView struct {
	Products    []ProductView  `json:"products"`
	Categories  []CategoryView `json:"categories"`
	Combos      []ComboView    `json:"combos"`
	LastUpdated time.Time      `json:"lastUpdated"`
	FromCache   bool           `json:"fromCache"`
}

type MenuFilters struct {
	CategoryID *int
	ActiveOnly bool
}

type CreateProductRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	CostPrice    *float64 `json:"costPrice,omitempty"`
	StockOnHand  int      `json:"stockOnHand"`
	MinimumStock int      `json:"minimumStock"`
	CategoryID   int      `json:"categoryId"`
	IsActive     *bool    `json:"isActive,omitempty"`
	Available    *bool    `json:"available,omitempty"`
}

// ProductUpdates carries a partial update; nil fields are left untouched.
type ProductUpdates struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	CostPrice    *float64 `json:"costPrice,omitempty"`
	StockOnHand  *int     `json:"stockOnHand,omitempty"`
	MinimumStock *int     `json:"minimumStock,omitempty"`
	CategoryID   *int     `json:"categoryId,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
	Available    *bool    `json:"available,omitempty"`
}

func (u ProductUpdates) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.CostPrice == nil && u.StockOnHand == nil && u.MinimumStock == nil &&
		u.CategoryID == nil && u.IsActive == nil && u.Available == nil
}

func (u ProductUpdates) TouchesStock() bool {
	return u.StockOnHand != nil
}

type CreateCategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
	IsActive     *bool  `json:"isActive,omitempty"`
}

type CategoryUpdates struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

func (u CategoryUpdates) Empty() bool {
	return u.Name == nil && u.Description == nil && u.DisplayOrder == nil && u.IsActive == nil
}
