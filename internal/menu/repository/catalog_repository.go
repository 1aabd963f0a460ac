package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fogon/internal/domain"
)

type MySQLCatalogRepository struct {
	db *sql.DB
}

func NewMySQLCatalogRepository(db *sql.DB) *MySQLCatalogRepository {
	return &MySQLCatalogRepository{db: db}
}

func (r *MySQLCatalogRepository) FindAllProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, costPrice, stockOnHand, minimumStock,
		       categoryId, isActive, available, createdAt, updatedAt
		FROM Product
		ORDER BY categoryId, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.CostPrice,
			&p.StockOnHand, &p.MinimumStock, &p.CategoryID,
			&p.IsActive, &p.Available, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLCatalogRepository) FindAllCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, description, displayOrder, isActive, createdAt, updatedAt
		FROM Category
		ORDER BY displayOrder, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *MySQLCatalogRepository) FindAllCombos(ctx context.Context) ([]domain.Combo, error) {
	query := `
		SELECT id, name, description, price, isActive, isFeatured, createdAt, updatedAt
		FROM Combo
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying combos: %w", err)
	}
	defer rows.Close()

	var combos []domain.Combo
	byID := make(map[int]int)
	for rows.Next() {
		var c domain.Combo
		err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.IsActive, &c.IsFeatured, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning combo row: %w", err)
		}
		byID[c.ID] = len(combos)
		combos = append(combos, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combo rows: %w", err)
	}

	if len(combos) == 0 {
		return combos, nil
	}

	itemQuery := `
		SELECT id, comboId, productId, quantity, isOptional, position
		FROM ComboItem
		ORDER BY comboId, position`

	itemRows, err := r.db.QueryContext(ctx, itemQuery)
	if err != nil {
		return nil, fmt.Errorf("querying combo items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.ComboItem
		err := itemRows.Scan(&item.ID, &item.ComboID, &item.ProductID, &item.Quantity, &item.IsOptional, &item.Position)
		if err != nil {
			return nil, fmt.Errorf("scanning combo item row: %w", err)
		}
		if idx, ok := byID[item.ComboID]; ok {
			combos[idx].Items = append(combos[idx].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combo item rows: %w", err)
	}

	return combos, nil
}
