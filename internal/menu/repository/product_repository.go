package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fogon/internal/domain"
	"fogon/internal/dto"
	"fogon/internal/errors"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, costPrice, stockOnHand, minimumStock,
		       categoryId, isActive, available, createdAt, updatedAt
		FROM Product
		WHERE id = ?`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CostPrice,
		&p.StockOnHand, &p.MinimumStock, &p.CategoryID,
		&p.IsActive, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLProductRepository) Insert(ctx context.Context, p domain.Product) (int, error) {
	query := `
		INSERT INTO Product
			(name, description, price, costPrice, stockOnHand, minimumStock, categoryId, isActive, available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Description, p.Price, p.CostPrice, p.StockOnHand, p.MinimumStock,
		p.CategoryID, p.IsActive, p.Available,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting product: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLProductRepository) Update(ctx context.Context, id int, updates dto.ProductUpdates) error {
	var sets []string
	var args []interface{}

	if updates.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *updates.Name)
	}
	if updates.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *updates.Description)
	}
	if updates.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *updates.Price)
	}
	if updates.CostPrice != nil {
		sets = append(sets, "costPrice = ?")
		args = append(args, *updates.CostPrice)
	}
	if updates.StockOnHand != nil {
		sets = append(sets, "stockOnHand = ?")
		args = append(args, *updates.StockOnHand)
	}
	if updates.MinimumStock != nil {
		sets = append(sets, "minimumStock = ?")
		args = append(args, *updates.MinimumStock)
	}
	if updates.CategoryID != nil {
		sets = append(sets, "categoryId = ?")
		args = append(args, *updates.CategoryID)
	}
	if updates.IsActive != nil {
		sets = append(sets, "isActive = ?")
		args = append(args, *updates.IsActive)
	}
	if updates.Available != nil {
		sets = append(sets, "available = ?")
		args = append(args, *updates.Available)
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE Product SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}

func (r *MySQLProductRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Product WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}
