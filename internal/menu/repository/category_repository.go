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

type MySQLCategoryRepository struct {
	db *sql.DB
}

func NewMySQLCategoryRepository(db *sql.DB) *MySQLCategoryRepository {
	return &MySQLCategoryRepository{db: db}
}

func (r *MySQLCategoryRepository) FindByID(ctx context.Context, id int) (*domain.Category, error) {
	query := `
		SELECT id, name, description, displayOrder, isActive, createdAt, updatedAt
		FROM Category
		WHERE id = ?`

	var c domain.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("category with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying category by id: %w", err)
	}

	return &c, nil
}

func (r *MySQLCategoryRepository) Insert(ctx context.Context, c domain.Category) (int, error) {
	query := `
		INSERT INTO Category (name, description, displayOrder, isActive)
		VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.DisplayOrder, c.IsActive)
	if err != nil {
		return 0, fmt.Errorf("inserting category: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLCategoryRepository) Update(ctx context.Context, id int, updates dto.CategoryUpdates) error {
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
	if updates.DisplayOrder != nil {
		sets = append(sets, "displayOrder = ?")
		args = append(args, *updates.DisplayOrder)
	}
	if updates.IsActive != nil {
		sets = append(sets, "isActive = ?")
		args = append(args, *updates.IsActive)
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE Category SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("category with id %d not found", id))
	}

	return nil
}

func (r *MySQLCategoryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Category WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("category with id %d not found", id))
	}

	return nil
}

func (r *MySQLCategoryRepository) CountProducts(ctx context.Context, categoryID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Product WHERE categoryId = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting products in category: %w", err)
	}
	return count, nil
}
