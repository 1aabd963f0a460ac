package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fogon/internal/domain"
	"fogon/internal/dto"
	"fogon/internal/errors"
	"fogon/internal/stock/service"
)

const maxMovementPage = 100

type MySQLLedgerStore struct {
	db *sql.DB
}

func NewMySQLLedgerStore(db *sql.DB) *MySQLLedgerStore {
	return &MySQLLedgerStore{db: db}
}

func (s *MySQLLedgerStore) WithinTx(ctx context.Context, fn func(tx service.LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return errors.NewStoreUnavailableError("beginning ledger transaction", err)
	}
	// MySQL ignores rollback if already committed.
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStoreUnavailableError("committing ledger transaction", err)
	}
	return nil
}

func (s *MySQLLedgerStore) ListMovements(ctx context.Context, productID int, filters dto.MovementFilters) ([]domain.StockMovement, error) {
	query := `
		SELECT id, productId, kind, quantity, stockBefore, stockAfter,
		       reference, notes, actor, createdAt
		FROM StockMovement
		WHERE productId = ?`
	args := []interface{}{productID}

	if filters.Kind != nil {
		query += " AND kind = ?"
		args = append(args, string(*filters.Kind))
	}
	if filters.Before != nil {
		query += " AND createdAt < ?"
		args = append(args, *filters.Before)
	}

	limit := filters.Limit
	if limit <= 0 || limit > maxMovementPage {
		limit = maxMovementPage
	}
	query += " ORDER BY createdAt DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		err := rows.Scan(
			&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.StockBefore, &m.StockAfter,
			&m.Reference, &m.Notes, &m.Actor, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning movement row: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating movement rows: %w", err)
	}

	return movements, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) ProductForUpdate(ctx context.Context, productID int) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, costPrice, stockOnHand, minimumStock,
		       categoryId, isActive, available, createdAt, updatedAt
		FROM Product
		WHERE id = ?
		FOR UPDATE`

	var p domain.Product
	err := t.tx.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CostPrice,
		&p.StockOnHand, &p.MinimumStock, &p.CategoryID,
		&p.IsActive, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product for update: %w", err)
	}

	return &p, nil
}

func (t *ledgerTx) UpdateStockOnHand(ctx context.Context, productID int, stockOnHand int) error {
	// The guard re-checks what the service already validated under the row
	// lock, so a bug upstream cannot persist a negative counter.
	query := `UPDATE Product SET stockOnHand = ? WHERE id = ? AND ? >= 0`

	result, err := t.tx.ExecContext(ctx, query, stockOnHand, productID, stockOnHand)
	if err != nil {
		return fmt.Errorf("updating stock on hand: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}

	return nil
}

func (t *ledgerTx) InsertMovement(ctx context.Context, m domain.StockMovement) error {
	query := `
		INSERT INTO StockMovement
			(id, productId, kind, quantity, stockBefore, stockAfter, reference, notes, actor, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := t.tx.ExecContext(ctx, query,
		m.ID, m.ProductID, string(m.Kind), m.Quantity, m.StockBefore, m.StockAfter,
		m.Reference, m.Notes, m.Actor, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting movement: %w", err)
	}
	return nil
}

func (t *ledgerTx) BatchNumberExists(ctx context.Context, productID int, batchNumber string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM StockBatch WHERE productId = ? AND batchNumber = ?)`

	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, productID, batchNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking batch number: %w", err)
	}
	return exists, nil
}

func (t *ledgerTx) InsertBatch(ctx context.Context, b domain.StockBatch) error {
	query := `
		INSERT INTO StockBatch
			(id, productId, batchNumber, quantity, unitCost, expirationDate, notes, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := t.tx.ExecContext(ctx, query,
		b.ID, b.ProductID, b.BatchNumber, b.Quantity, b.UnitCost, b.ExpirationDate, b.Notes, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	return nil
}

func (t *ledgerTx) InsertProduction(ctx context.Context, r domain.ProductionRecord) error {
	query := `
		INSERT INTO ProductionRecord
			(id, productId, quantity, unitCost, notes, actor, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := t.tx.ExecContext(ctx, query,
		r.ID, r.ProductID, r.Quantity, r.UnitCost, r.Notes, r.Actor, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting production record: %w", err)
	}
	return nil
}
