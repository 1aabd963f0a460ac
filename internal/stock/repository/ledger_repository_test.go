package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fogon/internal/domain"
	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
	"fogon/internal/stock/service"
	"fogon/internal/testutil"
)

// Unit Tests

func TestNewMySQLLedgerStore(t *testing.T) {
	db := &sql.DB{}
	store := NewMySQLLedgerStore(db)

	assert.NotNil(t, store)
	assert.Equal(t, db, store.db)
}

// Integration Tests

func insertTestProduct(t *testing.T, db *sql.DB, name string, stock int) int {
	t.Helper()

	catResult, err := db.Exec(`INSERT INTO Category (name, description) VALUES ('Platos', '')`)
	require.NoError(t, err)
	categoryID, err := catResult.LastInsertId()
	require.NoError(t, err)

	result, err := db.Exec(`
		INSERT INTO Product (name, description, price, stockOnHand, categoryId, isActive, available)
		VALUES (?, '', 10.00, ?, ?, 1, 1)
	`, name, stock, categoryID)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func TestLedgerStore_WithinTx_CommitsMovementAndCounter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	store := NewMySQLLedgerStore(db)
	productID := insertTestProduct(t, db, "Lomo saltado", 10)

	err := store.WithinTx(context.Background(), func(tx service.LedgerTx) error {
		p, err := tx.ProductForUpdate(context.Background(), productID)
		if err != nil {
			return err
		}
		m := domain.StockMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			Kind:        domain.MovementExit,
			Quantity:    4,
			StockBefore: p.StockOnHand,
			StockAfter:  p.StockOnHand - 4,
			Actor:       "cocina",
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.InsertMovement(context.Background(), m); err != nil {
			return err
		}
		return tx.UpdateStockOnHand(context.Background(), productID, m.StockAfter)
	})
	require.NoError(t, err)

	var stock int
	err = db.QueryRow(`SELECT stockOnHand FROM Product WHERE id = ?`, productID).Scan(&stock)
	require.NoError(t, err)
	assert.Equal(t, 6, stock)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM StockMovement WHERE productId = ?`, productID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedgerStore_WithinTx_RollsBackOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	store := NewMySQLLedgerStore(db)
	productID := insertTestProduct(t, db, "Trucha", 10)

	boom := errors.New("boom")
	err := store.WithinTx(context.Background(), func(tx service.LedgerTx) error {
		m := domain.StockMovement{
			ID:        uuid.New().String(),
			ProductID: productID,
			Kind:      domain.MovementExit,
			Quantity:  4,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.InsertMovement(context.Background(), m); err != nil {
			return err
		}
		if err := tx.UpdateStockOnHand(context.Background(), productID, 6); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Neither the movement nor the counter change survives the rollback.
	var stock int
	err = db.QueryRow(`SELECT stockOnHand FROM Product WHERE id = ?`, productID).Scan(&stock)
	require.NoError(t, err)
	assert.Equal(t, 10, stock)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM StockMovement WHERE productId = ?`, productID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLedgerStore_ProductForUpdate_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	store := NewMySQLLedgerStore(db)

	err := store.WithinTx(context.Background(), func(tx service.LedgerTx) error {
		_, err := tx.ProductForUpdate(context.Background(), 99999)
		return err
	})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestLedgerStore_BatchNumberExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	store := NewMySQLLedgerStore(db)
	productID := insertTestProduct(t, db, "Aji de gallina", 0)

	err := store.WithinTx(context.Background(), func(tx service.LedgerTx) error {
		exists, err := tx.BatchNumberExists(context.Background(), productID, "LOTE-7")
		require.NoError(t, err)
		assert.False(t, exists)

		b := domain.StockBatch{
			ID:          uuid.New().String(),
			ProductID:   productID,
			BatchNumber: "LOTE-7",
			Quantity:    12,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.InsertBatch(context.Background(), b); err != nil {
			return err
		}

		exists, err = tx.BatchNumberExists(context.Background(), productID, "LOTE-7")
		require.NoError(t, err)
		assert.True(t, exists)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerStore_InsertProduction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	store := NewMySQLLedgerStore(db)
	productID := insertTestProduct(t, db, "Pan", 0)

	cost := 1.25
	err := store.WithinTx(context.Background(), func(tx service.LedgerTx) error {
		return tx.InsertProduction(context.Background(), domain.ProductionRecord{
			ID:        uuid.New().String(),
			ProductID: productID,
			Quantity:  30,
			UnitCost:  &cost,
			Actor:     "panadero",
			CreatedAt: time.Now().UTC(),
		})
	})
	require.NoError(t, err)

	var qty int
	var gotCost float64
	err = db.QueryRow(`SELECT quantity, unitCost FROM ProductionRecord WHERE productId = ?`, productID).Scan(&qty, &gotCost)
	require.NoError(t, err)
	assert.Equal(t, 30, qty)
	assert.Equal(t, 1.25, gotCost)
}

func TestLedgerStore_ListMovements_OrderAndFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	store := NewMySQLLedgerStore(db)
	productID := insertTestProduct(t, db, "Ceviche", 0)

	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)
	kinds := []domain.MovementKind{domain.MovementEntry, domain.MovementExit, domain.MovementEntry}
	for i, kind := range kinds {
		_, err := db.Exec(`
			INSERT INTO StockMovement (id, productId, kind, quantity, stockBefore, stockAfter, notes, actor, createdAt)
			VALUES (?, ?, ?, 1, 0, 1, '', 'cocina', ?)
		`, uuid.New().String(), productID, string(kind), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	movements, err := store.ListMovements(context.Background(), productID, dto.MovementFilters{})
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.True(t, movements[0].CreatedAt.After(movements[2].CreatedAt), "newest first")

	entry := domain.MovementEntry
	movements, err = store.ListMovements(context.Background(), productID, dto.MovementFilters{Kind: &entry})
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	before := base.Add(90 * time.Second)
	movements, err = store.ListMovements(context.Background(), productID, dto.MovementFilters{Before: &before})
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	movements, err = store.ListMovements(context.Background(), productID, dto.MovementFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}
