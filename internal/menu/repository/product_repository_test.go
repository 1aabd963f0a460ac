package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fogon/internal/domain"
	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
	"fogon/internal/testutil"
)

// Unit Tests

func TestNewMySQLProductRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLProductRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func insertTestCategory(t *testing.T, db *sql.DB, name string) int {
	t.Helper()

	result, err := db.Exec(`INSERT INTO Category (name, description) VALUES (?, '')`, name)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func TestProductRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	categoryID := insertTestCategory(t, db, "Platos")

	cost := 4.50
	id, err := repo.Insert(context.Background(), domain.Product{
		Name:         "Lomo saltado",
		Description:  "Con papas fritas",
		Price:        18.00,
		CostPrice:    &cost,
		StockOnHand:  10,
		MinimumStock: 3,
		CategoryID:   categoryID,
		IsActive:     true,
		Available:    true,
	})
	require.NoError(t, err)
	assert.Greater(t, id, 0)

	p, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Lomo saltado", p.Name)
	assert.Equal(t, 18.00, p.Price)
	require.NotNil(t, p.CostPrice)
	assert.Equal(t, 4.50, *p.CostPrice)
	assert.Equal(t, 10, p.StockOnHand)
	assert.True(t, p.Available)
}

func TestProductRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)

	_, err := repo.FindByID(context.Background(), 99999)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestProductRepository_Update_PartialFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	categoryID := insertTestCategory(t, db, "Platos")

	id, err := repo.Insert(context.Background(), domain.Product{
		Name: "Trucha", Price: 14.00, CategoryID: categoryID, IsActive: true, Available: true,
	})
	require.NoError(t, err)

	price := 16.50
	available := false
	err = repo.Update(context.Background(), id, dto.ProductUpdates{Price: &price, Available: &available})
	require.NoError(t, err)

	p, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 16.50, p.Price)
	assert.False(t, p.Available)
	// Untouched fields keep their values.
	assert.Equal(t, "Trucha", p.Name)
	assert.True(t, p.IsActive)
}

func TestProductRepository_Update_UnchangedValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	categoryID := insertTestCategory(t, db, "Platos")

	id, err := repo.Insert(context.Background(), domain.Product{
		Name: "Trucha", Price: 14.00, CategoryID: categoryID, IsActive: true, Available: true,
	})
	require.NoError(t, err)

	// Writing the value a field already holds is a valid no-op update; it
	// must not read as a missing row.
	name := "Trucha"
	err = repo.Update(context.Background(), id, dto.ProductUpdates{Name: &name})
	require.NoError(t, err)

	p, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Trucha", p.Name)
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)

	name := "Fantasma"
	err := repo.Update(context.Background(), 99999, dto.ProductUpdates{Name: &name})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestProductRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	categoryID := insertTestCategory(t, db, "Platos")

	id, err := repo.Insert(context.Background(), domain.Product{
		Name: "Efimero", CategoryID: categoryID, IsActive: true, Available: true,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), id))

	_, err = repo.FindByID(context.Background(), id)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	err = repo.Delete(context.Background(), id)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
