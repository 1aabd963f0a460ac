package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB expects a MySQL database named 'fogon_test' on localhost:3306.
// Tests are skipped when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/fogon_test?parseTime=true&clientFoundRows=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"MenuSnapshot", "ProductionRecord", "StockBatch", "StockMovement", "ComboItem", "Combo", "Product", "Category"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

func SetupTestTables(t *testing.T, db *sql.DB) {
	createCategoryTable := `
	CREATE TABLE IF NOT EXISTS Category (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT,
		displayOrder INT NOT NULL DEFAULT 0,
		isActive TINYINT(1) NOT NULL DEFAULT 1,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createProductTable := `
	CREATE TABLE IF NOT EXISTS Product (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		costPrice DECIMAL(10,2),
		stockOnHand INT NOT NULL DEFAULT 0,
		minimumStock INT NOT NULL DEFAULT 0,
		categoryId INT NOT NULL,
		isActive TINYINT(1) NOT NULL DEFAULT 1,
		available TINYINT(1) NOT NULL DEFAULT 1,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_category (categoryId)
	)`

	createComboTable := `
	CREATE TABLE IF NOT EXISTS Combo (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		isActive TINYINT(1) NOT NULL DEFAULT 1,
		isFeatured TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createComboItemTable := `
	CREATE TABLE IF NOT EXISTS ComboItem (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		comboId INT NOT NULL,
		productId INT NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		isOptional TINYINT(1) NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0,
		FOREIGN KEY (comboId) REFERENCES Combo(id) ON DELETE CASCADE,
		INDEX idx_combo (comboId),
		INDEX idx_product (productId)
	)`

	createStockMovementTable := `
	CREATE TABLE IF NOT EXISTS StockMovement (
		id CHAR(36) NOT NULL PRIMARY KEY,
		productId INT NOT NULL,
		kind VARCHAR(20) NOT NULL,
		quantity INT NOT NULL,
		stockBefore INT NOT NULL,
		stockAfter INT NOT NULL,
		reference VARCHAR(255) NOT NULL DEFAULT '',
		notes TEXT,
		actor VARCHAR(100) NOT NULL DEFAULT '',
		createdAt DATETIME(6) NOT NULL,
		INDEX idx_product_created (productId, createdAt)
	)`

	createStockBatchTable := `
	CREATE TABLE IF NOT EXISTS StockBatch (
		id CHAR(36) NOT NULL PRIMARY KEY,
		productId INT NOT NULL,
		batchNumber VARCHAR(100) NOT NULL,
		quantity INT NOT NULL,
		unitCost DECIMAL(10,2),
		expirationDate DATETIME,
		notes TEXT,
		createdAt DATETIME(6) NOT NULL,
		UNIQUE KEY uq_product_batch (productId, batchNumber)
	)`

	createProductionRecordTable := `
	CREATE TABLE IF NOT EXISTS ProductionRecord (
		id CHAR(36) NOT NULL PRIMARY KEY,
		productId INT NOT NULL,
		quantity INT NOT NULL,
		unitCost DECIMAL(10,2),
		notes TEXT,
		actor VARCHAR(100) NOT NULL DEFAULT '',
		createdAt DATETIME(6) NOT NULL,
		INDEX idx_product (productId)
	)`

	createMenuSnapshotTable := `
	CREATE TABLE IF NOT EXISTS MenuSnapshot (
		name VARCHAR(50) NOT NULL PRIMARY KEY,
		payload LONGTEXT NOT NULL,
		updatedAt DATETIME(6) NOT NULL
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Category", createCategoryTable},
		{"Product", createProductTable},
		{"Combo", createComboTable},
		{"ComboItem", createComboItemTable},
		{"StockMovement", createStockMovementTable},
		{"StockBatch", createStockBatchTable},
		{"ProductionRecord", createProductionRecordTable},
		{"MenuSnapshot", createMenuSnapshotTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
