package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration-test database.
// Expects a MySQL instance on localhost:3306 with a database named 'catering_test'.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/catering_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Verify connection
	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderStatusHistory", "Orders"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the tables the tests need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderNumber VARCHAR(32) NOT NULL UNIQUE,
		ownerId INT UNSIGNED NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		deliveryDate DATE NOT NULL,
		deliveryHour VARCHAR(5) NOT NULL,
		deliveryAddress VARCHAR(255) NOT NULL,
		personCount INT NOT NULL,
		menuPrice DECIMAL(10,2) NOT NULL,
		totalPrice DECIMAL(10,2) NOT NULL,
		specialInstructions TEXT NULL,
		cancellationReason TEXT NULL,
		confirmedAt DATETIME(6) NULL,
		deliveredAt DATETIME(6) NULL,
		cancelledAt DATETIME(6) NULL,
		createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatedAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		INDEX idx_orders_owner (ownerId),
		INDEX idx_orders_status (status)
	)`

	createHistoryTable := `
	CREATE TABLE IF NOT EXISTS OrderStatusHistory (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		oldStatus VARCHAR(20) NOT NULL,
		newStatus VARCHAR(20) NOT NULL,
		notes TEXT NULL,
		changedAt DATETIME(6) NOT NULL,
		INDEX idx_history_order (orderId, changedAt)
	)`

	for _, stmt := range []string{createOrdersTable, createHistoryTable} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create test table: %v", err)
		}
	}
}
