package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/stockpos_test?parseTime=true&clientFoundRows=true"

// SetupTestDB opens the integration database named by STOCKPOS_TEST_DSN, or a
// local stockpos_test schema. The test is skipped when no server answers.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("STOCKPOS_TEST_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the tables children first and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"sale_line", "sale", "product"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the migrations create, for tests that
// run without the migrator.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createProductTable := `
	CREATE TABLE IF NOT EXISTS product (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		stock INT NOT NULL,
		CONSTRAINT chk_product_stock CHECK (stock >= 0),
		INDEX idx_product_name (name)
	) ENGINE=InnoDB`

	createSaleTable := `
	CREATE TABLE IF NOT EXISTS sale (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		timestamp VARCHAR(64) NOT NULL,
		total DECIMAL(12,2) NOT NULL,
		INDEX idx_sale_timestamp (timestamp)
	) ENGINE=InnoDB`

	createSaleLineTable := `
	CREATE TABLE IF NOT EXISTS sale_line (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		sale_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		subtotal DECIMAL(12,2) NOT NULL,
		CONSTRAINT fk_sale_line_sale FOREIGN KEY (sale_id) REFERENCES sale (id) ON DELETE CASCADE,
		CONSTRAINT fk_sale_line_product FOREIGN KEY (product_id) REFERENCES product (id) ON DELETE RESTRICT,
		INDEX idx_sale_line_sale (sale_id)
	) ENGINE=InnoDB`

	tables := []struct {
		name  string
		query string
	}{
		{"product", createProductTable},
		{"sale", createSaleTable},
		{"sale_line", createSaleLineTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
