package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (extensions, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	// gen_random_uuid() lives in pgcrypto on Postgres < 13 images.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return nil, fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations runs AutoMigrate for every model plus the schema patches.
// Exposed separately so integration tests can point it at a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Recipe{},
		&model.RecipeItem{},
		&model.ProductionOrder{},
		&model.StockMovement{},
		&model.SalesOrder{},
		&model.SalesOrderItem{},
		&model.CashSession{},
		&model.CashTransaction{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open session per register. GORM cannot declare partial
		// unique indexes, and the application-level guard in CashService is
		// subject to races without it.
		{"unique open session per register", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_sessions_open_register') THEN
    CREATE UNIQUE INDEX idx_cash_sessions_open_register
        ON cash_sessions (register)
        WHERE status = 'open';
  END IF;
END $$`},
		// Movement history is always read newest-first per product.
		{"stock movement history index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_stock_movements_product_created') THEN
    CREATE INDEX idx_stock_movements_product_created
        ON stock_movements (product_id, created_at DESC);
  END IF;
END $$`},
		// The low-stock sweep scans active products against their threshold.
		{"low stock sweep index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_products_low_stock') THEN
    CREATE INDEX idx_products_low_stock
        ON products (current_stock)
        WHERE active = true;
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
