package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement kinds. production_out consumes ingredients, production_in credits
// the finished good, sale_out deducts delivered order lines, manual_adjustment
// covers supervised corrections.
const (
	MovementProductionIn     = "production_in"
	MovementProductionOut    = "production_out"
	MovementSaleOut          = "sale_out"
	MovementManualAdjustment = "manual_adjustment"
)

// StockMovement is one immutable row of the stock ledger.
// Rows are created once and never updated or deleted. PreviousStock and
// NewStock are snapshots taken at apply time, not derived at read time, so
// replaying a product's rows in commit order from zero must reproduce its
// CurrentStock exactly.
type StockMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(12,3);not null"` // signed delta
	PreviousStock decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	NewStock      decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Kind          string          `gorm:"type:varchar(30);not null"`
	Reason        string
	RefID         *uuid.UUID `gorm:"type:uuid"` // production or sales order that caused it
	CreatedAt     time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
