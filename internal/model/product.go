package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product type tags. Raw materials and semi-finished goods are consumed by
// production; finished goods are produced and sold.
const (
	ProductRawMaterial  = "raw_material"
	ProductSemiFinished = "semi_finished"
	ProductFinishedGood = "finished_good"
)

// Product covers ingredients and finished goods alike.
// CurrentStock is written exclusively by the stock ledger — no other code path
// may touch the column. Callers that need stock changes go through
// service.StockLedger so every mutation leaves an audit row behind.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU          string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"index;not null"`
	Type         string    `gorm:"type:varchar(20);not null"` // raw_material | semi_finished | finished_good
	Unit         string    `gorm:"not null;default:'unit'"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MinStock     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MaxStock     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
