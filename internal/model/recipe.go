package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recipe is the bill of materials for exactly one finished-good product.
// It is read at the start of a production run and never re-read mid-transaction.
type Recipe struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Items     []RecipeItem `gorm:"foreignKey:RecipeID"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// RecipeItem is one ingredient line. Position fixes the processing order,
// which determines which ingredient is reported first on a shortfall.
type RecipeItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipeID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null"`
	QtyPerUnit   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Unit         string          `gorm:"not null"`
	Position     int             `gorm:"not null"`

	Ingredient *Product `gorm:"foreignKey:IngredientID"`
}
