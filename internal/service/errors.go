package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain failures returned by the engine. Handlers translate them into HTTP
// responses; nothing here is retried automatically — InsufficientStock is a
// business fact, not a transient fault.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrSessionNotFound   = errors.New("cash session not found")
	ErrNoRecipe          = errors.New("no recipe defined for product")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAlreadyCompleted  = errors.New("production order already completed")
	ErrSessionClosed     = errors.New("cash session already closed")
	ErrZeroMovement      = errors.New("stock movement delta must be nonzero")
)

// Shortfall describes one ingredient that cannot cover a requested quantity.
type Shortfall struct {
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Name         string          `json:"name"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Missing      decimal.Decimal `json:"missing"`
}

// InsufficientStockError is the hard failure: a ledger apply would drive a
// product's stock negative. The enclosing transaction rolls back entirely.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Shortfall decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: short %s", e.Name, e.Shortfall.String())
}

// InsufficientIngredientsError is the advisory failure at production order
// creation: the feasibility check found shortfalls. Nothing is reserved, so a
// later completion can still fail even when creation succeeded.
type InsufficientIngredientsError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientIngredientsError) Error() string {
	if len(e.Shortfalls) == 1 {
		s := e.Shortfalls[0]
		return fmt.Sprintf("insufficient ingredients: %s requires %s, %s available",
			s.Name, s.Required.String(), s.Available.String())
	}
	return fmt.Sprintf("insufficient ingredients: %d shortfalls", len(e.Shortfalls))
}
