package service

import (
	"errors"
	"time"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApplyInput describes one requested stock mutation.
type ApplyInput struct {
	ProductID uuid.UUID
	Delta     decimal.Decimal // signed, nonzero
	Kind      string
	Reason    string
	RefID     *uuid.UUID
}

// AppliedMovement is the result of a ledger apply. LowStock is set when the
// mutation left the product at or below its minimum threshold; callers enqueue
// alerts after the enclosing transaction commits.
type AppliedMovement struct {
	Movement *model.StockMovement
	LowStock bool
}

// StockLedger is the single entry point for every write to a product's
// CurrentStock and the only appender to the movement log. Apply runs inside
// the caller's transaction: callers batch multiple Apply calls in one
// Transactor scope so a multi-ingredient deduction commits or rolls back as a
// unit, never partially.
type StockLedger interface {
	Apply(tx *gorm.DB, in ApplyInput) (*AppliedMovement, error)
}

type stockLedger struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
}

func NewStockLedger(products repository.ProductRepository, movements repository.MovementRepository) StockLedger {
	return &stockLedger{products: products, movements: movements}
}

// Apply locks the product row, computes newStock = currentStock + delta,
// rejects anything that would go negative, then writes the stock value and
// appends one movement row with before/after snapshots. The row lock is what
// keeps two concurrent read-modify-write sequences on the same product from
// interleaving and losing an update.
func (l *stockLedger) Apply(tx *gorm.DB, in ApplyInput) (*AppliedMovement, error) {
	if in.Delta.IsZero() {
		return nil, ErrZeroMovement
	}

	p, err := l.products.FindForUpdateTx(tx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	newStock := p.CurrentStock.Add(in.Delta)
	if newStock.IsNegative() {
		return nil, &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Shortfall: newStock.Neg(),
		}
	}

	if err := l.products.UpdateStockTx(tx, p.ID, newStock); err != nil {
		return nil, err
	}

	mov := &model.StockMovement{
		ProductID:     p.ID,
		Quantity:      in.Delta,
		PreviousStock: p.CurrentStock,
		NewStock:      newStock,
		Kind:          in.Kind,
		Reason:        in.Reason,
		RefID:         in.RefID,
		CreatedAt:     time.Now(),
	}
	if err := l.movements.CreateTx(tx, mov); err != nil {
		return nil, err
	}

	return &AppliedMovement{
		Movement: mov,
		LowStock: in.Delta.IsNegative() && newStock.LessThanOrEqual(p.MinStock),
	}, nil
}
