package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductionService is the production-order state machine.
// pending → in_progress → {completed | cancelled}; pending → cancelled.
// Stock moves only at completion, and only through the ledger.
type ProductionService interface {
	Create(ctx context.Context, req dto.CreateProductionOrderRequest) (*dto.ProductionOrderResponse, error)
	Start(ctx context.Context, orderID, assigneeID uuid.UUID) (*dto.ProductionOrderResponse, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*dto.ProductionOrderResponse, error)
	Complete(ctx context.Context, orderID uuid.UUID) (*dto.ProductionOrderResponse, error)
	Get(ctx context.Context, orderID uuid.UUID) (*dto.ProductionOrderResponse, error)
	List(ctx context.Context, filter repository.ProductionOrderFilter) (*dto.ProductionOrderListResponse, error)
}

type productionService struct {
	orders     repository.ProductionRepository
	products   repository.ProductRepository
	recipes    RecipeService
	ledger     StockLedger
	tx         repository.Transactor
	dispatcher *worker.Dispatcher
}

func NewProductionService(
	orders repository.ProductionRepository,
	products repository.ProductRepository,
	recipes RecipeService,
	ledger StockLedger,
	tx repository.Transactor,
	dispatcher *worker.Dispatcher,
) ProductionService {
	return &productionService{
		orders:     orders,
		products:   products,
		recipes:    recipes,
		ledger:     ledger,
		tx:         tx,
		dispatcher: dispatcher,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Resolves the BOM and runs the feasibility check. The check is advisory: it
// reserves nothing, so a later Complete can still fail if concurrent demand
// consumed the stock in between.

func (s *productionService) Create(ctx context.Context, req dto.CreateProductionOrderRequest) (*dto.ProductionOrderResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}

	shortfalls, err := s.recipes.CheckFeasible(ctx, productID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if len(shortfalls) > 0 {
		return nil, &InsufficientIngredientsError{Shortfalls: shortfalls}
	}

	order := &model.ProductionOrder{
		ProductID: productID,
		Quantity:  req.Quantity,
		Status:    model.ProductionPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return productionOrderToResponse(order), nil
}

// ── Start ─────────────────────────────────────────────────────────────────────

func (s *productionService) Start(ctx context.Context, orderID, assigneeID uuid.UUID) (*dto.ProductionOrderResponse, error) {
	var order *model.ProductionOrder
	err := withTxRetry(ctx, s.tx, func(tx *gorm.DB) error {
		var err error
		order, err = s.findOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.ProductionPending {
			return ErrInvalidTransition
		}
		now := time.Now()
		order.Status = model.ProductionInProgress
		order.StartedAt = &now
		order.AssigneeID = &assigneeID
		return s.orders.UpdateTx(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return productionOrderToResponse(order), nil
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// Legal from pending or in_progress. No stock effect: nothing was deducted yet.

func (s *productionService) Cancel(ctx context.Context, orderID uuid.UUID) (*dto.ProductionOrderResponse, error) {
	var order *model.ProductionOrder
	err := withTxRetry(ctx, s.tx, func(tx *gorm.DB) error {
		var err error
		order, err = s.findOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		if order.Terminal() {
			return ErrInvalidTransition
		}
		order.Status = model.ProductionCancelled
		return s.orders.UpdateTx(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return productionOrderToResponse(order), nil
}

// ── Complete ──────────────────────────────────────────────────────────────────
// Re-resolves the BOM against current stock (never the feasibility snapshot
// from creation time) and, in one transaction: one ledger deduction per
// ingredient, one credit for the finished good, then the status change. If any
// deduction would drive stock negative the whole transaction rolls back — no
// partial deduction, no state change, and the order keeps its prior status.

func (s *productionService) Complete(ctx context.Context, orderID uuid.UUID) (*dto.ProductionOrderResponse, error) {
	var order *model.ProductionOrder
	var lowStock []*model.StockMovement

	err := withTxRetry(ctx, s.tx, func(tx *gorm.DB) error {
		lowStock = lowStock[:0]

		var err error
		order, err = s.findOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case model.ProductionCompleted:
			return ErrAlreadyCompleted
		case model.ProductionCancelled:
			return ErrInvalidTransition
		}

		items, err := s.recipes.Resolve(ctx, order.ProductID)
		if err != nil {
			return err
		}

		ref := order.ID
		// Ingredients in stored recipe order; the first shortfall aborts the
		// batch, so ordering only decides which ingredient gets reported.
		for _, item := range items {
			applied, err := s.ledger.Apply(tx, ApplyInput{
				ProductID: item.IngredientID,
				Delta:     item.QtyPerUnit.Mul(order.Quantity).Neg(),
				Kind:      model.MovementProductionOut,
				Reason:    fmt.Sprintf("production order %s", order.ID),
				RefID:     &ref,
			})
			if err != nil {
				return err
			}
			if applied.LowStock {
				lowStock = append(lowStock, applied.Movement)
			}
		}

		if _, err := s.ledger.Apply(tx, ApplyInput{
			ProductID: order.ProductID,
			Delta:     order.Quantity,
			Kind:      model.MovementProductionIn,
			Reason:    fmt.Sprintf("production order %s", order.ID),
			RefID:     &ref,
		}); err != nil {
			return err
		}

		now := time.Now()
		order.Status = model.ProductionCompleted
		order.CompletedAt = &now
		return s.orders.UpdateTx(tx, order)
	})
	if err != nil {
		return nil, err
	}

	// Alerts only after the commit — a rolled-back deduction must not alert.
	s.enqueueLowStockAlerts(ctx, lowStock)

	return productionOrderToResponse(order), nil
}

func (s *productionService) Get(ctx context.Context, orderID uuid.UUID) (*dto.ProductionOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return productionOrderToResponse(order), nil
}

func (s *productionService) List(ctx context.Context, filter repository.ProductionOrderFilter) (*dto.ProductionOrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductionOrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *productionOrderToResponse(&orders[i]))
	}
	return &dto.ProductionOrderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *productionService) findOrderTx(tx *gorm.DB, id uuid.UUID) (*model.ProductionOrder, error) {
	order, err := s.orders.FindForUpdateTx(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *productionService) enqueueLowStockAlerts(ctx context.Context, movs []*model.StockMovement) {
	if s.dispatcher == nil {
		return
	}
	for _, mov := range movs {
		p, err := s.products.FindByID(ctx, mov.ProductID)
		if err != nil {
			continue
		}
		_ = s.dispatcher.EnqueueLowStockAlert(ctx, worker.LowStockAlertPayload{
			ProductID:    p.ID.String(),
			Name:         p.Name,
			CurrentStock: mov.NewStock,
			MinStock:     p.MinStock,
		})
	}
}

func productionOrderToResponse(o *model.ProductionOrder) *dto.ProductionOrderResponse {
	resp := &dto.ProductionOrderResponse{
		ID:        o.ID.String(),
		ProductID: o.ProductID.String(),
		Quantity:  o.Quantity,
		Status:    o.Status,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
	if o.Product != nil {
		resp.ProductName = o.Product.Name
	}
	if o.AssigneeID != nil {
		a := o.AssigneeID.String()
		resp.AssigneeID = &a
	}
	if o.StartedAt != nil {
		t := o.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &t
	}
	if o.CompletedAt != nil {
		t := o.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &t
	}
	return resp
}
