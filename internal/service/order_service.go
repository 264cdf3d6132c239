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

// OrderService owns sales-order status transitions. The delivery hook deducts
// finished-goods stock exactly once, on the transition into delivered, in the
// same transaction as the status write. It never increases stock and never
// touches ingredients.
type OrderService interface {
	TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*dto.OrderResponse, error)
	Get(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter repository.SalesOrderFilter) (*dto.OrderListResponse, error)
}

type orderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	ledger     StockLedger
	tx         repository.Transactor
	dispatcher *worker.Dispatcher
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger StockLedger,
	tx repository.Transactor,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		orders:     orders,
		products:   products,
		ledger:     ledger,
		tx:         tx,
		dispatcher: dispatcher,
	}
}

// ── TransitionStatus ──────────────────────────────────────────────────────────

func (s *orderService) TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*dto.OrderResponse, error) {
	if !model.OrderStatusValid(newStatus) {
		return nil, fmt.Errorf("unknown order status %q", newStatus)
	}

	var order *model.SalesOrder
	var lowStock []*model.StockMovement

	err := withTxRetry(ctx, s.tx, func(tx *gorm.DB) error {
		lowStock = lowStock[:0]

		var err error
		order, err = s.orders.FindForUpdateTx(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		// Idempotency guard: the deduction happens only when the persisted
		// status is not yet delivered or completed. A duplicate or replayed
		// delivery call updates the status and nothing else.
		deduct := newStatus == model.OrderDelivered &&
			order.Status != model.OrderDelivered &&
			order.Status != model.OrderCompleted

		if deduct {
			ref := order.ID
			for _, item := range order.Items {
				applied, err := s.ledger.Apply(tx, ApplyInput{
					ProductID: item.ProductID,
					Delta:     item.Quantity.Neg(),
					Kind:      model.MovementSaleOut,
					Reason:    fmt.Sprintf("order #%d delivered", order.Number),
					RefID:     &ref,
				})
				if err != nil {
					return err
				}
				if applied.LowStock {
					lowStock = append(lowStock, applied.Movement)
				}
			}
			now := time.Now()
			order.DeliveredAt = &now
		}

		order.Status = newStatus
		return s.orders.UpdateTx(tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.enqueueLowStockAlerts(ctx, lowStock)

	return orderToResponse(order), nil
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, filter repository.SalesOrderFilter) (*dto.OrderListResponse, error) {
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
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *orderService) enqueueLowStockAlerts(ctx context.Context, movs []*model.StockMovement) {
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

func orderToResponse(o *model.SalesOrder) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.OrderItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	resp := &dto.OrderResponse{
		ID:        o.ID.String(),
		Number:    o.Number,
		Status:    o.Status,
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
	if o.CashSessionID != nil {
		id := o.CashSessionID.String()
		resp.CashSessionID = &id
	}
	if o.DeliveredAt != nil {
		t := o.DeliveredAt.Format(time.RFC3339)
		resp.DeliveredAt = &t
	}
	return resp
}
