package service

import (
	"context"
	"errors"
	"time"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService is the catalog read surface plus the one supervised write:
// manual stock adjustments, which go through the ledger like everything else.
type ProductService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error)
}

type productService struct {
	products   repository.ProductRepository
	movements  repository.MovementRepository
	ledger     StockLedger
	tx         repository.Transactor
	dispatcher *worker.Dispatcher
}

func NewProductService(
	products repository.ProductRepository,
	movements repository.MovementRepository,
	ledger StockLedger,
	tx repository.Transactor,
	dispatcher *worker.Dispatcher,
) ProductService {
	return &productService{
		products:   products,
		movements:  movements,
		ledger:     ledger,
		tx:         tx,
		dispatcher: dispatcher,
	}
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// AdjustStock applies a signed manual correction through the ledger so the
// audit row and the stock write stay atomic.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	var applied *AppliedMovement
	err := withTxRetry(ctx, s.tx, func(tx *gorm.DB) error {
		var err error
		applied, err = s.ledger.Apply(tx, ApplyInput{
			ProductID: id,
			Delta:     req.Quantity,
			Kind:      model.MovementManualAdjustment,
			Reason:    req.Reason,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if applied.LowStock && s.dispatcher != nil {
		if p, err := s.products.FindByID(ctx, id); err == nil {
			_ = s.dispatcher.EnqueueLowStockAlert(ctx, worker.LowStockAlertPayload{
				ProductID:    p.ID.String(),
				Name:         p.Name,
				CurrentStock: applied.Movement.NewStock,
				MinStock:     p.MinStock,
			})
		}
	}

	return movementToResponse(applied.Movement), nil
}

func (s *productService) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, *movementToResponse(&movements[i]))
	}
	return &dto.MovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		Type:         p.Type,
		Unit:         p.Unit,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		UnitPrice:    p.UnitPrice,
		Active:       p.Active,
	}
}

func movementToResponse(m *model.StockMovement) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:            m.ID.String(),
		ProductID:     m.ProductID.String(),
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Kind:          m.Kind,
		Reason:        m.Reason,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
	if m.Product != nil {
		resp.Product = m.Product.Name
	}
	if m.RefID != nil {
		ref := m.RefID.String()
		resp.RefID = &ref
	}
	return resp
}
