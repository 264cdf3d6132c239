package repository

import (
	"context"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductionOrderFilter defines filters for listing production orders.
type ProductionOrderFilter struct {
	Status string
	Page   int
	Limit  int
}

type ProductionRepository interface {
	Create(ctx context.Context, o *model.ProductionOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error)
	List(ctx context.Context, filter ProductionOrderFilter) ([]model.ProductionOrder, int64, error)
	Update(ctx context.Context, o *model.ProductionOrder) error

	// FindForUpdateTx locks the order row so two concurrent transitions on the
	// same order serialize; the loser sees the committed terminal state.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductionOrder, error)
	UpdateTx(tx *gorm.DB, o *model.ProductionOrder) error
}

type productionRepo struct{ db *gorm.DB }

func NewProductionRepository(db *gorm.DB) ProductionRepository { return &productionRepo{db: db} }

func (r *productionRepo) Create(ctx context.Context, o *model.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *productionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	var o model.ProductionOrder
	err := r.db.WithContext(ctx).Preload("Product").First(&o, id).Error
	return &o, err
}

func (r *productionRepo) List(ctx context.Context, filter ProductionOrderFilter) ([]model.ProductionOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ProductionOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var orders []model.ProductionOrder
	err := q.Preload("Product").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

func (r *productionRepo) Update(ctx context.Context, o *model.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *productionRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductionOrder, error) {
	var o model.ProductionOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error
	return &o, err
}

func (r *productionRepo) UpdateTx(tx *gorm.DB, o *model.ProductionOrder) error {
	return tx.Save(o).Error
}
