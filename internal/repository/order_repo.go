package repository

import (
	"context"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SalesOrderFilter defines filters for listing sales orders.
type SalesOrderFilter struct {
	Status string
	Page   int
	Limit  int
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.SalesOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error)
	List(ctx context.Context, filter SalesOrderFilter) ([]model.SalesOrder, int64, error)

	// FindForUpdateTx locks the order row (items preloaded) so duplicate
	// delivery transitions serialize on it.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SalesOrder, error)
	UpdateTx(tx *gorm.DB, o *model.SalesOrder) error

	// SumTotalsBySessionTx sums the totals of non-cancelled orders linked to a
	// cash session. Runs inside the close transaction so the figure is read
	// under the session row lock, not before it.
	SumTotalsBySessionTx(tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *model.SalesOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	var o model.SalesOrder
	err := r.db.WithContext(ctx).Preload("Items").Preload("Items.Product").First(&o, id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter SalesOrderFilter) ([]model.SalesOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SalesOrder{})
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

	var orders []model.SalesOrder
	err := q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SalesOrder, error) {
	var o model.SalesOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error
	if err != nil {
		return nil, err
	}
	// Items are loaded separately: FOR UPDATE cannot be combined with the
	// LEFT JOINs a preload would emit on some drivers.
	if err := tx.Where("order_id = ?", id).Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateTx(tx *gorm.DB, o *model.SalesOrder) error {
	return tx.Omit("Items").Save(o).Error
}

func (r *orderRepo) SumTotalsBySessionTx(tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	err := tx.Model(&model.SalesOrder{}).
		Select("SUM(total)").
		Where("cash_session_id = ? AND status <> ?", sessionID, model.OrderCancelled).
		Scan(&raw).Error
	if err != nil || !raw.Valid {
		return decimal.Zero, err
	}
	return raw.Decimal, nil
}
