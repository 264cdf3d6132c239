package repository

import (
	"context"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashRepository interface {
	CreateSession(ctx context.Context, s *model.CashSession) error
	FindOpenByRegister(ctx context.Context, register int) (*model.CashSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error)

	FindSessionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error

	// CreateTransactionTx inserts a manual movement inside the caller's
	// transaction, after the session row has been locked and checked open.
	CreateTransactionTx(tx *gorm.DB, t *model.CashTransaction) error

	// SumTransactionsTx sums the signed amounts of a session's manual
	// movements under the close transaction's session row lock.
	SumTransactionsTx(tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error)
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashRepo) FindOpenByRegister(ctx context.Context, register int) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("register = ? AND status = ?", register, model.SessionOpen).
		First(&s).Error
	return &s, err
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Preload("Transactions").First(&s, id).Error
	return &s, err
}

func (r *cashRepo) ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error) {
	var txns []model.CashTransaction
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&txns).Error
	return txns, err
}

func (r *cashRepo) CreateTransactionTx(tx *gorm.DB, t *model.CashTransaction) error {
	return tx.Create(t).Error
}

func (r *cashRepo) SumTransactionsTx(tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	err := tx.Model(&model.CashTransaction{}).
		Select("SUM(amount)").
		Where("session_id = ?", sessionID).
		Scan(&raw).Error
	if err != nil || !raw.Valid {
		return decimal.Zero, err
	}
	return raw.Decimal, nil
}

func (r *cashRepo) FindSessionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *cashRepo) UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error {
	return tx.Omit("Transactions").Save(s).Error
}
