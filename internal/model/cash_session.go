package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// CashSession brackets one period of till operation.
// ExpectedAmount, ActualAmount and Difference are persisted at close and never
// recomputed; a closed session is immutable.
type CashSession struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Register       int             `gorm:"not null;index"`
	OperatorID     uuid.UUID       `gorm:"type:uuid;not null"`
	OpeningAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:'open'"`
	ExpectedAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActualAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Difference = actual - expected; shortage negative, overage positive.
	Difference *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes      *string
	OpenedAt   time.Time
	ClosedAt   *time.Time

	Transactions []CashTransaction `gorm:"foreignKey:SessionID"`
}

// Cash transaction kinds. Amounts are stored signed: deposits positive,
// withdrawals negative. Rows are never modified or deleted.
const (
	CashDeposit    = "deposit"
	CashWithdrawal = "withdrawal"
)

// CashTransaction is one immutable manual cash movement within a session.
type CashTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        string          `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	CreatedAt   time.Time
}
